package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestFailWithFields_Envelope(t *testing.T) {
	var rec *httptest.ResponseRecorder
	h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FailWithFields(w, r, http.StatusUnprocessableEntity, ErrValidation, map[string]string{"mappings": "required"})
	}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x", nil))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d", rec.Code)
	}
	var body Response
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error == nil || body.Error.Code != ErrValidation || body.Error.Fields["mappings"] != "required" {
		t.Fatalf("unexpected error body %+v", body.Error)
	}
	if body.Metadata.RequestID == "" || body.Metadata.Timestamp == "" {
		t.Fatalf("metadata missing: %+v", body.Metadata)
	}
}

func TestSuccess_WithoutRequestIDMiddleware(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, map[string]int{"n": 1})
	var body struct {
		Data     map[string]int `json:"data"`
		Metadata Metadata       `json:"metadata"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Data["n"] != 1 || body.Metadata.RequestID == "" {
		t.Fatalf("unexpected body %+v", body)
	}
}
