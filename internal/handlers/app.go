package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shikho/dynqr/internal/models"
	"github.com/shikho/dynqr/internal/records"
	"github.com/shikho/dynqr/internal/response"
	svc "github.com/shikho/dynqr/internal/services"
)

// ViewerView is a viewer as the app sees it.
type ViewerView struct {
	ID            string                 `json:"id"`
	ClassVal      string                 `json:"classVal"`
	ActiveProgram string                 `json:"activeProgram"`
	Entitlements  []svc.EntitlementInput `json:"entitlements"`
}

func newViewerView(v models.Viewer) ViewerView {
	return ViewerView{
		ID:            v.ID,
		ClassVal:      v.ClassVal,
		ActiveProgram: v.ActiveProgram,
		Entitlements:  svc.EntitlementList(svc.ToResolverViewer(v).Entitlements),
	}
}

type scanRequest struct {
	Payload string `json:"payload"`
}

type switchRequest struct {
	Payload string `json:"payload"`
	Program string `json:"program"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.FailWithFields(w, r, http.StatusBadRequest, response.ErrInvalidPayload, map[string]string{"detail": err.Error()})
		return false
	}
	return true
}

// GET /app/viewers/{id}
func (h *Handlers) AppViewer(w http.ResponseWriter, r *http.Request) {
	v, err := h.Viewers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, r, http.StatusOK, newViewerView(v))
}

// PUT /app/viewers/{id}
func (h *Handlers) AppUpdateViewer(w http.ResponseWriter, r *http.Request) {
	var in svc.ViewerInput
	if !decodeJSON(w, r, &in) {
		return
	}
	v, err := h.Viewers.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, r, http.StatusOK, newViewerView(v))
}

// POST /app/viewers/{id}/scan
func (h *Handlers) AppScan(w http.ResponseWriter, r *http.Request) {
	var in scanRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	res, err := h.Scans.Scan(r.Context(), chi.URLParam(r, "id"), in.Payload)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	view := NewScanView(res)
	view.Payload = in.Payload
	response.Success(w, r, http.StatusOK, view)
}

// POST /app/viewers/{id}/scan/image (multipart, field "image")
func (h *Handlers) AppScanImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.Cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.Cfg.MaxUploadBytes); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			response.Fail(w, r, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
			return
		}
		response.Fail(w, r, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	f, _, err := r.FormFile("image")
	if err != nil {
		response.Fail(w, r, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer f.Close()

	payload, res, err := h.Scans.ScanImage(r.Context(), chi.URLParam(r, "id"), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	view := NewScanView(res)
	view.Payload = payload
	response.Success(w, r, http.StatusOK, view)
}

// POST /app/viewers/{id}/switch
func (h *Handlers) AppConfirmSwitch(w http.ResponseWriter, r *http.Request) {
	var in switchRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Program) == "" {
		response.FailWithFields(w, r, http.StatusUnprocessableEntity, response.ErrValidation, map[string]string{"program": "program is a required field"})
		return
	}
	res, err := h.Scans.ConfirmSwitch(r.Context(), chi.URLParam(r, "id"), in.Payload, in.Program)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	view := NewScanView(res)
	view.Payload = in.Payload
	response.Success(w, r, http.StatusOK, view)
}

// QuizPlayView hides correct answers and solutions until grading.
type QuizPlayView struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Program     string         `json:"program"`
	Subject     string         `json:"subject"`
	ChapterName string         `json:"chapterName"`
	Questions   []QuestionPlay `json:"questions"`
}

type QuestionPlay struct {
	ID      string            `json:"id"`
	Number  string            `json:"number"`
	Title   string            `json:"title,omitempty"`
	Options map[string]string `json:"options"`
}

// GET /app/quizzes/{id}
func (h *Handlers) AppQuiz(w http.ResponseWriter, r *http.Request) {
	q, err := h.Quizzes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	in := records.QuizFromModel(q)
	view := QuizPlayView{ID: q.ID, Name: q.Name, Program: q.Program, Subject: q.Subject, ChapterName: q.ChapterName}
	for _, qu := range in.Questions {
		opts := map[string]string{}
		for k, v := range qu.Options {
			if v != "" {
				opts[k] = v
			}
		}
		view.Questions = append(view.Questions, QuestionPlay{ID: qu.ID, Number: qu.Number, Title: qu.Title, Options: opts})
	}
	response.Success(w, r, http.StatusOK, view)
}

type answersRequest struct {
	Answers map[string]string `json:"answers"`
}

// POST /app/quizzes/{id}/answers
func (h *Handlers) AppGradeQuiz(w http.ResponseWriter, r *http.Request) {
	var in answersRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	res, err := h.Quizzes.Grade(r.Context(), chi.URLParam(r, "id"), in.Answers)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, r, http.StatusOK, res)
}
