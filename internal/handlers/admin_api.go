package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shikho/dynqr/internal/cache"
	"github.com/shikho/dynqr/internal/records"
	"github.com/shikho/dynqr/internal/response"
	svc "github.com/shikho/dynqr/internal/services"
)

// --- QR codes ---

// GET /admin/api/qrcodes
func (h *Handlers) APIListQRCodes(w http.ResponseWriter, r *http.Request) {
	qrs, err := h.QRCodes.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]records.QRView, 0, len(qrs))
	for _, qr := range qrs {
		out = append(out, records.View(qr, h.Cfg.PublicBaseURL))
	}
	response.Success(w, r, http.StatusOK, out)
}

// GET /admin/api/qrcodes/{id}
func (h *Handlers) APIGetQRCode(w http.ResponseWriter, r *http.Request) {
	qr, err := h.QRCodes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, r, http.StatusOK, records.View(qr, h.Cfg.PublicBaseURL))
}

// POST /admin/api/qrcodes
func (h *Handlers) APICreateQRCode(w http.ResponseWriter, r *http.Request) {
	var in records.QRInput
	if !decodeJSON(w, r, &in) {
		return
	}
	qr, err := h.QRCodes.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, r, http.StatusCreated, records.View(qr, h.Cfg.PublicBaseURL))
}

// PUT /admin/api/qrcodes/{id}
func (h *Handlers) APIUpdateQRCode(w http.ResponseWriter, r *http.Request) {
	var in records.QRInput
	if !decodeJSON(w, r, &in) {
		return
	}
	qr, err := h.QRCodes.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, r, http.StatusOK, records.View(qr, h.Cfg.PublicBaseURL))
}

// DELETE /admin/api/qrcodes/{id}
func (h *Handlers) APIDeleteQRCode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.QRCodes.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.PNGs.Delete(r.Context(), cache.PNGKey(id, h.Cfg.QRPNGSize)); err != nil {
		h.Log.Warn().Err(err).Str("id", id).Msg("png cache invalidation failed")
	}
	response.Success(w, r, http.StatusOK, map[string]string{"id": id})
}

// --- Quizzes ---

// GET /admin/api/quizzes
func (h *Handlers) APIListQuizzes(w http.ResponseWriter, r *http.Request) {
	qs, err := h.Quizzes.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]records.QuizInput, 0, len(qs))
	for _, q := range qs {
		out = append(out, records.QuizFromModel(q))
	}
	response.Success(w, r, http.StatusOK, out)
}

// GET /admin/api/quizzes/{id}
func (h *Handlers) APIGetQuiz(w http.ResponseWriter, r *http.Request) {
	q, err := h.Quizzes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, r, http.StatusOK, records.QuizFromModel(q))
}

// POST /admin/api/quizzes
func (h *Handlers) APICreateQuiz(w http.ResponseWriter, r *http.Request) {
	var in records.QuizInput
	if !decodeJSON(w, r, &in) {
		return
	}
	q, err := h.Quizzes.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, r, http.StatusCreated, records.QuizFromModel(q))
}

// PUT /admin/api/quizzes/{id}
func (h *Handlers) APIUpdateQuiz(w http.ResponseWriter, r *http.Request) {
	var in records.QuizInput
	if !decodeJSON(w, r, &in) {
		return
	}
	q, err := h.Quizzes.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, r, http.StatusOK, records.QuizFromModel(q))
}

// PUT /admin/api/quizzes/{id}/questions
func (h *Handlers) APIReplaceQuestions(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Questions []records.QuestionInput `json:"questions"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	q, err := h.Quizzes.ReplaceQuestions(r.Context(), chi.URLParam(r, "id"), in.Questions)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, r, http.StatusOK, records.QuizFromModel(q))
}

// DELETE /admin/api/quizzes/{id}
func (h *Handlers) APIDeleteQuiz(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Quizzes.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, r, http.StatusOK, map[string]string{"id": id})
}

// --- Viewers & scans ---

// GET /admin/api/viewers/{id}/entitlements
func (h *Handlers) APIEntitlements(w http.ResponseWriter, r *http.Request) {
	ent, err := h.Viewers.Entitlements(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, r, http.StatusOK, svc.EntitlementList(ent))
}

// PUT /admin/api/viewers/{id}/entitlements
func (h *Handlers) APISetEntitlements(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Entitlements []svc.EntitlementInput `json:"entitlements"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	ent, err := h.Viewers.SetEntitlements(r.Context(), chi.URLParam(r, "id"), in.Entitlements)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, r, http.StatusOK, svc.EntitlementList(ent))
}

// GET /admin/api/scans?limit=50
func (h *Handlers) APIRecentScans(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	evs, err := h.Scans.RecentScans(r.Context(), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, r, http.StatusOK, evs)
}
