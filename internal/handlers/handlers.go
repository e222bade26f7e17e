package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/shikho/dynqr/internal/cache"
	"github.com/shikho/dynqr/internal/config"
	"github.com/shikho/dynqr/internal/records"
	"github.com/shikho/dynqr/internal/response"
	svc "github.com/shikho/dynqr/internal/services"
)

// Handlers carries what the HTTP layer needs from the rest of the app.
type Handlers struct {
	QRCodes *svc.QRCodeService
	Quizzes *svc.QuizService
	Viewers *svc.ViewerService
	Scans   *svc.ScanService
	PNGs    cache.PNGCache

	Cfg *config.Config
	Log zerolog.Logger

	adminHash []byte
}

// New wires the handlers. The admin password is hashed once here so logins
// compare against a bcrypt hash, never the plain value.
func New(cfg *config.Config, log zerolog.Logger, qrs *svc.QRCodeService, quizzes *svc.QuizService,
	viewers *svc.ViewerService, scans *svc.ScanService, pngs cache.PNGCache) (*Handlers, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	if pngs == nil {
		pngs = cache.Noop{}
	}
	return &Handlers{
		QRCodes:   qrs,
		Quizzes:   quizzes,
		Viewers:   viewers,
		Scans:     scans,
		PNGs:      pngs,
		Cfg:       cfg,
		Log:       log,
		adminHash: hash,
	}, nil
}

func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// fail maps a service error onto the JSON envelope.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	var ve *records.ValidationError
	switch {
	case errors.As(err, &ve):
		response.FailWithFields(w, r, http.StatusUnprocessableEntity, response.ErrValidation, ve.Fields)
	case errors.Is(err, svc.ErrNotFound):
		response.Fail(w, r, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, svc.ErrConflict):
		response.Fail(w, r, http.StatusConflict, response.ErrConflict)
	case errors.Is(err, svc.ErrSwitchMismatch):
		response.Fail(w, r, http.StatusConflict, response.ErrSwitchMismatch)
	case errors.Is(err, svc.ErrUnreadableImage):
		response.Fail(w, r, http.StatusUnprocessableEntity, response.ErrUnreadableImage)
	default:
		h.Log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		response.Fail(w, r, http.StatusInternalServerError, response.ErrInternal)
	}
}
