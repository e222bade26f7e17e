package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shikho/dynqr/internal/cache"
	"github.com/shikho/dynqr/internal/qrimage"
	"github.com/shikho/dynqr/internal/resolver"
	"github.com/shikho/dynqr/internal/response"
)

// GET /qr/{id}.png
func (h *Handlers) QR(w http.ResponseWriter, r *http.Request) {
	// The route captures the whole file name; ids may contain dots.
	id, ok := strings.CutSuffix(chi.URLParam(r, "file"), ".png")
	if !ok || id == "" {
		http.NotFound(w, r)
		return
	}
	// ensure the record exists
	if _, err := h.QRCodes.Get(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}

	size := h.Cfg.QRPNGSize
	key := cache.PNGKey(id, size)
	png, hit, err := h.PNGs.Get(r.Context(), key)
	if err != nil {
		h.Log.Warn().Err(err).Str("key", key).Msg("png cache read failed")
	}
	if !hit {
		png, err = qrimage.Encode(resolver.BuildPayload(h.Cfg.PublicBaseURL, id), size)
		if err != nil {
			http.Error(w, "failed to generate qr", http.StatusInternalServerError)
			return
		}
		if err := h.PNGs.Set(r.Context(), key, png); err != nil {
			h.Log.Warn().Err(err).Str("key", key).Msg("png cache write failed")
		}
	}

	w.Header().Set("Content-Type", "image/png")
	if r.URL.Query().Get("download") != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+strings.ReplaceAll(id, `"`, "")+`.png"`)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// GET /qr?id=... is where a printed code's URL lands. It resolves for the
// viewer in the session cookie.
func (h *Handlers) Landing(w http.ResponseWriter, r *http.Request) {
	payload := resolver.PayloadPath
	if r.URL.RawQuery != "" {
		payload += "?" + r.URL.RawQuery
	}
	res, err := h.Scans.Scan(r.Context(), h.viewerID(r), payload)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	view := NewScanView(res)
	view.Payload = payload
	response.Success(w, r, http.StatusOK, view)
}
