package handlers

import (
	"net/http"
	"strings"
	"time"
)

const viewerCookie = "viewer_id"

func setViewerCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     viewerCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(30 * 24 * time.Hour),
	})
}

// viewerID returns the viewer in the cookie, or the configured demo viewer.
func (h *Handlers) viewerID(r *http.Request) string {
	if c, err := r.Cookie(viewerCookie); err == nil && strings.TrimSpace(c.Value) != "" {
		return c.Value
	}
	return h.Cfg.DefaultViewer
}

// GET /switch-viewer?id=v2&return=/
func SwitchViewer(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		http.SetCookie(w, &http.Cookie{Name: viewerCookie, Value: "", Path: "/", Expires: time.Unix(0, 0), MaxAge: -1})
	} else {
		setViewerCookie(w, id)
	}
	ret := r.URL.Query().Get("return")
	if ret == "" || !strings.HasPrefix(ret, "/") || strings.HasPrefix(ret, "//") {
		ret = "/"
	}
	http.Redirect(w, r, ret, http.StatusSeeOther)
}
