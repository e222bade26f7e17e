package handlers

import (
	"html/template"
	"net/http"
	"path/filepath"
)

func (h *Handlers) Home(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := t.Clone()
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if _, err := view.ParseFiles(filepath.Join(h.Cfg.TemplatesDir, "pages/home.tmpl")); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		data := map[string]any{
			"Title":  "Dynamic QR",
			"Viewer": h.viewerID(r),
		}
		if err := view.ExecuteTemplate(w, "home.tmpl", data); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
	}
}
