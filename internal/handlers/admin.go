package handlers

import (
	"html/template"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/shikho/dynqr/internal/cache"
	"github.com/shikho/dynqr/internal/records"
)

type qrRow struct {
	ID       string
	Name     string
	Type     string
	Status   string
	Classes  string
	Live     bool
	URL      string
	Updated  string
	Mappings int
}

// GET /admin/qrcodes
func (h *Handlers) AdminQRCodes(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qrs, err := h.QRCodes.List(r.Context())
		if err != nil {
			http.Error(w, "db error", 500)
			return
		}
		rows := make([]qrRow, 0, len(qrs))
		for _, qr := range qrs {
			row := qrRow{
				ID:       qr.ID,
				Name:     qr.Name,
				Type:     qr.Type,
				Status:   qr.Status,
				Live:     records.Live(qr),
				URL:      records.View(qr, h.Cfg.PublicBaseURL).URL,
				Updated:  qr.UpdatedAt.Format("02 Jan 2006 15:04"),
				Mappings: len(qr.Mappings) + len(qr.QuizMappings),
			}
			for _, m := range qr.Mappings {
				if row.Classes != "" {
					row.Classes += ", "
				}
				row.Classes += m.ClassVal
			}
			for _, m := range qr.QuizMappings {
				if row.Classes != "" {
					row.Classes += ", "
				}
				row.Classes += m.ClassVal
			}
			rows = append(rows, row)
		}

		view, err := t.Clone()
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if _, err := view.ParseFiles(filepath.Join(h.Cfg.TemplatesDir, "pages/admin/qrcodes.tmpl")); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		data := map[string]any{
			"Title": "Admin • QR Codes",
			"Rows":  rows,
			"Flash": MakeFlash(r, "", ""),
		}
		if err := view.ExecuteTemplate(w, "admin/qrcodes.tmpl", data); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
	}
}

// POST /admin/qrcodes/{id}/delete
func (h *Handlers) AdminDeleteQRCode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.QRCodes.Delete(r.Context(), id); err != nil {
		h.Log.Warn().Err(err).Str("id", id).Msg("admin delete failed")
		http.Redirect(w, r, "/admin/qrcodes?error=delete", http.StatusSeeOther)
		return
	}
	_ = h.PNGs.Delete(r.Context(), cache.PNGKey(id, h.Cfg.QRPNGSize))
	http.Redirect(w, r, "/admin/qrcodes?ok=deleted", http.StatusSeeOther)
}
