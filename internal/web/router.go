package web

import (
	"html/template"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shikho/dynqr/internal/catalog"
	"github.com/shikho/dynqr/internal/handlers"
)

func Router(h *handlers.Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(h.Log))
	r.Use(middleware.Recoverer)

	tmpl := mustParseTemplates(h.Cfg.TemplatesDir)

	// Public pages
	r.Get("/", h.Home(tmpl))
	r.Get("/healthz", handlers.Health)
	r.Get("/switch-viewer", handlers.SwitchViewer)

	// Printed codes land here; the PNG is what gets printed.
	r.Get("/qr", h.Landing)
	r.Get("/qr/{file}", h.QR)

	// Mobile app simulator
	r.Route("/app", func(ar chi.Router) {
		ar.Get("/viewers/{id}", h.AppViewer)
		ar.Put("/viewers/{id}", h.AppUpdateViewer)
		ar.Post("/viewers/{id}/scan", h.AppScan)
		ar.Post("/viewers/{id}/scan/image", h.AppScanImage)
		ar.Post("/viewers/{id}/switch", h.AppConfirmSwitch)
		ar.Get("/quizzes/{id}", h.AppQuiz)
		ar.Post("/quizzes/{id}/answers", h.AppGradeQuiz)
	})

	// --- Admin routes (with login + guard) ---
	r.Route("/admin", func(ar chi.Router) {
		// Auth endpoints (public)
		ar.Get("/login", h.AdminLoginForm(tmpl))
		ar.Post("/login", h.AdminLoginSubmit)
		ar.Post("/logout", handlers.AdminLogout)

		ar.Group(func(ag chi.Router) {
			ag.Use(handlers.RequireAdmin)

			ag.Get("/qrcodes", h.AdminQRCodes(tmpl))
			ag.Post("/qrcodes/{id}/delete", h.AdminDeleteQRCode)

			ag.Route("/api", func(api chi.Router) {
				api.Get("/qrcodes", h.APIListQRCodes)
				api.Post("/qrcodes", h.APICreateQRCode)
				api.Get("/qrcodes/{id}", h.APIGetQRCode)
				api.Put("/qrcodes/{id}", h.APIUpdateQRCode)
				api.Delete("/qrcodes/{id}", h.APIDeleteQRCode)

				api.Get("/quizzes", h.APIListQuizzes)
				api.Post("/quizzes", h.APICreateQuiz)
				api.Get("/quizzes/{id}", h.APIGetQuiz)
				api.Put("/quizzes/{id}", h.APIUpdateQuiz)
				api.Put("/quizzes/{id}/questions", h.APIReplaceQuestions)
				api.Delete("/quizzes/{id}", h.APIDeleteQuiz)

				api.Get("/viewers/{id}/entitlements", h.APIEntitlements)
				api.Put("/viewers/{id}/entitlements", h.APISetEntitlements)

				api.Get("/scans", h.APIRecentScans)
			})
		})
	})

	return r
}

func mustParseTemplates(baseDir string) *template.Template {
	funcs := template.FuncMap{
		"year": func() string { return time.Now().Format("2006") },
		"fmtDateTime": func(t time.Time) string {
			return t.Format("Mon, 02 Jan 2006 15:04")
		},
		"classes":  func() []string { return catalog.Classes },
		"programs": catalog.Programs,
	}

	p := template.New("").Funcs(funcs)
	p = template.Must(p.ParseGlob(filepath.Join(baseDir, "layouts", "*.tmpl")))
	p = template.Must(p.ParseGlob(filepath.Join(baseDir, "partials", "*.tmpl")))
	return p
}
