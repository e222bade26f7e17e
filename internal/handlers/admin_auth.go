package handlers

import (
	"html/template"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/shikho/dynqr/internal/response"
)

const (
	adminCookieName = "admin_session"
	adminSessionTTL = 24 * time.Hour
)

// adminSessions holds live admin session tokens in memory; a restart logs
// everyone out.
type adminSessions struct {
	mu     sync.Mutex
	tokens map[string]time.Time
}

var sessions = &adminSessions{tokens: map[string]time.Time{}}

func (s *adminSessions) issue() string {
	tok := uuid.NewString()
	s.mu.Lock()
	s.tokens[tok] = time.Now().Add(adminSessionTTL)
	s.mu.Unlock()
	return tok
}

func (s *adminSessions) valid(tok string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.tokens[tok]
	if ok && time.Now().After(exp) {
		delete(s.tokens, tok)
		return false
	}
	return ok
}

func (s *adminSessions) revoke(tok string) {
	s.mu.Lock()
	delete(s.tokens, tok)
	s.mu.Unlock()
}

// RequireAdmin is middleware: blocks access unless logged in. Pages redirect
// to the login form; the JSON API answers 401.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(adminCookieName)
		if err != nil || !sessions.valid(c.Value) {
			if strings.HasPrefix(r.URL.Path, "/admin/api/") {
				response.Fail(w, r, http.StatusUnauthorized, response.ErrUnauthorized)
				return
			}
			http.Redirect(w, r, "/admin/login?next="+r.URL.RequestURI(), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GET /admin/login
func (h *Handlers) AdminLoginForm(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := t.Clone()
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if _, err := view.ParseFiles(filepath.Join(h.Cfg.TemplatesDir, "pages/admin/login.tmpl")); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}

		_ = view.ExecuteTemplate(w, "admin/login.tmpl", map[string]any{
			"Title": "Admin • Login",
			"Next":  r.URL.Query().Get("next"),
			"Flash": MakeFlash(r, "", ""),
		})
	}
}

// POST /admin/login
func (h *Handlers) AdminLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	pw := r.FormValue("password")
	next := r.FormValue("next")
	if bcrypt.CompareHashAndPassword(h.adminHash, []byte(pw)) != nil {
		h.Log.Warn().Str("ip", r.RemoteAddr).Msg("admin login failed")
		http.Redirect(w, r, "/admin/login?error=bad_password", http.StatusSeeOther)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     adminCookieName,
		Value:    sessions.issue(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(adminSessionTTL),
	})
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		next = "/admin/qrcodes"
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// POST /admin/logout
func AdminLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(adminCookieName); err == nil {
		sessions.revoke(c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     adminCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Unix(0, 0),
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
