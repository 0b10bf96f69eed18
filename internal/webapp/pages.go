package webapp

import (
	"log/slog"
	"net/http"

	"github.com/ashokafoundation/website/internal/auth"
)

// withUser resolves the session for page rendering. A bad or stale cookie
// just means an anonymous page; only unexpected store errors surface.
func (h *Handlers) withUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := h.sessions.ResolveUser(r)
		if err != nil {
			h.log.ErrorContext(r.Context(), "resolve session", slog.Any("error", err))
			h.rnd.render(w, r, http.StatusInternalServerError, "500", viewData{Title: "Server Error"})
			return
		}
		if u != nil {
			r = r.WithContext(auth.UserToContext(r.Context(), u))
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handlers) popFlash(w http.ResponseWriter, r *http.Request) *flash {
	raw, ok := h.cookies.PopFlash(w, r, flashKey)
	if !ok {
		return nil
	}
	return decodeFlash(raw)
}

func (h *Handlers) setFlash(w http.ResponseWriter, level, message string) {
	h.cookies.SetFlash(w, flashKey, encodeFlash(level, message))
}

func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	h.rnd.render(w, r, http.StatusOK, "home", viewData{
		Title: "Home",
		User:  auth.UserFromContext(r.Context()),
		Flash: h.popFlash(w, r),
	})
}

func (h *Handlers) About(w http.ResponseWriter, r *http.Request) {
	h.rnd.render(w, r, http.StatusOK, "about", viewData{
		Title: "About Us",
		User:  auth.UserFromContext(r.Context()),
		Flash: h.popFlash(w, r),
	})
}

func (h *Handlers) Contact(w http.ResponseWriter, r *http.Request) {
	h.rnd.render(w, r, http.StatusOK, "contact", viewData{
		Title: "Contact",
		User:  auth.UserFromContext(r.Context()),
		Flash: h.popFlash(w, r),
	})
}

// Dashboard runs behind RequireUser, so the context always carries a user.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.rnd.render(w, r, http.StatusOK, "dashboard", viewData{
		Title: "My Dashboard",
		User:  auth.UserFromContext(r.Context()),
		Flash: h.popFlash(w, r),
	})
}

func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.rnd.render(w, r, http.StatusNotFound, "404", viewData{
		Title: "Page Not Found",
		User:  auth.UserFromContext(r.Context()),
	})
}
