package webapp

import (
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ashokafoundation/website/internal/auth"
)

// Router assembles the full site. The public pages and auth flows resolve
// the session permissively; /dashboard requires one and sends anonymous
// visitors to the login form with a return path.
func Router(h *Handlers, health http.HandlerFunc, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", health)

	static, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Group(func(r chi.Router) {
		r.Use(h.withUser)

		r.Get("/", h.Home)
		r.Get("/about", h.About)
		r.Get("/contact", h.Contact)

		r.Route("/auth", func(r chi.Router) {
			r.Get("/login", h.LoginPage)
			r.Post("/login", h.Login)
			r.Get("/register", h.RegisterPage)
			r.Post("/register", h.Register)
			r.Get("/logout", h.Logout)
			r.Post("/refresh-token", h.RefreshToken)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Use(h.sessions.RequireUser(redirectToLogin))
			r.Get("/", h.Dashboard)
		})

		r.NotFound(h.NotFound)
	})

	return r
}

// redirectToLogin sends an unauthenticated browser to the login form and
// preserves where it was going. Non-HTML clients get a plain 401.
func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	if auth.WantsJSON(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}
	next := url.QueryEscape(r.URL.RequestURI())
	http.Redirect(w, r, "/auth/login?next="+next, http.StatusSeeOther)
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.InfoContext(r.Context(), "request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
