package webapp

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ashokafoundation/website/internal/auth"
	"github.com/ashokafoundation/website/internal/mailer"
	"github.com/ashokafoundation/website/internal/user"
	"github.com/ashokafoundation/website/pkg/validator"
)

const dashboardPath = "/dashboard"

// safeNext keeps post-login redirects on this site. Only relative paths
// pass; anything scheme-like or protocol-relative falls back to the
// dashboard.
func safeNext(next string) string {
	if next == "" ||
		!strings.HasPrefix(next, "/") ||
		strings.HasPrefix(next, "//") ||
		strings.Contains(next, "\\") {
		return dashboardPath
	}
	return next
}

func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	if auth.UserFromContext(r.Context()) != nil {
		http.Redirect(w, r, dashboardPath, http.StatusFound)
		return
	}
	h.rnd.render(w, r, http.StatusOK, "login", viewData{
		Title: "Login",
		Flash: h.popFlash(w, r),
		Next:  r.URL.Query().Get("next"),
	})
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form data", http.StatusBadRequest)
		return
	}
	identifier := r.PostFormValue("username_or_email")
	password := r.PostFormValue("password")

	_, pair, err := h.svc.Login(r.Context(), identifier, password)
	if err != nil {
		status, message := loginFailure(err)
		if status == http.StatusInternalServerError {
			h.log.ErrorContext(r.Context(), "login", slog.Any("error", err))
		}
		h.rnd.render(w, r, status, "login", viewData{
			Title: "Login",
			Error: message,
			Form:  map[string]string{"username_or_email": identifier},
			Next:  r.URL.Query().Get("next"),
		})
		return
	}

	h.sessions.IssueCookies(w, pair)
	h.setFlash(w, "success", "Login successful!")
	http.Redirect(w, r, safeNext(r.URL.Query().Get("next")), http.StatusSeeOther)
}

func loginFailure(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Incorrect username/email or password."
	case errors.Is(err, auth.ErrAccountInactive):
		return http.StatusForbidden, "This account has been deactivated. Please contact support."
	default:
		return http.StatusInternalServerError, "Something went wrong. Please try again."
	}
}

func (h *Handlers) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if auth.UserFromContext(r.Context()) != nil {
		http.Redirect(w, r, dashboardPath, http.StatusFound)
		return
	}
	h.rnd.render(w, r, http.StatusOK, "register", viewData{
		Title: "Register",
		Flash: h.popFlash(w, r),
	})
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form data", http.StatusBadRequest)
		return
	}

	input := auth.RegisterInput{
		Username: r.PostFormValue("username"),
		Email:    r.PostFormValue("email"),
		FullName: r.PostFormValue("full_name"),
		Password: r.PostFormValue("password"),
	}
	// Password fields never repopulate.
	form := map[string]string{
		"username":  input.Username,
		"email":     input.Email,
		"full_name": input.FullName,
	}

	if input.Password != r.PostFormValue("confirm_password") {
		h.rnd.render(w, r, http.StatusBadRequest, "register", viewData{
			Title:  "Register",
			Form:   form,
			Errors: map[string]string{"confirm_password": "Passwords do not match."},
		})
		return
	}

	created, err := h.svc.Register(r.Context(), input)
	if err != nil {
		status, fieldErrors, message := registerFailure(err)
		if status == http.StatusInternalServerError {
			h.log.ErrorContext(r.Context(), "register", slog.Any("error", err))
		}
		h.rnd.render(w, r, status, "register", viewData{
			Title:  "Register",
			Form:   form,
			Errors: fieldErrors,
			Error:  message,
		})
		return
	}

	h.enqueueWelcome(r, created)
	h.setFlash(w, "success", "Registration successful! Please login.")
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

func registerFailure(err error) (int, map[string]string, string) {
	if ve := validator.Extract(err); ve != nil {
		return http.StatusBadRequest, ve.FieldMap(), ""
	}

	var dup *user.DuplicateError
	if errors.As(err, &dup) {
		msg := "This " + dup.Field + " is already registered."
		return http.StatusBadRequest, map[string]string{dup.Field: msg}, ""
	}

	return http.StatusInternalServerError, nil, "Something went wrong. Please try again."
}

// enqueueWelcome hands the welcome email to the background worker. A broker
// outage must not fail the registration, so errors only log.
func (h *Handlers) enqueueWelcome(r *http.Request, u *user.User) {
	if h.enqueuer == nil {
		return
	}
	err := h.enqueuer.Enqueue(r.Context(), mailer.WelcomeEmail{
		UserID:   u.ID,
		Email:    u.Email,
		Username: u.Username,
	})
	if err != nil {
		h.log.ErrorContext(r.Context(), "enqueue welcome email",
			slog.Int64("user_id", u.ID),
			slog.Any("error", err),
		)
	}
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearCookies(w)
	h.setFlash(w, "info", "You have been logged out.")
	http.Redirect(w, r, "/", http.StatusFound)
}

// RefreshToken rotates the token pair from the refresh cookie. This is a
// JSON endpoint called by the frontend; any auth failure clears both
// cookies so the client stops retrying with dead credentials.
func (h *Handlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	pair, err := h.svc.Refresh(r.Context(), h.sessions.RefreshTokenFromRequest(r))
	if err != nil {
		status := http.StatusUnauthorized
		if !isAuthFailure(err) {
			status = http.StatusInternalServerError
			h.log.ErrorContext(r.Context(), "refresh token", slog.Any("error", err))
		}
		h.sessions.ClearCookies(w)
		writeJSON(w, status, map[string]string{"error": "could not refresh session"})
		return
	}

	h.sessions.IssueCookies(w, pair)
	writeJSON(w, http.StatusOK, pair)
}

func isAuthFailure(err error) bool {
	return errors.Is(err, auth.ErrMissingToken) ||
		errors.Is(err, auth.ErrInvalidToken) ||
		errors.Is(err, auth.ErrWrongTokenKind) ||
		errors.Is(err, auth.ErrUserMismatch) ||
		errors.Is(err, auth.ErrAccountInactive)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
