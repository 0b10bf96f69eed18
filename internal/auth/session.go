package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ashokafoundation/website/internal/user"
	"github.com/ashokafoundation/website/pkg/cookie"
	"github.com/ashokafoundation/website/pkg/jwt"
)

const (
	// AccessTokenCookie rides on every request.
	AccessTokenCookie = "access_token"
	// RefreshTokenCookie is scoped to the auth routes so it never travels
	// with ordinary page loads.
	RefreshTokenCookie = "refresh_token"
	refreshCookiePath  = "/auth"
)

type ctxKey struct{}

// UserToContext attaches the resolved user for downstream handlers.
func UserToContext(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// UserFromContext returns the request's authenticated user, or nil.
func UserFromContext(ctx context.Context) *user.User {
	u, _ := ctx.Value(ctxKey{}).(*user.User)
	return u
}

// Sessions is the boundary between cookies and authenticated identity. It
// reads inbound cookies into a resolved user and writes issued token pairs
// back out as cookies.
type Sessions struct {
	cookies   *cookie.Manager
	tokens    *TokenCodec
	directory Directory
}

func NewSessions(cookies *cookie.Manager, tokens *TokenCodec, directory Directory) *Sessions {
	return &Sessions{
		cookies:   cookies,
		tokens:    tokens,
		directory: directory,
	}
}

// ResolveUser resolves the access-token cookie into a user. Page loads are
// permissive: an absent, malformed, expired or wrong-kind cookie all read
// as anonymous rather than an error, so a stale session degrades to
// logged-out instead of blocking public pages. The refresh endpoint is the
// strict path; it goes through Service.Refresh instead.
func (s *Sessions) ResolveUser(r *http.Request) (*user.User, error) {
	token := s.cookies.Get(r, AccessTokenCookie)
	if token == "" {
		return nil, nil
	}

	claims, err := s.tokens.Decode(token)
	if err != nil {
		return nil, nil
	}
	if claims.Kind != jwt.KindAccess {
		return nil, nil
	}

	u, err := s.directory.FindByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	// A token minted before a rename or deactivation no longer counts.
	if u.Username != claims.Subject || !u.IsActive {
		return nil, nil
	}
	return u, nil
}

// RequireUser guards a route: the resolved active user is placed on the
// request context, anonymous requests are turned away. HTML clients are
// redirected to the login page with a next parameter; API clients get a
// JSON 401.
func (s *Sessions) RequireUser(onDenied func(w http.ResponseWriter, r *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := s.ResolveUser(r)
			if err != nil {
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			if u == nil {
				onDenied(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(UserToContext(r.Context(), u)))
		})
	}
}

// WantsJSON reports whether the client prefers a JSON error response over
// an HTML redirect, based on the declared acceptable content type.
func WantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

// IssueCookies writes the token pair: the access cookie on the site root
// with the access TTL, the refresh cookie restricted to the auth routes
// with the refresh TTL. HttpOnly, SameSite and Secure come from the
// manager defaults configured at startup.
func (s *Sessions) IssueCookies(w http.ResponseWriter, pair TokenPair) {
	s.cookies.Set(w, AccessTokenCookie, pair.AccessToken,
		cookie.WithMaxAge(int(s.tokens.AccessTTL().Seconds())),
	)
	s.cookies.Set(w, RefreshTokenCookie, pair.RefreshToken,
		cookie.WithPath(refreshCookiePath),
		cookie.WithMaxAge(int(s.tokens.RefreshTTL().Seconds())),
	)
}

// ClearCookies deletes both cookies with the same attributes they were set
// with; the refresh cookie's restricted path has to be repeated here or
// the browser keeps it.
func (s *Sessions) ClearCookies(w http.ResponseWriter) {
	s.cookies.Delete(w, AccessTokenCookie)
	s.cookies.Delete(w, RefreshTokenCookie, cookie.WithPath(refreshCookiePath))
}

// RefreshTokenFromRequest reads the refresh cookie, empty when absent.
func (s *Sessions) RefreshTokenFromRequest(r *http.Request) string {
	return s.cookies.Get(r, RefreshTokenCookie)
}
