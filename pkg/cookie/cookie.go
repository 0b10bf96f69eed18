// Package cookie wraps http cookie handling with consistent attributes.
// Deletion reuses the exact attributes of the matching Set call, since a
// mismatched path on delete leaves the cookie alive in the browser.
package cookie

import (
	"encoding/base64"
	"net/http"
	"time"
)

// Options are the cookie attributes applied on Set and mirrored on Delete.
type Options struct {
	Path     string
	Domain   string
	MaxAge   int
	Secure   bool
	HttpOnly bool
	SameSite http.SameSite
}

// Option overrides a single attribute for one call or for the manager
// defaults.
type Option func(*Options)

func WithPath(path string) Option {
	return func(o *Options) { o.Path = path }
}

func WithDomain(domain string) Option {
	return func(o *Options) { o.Domain = domain }
}

// WithMaxAge sets the cookie lifetime in seconds.
func WithMaxAge(seconds int) Option {
	return func(o *Options) { o.MaxAge = seconds }
}

func WithSecure(secure bool) Option {
	return func(o *Options) { o.Secure = secure }
}

func WithSameSite(mode http.SameSite) Option {
	return func(o *Options) { o.SameSite = mode }
}

// Manager applies shared defaults to every cookie it touches.
type Manager struct {
	defaults Options
}

// New creates a Manager. Defaults are HttpOnly, path "/", SameSite=Strict;
// options adjust them.
func New(opts ...Option) *Manager {
	defaults := Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
	for _, opt := range opts {
		opt(&defaults)
	}
	return &Manager{defaults: defaults}
}

func (m *Manager) apply(opts []Option) Options {
	options := m.defaults
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// Set writes a cookie with the manager defaults plus per-call overrides.
func (m *Manager) Set(w http.ResponseWriter, name, value string, opts ...Option) {
	options := m.apply(opts)
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     options.Path,
		Domain:   options.Domain,
		MaxAge:   options.MaxAge,
		Secure:   options.Secure,
		HttpOnly: options.HttpOnly,
		SameSite: options.SameSite,
	})
}

// Get returns the named cookie's value, or "" when absent.
func (m *Manager) Get(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Delete expires a cookie. Callers must pass the same path (and other
// attribute) options they used on Set.
func (m *Manager) Delete(w http.ResponseWriter, name string, opts ...Option) {
	options := m.apply(opts)
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     options.Path,
		Domain:   options.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   options.Secure,
		HttpOnly: options.HttpOnly,
		SameSite: options.SameSite,
	})
}

const flashPrefix = "__flash_"

// SetFlash stores a one-shot message read and removed by the next page
// render. The value is base64-encoded to stay cookie-safe.
func (m *Manager) SetFlash(w http.ResponseWriter, key, value string) {
	encoded := base64.RawURLEncoding.EncodeToString([]byte(value))
	m.Set(w, flashPrefix+key, encoded)
}

// PopFlash reads and deletes a flash message. The boolean reports whether
// a message was present and decodable.
func (m *Manager) PopFlash(w http.ResponseWriter, r *http.Request, key string) (string, bool) {
	name := flashPrefix + key
	value := m.Get(r, name)
	if value == "" {
		return "", false
	}

	m.Delete(w, name)

	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return "", false
	}
	return string(decoded), true
}
