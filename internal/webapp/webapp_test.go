package webapp_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashokafoundation/website/internal/auth"
	"github.com/ashokafoundation/website/internal/user"
	"github.com/ashokafoundation/website/internal/webapp"
	"github.com/ashokafoundation/website/pkg/cookie"
	"github.com/ashokafoundation/website/pkg/validator"
)

// memDirectory is an in-memory Directory for handler tests.
type memDirectory struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*user.User
}

func newMemDirectory() *memDirectory {
	return &memDirectory{users: make(map[int64]*user.User)}
}

func (d *memDirectory) FindByID(_ context.Context, id int64) (*user.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if u, ok := d.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, user.ErrNotFound
}

func (d *memDirectory) FindByUsername(_ context.Context, username string) (*user.User, error) {
	return d.find(func(u *user.User) bool { return u.Username == username })
}

func (d *memDirectory) FindByEmail(_ context.Context, email string) (*user.User, error) {
	return d.find(func(u *user.User) bool { return u.Email == email })
}

func (d *memDirectory) FindByIdentifier(_ context.Context, identifier string) (*user.User, error) {
	return d.find(func(u *user.User) bool {
		return u.Username == identifier || u.Email == identifier
	})
}

func (d *memDirectory) find(match func(*user.User) bool) (*user.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, u := range d.users {
		if match(u) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, user.ErrNotFound
}

func (d *memDirectory) Create(_ context.Context, u *user.User) (*user.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, existing := range d.users {
		if existing.Username == u.Username {
			return nil, &user.DuplicateError{Field: "username"}
		}
		if existing.Email == u.Email {
			return nil, &user.DuplicateError{Field: "email"}
		}
	}
	d.nextID++
	stored := *u
	stored.ID = d.nextID
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	d.users[stored.ID] = &stored
	clone := stored
	return &clone, nil
}

func (d *memDirectory) SetLastLogin(_ context.Context, id int64, at time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if u, ok := d.users[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

type site struct {
	handler http.Handler
	svc     *auth.Service
	dir     *memDirectory
}

func newSite(t *testing.T) *site {
	t.Helper()

	dir := newMemDirectory()
	cfg := auth.Config{
		SigningSecret:   "test-secret-key-at-least-32-chars!!",
		AccessTokenTTL:  30 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		BcryptCost:      4,
	}
	tokens, err := auth.NewTokenCodec(cfg)
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := auth.NewService(dir, tokens, validator.DefaultPasswordPolicy(), cfg, log)

	cookies := cookie.New(cookie.WithSecure(false))
	sessions := auth.NewSessions(cookies, tokens, dir)

	handlers, err := webapp.NewHandlers(svc, sessions, cookies, nil, log)
	require.NoError(t, err)

	health := webapp.Health(log, map[string]webapp.Pinger{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return nil },
	})

	return &site{
		handler: webapp.Router(handlers, health, log),
		svc:     svc,
		dir:     dir,
	}
}

func (s *site) register(t *testing.T) *user.User {
	t.Helper()
	u, err := s.svc.Register(context.Background(), auth.RegisterInput{
		Username: "johndoe",
		Email:    "john@example.com",
		FullName: "John Doe",
		Password: "VeryStr0ngP@ss!1",
	})
	require.NoError(t, err)
	return u
}

// login performs the form POST and returns the issued cookies.
func (s *site) login(t *testing.T) []*http.Cookie {
	t.Helper()
	rec := postForm(s.handler, "/auth/login", url.Values{
		"username_or_email": {"johndoe"},
		"password":          {"VeryStr0ngP@ss!1"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	return rec.Result().Cookies()
}

func postForm(h http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func get(h http.Handler, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestPublicPages(t *testing.T) {
	t.Parallel()
	s := newSite(t)

	for _, path := range []string{"/", "/about", "/contact"} {
		rec := get(s.handler, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "The Ashoka Buddhist Foundation", path)
	}
}

func TestStaticAssets(t *testing.T) {
	t.Parallel()
	s := newSite(t)

	rec := get(s.handler, "/static/css/main.css")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(s.handler, "/static/js/main.js")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNotFoundPage(t *testing.T) {
	t.Parallel()
	s := newSite(t)

	rec := get(s.handler, "/no-such-page")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page Not Found")
}

func TestRegisterFlow(t *testing.T) {
	t.Parallel()

	form := func() url.Values {
		return url.Values{
			"username":         {"johndoe"},
			"email":            {"john@example.com"},
			"full_name":        {"John Doe"},
			"password":         {"VeryStr0ngP@ss!1"},
			"confirm_password": {"VeryStr0ngP@ss!1"},
		}
	}

	t.Run("successful registration redirects to login", func(t *testing.T) {
		s := newSite(t)
		rec := postForm(s.handler, "/auth/register", form())
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/auth/login", rec.Header().Get("Location"))

		_, err := s.dir.FindByUsername(context.Background(), "johndoe")
		require.NoError(t, err)
	})

	t.Run("full name may be left blank", func(t *testing.T) {
		s := newSite(t)
		f := form()
		f.Set("full_name", "")
		rec := postForm(s.handler, "/auth/register", f)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/auth/login", rec.Header().Get("Location"))

		stored, err := s.dir.FindByUsername(context.Background(), "johndoe")
		require.NoError(t, err)
		assert.Empty(t, stored.FullName)
	})

	t.Run("password mismatch re-renders with a field error", func(t *testing.T) {
		s := newSite(t)
		f := form()
		f.Set("confirm_password", "different")
		rec := postForm(s.handler, "/auth/register", f)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Passwords do not match.")
		// Safe fields repopulate, passwords never do.
		assert.Contains(t, rec.Body.String(), `value="johndoe"`)
		assert.NotContains(t, rec.Body.String(), "VeryStr0ngP@ss!1")
	})

	t.Run("validation failures are field-scoped", func(t *testing.T) {
		s := newSite(t)
		f := form()
		f.Set("email", "not-an-email")
		f.Set("password", "short")
		f.Set("confirm_password", "short")
		rec := postForm(s.handler, "/auth/register", f)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "field-error")
	})

	t.Run("duplicate username re-renders the form", func(t *testing.T) {
		s := newSite(t)
		s.register(t)

		f := form()
		f.Set("email", "other@example.com")
		rec := postForm(s.handler, "/auth/register", f)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "already registered")
		assert.Contains(t, rec.Body.String(), `value="other@example.com"`)
	})
}

func TestLoginFlow(t *testing.T) {
	t.Parallel()

	t.Run("successful login sets both cookies", func(t *testing.T) {
		s := newSite(t)
		s.register(t)

		rec := postForm(s.handler, "/auth/login", url.Values{
			"username_or_email": {"johndoe"},
			"password":          {"VeryStr0ngP@ss!1"},
		})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

		cookies := rec.Result().Cookies()
		access := cookieByName(cookies, auth.AccessTokenCookie)
		refresh := cookieByName(cookies, auth.RefreshTokenCookie)
		require.NotNil(t, access)
		require.NotNil(t, refresh)
		assert.NotEmpty(t, access.Value)
		assert.Equal(t, "/auth", refresh.Path)
	})

	t.Run("next parameter redirects within the site", func(t *testing.T) {
		s := newSite(t)
		s.register(t)

		rec := postForm(s.handler, "/auth/login?next=/about", url.Values{
			"username_or_email": {"johndoe"},
			"password":          {"VeryStr0ngP@ss!1"},
		})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/about", rec.Header().Get("Location"))
	})

	t.Run("offsite next parameter is rejected", func(t *testing.T) {
		s := newSite(t)
		s.register(t)

		for _, next := range []string{"//evil.example.com", "https://evil.example.com", `/\evil`} {
			rec := postForm(s.handler, "/auth/login?next="+url.QueryEscape(next), url.Values{
				"username_or_email": {"johndoe"},
				"password":          {"VeryStr0ngP@ss!1"},
			})
			assert.Equal(t, "/dashboard", rec.Header().Get("Location"), next)
		}
	})

	t.Run("bad credentials re-render the form with 401", func(t *testing.T) {
		s := newSite(t)
		s.register(t)

		rec := postForm(s.handler, "/auth/login", url.Values{
			"username_or_email": {"johndoe"},
			"password":          {"wrong-password!"},
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Incorrect username/email or password.")
		assert.Contains(t, rec.Body.String(), `value="johndoe"`)
		assert.Empty(t, cookieByName(rec.Result().Cookies(), auth.AccessTokenCookie))
	})

	t.Run("login page redirects authenticated users", func(t *testing.T) {
		s := newSite(t)
		s.register(t)
		cookies := s.login(t)

		rec := get(s.handler, "/auth/login", cookieByName(cookies, auth.AccessTokenCookie))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	})
}

func TestDashboardAccess(t *testing.T) {
	t.Parallel()

	t.Run("anonymous visitors are sent to login with a return path", func(t *testing.T) {
		s := newSite(t)
		rec := get(s.handler, "/dashboard")
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Contains(t, rec.Header().Get("Location"), "/auth/login?next=")
	})

	t.Run("authenticated users see their profile", func(t *testing.T) {
		s := newSite(t)
		s.register(t)
		cookies := s.login(t)

		rec := get(s.handler, "/dashboard", cookieByName(cookies, auth.AccessTokenCookie))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "My Dashboard")
		assert.Contains(t, rec.Body.String(), "john@example.com")
	})

	t.Run("a refresh token is not an access pass", func(t *testing.T) {
		s := newSite(t)
		s.register(t)
		cookies := s.login(t)

		refresh := cookieByName(cookies, auth.RefreshTokenCookie)
		require.NotNil(t, refresh)
		rec := get(s.handler, "/dashboard", &http.Cookie{
			Name:  auth.AccessTokenCookie,
			Value: refresh.Value,
		})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Contains(t, rec.Header().Get("Location"), "/auth/login")
	})
}

func TestRefreshEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("valid refresh cookie rotates the pair", func(t *testing.T) {
		s := newSite(t)
		s.register(t)
		cookies := s.login(t)

		r := httptest.NewRequest(http.MethodPost, "/auth/refresh-token", nil)
		r.AddCookie(cookieByName(cookies, auth.RefreshTokenCookie))
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, r)

		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
			TokenType    string `json:"token_type"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.NotEmpty(t, body.AccessToken)
		assert.NotEmpty(t, body.RefreshToken)
		assert.Equal(t, "bearer", body.TokenType)

		issued := rec.Result().Cookies()
		assert.NotNil(t, cookieByName(issued, auth.AccessTokenCookie))
		assert.NotNil(t, cookieByName(issued, auth.RefreshTokenCookie))
	})

	t.Run("missing cookie clears the session with 401", func(t *testing.T) {
		s := newSite(t)

		r := httptest.NewRequest(http.MethodPost, "/auth/refresh-token", nil)
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, r)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

		for _, c := range rec.Result().Cookies() {
			if c.Name == auth.AccessTokenCookie || c.Name == auth.RefreshTokenCookie {
				assert.Empty(t, c.Value)
				assert.Less(t, c.MaxAge, 0)
			}
		}
	})

	t.Run("access token in the refresh cookie is rejected", func(t *testing.T) {
		s := newSite(t)
		s.register(t)
		cookies := s.login(t)

		r := httptest.NewRequest(http.MethodPost, "/auth/refresh-token", nil)
		r.AddCookie(&http.Cookie{
			Name:  auth.RefreshTokenCookie,
			Value: cookieByName(cookies, auth.AccessTokenCookie).Value,
		})
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()

	s := newSite(t)
	s.register(t)
	cookies := s.login(t)

	rec := get(s.handler, "/auth/logout", cookieByName(cookies, auth.AccessTokenCookie))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	cleared := rec.Result().Cookies()
	access := cookieByName(cleared, auth.AccessTokenCookie)
	require.NotNil(t, access)
	assert.Empty(t, access.Value)
	assert.Less(t, access.MaxAge, 0)
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("healthy dependencies", func(t *testing.T) {
		s := newSite(t)
		rec := get(s.handler, "/health")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	})

	t.Run("failing probe reports degraded", func(t *testing.T) {
		log := slog.New(slog.NewTextHandler(io.Discard, nil))
		health := webapp.Health(log, map[string]webapp.Pinger{
			"postgres": func(context.Context) error { return context.DeadlineExceeded },
		})
		rec := httptest.NewRecorder()
		health.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), `"postgres":"unavailable"`)
	})
}
