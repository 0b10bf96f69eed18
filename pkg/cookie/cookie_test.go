package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashokafoundation/website/pkg/cookie"
)

func TestSetAndGet(t *testing.T) {
	t.Parallel()
	m := cookie.New(cookie.WithSecure(true))

	rec := httptest.NewRecorder()
	m.Set(rec, "access_token", "tok-value", cookie.WithMaxAge(1800))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "access_token", c.Name)
	assert.Equal(t, "tok-value", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 1800, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	assert.Equal(t, "tok-value", m.Get(req, "access_token"))
	assert.Equal(t, "", m.Get(req, "missing"))
}

func TestDeleteMirrorsSetAttributes(t *testing.T) {
	t.Parallel()
	m := cookie.New()

	rec := httptest.NewRecorder()
	m.Delete(rec, "refresh_token", cookie.WithPath("/auth"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "refresh_token", c.Name)
	assert.Equal(t, "/auth", c.Path)
	assert.Equal(t, -1, c.MaxAge)
	assert.Empty(t, c.Value)
}

func TestFlashRoundTrip(t *testing.T) {
	t.Parallel()
	m := cookie.New()

	rec := httptest.NewRecorder()
	m.SetFlash(rec, "success", "Registration successful! Please login.")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])

	rec2 := httptest.NewRecorder()
	msg, ok := m.PopFlash(rec2, req, "success")
	require.True(t, ok)
	assert.Equal(t, "Registration successful! Please login.", msg)

	// PopFlash must also expire the cookie.
	deleted := rec2.Result().Cookies()
	require.Len(t, deleted, 1)
	assert.Equal(t, -1, deleted[0].MaxAge)

	// Absent flash reads as not-present.
	_, ok = m.PopFlash(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), "success")
	assert.False(t, ok)
}
