package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieJar(t *testing.T) {
	c := newClock()
	tokens, err := NewTokens("secret", c.Now)
	require.NoError(t, err)
	jar := NewCookieJar(tokens, "", false)
	assert.Equal(t, "inkwell_session", jar.Name())

	session := Session{ID: "sid-1", Username: "admin", LoginTime: c.t.UnixMilli(), Expires: c.t.Add(DefaultOptions().SessionTTL).UnixMilli()}

	rec := httptest.NewRecorder()
	token, err := jar.Set(rec, session)
	require.NoError(t, err)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, token, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Expires.IsZero(), "browser-session cookie")

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.AddCookie(cookies[0])
		id, err := jar.SessionID(req)
		require.NoError(t, err)
		assert.Equal(t, "sid-1", id)
	})

	t.Run("bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/posts", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		id, err := jar.SessionID(req)
		require.NoError(t, err)
		assert.Equal(t, "sid-1", id)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := jar.SessionID(httptest.NewRequest(http.MethodGet, "/admin", nil))
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("tampered", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.AddCookie(&http.Cookie{Name: jar.Name(), Value: token + "x"})
		_, err := jar.SessionID(req)
		assert.ErrorIs(t, err, ErrNoSession)
	})

	remembered := session
	remembered.Remember = true
	rec = httptest.NewRecorder()
	_, err = jar.Set(rec, remembered)
	require.NoError(t, err)
	assert.False(t, rec.Result().Cookies()[0].Expires.IsZero())

	rec = httptest.NewRecorder()
	jar.Clear(rec)
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, "", cleared[0].Value)
	assert.Equal(t, -1, cleared[0].MaxAge)
}
