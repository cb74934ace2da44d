package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"inkwell/app/auth"
	"inkwell/app/repositories/mock"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	tests := []struct {
		name   string
		status int
		level  string
	}{
		{"ok", http.StatusOK, `"level":"info"`},
		{"client error", http.StatusNotFound, `"level":"warn"`},
		{"server error", http.StatusBadGateway, `"level":"error"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			handler := Logger(zerolog.New(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/test", nil))

			out := buf.String()
			assert.Contains(t, out, tt.level)
			assert.Contains(t, out, `"method":"GET"`)
			assert.Contains(t, out, `"path":"/test"`)
			assert.Contains(t, out, `"duration"`)
		})
	}
}

func TestLoggerImplicitStatus(t *testing.T) {
	var buf bytes.Buffer
	handler := Logger(zerolog.New(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello"))
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	assert.Contains(t, buf.String(), `"status":200`)
}

func TestRecoverer(t *testing.T) {
	var buf bytes.Buffer
	handler := Recoverer(zerolog.New(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal Server Error\n", w.Body.String())
	assert.Contains(t, buf.String(), "test panic")
	assert.Contains(t, buf.String(), "stack")
}

func TestContentTypeJSON(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		accept         string
		expectedHeader string
	}{
		{"API route", "/api/test", "", "application/json; charset=utf-8"},
		{"API root", "/api", "", "application/json; charset=utf-8"},
		{"Accept JSON", "/posts/1", "application/json", "application/json; charset=utf-8"},
		{"Non-API route", "/test", "", ""},
		{"Short path", "/", "", ""},
		{"Prefix lookalike", "/apiary", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := ContentTypeJSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedHeader, w.Header().Get("Content-Type"))
		})
	}
}

func TestMiddlewareChain(t *testing.T) {
	logger := zerolog.Nop()
	handler := Logger(logger)(Recoverer(logger)(ContentTypeJSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "panic") {
			panic("test panic")
		}
		w.WriteHeader(http.StatusOK)
	}))))

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedType   string
	}{
		{"Normal API request", "/api/test", http.StatusOK, "application/json; charset=utf-8"},
		{"Panic request", "/api/panic", http.StatusInternalServerError, "text/plain; charset=utf-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedType, w.Header().Get("Content-Type"))
		})
	}
}

func TestRequireSession(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	ctx := context.Background()

	gate := auth.NewGate(mock.NewStore(), auth.DefaultOptions(), zerolog.Nop(), clock)
	require.NoError(t, gate.Setup(ctx, "admin", "secret123", "secret123"))
	session, err := gate.Login(ctx, "admin", "secret123", false)
	require.NoError(t, err)

	tokens, err := auth.NewTokens("test-secret", clock)
	require.NoError(t, err)
	jar := auth.NewCookieJar(tokens, "sid", false)

	var denied error
	guard := RequireSession(gate, jar, func(w http.ResponseWriter, r *http.Request, err error) {
		denied = err
		w.WriteHeader(http.StatusUnauthorized)
	})
	handler := guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := SessionFrom(r.Context())
		require.True(t, ok)
		_, _ = w.Write([]byte(s.Username))
	}))

	rec := httptest.NewRecorder()
	_, err = jar.Set(rec, session)
	require.NoError(t, err)
	cookie := rec.Result().Cookies()[0]

	t.Run("valid session", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/admin", nil)
		req.AddCookie(cookie)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "admin", w.Body.String())
	})

	t.Run("no cookie", func(t *testing.T) {
		denied = nil
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/admin", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.True(t, errors.Is(denied, auth.ErrNoSession))
	})

	t.Run("stale session id", func(t *testing.T) {
		stale := session
		stale.ID = "another"
		rec := httptest.NewRecorder()
		_, err := jar.Set(rec, stale)
		require.NoError(t, err)

		denied = nil
		req := httptest.NewRequest("GET", "/admin", nil)
		req.AddCookie(rec.Result().Cookies()[0])
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.ErrorIs(t, denied, auth.ErrNoSession)
	})

	t.Run("after logout", func(t *testing.T) {
		require.NoError(t, gate.Logout(ctx))
		req := httptest.NewRequest("GET", "/admin", nil)
		req.AddCookie(cookie)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
