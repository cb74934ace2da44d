package middleware

import (
	"context"
	"net/http"

	"inkwell/app/auth"
)

type keyType string

const sessionKey keyType = "session"

// WithSession stores the authenticated session in ctx.
func WithSession(ctx context.Context, s auth.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFrom returns the session stored by RequireSession.
func SessionFrom(ctx context.Context) (auth.Session, bool) {
	s, ok := ctx.Value(sessionKey).(auth.Session)
	return s, ok
}

// DenyFunc answers a request that has no valid session.
type DenyFunc func(w http.ResponseWriter, r *http.Request, err error)

// RequireSession lets a request through only when its token names the
// stored, unexpired session.
func RequireSession(gate *auth.Gate, jar *auth.CookieJar, deny DenyFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := jar.SessionID(r)
			if err != nil {
				deny(w, r, err)
				return
			}
			session, err := gate.Verify(r.Context(), id)
			if err != nil {
				deny(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}
