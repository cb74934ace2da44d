package auth

import (
	"net/http"
	"strings"
	"time"
)

// CookieJar carries session tokens in a cookie, or in a bearer
// Authorization header for API clients.
type CookieJar struct {
	tokens *Tokens
	name   string
	secure bool
}

func NewCookieJar(tokens *Tokens, name string, secure bool) *CookieJar {
	if name == "" {
		name = "inkwell_session"
	}
	return &CookieJar{tokens: tokens, name: name, secure: secure}
}

// Name is the cookie name.
func (c *CookieJar) Name() string {
	return c.name
}

// Set writes a cookie for s. It returns the token so JSON clients can keep
// it as a bearer token.
func (c *CookieJar) Set(w http.ResponseWriter, s Session) (string, error) {
	token, err := c.tokens.Issue(s)
	if err != nil {
		return "", err
	}
	cookie := &http.Cookie{
		Name:     c.name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
	// Sessions that are not remembered end with the browser.
	if s.Remember {
		cookie.Expires = s.ExpiresAt()
	}
	http.SetCookie(w, cookie)
	return token, nil
}

// Clear expires the cookie.
func (c *CookieJar) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

// SessionID returns the session id named by the request's token.
func (c *CookieJar) SessionID(r *http.Request) (string, error) {
	token := ""
	if cookie, err := r.Cookie(c.name); err == nil {
		token = cookie.Value
	}
	if token == "" {
		if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
			token = strings.TrimPrefix(h, "Bearer ")
		}
	}
	if token == "" {
		return "", ErrNoSession
	}
	return c.tokens.Parse(token)
}
