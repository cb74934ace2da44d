package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Tokens signs and checks session cookies as HS256 JWTs.
type Tokens struct {
	secret []byte
	now    func() time.Time
}

// NewTokens returns a signer for secret. An empty secret gets a random key,
// so cookies do not survive a restart.
func NewTokens(secret string, now func() time.Time) (*Tokens, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generating session key: %w", err)
		}
	}
	if now == nil {
		now = time.Now
	}
	return &Tokens{secret: key, now: now}, nil
}

// Issue returns a token naming the session's user and id.
func (t *Tokens) Issue(s Session) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   s.Username,
		ID:        s.ID,
		IssuedAt:  jwt.NewNumericDate(time.UnixMilli(s.LoginTime)),
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt()),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature and expiry and returns the session id.
func (t *Tokens) Parse(token string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return "", errors.Join(ErrNoSession, err)
	}
	if claims.ID == "" {
		return "", ErrNoSession
	}
	return claims.ID, nil
}
