package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"inkwell/app/repositories"
	"inkwell/app/repositories/mock"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock {
	return &clock{t: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)}
}

func newTestGate(c *clock) (*Gate, *mock.Store) {
	store := mock.NewStore()
	return NewGate(store, DefaultOptions(), zerolog.Nop(), c.Now), store
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		ok       bool
	}{
		{"abc12345", true},
		{"ABCDEFG1", true},
		{"abc1234", false},
		{"abcdefgh", false},
		{"12345678", false},
		{"密码密码密码密码1", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrWeakPassword)
			}
		})
	}
}

func TestHashPassword(t *testing.T) {
	legacy, err := HashPassword(AlgorithmSHA256, "secret12", "salt")
	require.NoError(t, err)
	// sha256("secret12salt")
	assert.Len(t, legacy, 64)
	again, _ := HashPassword("", "secret12", "salt")
	assert.Equal(t, legacy, again)

	a, err := HashPassword(AlgorithmArgon2id, "secret12", "salt")
	require.NoError(t, err)
	assert.NotEqual(t, legacy, a)
	b, _ := HashPassword(AlgorithmArgon2id, "secret12", "other")
	assert.NotEqual(t, a, b)

	_, err = HashPassword("md5", "x", "y")
	assert.Error(t, err)

	salt, err := NewSalt()
	require.NoError(t, err)
	assert.Len(t, salt, 32)
}

func TestSetup(t *testing.T) {
	ctx := context.Background()
	gate, store := newTestGate(newClock())

	configured, err := gate.IsConfigured(ctx)
	require.NoError(t, err)
	assert.False(t, configured)

	_, err = gate.Login(ctx, "admin", "abc12345", false)
	assert.ErrorIs(t, err, ErrNotConfigured)

	assert.ErrorIs(t, gate.Setup(ctx, "  ", "abc12345", "abc12345"), ErrEmptyUsername)
	assert.ErrorIs(t, gate.Setup(ctx, "admin", "short1", "short1"), ErrWeakPassword)
	assert.ErrorIs(t, gate.Setup(ctx, "admin", "abc12345", "abc12346"), ErrPasswordMismatch)
	assert.Equal(t, 0, store.Puts)

	require.NoError(t, gate.Setup(ctx, "admin", "abc12345", "abc12345"))
	configured, err = gate.IsConfigured(ctx)
	require.NoError(t, err)
	assert.True(t, configured)

	var s Settings
	require.NoError(t, repositories.GetJSON(ctx, store, repositories.AuthSettingsKey, &s))
	assert.Equal(t, "admin", s.Username)
	assert.Equal(t, AlgorithmArgon2id, s.Algorithm)
	assert.NotContains(t, s.PasswordHash, "abc12345")
	assert.Len(t, s.Salt, 32)

	assert.ErrorIs(t, gate.Setup(ctx, "other", "abc12345", "abc12345"), ErrAlreadyConfigured)
}

func TestLoginAndSession(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	gate, _ := newTestGate(c)
	require.NoError(t, gate.Setup(ctx, "admin", "abc12345", "abc12345"))

	_, err := gate.CurrentSession(ctx)
	assert.ErrorIs(t, err, ErrNoSession)

	session, err := gate.Login(ctx, "admin", "abc12345", false)
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.True(t, c.t.Add(24*time.Hour).Equal(session.ExpiresAt()))

	current, err := gate.CurrentSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, session, current)

	_, err = gate.Verify(ctx, session.ID)
	assert.NoError(t, err)
	_, err = gate.Verify(ctx, "someone-else")
	assert.ErrorIs(t, err, ErrNoSession)

	c.Advance(24*time.Hour + time.Millisecond)
	_, err = gate.CurrentSession(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = gate.Verify(ctx, session.ID)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRememberSession(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	gate, _ := newTestGate(c)
	require.NoError(t, gate.Setup(ctx, "admin", "abc12345", "abc12345"))

	session, err := gate.Login(ctx, "admin", "abc12345", true)
	require.NoError(t, err)
	assert.True(t, session.Remember)

	c.Advance(29 * 24 * time.Hour)
	_, err = gate.CurrentSession(ctx)
	assert.NoError(t, err)

	require.NoError(t, gate.Logout(ctx))
	require.NoError(t, gate.Logout(ctx))
	_, err = gate.CurrentSession(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestLockout(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	gate, _ := newTestGate(c)
	require.NoError(t, gate.Setup(ctx, "admin", "abc12345", "abc12345"))

	for i := 0; i < 5; i++ {
		_, err := gate.Login(ctx, "admin", "wrong1234", false)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		c.Advance(time.Second)
	}

	_, err := gate.Login(ctx, "admin", "abc12345", false)
	var lockout *LockoutError
	require.ErrorAs(t, err, &lockout)
	assert.True(t, errors.Is(err, ErrLockedOut))
	assert.Equal(t, 15, lockout.Minutes())

	c.Advance(10 * time.Minute)
	_, err = gate.Login(ctx, "admin", "abc12345", false)
	require.ErrorAs(t, err, &lockout)
	assert.Equal(t, 5, lockout.Minutes())
	assert.Equal(t, "account locked, try again in 5 minutes", err.Error())

	c.Advance(5 * time.Minute)
	_, err = gate.Login(ctx, "admin", "abc12345", false)
	assert.NoError(t, err)
}

func TestSuccessfulLoginResetsAttempts(t *testing.T) {
	ctx := context.Background()
	gate, store := newTestGate(newClock())
	require.NoError(t, gate.Setup(ctx, "admin", "abc12345", "abc12345"))

	for i := 0; i < 4; i++ {
		_, err := gate.Login(ctx, "nobody", "abc12345", false)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	var s Settings
	require.NoError(t, repositories.GetJSON(ctx, store, repositories.AuthSettingsKey, &s))
	assert.Equal(t, 4, s.Lockouts["local"].Attempts)

	_, err := gate.Login(ctx, "admin", "abc12345", false)
	require.NoError(t, err)
	var after Settings
	require.NoError(t, repositories.GetJSON(ctx, store, repositories.AuthSettingsKey, &after))
	assert.Empty(t, after.Lockouts)

	for i := 0; i < 4; i++ {
		_, _ = gate.Login(ctx, "admin", "nope12345", false)
	}
	_, err = gate.Login(ctx, "admin", "abc12345", false)
	assert.NoError(t, err)
}

func TestLegacyHashVerifiesAndUpgrades(t *testing.T) {
	ctx := context.Background()
	gate, store := newTestGate(newClock())

	hash, err := HashPassword(AlgorithmSHA256, "abc12345", "00ff")
	require.NoError(t, err)
	require.NoError(t, repositories.PutJSON(ctx, store, repositories.AuthSettingsKey, Settings{
		Username:     "admin",
		PasswordHash: hash,
		Salt:         "00ff",
	}))

	_, err = gate.Login(ctx, "admin", "abc12345", false)
	require.NoError(t, err)

	var s Settings
	require.NoError(t, repositories.GetJSON(ctx, store, repositories.AuthSettingsKey, &s))
	assert.Equal(t, AlgorithmArgon2id, s.Algorithm)
	assert.NotEqual(t, hash, s.PasswordHash)

	_, err = gate.Login(ctx, "admin", "abc12345", false)
	assert.NoError(t, err)
}

func TestChangePasswordAndReset(t *testing.T) {
	ctx := context.Background()
	gate, _ := newTestGate(newClock())
	require.NoError(t, gate.Setup(ctx, "admin", "abc12345", "abc12345"))

	assert.ErrorIs(t, gate.ChangePassword(ctx, "wrong1234", "new12345", "new12345"), ErrInvalidCredentials)
	assert.ErrorIs(t, gate.ChangePassword(ctx, "abc12345", "weak", "weak"), ErrWeakPassword)
	assert.ErrorIs(t, gate.ChangePassword(ctx, "abc12345", "new12345", "new54321"), ErrPasswordMismatch)
	require.NoError(t, gate.ChangePassword(ctx, "abc12345", "new12345", "new12345"))

	_, err := gate.Login(ctx, "admin", "abc12345", false)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = gate.Login(ctx, "admin", "new12345", false)
	require.NoError(t, err)

	require.NoError(t, gate.Reset(ctx))
	configured, err := gate.IsConfigured(ctx)
	require.NoError(t, err)
	assert.False(t, configured)
	_, err = gate.CurrentSession(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestChangePasswordCountsTowardLockout(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	gate, store := newTestGate(c)
	require.NoError(t, gate.Setup(ctx, "admin", "abc12345", "abc12345"))

	for i := 0; i < 5; i++ {
		c.Advance(time.Second)
		assert.ErrorIs(t, gate.ChangePassword(ctx, "wrong1234", "new12345", "new12345"), ErrInvalidCredentials)
	}
	var s Settings
	require.NoError(t, repositories.GetJSON(ctx, store, repositories.AuthSettingsKey, &s))
	assert.Equal(t, 5, s.Lockouts["local"].Attempts)

	var lockout *LockoutError
	require.ErrorAs(t, gate.ChangePassword(ctx, "abc12345", "new12345", "new12345"), &lockout)
	_, err := gate.Login(ctx, "admin", "abc12345", false)
	require.ErrorAs(t, err, &lockout)

	c.Advance(15 * time.Minute)
	require.NoError(t, gate.ChangePassword(ctx, "abc12345", "new12345", "new12345"))
	var after Settings
	require.NoError(t, repositories.GetJSON(ctx, store, repositories.AuthSettingsKey, &after))
	assert.Empty(t, after.Lockouts)
}

func TestTokens(t *testing.T) {
	c := newClock()
	tokens, err := NewTokens("test-secret", c.Now)
	require.NoError(t, err)

	session := Session{
		ID:        "sid-1",
		Username:  "admin",
		LoginTime: c.t.UnixMilli(),
		Expires:   c.t.Add(time.Hour).UnixMilli(),
	}
	token, err := tokens.Issue(session)
	require.NoError(t, err)

	id, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", id)

	other, err := NewTokens("different", c.Now)
	require.NoError(t, err)
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = tokens.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrNoSession)

	c.Advance(2 * time.Hour)
	_, err = tokens.Parse(token)
	assert.ErrorIs(t, err, ErrNoSession)

	random, err := NewTokens("", nil)
	require.NoError(t, err)
	assert.Len(t, random.secret, 32)
}
