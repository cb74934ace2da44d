package auth

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"inkwell/app/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrLockedOut          = errors.New("account locked")
	ErrNotConfigured      = errors.New("admin account is not set up")
	ErrAlreadyConfigured  = errors.New("admin account is already set up")
	ErrNoSession          = errors.New("no active session")
	ErrEmptyUsername      = errors.New("username cannot be empty")
	ErrWeakPassword       = errors.New("password must be at least 8 characters and contain letters and digits")
	ErrPasswordMismatch   = errors.New("passwords do not match")
)

// lockoutKey is the single lockout slot. There is one operator and no
// per-client distinction.
const lockoutKey = "local"

// LockoutError is returned while logins are blocked.
type LockoutError struct {
	Remaining time.Duration
}

// Minutes is the remaining lockout rounded up to whole minutes.
func (e *LockoutError) Minutes() int {
	return int(math.Ceil(e.Remaining.Minutes()))
}

func (e *LockoutError) Error() string {
	return fmt.Sprintf("account locked, try again in %d minutes", e.Minutes())
}

func (e *LockoutError) Unwrap() error { return ErrLockedOut }

// Lockout counts failed attempts. LastAttempt is in Unix milliseconds.
type Lockout struct {
	Attempts    int   `json:"attempts"`
	LastAttempt int64 `json:"lastAttempt"`
}

// Settings is the persisted credential record.
type Settings struct {
	Username     string             `json:"username"`
	PasswordHash string             `json:"passwordHash"`
	Salt         string             `json:"salt"`
	Algorithm    string             `json:"algorithm,omitempty"`
	Lockouts     map[string]Lockout `json:"lockouts"`
}

// Session is the persisted login. Times are Unix milliseconds.
type Session struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	LoginTime int64  `json:"loginTime"`
	Remember  bool   `json:"remember"`
	Expires   int64  `json:"expires"`
}

// ExpiresAt returns the expiry as a time.
func (s Session) ExpiresAt() time.Time {
	return time.UnixMilli(s.Expires)
}

// Options configure a Gate.
type Options struct {
	MaxAttempts int
	Lockout     time.Duration
	SessionTTL  time.Duration
	RememberTTL time.Duration
}

// DefaultOptions are five attempts, a fifteen minute lockout and sessions of
// one day, or thirty days when remembered.
func DefaultOptions() Options {
	return Options{
		MaxAttempts: 5,
		Lockout:     15 * time.Minute,
		SessionTTL:  24 * time.Hour,
		RememberTTL: 30 * 24 * time.Hour,
	}
}

// Gate guards the admin surface with a single local account.
type Gate struct {
	kv     repositories.KVStore
	opts   Options
	logger zerolog.Logger
	now    func() time.Time
	mu     sync.Mutex
}

// NewGate returns a gate storing its state in kv. A nil now uses time.Now.
func NewGate(kv repositories.KVStore, opts Options, logger zerolog.Logger, now func() time.Time) *Gate {
	def := DefaultOptions()
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = def.MaxAttempts
	}
	if opts.Lockout <= 0 {
		opts.Lockout = def.Lockout
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = def.SessionTTL
	}
	if opts.RememberTTL <= 0 {
		opts.RememberTTL = def.RememberTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Gate{
		kv:     kv,
		opts:   opts,
		logger: logger.With().Str("component", "auth").Logger(),
		now:    now,
	}
}

func (g *Gate) settings(ctx context.Context) (Settings, error) {
	var s Settings
	err := repositories.GetJSON(ctx, g.kv, repositories.AuthSettingsKey, &s)
	if errors.Is(err, repositories.ErrNotFound) {
		return Settings{}, ErrNotConfigured
	}
	if err != nil {
		return Settings{}, fmt.Errorf("reading auth settings: %w", err)
	}
	if s.Username == "" || s.PasswordHash == "" {
		return Settings{}, ErrNotConfigured
	}
	if s.Lockouts == nil {
		s.Lockouts = map[string]Lockout{}
	}
	return s, nil
}

func (g *Gate) saveSettings(ctx context.Context, s Settings) error {
	if err := repositories.PutJSON(ctx, g.kv, repositories.AuthSettingsKey, s); err != nil {
		return fmt.Errorf("saving auth settings: %w", err)
	}
	return nil
}

// IsConfigured reports whether an admin account exists.
func (g *Gate) IsConfigured(ctx context.Context) (bool, error) {
	_, err := g.settings(ctx)
	if errors.Is(err, ErrNotConfigured) {
		return false, nil
	}
	return err == nil, err
}

func checkNewPassword(password, confirm string) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

func newCredentials(username, password string) (Settings, error) {
	salt, err := NewSalt()
	if err != nil {
		return Settings{}, err
	}
	hash, err := HashPassword(AlgorithmArgon2id, password, salt)
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		Username:     username,
		PasswordHash: hash,
		Salt:         salt,
		Algorithm:    AlgorithmArgon2id,
		Lockouts:     map[string]Lockout{},
	}, nil
}

// Setup creates the admin account. It fails once an account exists.
func (g *Gate) Setup(ctx context.Context, username, password, confirm string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, err := g.settings(ctx); err == nil {
		return ErrAlreadyConfigured
	} else if !errors.Is(err, ErrNotConfigured) {
		return err
	}

	username = strings.TrimSpace(username)
	if username == "" {
		return ErrEmptyUsername
	}
	if err := checkNewPassword(password, confirm); err != nil {
		return err
	}
	s, err := newCredentials(username, password)
	if err != nil {
		return err
	}
	if err := g.saveSettings(ctx, s); err != nil {
		return err
	}
	g.logger.Info().Str("username", username).Msg("Admin account created")
	return nil
}

// cleanLockouts drops entries whose lockout window has passed. It reports
// whether anything changed.
func (g *Gate) cleanLockouts(s *Settings, now time.Time) bool {
	changed := false
	for key, l := range s.Lockouts {
		if now.Sub(time.UnixMilli(l.LastAttempt)) >= g.opts.Lockout {
			delete(s.Lockouts, key)
			changed = true
		}
	}
	return changed
}

// lockedFor returns how long logins stay blocked, or zero.
func (g *Gate) lockedFor(s Settings, now time.Time) time.Duration {
	l, ok := s.Lockouts[lockoutKey]
	if !ok || l.Attempts < g.opts.MaxAttempts {
		return 0
	}
	remaining := g.opts.Lockout - now.Sub(time.UnixMilli(l.LastAttempt))
	if remaining <= 0 {
		return 0
	}
	return remaining
}

// Login checks the credentials and starts a session. While locked out every
// attempt fails with a *LockoutError, even with the right password.
func (g *Gate) Login(ctx context.Context, username, password string, remember bool) (Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, err := g.settings(ctx)
	if err != nil {
		return Session{}, err
	}
	now := g.now()
	if g.cleanLockouts(&s, now) {
		if err := g.saveSettings(ctx, s); err != nil {
			return Session{}, err
		}
	}
	if remaining := g.lockedFor(s, now); remaining > 0 {
		g.logger.Warn().Dur("remaining", remaining).Msg("Login rejected while locked out")
		return Session{}, &LockoutError{Remaining: remaining}
	}

	if username != s.Username || !verifyPassword(s, password) {
		if err := g.recordFailure(ctx, s, now, "Failed login"); err != nil {
			return Session{}, err
		}
		return Session{}, ErrInvalidCredentials
	}

	delete(s.Lockouts, lockoutKey)
	if s.Algorithm != AlgorithmArgon2id {
		if upgraded, err := newCredentials(s.Username, password); err == nil {
			upgraded.Lockouts = s.Lockouts
			s = upgraded
		}
	}
	if err := g.saveSettings(ctx, s); err != nil {
		return Session{}, err
	}

	ttl := g.opts.SessionTTL
	if remember {
		ttl = g.opts.RememberTTL
	}
	session := Session{
		ID:        uuid.NewString(),
		Username:  s.Username,
		LoginTime: now.UnixMilli(),
		Remember:  remember,
		Expires:   now.Add(ttl).UnixMilli(),
	}
	if err := repositories.PutJSON(ctx, g.kv, repositories.SessionKey, session); err != nil {
		return Session{}, fmt.Errorf("saving session: %w", err)
	}
	g.logger.Info().Str("username", s.Username).Bool("remember", remember).Msg("Logged in")
	return session, nil
}

// Logout ends the current session. Logging out twice is not an error.
func (g *Gate) Logout(ctx context.Context) error {
	err := g.kv.Delete(ctx, repositories.SessionKey)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// CurrentSession returns the live session. An expired or unreadable session
// is cleared and reported as ErrNoSession.
func (g *Gate) CurrentSession(ctx context.Context) (Session, error) {
	var session Session
	err := repositories.GetJSON(ctx, g.kv, repositories.SessionKey, &session)
	if errors.Is(err, repositories.ErrNotFound) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		g.logger.Error().Err(err).Msg("Unreadable session, logging out")
		if err := g.Logout(ctx); err != nil {
			return Session{}, err
		}
		return Session{}, ErrNoSession
	}
	if g.now().UnixMilli() > session.Expires {
		if err := g.Logout(ctx); err != nil {
			return Session{}, err
		}
		return Session{}, ErrNoSession
	}
	return session, nil
}

// Verify returns the current session when its id matches.
func (g *Gate) Verify(ctx context.Context, sessionID string) (Session, error) {
	session, err := g.CurrentSession(ctx)
	if err != nil {
		return Session{}, err
	}
	if sessionID == "" || session.ID != sessionID {
		return Session{}, ErrNoSession
	}
	return session, nil
}

// ChangePassword replaces the password after checking the current one.
// The lockout applies to the current-password check as it does to Login.
func (g *Gate) ChangePassword(ctx context.Context, current, password, confirm string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, err := g.settings(ctx)
	if err != nil {
		return err
	}
	now := g.now()
	g.cleanLockouts(&s, now)
	if remaining := g.lockedFor(s, now); remaining > 0 {
		return &LockoutError{Remaining: remaining}
	}
	if !verifyPassword(s, current) {
		if err := g.recordFailure(ctx, s, now, "Failed password change"); err != nil {
			return err
		}
		return ErrInvalidCredentials
	}
	if err := checkNewPassword(password, confirm); err != nil {
		return err
	}
	updated, err := newCredentials(s.Username, password)
	if err != nil {
		return err
	}
	if err := g.saveSettings(ctx, updated); err != nil {
		return err
	}
	g.logger.Info().Msg("Password changed")
	return nil
}

// recordFailure counts a failed credential check against the lockout.
func (g *Gate) recordFailure(ctx context.Context, s Settings, now time.Time, msg string) error {
	l := s.Lockouts[lockoutKey]
	l.Attempts++
	l.LastAttempt = now.UnixMilli()
	s.Lockouts[lockoutKey] = l
	if err := g.saveSettings(ctx, s); err != nil {
		return err
	}
	g.logger.Warn().Int("attempts", l.Attempts).Msg(msg)
	return nil
}

// Reset removes the account and the session so Setup can run again.
func (g *Gate) Reset(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.kv.Delete(ctx, repositories.AuthSettingsKey); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("deleting auth settings: %w", err)
	}
	if err := g.Logout(ctx); err != nil {
		return err
	}
	g.logger.Warn().Msg("Admin account reset")
	return nil
}
