package auth

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/intake-service/internal/config"
)

const sessionKey = "admin_session"

// StateStore persists session state across restarts. The local cache
// satisfies this.
type StateStore interface {
	GetString(ctx context.Context, key string) (string, error)
	SetString(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Session is the time-boxed admin authentication state. Expiry is re-checked
// on every read; an expired session is discarded, never silently extended.
type Session struct {
	mu         sync.Mutex
	store      StateStore
	tokens     *TokenManager
	secret     string
	secretHash string
	ttl        time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewSession constructs the session around the persisted state store.
func NewSession(cfg config.AdminConfig, store StateStore, logger *zap.Logger) *Session {
	return &Session{
		store:      store,
		tokens:     NewTokenManager(cfg.JWTSecret),
		secret:     cfg.Secret,
		secretHash: cfg.SecretHash,
		ttl:        cfg.SessionTTL(),
		logger:     logger,
		now:        time.Now,
	}
}

// Authenticate compares the supplied secret in constant time and, on match,
// opens a session valid for the configured window. The signed token is
// persisted so the session survives process restarts.
func (s *Session) Authenticate(ctx context.Context, secret string) (string, bool) {
	if !s.secretMatches(secret) {
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	loginAt := s.now()
	token, err := s.tokens.Generate(loginAt, loginAt.Add(s.ttl))
	if err != nil {
		s.logger.Error("session token generation failed", zap.Error(err))
		return "", false
	}
	if err := s.store.SetString(ctx, sessionKey, token); err != nil {
		s.logger.Warn("session state not persisted", zap.Error(err))
	}
	return token, true
}

// IsAuthenticated reports whether a live session exists, clearing expired
// state as a side effect.
func (s *Session) IsAuthenticated(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.liveClaims(ctx)
	return ok
}

// Extend resets the expiry window. Valid only while authenticated; calling it
// logged out is a no-op failure.
func (s *Session) Extend(ctx context.Context) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	claims, ok := s.liveClaims(ctx)
	if !ok {
		return "", false
	}
	token, err := s.tokens.Generate(time.Unix(claims.LoginAt, 0), s.now().Add(s.ttl))
	if err != nil {
		s.logger.Error("session token generation failed", zap.Error(err))
		return "", false
	}
	if err := s.store.SetString(ctx, sessionKey, token); err != nil {
		s.logger.Warn("session state not persisted", zap.Error(err))
	}
	return token, true
}

// TTL returns the configured session lifetime.
func (s *Session) TTL() time.Duration {
	return s.ttl
}

// Logout unconditionally clears persisted state.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear(ctx)
}

// ValidateToken verifies a presented bearer token against the signing secret
// and its own expiry.
func (s *Session) ValidateToken(token string) bool {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return s.now().Before(claims.ExpiresAt.Time)
}

func (s *Session) liveClaims(ctx context.Context) (*SessionClaims, bool) {
	token, err := s.store.GetString(ctx, sessionKey)
	if err != nil {
		s.logger.Warn("session state unreadable", zap.Error(err))
		return nil, false
	}
	if token == "" {
		return nil, false
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		s.clear(ctx)
		return nil, false
	}
	if claims.ExpiresAt == nil || !s.now().Before(claims.ExpiresAt.Time) {
		s.clear(ctx)
		return nil, false
	}
	return claims, true
}

func (s *Session) clear(ctx context.Context) {
	if err := s.store.Remove(ctx, sessionKey); err != nil {
		s.logger.Warn("session state not cleared", zap.Error(err))
	}
}

func (s *Session) secretMatches(secret string) bool {
	if s.secretHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.secretHash), []byte(secret)) == nil
	}
	if s.secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.secret), []byte(secret)) == 1
}
