package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/intake-service/internal/config"
)

type memStore struct {
	values map[string]string
}

func newMemStore() *memStore {
	return &memStore{values: map[string]string{}}
}

func (m *memStore) GetString(_ context.Context, key string) (string, error) {
	return m.values[key], nil
}

func (m *memStore) SetString(_ context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

func (m *memStore) Remove(_ context.Context, key string) error {
	delete(m.values, key)
	return nil
}

func adminConfig() config.AdminConfig {
	return config.AdminConfig{
		Secret:            "hunter2",
		SessionTTLMinutes: 30,
		JWTSecret:         "test-signing-secret",
		MaxLoginAttempts:  3,
	}
}

func TestAuthenticateRejectsWrongSecret(t *testing.T) {
	session := NewSession(adminConfig(), newMemStore(), zap.NewNop())

	_, ok := session.Authenticate(context.Background(), "wrong")
	assert.False(t, ok)
	assert.False(t, session.IsAuthenticated(context.Background()))
}

func TestAuthenticateOpensTimedSession(t *testing.T) {
	session := NewSession(adminConfig(), newMemStore(), zap.NewNop())
	ctx := context.Background()

	token, ok := session.Authenticate(ctx, "hunter2")
	require.True(t, ok)
	assert.NotEmpty(t, token)
	assert.True(t, session.IsAuthenticated(ctx))
	assert.True(t, session.ValidateToken(token))
}

func TestAuthenticateWithBcryptHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := adminConfig()
	cfg.Secret = ""
	cfg.SecretHash = string(hash)
	session := NewSession(cfg, newMemStore(), zap.NewNop())

	_, ok := session.Authenticate(context.Background(), "hunter2")
	assert.True(t, ok)
	_, ok = session.Authenticate(context.Background(), "wrong")
	assert.False(t, ok)
}

func TestSessionExpiresAfterTTL(t *testing.T) {
	session := NewSession(adminConfig(), newMemStore(), zap.NewNop())
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	session.now = func() time.Time { return base }

	token, ok := session.Authenticate(ctx, "hunter2")
	require.True(t, ok)

	session.now = func() time.Time { return base.Add(29 * time.Minute) }
	assert.True(t, session.IsAuthenticated(ctx))

	session.now = func() time.Time { return base.Add(31 * time.Minute) }
	assert.False(t, session.IsAuthenticated(ctx))
	assert.False(t, session.ValidateToken(token))

	// Expired state is cleared, not just hidden.
	session.now = func() time.Time { return base }
	assert.False(t, session.IsAuthenticated(ctx))
}

func TestExtendResetsExpiryWindow(t *testing.T) {
	session := NewSession(adminConfig(), newMemStore(), zap.NewNop())
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	session.now = func() time.Time { return base }
	_, ok := session.Authenticate(ctx, "hunter2")
	require.True(t, ok)

	session.now = func() time.Time { return base.Add(20 * time.Minute) }
	token, ok := session.Extend(ctx)
	require.True(t, ok)
	assert.NotEmpty(t, token)

	// 45 minutes after login, but only 25 past the extension.
	session.now = func() time.Time { return base.Add(45 * time.Minute) }
	assert.True(t, session.IsAuthenticated(ctx))
}

func TestExtendFailsWhenLoggedOut(t *testing.T) {
	session := NewSession(adminConfig(), newMemStore(), zap.NewNop())

	_, ok := session.Extend(context.Background())
	assert.False(t, ok)
}

func TestLogoutClearsSession(t *testing.T) {
	session := NewSession(adminConfig(), newMemStore(), zap.NewNop())
	ctx := context.Background()

	_, ok := session.Authenticate(ctx, "hunter2")
	require.True(t, ok)

	session.Logout(ctx)
	assert.False(t, session.IsAuthenticated(ctx))
}

func TestSessionSurvivesRestart(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	first := NewSession(adminConfig(), store, zap.NewNop())
	_, ok := first.Authenticate(ctx, "hunter2")
	require.True(t, ok)

	// Fresh instance over the same persisted state.
	second := NewSession(adminConfig(), store, zap.NewNop())
	assert.True(t, second.IsAuthenticated(ctx))
}

func TestValidateTokenRejectsForgedToken(t *testing.T) {
	session := NewSession(adminConfig(), newMemStore(), zap.NewNop())

	otherCfg := adminConfig()
	otherCfg.JWTSecret = "different-secret"
	other := NewSession(otherCfg, newMemStore(), zap.NewNop())
	forged, ok := other.Authenticate(context.Background(), "hunter2")
	require.True(t, ok)

	assert.False(t, session.ValidateToken(forged))
	assert.False(t, session.ValidateToken("not-a-jwt"))
}
