package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/intake-service/internal/domain"
	"github.com/spec-kit/intake-service/internal/persistence"
	"github.com/spec-kit/intake-service/internal/repository"
)

type stubLedger struct {
	last    time.Time
	found   bool
	err     error
	records []domain.SubmitterIdentity
}

func (s *stubLedger) LastSubmission(_ context.Context, _ domain.SubmitterIdentity, _ time.Duration) (time.Time, bool, error) {
	return s.last, s.found, s.err
}

func (s *stubLedger) Record(_ context.Context, identity domain.SubmitterIdentity, _ time.Time, _ time.Duration) error {
	s.records = append(s.records, identity)
	return nil
}

func redisLedger(t *testing.T) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ledger := repository.NewSubmissionLedger(
		&persistence.Redis{Client: client},
		&persistence.RemoteManager{},
		zap.NewNop(),
	)
	return NewRateLimiter(ledger, time.Hour, zap.NewNop()), mr
}

func TestRateLimiterBlocksRepeatSubmission(t *testing.T) {
	limiter, _ := redisLedger(t)
	ctx := context.Background()
	identity := domain.IdentityOf("a@b.com", "@al")

	decision := limiter.Check(ctx, identity, false)
	require.True(t, decision.Allowed)

	limiter.Record(ctx, identity)

	decision = limiter.Check(ctx, identity, false)
	assert.False(t, decision.Allowed)
	assert.Greater(t, decision.RetryAfter, 59*time.Minute)
	assert.LessOrEqual(t, decision.RetryAfter, time.Hour)
}

func TestRateLimiterMatchesOnEitherKey(t *testing.T) {
	limiter, _ := redisLedger(t)
	ctx := context.Background()

	limiter.Record(ctx, domain.IdentityOf("a@b.com", "@al"))

	sameHandle := limiter.Check(ctx, domain.IdentityOf("other@c.com", "@AL"), false)
	assert.False(t, sameHandle.Allowed)

	sameEmail := limiter.Check(ctx, domain.IdentityOf("A@B.com", "@someone-else"), false)
	assert.False(t, sameEmail.Allowed)

	unrelated := limiter.Check(ctx, domain.IdentityOf("other@c.com", "@someone-else"), false)
	assert.True(t, unrelated.Allowed)
}

func TestRateLimiterAllowsAfterWindowExpires(t *testing.T) {
	limiter, mr := redisLedger(t)
	ctx := context.Background()
	identity := domain.IdentityOf("a@b.com", "@al")

	limiter.Record(ctx, identity)
	require.False(t, limiter.Check(ctx, identity, false).Allowed)

	mr.FastForward(time.Hour + time.Minute)

	assert.True(t, limiter.Check(ctx, identity, false).Allowed)
}

func TestRateLimiterPrivilegedBypass(t *testing.T) {
	limiter, _ := redisLedger(t)
	ctx := context.Background()
	identity := domain.IdentityOf("a@b.com", "@al")

	limiter.Record(ctx, identity)

	decision := limiter.Check(ctx, identity, true)
	assert.True(t, decision.Allowed)
}

func TestRateLimiterFailsOpenOnLedgerError(t *testing.T) {
	limiter := NewRateLimiter(&stubLedger{err: errors.New("ledger down")}, time.Hour, zap.NewNop())

	decision := limiter.Check(context.Background(), domain.IdentityOf("a@b.com", ""), false)
	assert.True(t, decision.Allowed)
	assert.Zero(t, decision.RetryAfter)
}

func TestRateLimiterRetryAfterCountsFromLastSubmission(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ledger := &stubLedger{last: base.Add(-10 * time.Minute), found: true}
	limiter := NewRateLimiter(ledger, time.Hour, zap.NewNop())
	limiter.now = func() time.Time { return base }

	decision := limiter.Check(context.Background(), domain.IdentityOf("a@b.com", ""), false)
	require.False(t, decision.Allowed)
	assert.Equal(t, 50*time.Minute, decision.RetryAfter)
}
