package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/intake-service/internal/domain"
)

// SubmissionLedger is the storage behind the rate limiter.
type SubmissionLedger interface {
	LastSubmission(ctx context.Context, identity domain.SubmitterIdentity, window time.Duration) (time.Time, bool, error)
	Record(ctx context.Context, identity domain.SubmitterIdentity, at time.Time, window time.Duration) error
}

// Decision is the outcome of a rate-limit check.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// RateLimiter blocks repeated submissions from the same identity inside a
// sliding window. Lookup failure fails open: availability is preferred over
// strict enforcement.
type RateLimiter struct {
	ledger SubmissionLedger
	window time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewRateLimiter constructs the limiter.
func NewRateLimiter(ledger SubmissionLedger, window time.Duration, logger *zap.Logger) *RateLimiter {
	if window <= 0 {
		window = time.Hour
	}
	return &RateLimiter{ledger: ledger, window: window, logger: logger, now: time.Now}
}

// Check decides whether a submission from the identity is allowed.
// Privileged callers bypass all checks.
func (r *RateLimiter) Check(ctx context.Context, identity domain.SubmitterIdentity, privileged bool) Decision {
	if privileged {
		return Decision{Allowed: true}
	}

	last, found, err := r.ledger.LastSubmission(ctx, identity, r.window)
	if err != nil {
		r.logger.Warn("rate limit lookup failed; failing open",
			zap.String("email_key", identity.EmailKey),
			zap.Error(err))
		return Decision{Allowed: true}
	}
	if !found {
		return Decision{Allowed: true}
	}

	elapsed := r.now().Sub(last)
	if elapsed >= r.window {
		return Decision{Allowed: true}
	}
	return Decision{Allowed: false, RetryAfter: r.window - elapsed}
}

// Record appends a submission entry for the identity. Best-effort: failure
// must not roll back or block the submission it tracks.
func (r *RateLimiter) Record(ctx context.Context, identity domain.SubmitterIdentity) {
	if err := r.ledger.Record(ctx, identity, r.now(), r.window); err != nil {
		r.logger.Warn("submission record not persisted", zap.Error(err))
	}
}
