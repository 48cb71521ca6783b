package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/intake-service/internal/domain"
	"github.com/spec-kit/intake-service/internal/persistence"
)

const (
	ledgerEmailPrefix  = "submission:email:"
	ledgerHandlePrefix = "submission:handle:"
)

// SubmissionLedger records submission timestamps per identity key. Redis is
// the fast path, with key TTLs encoding the sliding window; a durable copy
// goes to the remote submission_records table and serves as the fallback
// lookup when redis is unreachable.
type SubmissionLedger struct {
	redis  *redis.Client
	remote *persistence.RemoteManager
	logger *zap.Logger
}

// NewSubmissionLedger instantiates the ledger.
func NewSubmissionLedger(rdb *persistence.Redis, remote *persistence.RemoteManager, logger *zap.Logger) *SubmissionLedger {
	var client *redis.Client
	if rdb != nil {
		client = rdb.Client
	}
	return &SubmissionLedger{redis: client, remote: remote, logger: logger}
}

// LastSubmission returns the most recent submission inside the window whose
// identity matches on either key. found=false means no match.
func (l *SubmissionLedger) LastSubmission(ctx context.Context, identity domain.SubmitterIdentity, window time.Duration) (time.Time, bool, error) {
	at, found, err := l.lastFromRedis(ctx, identity)
	if err == nil {
		return at, found, nil
	}
	l.logger.Warn("submission ledger redis lookup failed; trying remote store", zap.Error(err))

	at, found, pgErr := l.lastFromRemote(ctx, identity, window)
	if pgErr != nil {
		return time.Time{}, false, errors.Join(err, pgErr)
	}
	return at, found, nil
}

// Record appends a submission entry for both identity keys. Redis entries
// carry the window as TTL; the remote copy is best-effort.
func (l *SubmissionLedger) Record(ctx context.Context, identity domain.SubmitterIdentity, at time.Time, window time.Duration) error {
	var firstErr error
	if l.redis != nil {
		value := strconv.FormatInt(at.Unix(), 10)
		for _, key := range identityKeys(identity) {
			if err := l.redis.Set(ctx, key, value, window).Err(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}

	if pool := l.remote.Pool(); pool != nil {
		_, err := pool.Exec(ctx,
			`INSERT INTO submission_records (email_key, handle_key, submitted_at) VALUES ($1,$2,$3)`,
			identity.EmailKey, identity.HandleKey, at)
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (l *SubmissionLedger) lastFromRedis(ctx context.Context, identity domain.SubmitterIdentity) (time.Time, bool, error) {
	if l.redis == nil {
		return time.Time{}, false, errors.New("redis not configured")
	}
	var latest time.Time
	found := false
	for _, key := range identityKeys(identity) {
		value, err := l.redis.Get(ctx, key).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return time.Time{}, false, err
		}
		unix, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			continue
		}
		at := time.Unix(unix, 0)
		if !found || at.After(latest) {
			latest = at
			found = true
		}
	}
	return latest, found, nil
}

func (l *SubmissionLedger) lastFromRemote(ctx context.Context, identity domain.SubmitterIdentity, window time.Duration) (time.Time, bool, error) {
	pool := l.remote.Pool()
	if pool == nil {
		return time.Time{}, false, persistence.ErrRemoteUnconfigured
	}
	const query = `
        SELECT submitted_at FROM submission_records
        WHERE (email_key = $1 AND $1 <> '') OR (handle_key = $2 AND $2 <> '')
        ORDER BY submitted_at DESC LIMIT 1`
	cutoff := time.Now().Add(-window)
	var at time.Time
	err := pool.QueryRow(ctx, query, identity.EmailKey, identity.HandleKey).Scan(&at)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	if at.Before(cutoff) {
		return time.Time{}, false, nil
	}
	return at, true, nil
}

func identityKeys(identity domain.SubmitterIdentity) []string {
	keys := make([]string, 0, 2)
	if identity.EmailKey != "" {
		keys = append(keys, ledgerEmailPrefix+identity.EmailKey)
	}
	if identity.HandleKey != "" {
		keys = append(keys, ledgerHandlePrefix+identity.HandleKey)
	}
	return keys
}
