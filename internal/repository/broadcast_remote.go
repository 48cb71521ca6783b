package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/intake-service/internal/domain"
	"github.com/spec-kit/intake-service/internal/persistence"
)

// BroadcastBackend is one persistence strategy for broadcast messages.
type BroadcastBackend interface {
	Insert(ctx context.Context, msg *domain.BroadcastMessage) error
	ListActive(ctx context.Context, now time.Time) ([]domain.BroadcastMessage, error)
	Deactivate(ctx context.Context, id string) error
}

// RemoteBroadcasts is the postgres-backed implementation.
type RemoteBroadcasts struct {
	remote *persistence.RemoteManager
}

// NewRemoteBroadcasts instantiates the remote backend.
func NewRemoteBroadcasts(remote *persistence.RemoteManager) *RemoteBroadcasts {
	return &RemoteBroadcasts{remote: remote}
}

func (r *RemoteBroadcasts) Insert(ctx context.Context, msg *domain.BroadcastMessage) error {
	pool := r.remote.Pool()
	if pool == nil {
		return persistence.ErrRemoteUnconfigured
	}
	const query = `
        INSERT INTO broadcast_messages (id, title, body, kind, active, created_at, expires_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := pool.Exec(ctx, query, msg.ID, msg.Title, msg.Body, msg.Kind, msg.Active, msg.CreatedAt, msg.ExpiresAt)
	return err
}

func (r *RemoteBroadcasts) ListActive(ctx context.Context, now time.Time) ([]domain.BroadcastMessage, error) {
	pool := r.remote.Pool()
	if pool == nil {
		return nil, persistence.ErrRemoteUnconfigured
	}
	const query = `
        SELECT id, title, body, kind, active, created_at, expires_at
        FROM broadcast_messages
        WHERE active = TRUE AND (expires_at IS NULL OR expires_at > $1)
        ORDER BY created_at DESC`
	rows, err := pool.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBroadcasts(rows)
}

// Deactivate flips the active flag. An unknown id is a no-op success.
func (r *RemoteBroadcasts) Deactivate(ctx context.Context, id string) error {
	pool := r.remote.Pool()
	if pool == nil {
		return persistence.ErrRemoteUnconfigured
	}
	_, err := pool.Exec(ctx, `UPDATE broadcast_messages SET active = FALSE WHERE id = $1`, id)
	return err
}

func scanBroadcasts(rows pgx.Rows) ([]domain.BroadcastMessage, error) {
	var result []domain.BroadcastMessage
	for rows.Next() {
		var msg domain.BroadcastMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.Title,
			&msg.Body,
			&msg.Kind,
			&msg.Active,
			&msg.CreatedAt,
			&msg.ExpiresAt,
		); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}
