package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/intake-service/internal/domain"
	"github.com/spec-kit/intake-service/internal/persistence"
)

// RequestBackend is one persistence strategy for design requests. The store
// tries the remote backend first and falls back to the local one; a single
// call is satisfied by exactly one backend.
type RequestBackend interface {
	Insert(ctx context.Context, req *domain.DesignRequest) error
	List(ctx context.Context) ([]domain.DesignRequest, error)
	UpdateStatus(ctx context.Context, id string, status domain.RequestStatus, notes string, now time.Time) (*domain.DesignRequest, domain.RequestStatus, error)
}

// RemoteRequests is the authoritative postgres-backed implementation.
type RemoteRequests struct {
	remote *persistence.RemoteManager
}

// NewRemoteRequests instantiates the remote backend.
func NewRemoteRequests(remote *persistence.RemoteManager) *RemoteRequests {
	return &RemoteRequests{remote: remote}
}

func (r *RemoteRequests) Insert(ctx context.Context, req *domain.DesignRequest) error {
	pool := r.remote.Pool()
	if pool == nil {
		return persistence.ErrRemoteUnconfigured
	}
	const query = `
        INSERT INTO design_requests (id, name, handle, email, service, description, budget, contact_info, admin_notes, status, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`
	_, err := pool.Exec(ctx, query,
		req.ID,
		req.Name,
		req.Handle,
		req.Email,
		req.Service,
		req.Description,
		req.Budget,
		req.ContactInfo,
		req.AdminNotes,
		req.Status,
		req.CreatedAt,
		req.UpdatedAt,
	)
	return err
}

func (r *RemoteRequests) List(ctx context.Context) ([]domain.DesignRequest, error) {
	pool := r.remote.Pool()
	if pool == nil {
		return nil, persistence.ErrRemoteUnconfigured
	}
	const query = `
        SELECT id, name, handle, email, service, description, budget, contact_info, admin_notes, status, created_at, updated_at
        FROM design_requests ORDER BY created_at DESC`
	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

// UpdateStatus applies the mutation and returns the updated record together
// with the status it replaced, or nil when the id does not exist (idempotent
// no-op).
func (r *RemoteRequests) UpdateStatus(ctx context.Context, id string, status domain.RequestStatus, notes string, now time.Time) (*domain.DesignRequest, domain.RequestStatus, error) {
	pool := r.remote.Pool()
	if pool == nil {
		return nil, "", persistence.ErrRemoteUnconfigured
	}
	const query = `
        UPDATE design_requests AS d
        SET status=$1, updated_at=$2,
            admin_notes = CASE WHEN $3 <> '' THEN $3 ELSE d.admin_notes END
        FROM (SELECT id, status FROM design_requests WHERE id=$4 FOR UPDATE) prev
        WHERE d.id = prev.id
        RETURNING d.id, d.name, d.handle, d.email, d.service, d.description, d.budget, d.contact_info, d.admin_notes, d.status, d.created_at, d.updated_at, prev.status`
	var req domain.DesignRequest
	var previous domain.RequestStatus
	err := pool.QueryRow(ctx, query, status, now, notes, id).Scan(
		&req.ID,
		&req.Name,
		&req.Handle,
		&req.Email,
		&req.Service,
		&req.Description,
		&req.Budget,
		&req.ContactInfo,
		&req.AdminNotes,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
		&previous,
	)
	if err == pgx.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	return &req, previous, nil
}

func scanRequests(rows pgx.Rows) ([]domain.DesignRequest, error) {
	var result []domain.DesignRequest
	for rows.Next() {
		var req domain.DesignRequest
		if err := rows.Scan(
			&req.ID,
			&req.Name,
			&req.Handle,
			&req.Email,
			&req.Service,
			&req.Description,
			&req.Budget,
			&req.ContactInfo,
			&req.AdminNotes,
			&req.Status,
			&req.CreatedAt,
			&req.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, req)
	}
	return result, rows.Err()
}
