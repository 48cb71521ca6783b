package repository

import (
	"context"
	"sort"
	"time"

	"github.com/spec-kit/intake-service/internal/domain"
)

// LocalRequests keeps the request collection as one JSON document in the
// local cache, under the design_requests key.
type LocalRequests struct {
	store *LocalStore
}

// NewLocalRequests instantiates the local backend.
func NewLocalRequests(store *LocalStore) *LocalRequests {
	return &LocalRequests{store: store}
}

func (r *LocalRequests) load(ctx context.Context) ([]domain.DesignRequest, error) {
	var requests []domain.DesignRequest
	if _, err := r.store.GetJSON(ctx, KeyDesignRequests, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *LocalRequests) save(ctx context.Context, requests []domain.DesignRequest) error {
	return r.store.SetJSON(ctx, KeyDesignRequests, requests)
}

func (r *LocalRequests) Insert(ctx context.Context, req *domain.DesignRequest) error {
	requests, err := r.load(ctx)
	if err != nil {
		return err
	}
	requests = append([]domain.DesignRequest{*req}, requests...)
	return r.save(ctx, requests)
}

func (r *LocalRequests) List(ctx context.Context) ([]domain.DesignRequest, error) {
	requests, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(requests, func(i, j int) bool {
		return requests[i].CreatedAt.After(requests[j].CreatedAt)
	})
	return requests, nil
}

// UpdateStatus replaces status and updated_at on the matching id, returning
// the updated record and the status it replaced; admin notes are overwritten
// only when a non-empty value is supplied. A missing id is a no-op success.
func (r *LocalRequests) UpdateStatus(ctx context.Context, id string, status domain.RequestStatus, notes string, now time.Time) (*domain.DesignRequest, domain.RequestStatus, error) {
	requests, err := r.load(ctx)
	if err != nil {
		return nil, "", err
	}
	for i := range requests {
		if requests[i].ID != id {
			continue
		}
		previous := requests[i].Status
		requests[i].Status = status
		requests[i].UpdatedAt = now
		if notes != "" {
			requests[i].AdminNotes = notes
		}
		updated := requests[i]
		if err := r.save(ctx, requests); err != nil {
			return nil, "", err
		}
		return &updated, previous, nil
	}
	return nil, "", nil
}

// Upsert mirrors an authoritative record into the cache, replacing any entry
// with the same id.
func (r *LocalRequests) Upsert(ctx context.Context, req *domain.DesignRequest) error {
	requests, err := r.load(ctx)
	if err != nil {
		return err
	}
	for i := range requests {
		if requests[i].ID == req.ID {
			requests[i] = *req
			return r.save(ctx, requests)
		}
	}
	requests = append([]domain.DesignRequest{*req}, requests...)
	return r.save(ctx, requests)
}

// ReplaceAll overwrites the cached collection with the remote result.
func (r *LocalRequests) ReplaceAll(ctx context.Context, requests []domain.DesignRequest) error {
	if requests == nil {
		requests = []domain.DesignRequest{}
	}
	return r.save(ctx, requests)
}
