package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/intake-service/internal/domain"
	"github.com/spec-kit/intake-service/internal/persistence"
	"github.com/spec-kit/intake-service/internal/repository"
	apperrors "github.com/spec-kit/intake-service/pkg/util"
)

// LocalRequestBackend is the fallback side of the request store.
type LocalRequestBackend interface {
	repository.RequestBackend
	Upsert(ctx context.Context, req *domain.DesignRequest) error
	ReplaceAll(ctx context.Context, requests []domain.DesignRequest) error
}

// RequestStore is the dual-backend store for design requests: the remote
// backend is authoritative when reachable, the local cache serves as
// fallback. A single call is satisfied by exactly one backend; the local
// cache is reconciled opportunistically on remote success.
type RequestStore struct {
	remote  repository.RequestBackend
	local   LocalRequestBackend
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// NewRequestStore constructs the store.
func NewRequestStore(remote repository.RequestBackend, local LocalRequestBackend, timeout time.Duration, logger *zap.Logger) *RequestStore {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RequestStore{remote: remote, local: local, timeout: timeout, logger: logger, now: time.Now}
}

// Create persists a new request, remote first.
func (s *RequestStore) Create(ctx context.Context, req *domain.DesignRequest) error {
	rctx, cancel := context.WithTimeout(ctx, s.timeout)
	err := s.remote.Insert(rctx, req)
	cancel()
	if err == nil {
		if mirrorErr := s.local.Upsert(ctx, req); mirrorErr != nil {
			s.logger.Warn("local cache not mirrored after create", zap.Error(mirrorErr))
		}
		return nil
	}

	s.logRemoteFallback("create", err)
	if localErr := s.local.Insert(ctx, req); localErr != nil {
		return apperrors.NewPersistenceError(errors.Join(err, localErr))
	}
	return nil
}

// List returns all requests newest-first. A successful remote read fully
// overwrites the local cache.
func (s *RequestStore) List(ctx context.Context) ([]domain.DesignRequest, error) {
	rctx, cancel := context.WithTimeout(ctx, s.timeout)
	requests, err := s.remote.List(rctx)
	cancel()
	if err == nil {
		if mirrorErr := s.local.ReplaceAll(ctx, requests); mirrorErr != nil {
			s.logger.Warn("local cache not reconciled after list", zap.Error(mirrorErr))
		}
		return requests, nil
	}

	s.logRemoteFallback("list", err)
	requests, localErr := s.local.List(ctx)
	if localErr != nil {
		return nil, apperrors.NewPersistenceError(errors.Join(err, localErr))
	}
	return requests, nil
}

// UpdateStatus mutates status, updated_at and (when non-empty) admin notes on
// the matching id, reporting the status it replaced. An unknown id is an
// idempotent no-op success, reported as a nil record.
func (s *RequestStore) UpdateStatus(ctx context.Context, id string, status domain.RequestStatus, notes string) (*domain.DesignRequest, domain.RequestStatus, error) {
	now := s.now()

	rctx, cancel := context.WithTimeout(ctx, s.timeout)
	updated, previous, err := s.remote.UpdateStatus(rctx, id, status, notes, now)
	cancel()
	if err == nil {
		if updated != nil {
			if mirrorErr := s.local.Upsert(ctx, updated); mirrorErr != nil {
				s.logger.Warn("local cache not mirrored after status update", zap.Error(mirrorErr))
			}
		}
		return updated, previous, nil
	}

	s.logRemoteFallback("update_status", err)
	updated, previous, localErr := s.local.UpdateStatus(ctx, id, status, notes, now)
	if localErr != nil {
		return nil, "", apperrors.NewPersistenceError(errors.Join(err, localErr))
	}
	return updated, previous, nil
}

func (s *RequestStore) logRemoteFallback(op string, err error) {
	if errors.Is(err, persistence.ErrRemoteUnconfigured) {
		s.logger.Debug("remote store not configured; using local cache", zap.String("op", op))
		return
	}
	s.logger.Warn("remote store unavailable; falling back to local cache",
		zap.String("op", op), zap.Error(err))
}
