package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/intake-service/internal/domain"
	"github.com/spec-kit/intake-service/internal/events"
	"github.com/spec-kit/intake-service/internal/persistence"
	"github.com/spec-kit/intake-service/internal/repository"
	apperrors "github.com/spec-kit/intake-service/pkg/util"
)

// LocalBroadcastBackend is the fallback side of the broadcast service.
type LocalBroadcastBackend interface {
	repository.BroadcastBackend
	ReplaceAll(ctx context.Context, messages []domain.BroadcastMessage) error
	DismissedIDs(ctx context.Context) (map[string]struct{}, error)
	Dismiss(ctx context.Context, id string) error
}

// BroadcastService publishes and retrieves ephemeral system-wide
// announcements with the same dual-backend policy as the request store.
type BroadcastService struct {
	remote     repository.BroadcastBackend
	local      LocalBroadcastBackend
	dispatcher events.Dispatcher
	timeout    time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewBroadcastService constructs the service.
func NewBroadcastService(remote repository.BroadcastBackend, local LocalBroadcastBackend, dispatcher events.Dispatcher, timeout time.Duration, logger *zap.Logger) *BroadcastService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &BroadcastService{remote: remote, local: local, dispatcher: dispatcher, timeout: timeout, logger: logger, now: time.Now}
}

// Create publishes a new broadcast message.
func (s *BroadcastService) Create(ctx context.Context, msg *domain.BroadcastMessage) error {
	if strings.TrimSpace(msg.Body) == "" {
		return apperrors.NewValidationError("broadcast body required", nil)
	}
	if msg.Kind == "" {
		msg.Kind = domain.BroadcastKindInfo
	}
	if !domain.ValidBroadcastKind(msg.Kind) {
		return apperrors.NewValidationError("unknown broadcast kind", map[string]any{"kind": string(msg.Kind)})
	}
	if msg.ExpiresAt != nil && !msg.ExpiresAt.After(s.now()) {
		return apperrors.NewValidationError("expiry must be in the future", nil)
	}
	msg.ID = uuid.NewString()
	msg.Active = true
	msg.CreatedAt = s.now()

	rctx, cancel := context.WithTimeout(ctx, s.timeout)
	err := s.remote.Insert(rctx, msg)
	cancel()
	if err != nil {
		s.logRemoteFallback("create", err)
		if localErr := s.local.Insert(ctx, msg); localErr != nil {
			return apperrors.NewPersistenceError(errors.Join(err, localErr))
		}
	} else if mirrorErr := s.local.Insert(ctx, msg); mirrorErr != nil {
		s.logger.Warn("local cache not mirrored after broadcast create", zap.Error(mirrorErr))
	}

	s.publish(ctx, events.Event{
		Type:    events.EventBroadcastCreated,
		Payload: events.BroadcastCreatedPayload{Message: *msg},
	})
	return nil
}

// ListActive returns displayable messages newest-first. A successful remote
// read fully overwrites the local cache.
func (s *BroadcastService) ListActive(ctx context.Context) ([]domain.BroadcastMessage, error) {
	now := s.now()

	rctx, cancel := context.WithTimeout(ctx, s.timeout)
	messages, err := s.remote.ListActive(rctx, now)
	cancel()
	if err == nil {
		if mirrorErr := s.local.ReplaceAll(ctx, messages); mirrorErr != nil {
			s.logger.Warn("local cache not reconciled after broadcast list", zap.Error(mirrorErr))
		}
		return messages, nil
	}

	s.logRemoteFallback("list_active", err)
	messages, localErr := s.local.ListActive(ctx, now)
	if localErr != nil {
		return nil, apperrors.NewPersistenceError(errors.Join(err, localErr))
	}
	return messages, nil
}

// Deactivate explicitly retires a message.
func (s *BroadcastService) Deactivate(ctx context.Context, id string) error {
	rctx, cancel := context.WithTimeout(ctx, s.timeout)
	err := s.remote.Deactivate(rctx, id)
	cancel()
	if err != nil {
		s.logRemoteFallback("deactivate", err)
		if localErr := s.local.Deactivate(ctx, id); localErr != nil {
			return apperrors.NewPersistenceError(errors.Join(err, localErr))
		}
	} else if mirrorErr := s.local.Deactivate(ctx, id); mirrorErr != nil {
		s.logger.Warn("local cache not mirrored after deactivate", zap.Error(mirrorErr))
	}

	s.publish(ctx, events.Event{
		Type:    events.EventBroadcastDeactivated,
		Payload: events.BroadcastDeactivatedPayload{MessageID: id},
	})
	return nil
}

// Dismissed returns the device-local set of already-dismissed message ids.
// Filtering against it is a presentation concern owned by the caller.
func (s *BroadcastService) Dismissed(ctx context.Context) (map[string]struct{}, error) {
	return s.local.DismissedIDs(ctx)
}

// Dismiss marks a message as seen on this device.
func (s *BroadcastService) Dismiss(ctx context.Context, id string) error {
	return s.local.Dismiss(ctx, id)
}

func (s *BroadcastService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func (s *BroadcastService) logRemoteFallback(op string, err error) {
	if errors.Is(err, persistence.ErrRemoteUnconfigured) {
		s.logger.Debug("remote store not configured; using local cache", zap.String("op", op))
		return
	}
	s.logger.Warn("remote store unavailable; falling back to local cache",
		zap.String("op", op), zap.Error(err))
}
