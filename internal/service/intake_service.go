package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/intake-service/internal/domain"
	"github.com/spec-kit/intake-service/internal/events"
	apperrors "github.com/spec-kit/intake-service/pkg/util"
)

// AdminGate is the session capability the orchestrator needs.
type AdminGate interface {
	IsAuthenticated(ctx context.Context) bool
	Extend(ctx context.Context) (string, bool)
}

// IntakeService orchestrates the request lifecycle: validate, rate-limit,
// persist, notify on submission; authorize, mutate, notify on decision.
type IntakeService struct {
	store      *RequestStore
	limiter    *RateLimiter
	session    AdminGate
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// IntakeDependencies bundles collaborators for the orchestrator.
type IntakeDependencies struct {
	Store      *RequestStore
	Limiter    *RateLimiter
	Session    AdminGate
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewIntakeService constructs the orchestrator.
func NewIntakeService(deps IntakeDependencies) *IntakeService {
	return &IntakeService{
		store:      deps.Store,
		limiter:    deps.Limiter,
		session:    deps.Session,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        time.Now,
	}
}

// Submit validates, rate-limits and persists a new request. The ledger
// record and the notification are best-effort once persistence succeeded.
func (s *IntakeService) Submit(ctx context.Context, draft RequestDraft) (*domain.DesignRequest, error) {
	if details := validateDraft(draft); details != nil {
		return nil, apperrors.NewValidationError("invalid submission", details)
	}

	identity := domain.IdentityOf(draft.Email, draft.Handle)
	privileged := s.session != nil && s.session.IsAuthenticated(ctx)
	decision := s.limiter.Check(ctx, identity, privileged)
	if !decision.Allowed {
		return nil, apperrors.NewRateLimitedError(int64(math.Ceil(decision.RetryAfter.Seconds())))
	}

	now := s.now()
	req := &domain.DesignRequest{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(draft.Name),
		Handle:      strings.TrimSpace(draft.Handle),
		Email:       strings.TrimSpace(draft.Email),
		Service:     strings.TrimSpace(draft.Service),
		Description: strings.TrimSpace(draft.Description),
		Budget:      strings.TrimSpace(draft.Budget),
		ContactInfo: strings.TrimSpace(draft.ContactInfo),
		Status:      domain.RequestStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.Create(ctx, req); err != nil {
		return nil, err
	}

	s.limiter.Record(ctx, identity)
	s.publish(ctx, events.Event{
		Type:      events.EventRequestSubmitted,
		RequestID: req.ID,
		Payload:   events.RequestSubmittedPayload{Request: *req},
	})
	return req, nil
}

// Decide applies an admin decision to a request. Requires a live admin
// session; the session is extended after any successful privileged action.
// An unknown id is an idempotent no-op returning a nil record.
func (s *IntakeService) Decide(ctx context.Context, requestID string, decision domain.RequestStatus, notes string) (*domain.DesignRequest, error) {
	if s.session == nil || !s.session.IsAuthenticated(ctx) {
		return nil, apperrors.NewUnauthorized("admin session required")
	}
	if !domain.ValidStatus(decision) || decision == domain.RequestStatusPending {
		return nil, apperrors.NewValidationError("unknown decision", map[string]any{"decision": string(decision)})
	}

	updated, previous, err := s.store.UpdateStatus(ctx, requestID, decision, notes)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:      events.EventRequestDecided,
		RequestID: requestID,
		Payload: events.RequestDecidedPayload{
			Request:   updated,
			OldStatus: previous,
			NewStatus: decision,
			Notes:     notes,
		},
	})
	s.session.Extend(ctx)
	return updated, nil
}

// ListRequests surfaces all requests to the admin, newest-first.
func (s *IntakeService) ListRequests(ctx context.Context) ([]domain.DesignRequest, error) {
	return s.store.List(ctx)
}

func (s *IntakeService) publish(ctx context.Context, event events.Event) {
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
