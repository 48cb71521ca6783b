package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/intake-service/internal/domain"
	"github.com/spec-kit/intake-service/internal/events"
	apperrors "github.com/spec-kit/intake-service/pkg/util"
)

type fakeGate struct {
	authenticated bool
	extended      int
}

func (g *fakeGate) IsAuthenticated(_ context.Context) bool { return g.authenticated }

func (g *fakeGate) Extend(_ context.Context) (string, bool) {
	if !g.authenticated {
		return "", false
	}
	g.extended++
	return "token", true
}

type recordingDispatcher struct {
	published []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(_ events.EventType, _ events.EventHandler) {}

type intakeFixture struct {
	svc        *IntakeService
	ledger     *stubLedger
	gate       *fakeGate
	dispatcher *recordingDispatcher
}

func newIntakeFixture(t *testing.T) *intakeFixture {
	t.Helper()
	ledger := &stubLedger{}
	gate := &fakeGate{}
	dispatcher := &recordingDispatcher{}
	store := NewRequestStore(unconfiguredRemote(), localBackend(t), time.Second, zap.NewNop())
	svc := NewIntakeService(IntakeDependencies{
		Store:      store,
		Limiter:    NewRateLimiter(ledger, time.Hour, zap.NewNop()),
		Session:    gate,
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
	})
	return &intakeFixture{svc: svc, ledger: ledger, gate: gate, dispatcher: dispatcher}
}

func TestSubmitCreatesPendingRequest(t *testing.T) {
	f := newIntakeFixture(t)
	ctx := context.Background()

	req, err := f.svc.Submit(ctx, validDraft())
	require.NoError(t, err)
	require.NotNil(t, req)

	assert.NotEmpty(t, req.ID)
	assert.Equal(t, domain.RequestStatusPending, req.Status)
	assert.Equal(t, req.CreatedAt, req.UpdatedAt)
	assert.WithinDuration(t, time.Now(), req.CreatedAt, time.Minute)

	require.Len(t, f.ledger.records, 1)
	assert.Equal(t, "a@b.com", f.ledger.records[0].EmailKey)
	assert.Equal(t, "ig @albakes", f.ledger.records[0].HandleKey)

	listed, err := f.svc.ListRequests(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, req.ID, listed[0].ID)

	require.Len(t, f.dispatcher.published, 1)
	assert.Equal(t, events.EventRequestSubmitted, f.dispatcher.published[0].Type)
	assert.Equal(t, req.ID, f.dispatcher.published[0].RequestID)
}

func TestSubmitRejectsInvalidDraft(t *testing.T) {
	f := newIntakeFixture(t)

	draft := validDraft()
	draft.Email = "nope"
	_, err := f.svc.Submit(context.Background(), draft)
	require.Error(t, err)

	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	assert.Contains(t, domainErr.Details, "email")
	assert.Empty(t, f.dispatcher.published)
	assert.Empty(t, f.ledger.records)
}

func TestSubmitRateLimitedReturnsRetryAfter(t *testing.T) {
	f := newIntakeFixture(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f.ledger.found = true
	f.ledger.last = base.Add(-10 * time.Minute)
	f.svc.limiter.now = func() time.Time { return base }

	_, err := f.svc.Submit(context.Background(), validDraft())
	require.Error(t, err)

	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "RATE_LIMITED", domainErr.Code)
	assert.EqualValues(t, 3000, domainErr.Details["retry_after_seconds"])
	assert.Empty(t, f.dispatcher.published)
}

func TestSubmitBypassesRateLimitForAuthenticatedAdmin(t *testing.T) {
	f := newIntakeFixture(t)
	f.ledger.found = true
	f.ledger.last = time.Now()
	f.gate.authenticated = true

	req, err := f.svc.Submit(context.Background(), validDraft())
	require.NoError(t, err)
	assert.NotNil(t, req)
}

func TestDecideRequiresAdminSession(t *testing.T) {
	f := newIntakeFixture(t)

	_, err := f.svc.Decide(context.Background(), "some-id", domain.RequestStatusAccepted, "")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)
}

func TestDecideRejectsInvalidDecision(t *testing.T) {
	f := newIntakeFixture(t)
	f.gate.authenticated = true
	ctx := context.Background()

	_, err := f.svc.Decide(ctx, "some-id", "maybe", "")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	_, err = f.svc.Decide(ctx, "some-id", domain.RequestStatusPending, "")
	require.Error(t, err, "pending is not a decision")
}

func TestDecideUpdatesRequestAndExtendsSession(t *testing.T) {
	f := newIntakeFixture(t)
	ctx := context.Background()

	f.gate.authenticated = true
	req, err := f.svc.Submit(ctx, validDraft())
	require.NoError(t, err)
	f.dispatcher.published = nil

	updated, err := f.svc.Decide(ctx, req.ID, domain.RequestStatusAccepted, "let's go")
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, domain.RequestStatusAccepted, updated.Status)
	assert.Equal(t, "let's go", updated.AdminNotes)

	assert.Equal(t, 1, f.gate.extended)
	require.Len(t, f.dispatcher.published, 1)
	assert.Equal(t, events.EventRequestDecided, f.dispatcher.published[0].Type)

	payload, ok := f.dispatcher.published[0].Payload.(events.RequestDecidedPayload)
	require.True(t, ok)
	assert.Equal(t, domain.RequestStatusPending, payload.OldStatus)
	assert.Equal(t, domain.RequestStatusAccepted, payload.NewStatus)
}

func TestDecideUnknownIDIsNoOp(t *testing.T) {
	f := newIntakeFixture(t)
	f.gate.authenticated = true

	updated, err := f.svc.Decide(context.Background(), "missing", domain.RequestStatusRejected, "")
	require.NoError(t, err)
	assert.Nil(t, updated)
	assert.Equal(t, 1, f.gate.extended, "session still extends on no-op decisions")
}
