package events

import (
	"time"

	"github.com/spec-kit/intake-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRequestSubmitted     EventType = "request_submitted"
	EventRequestDecided       EventType = "request_decided"
	EventBroadcastCreated     EventType = "broadcast_created"
	EventBroadcastDeactivated EventType = "broadcast_deactivated"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RequestSubmittedPayload payload.
type RequestSubmittedPayload struct {
	Request domain.DesignRequest `json:"request"`
}

// RequestDecidedPayload payload.
type RequestDecidedPayload struct {
	Request   *domain.DesignRequest `json:"request,omitempty"`
	OldStatus domain.RequestStatus  `json:"old_status,omitempty"`
	NewStatus domain.RequestStatus  `json:"new_status"`
	Notes     string                `json:"notes,omitempty"`
}

// BroadcastCreatedPayload payload.
type BroadcastCreatedPayload struct {
	Message domain.BroadcastMessage `json:"message"`
}

// BroadcastDeactivatedPayload payload.
type BroadcastDeactivatedPayload struct {
	MessageID string `json:"message_id"`
}
