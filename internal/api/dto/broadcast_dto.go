package dto

import (
	"time"

	"github.com/spec-kit/intake-service/internal/domain"
)

// CreateBroadcastRequest is the admin broadcast payload.
type CreateBroadcastRequest struct {
	Title     string               `json:"title"`
	Body      string               `json:"body"`
	Kind      domain.BroadcastKind `json:"kind"`
	ExpiresAt *time.Time           `json:"expires_at"`
}

// BroadcastResponse is the broadcast record shape returned to callers.
type BroadcastResponse struct {
	ID        string               `json:"id"`
	Title     string               `json:"title,omitempty"`
	Body      string               `json:"body"`
	Kind      domain.BroadcastKind `json:"kind"`
	Active    bool                 `json:"active"`
	CreatedAt time.Time            `json:"created_at"`
	ExpiresAt *time.Time           `json:"expires_at,omitempty"`
}
