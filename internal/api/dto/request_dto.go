package dto

import (
	"time"

	"github.com/spec-kit/intake-service/internal/domain"
)

// SubmitRequestRequest is the public submission payload.
type SubmitRequestRequest struct {
	Name        string `json:"name"`
	Handle      string `json:"handle"`
	Email       string `json:"email"`
	Service     string `json:"service"`
	Description string `json:"description"`
	Budget      string `json:"budget"`
	ContactInfo string `json:"contact_info"`
}

// DecisionRequest is the admin decision payload.
type DecisionRequest struct {
	Decision domain.RequestStatus `json:"decision"`
	Notes    string               `json:"notes"`
}

// RequestResponse is the request record shape returned to callers.
type RequestResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Handle      string               `json:"handle,omitempty"`
	Email       string               `json:"email"`
	Service     string               `json:"service"`
	Description string               `json:"description"`
	Budget      string               `json:"budget,omitempty"`
	ContactInfo string               `json:"contact_info"`
	AdminNotes  string               `json:"admin_notes,omitempty"`
	Status      domain.RequestStatus `json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}
