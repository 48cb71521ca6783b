package domain

import (
	"strings"
	"time"
)

// RequestStatus enumerates lifecycle states for design requests.
type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "pending"
	RequestStatusAccepted   RequestStatus = "accepted"
	RequestStatusRejected   RequestStatus = "rejected"
	RequestStatusInProgress RequestStatus = "in_progress"
	RequestStatusCompleted  RequestStatus = "completed"
	RequestStatusCancelled  RequestStatus = "cancelled"
)

// ValidStatus reports whether s is a known request status.
func ValidStatus(s RequestStatus) bool {
	switch s {
	case RequestStatusPending, RequestStatusAccepted, RequestStatusRejected,
		RequestStatusInProgress, RequestStatusCompleted, RequestStatusCancelled:
		return true
	}
	return false
}

// DesignRequest is the aggregate for client submissions.
type DesignRequest struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Handle      string        `json:"handle"`
	Email       string        `json:"email"`
	Service     string        `json:"service"`
	Description string        `json:"description"`
	Budget      string        `json:"budget,omitempty"`
	ContactInfo string        `json:"contact_info"`
	AdminNotes  string        `json:"admin_notes,omitempty"`
	Status      RequestStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// SubmitterIdentity is the anti-spam identity derived from a submission.
// A match on either key counts as the same submitter.
type SubmitterIdentity struct {
	EmailKey  string
	HandleKey string
}

// IdentityOf derives the rate-limit identity for a request draft.
func IdentityOf(email, handle string) SubmitterIdentity {
	return SubmitterIdentity{
		EmailKey:  strings.ToLower(strings.TrimSpace(email)),
		HandleKey: strings.ToLower(strings.TrimSpace(handle)),
	}
}
