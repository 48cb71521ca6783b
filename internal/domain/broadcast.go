package domain

import "time"

// BroadcastKind tags the severity of a broadcast message.
type BroadcastKind string

const (
	BroadcastKindInfo    BroadcastKind = "info"
	BroadcastKindSuccess BroadcastKind = "success"
	BroadcastKindWarning BroadcastKind = "warning"
	BroadcastKindError   BroadcastKind = "error"
)

// ValidBroadcastKind reports whether k is a known broadcast kind.
func ValidBroadcastKind(k BroadcastKind) bool {
	switch k {
	case BroadcastKindInfo, BroadcastKindSuccess, BroadcastKindWarning, BroadcastKindError:
		return true
	}
	return false
}

// BroadcastMessage is a system-wide, time-limited announcement.
type BroadcastMessage struct {
	ID        string        `json:"id"`
	Title     string        `json:"title,omitempty"`
	Body      string        `json:"body"`
	Kind      BroadcastKind `json:"kind"`
	Active    bool          `json:"active"`
	CreatedAt time.Time     `json:"created_at"`
	ExpiresAt *time.Time    `json:"expires_at,omitempty"`
}

// Displayable reports whether the message is eligible for display at the
// given instant: active and not expired.
func (m BroadcastMessage) Displayable(now time.Time) bool {
	if !m.Active {
		return false
	}
	if m.ExpiresAt != nil && !m.ExpiresAt.After(now) {
		return false
	}
	return true
}
