package dto

import "time"

// LoginRequest carries the shared admin secret.
type LoginRequest struct {
	Secret string `json:"secret"`
}

// LoginResponse returns the session token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// WebhookSettingRequest sets the notification endpoint.
type WebhookSettingRequest struct {
	URL string `json:"url"`
}

// RemoteSettingRequest sets the remote store credentials.
type RemoteSettingRequest struct {
	URL string `json:"url"`
	Key string `json:"key"`
}
