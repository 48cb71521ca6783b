package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/spec-kit/intake-service/internal/persistence"
)

// Fixed keys for the local cache collections.
const (
	KeyDesignRequests    = "design_requests"
	KeyGlobalMessages    = "global_messages"
	KeyDismissedMessages = "dismissed_global_messages"
	KeyAdminSession      = "admin_session"
	KeyWebhookURL        = "discord_webhook_url"
	KeyRemoteStoreURL    = "remote_store_url"
	KeyRemoteStoreKey    = "remote_store_key"
)

// LocalStore is the persistent key-value surface of the local cache: whole
// JSON-serializable collections stored under fixed keys.
type LocalStore struct {
	db *sql.DB
}

// NewLocalStore wraps the sqlite cache.
func NewLocalStore(cache *persistence.LocalCache) *LocalStore {
	return &LocalStore{db: cache.DB}
}

// Get returns the raw value under key, with found=false when absent.
func (s *LocalStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(value), true, nil
}

// Set stores the raw value under key, replacing any previous value.
func (s *LocalStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, string(value))
	return err
}

// Remove deletes the value under key. Removing an absent key is a no-op.
func (s *LocalStore) Remove(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, key)
	return err
}

// GetJSON decodes the collection under key into dest.
func (s *LocalStore) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	raw, found, err := s.Get(ctx, key)
	if err != nil || !found {
		return found, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return true, err
	}
	return true, nil
}

// SetJSON encodes value and stores it under key.
func (s *LocalStore) SetJSON(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, raw)
}

// GetString returns the string value stored under key, or "" when absent.
func (s *LocalStore) GetString(ctx context.Context, key string) (string, error) {
	raw, found, err := s.Get(ctx, key)
	if err != nil || !found {
		return "", err
	}
	return string(raw), nil
}

// SetString stores a plain string value under key.
func (s *LocalStore) SetString(ctx context.Context, key, value string) error {
	return s.Set(ctx, key, []byte(value))
}
