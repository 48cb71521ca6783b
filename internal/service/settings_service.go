package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/intake-service/internal/config"
	"github.com/spec-kit/intake-service/internal/persistence"
	"github.com/spec-kit/intake-service/internal/repository"
	apperrors "github.com/spec-kit/intake-service/pkg/util"
)

// SettingsService owns the runtime configuration surface: the notification
// endpoint and the remote store credentials, each independently settable,
// testable and removable. Values persist in the local cache and override the
// environment.
type SettingsService struct {
	store      *repository.LocalStore
	remote     *persistence.RemoteManager
	envWebhook string
	logger     *zap.Logger
}

// NewSettingsService constructs the service.
func NewSettingsService(cfg *config.Config, store *repository.LocalStore, remote *persistence.RemoteManager, logger *zap.Logger) *SettingsService {
	return &SettingsService{
		store:      store,
		remote:     remote,
		envWebhook: cfg.Notify.WebhookURL,
		logger:     logger,
	}
}

// RestoreRemote re-installs a stored remote configuration after a restart.
// Called once at startup when the environment did not already configure one.
func (s *SettingsService) RestoreRemote(ctx context.Context) {
	if s.remote.Configured() {
		return
	}
	url, err := s.store.GetString(ctx, repository.KeyRemoteStoreURL)
	if err != nil || url == "" {
		return
	}
	key, _ := s.store.GetString(ctx, repository.KeyRemoteStoreKey)
	if err := s.remote.Configure(ctx, url, key); err != nil {
		s.logger.Warn("stored remote configuration not restored", zap.Error(err))
	}
}

// WebhookURL returns the active notification endpoint, empty when disabled.
func (s *SettingsService) WebhookURL(ctx context.Context) string {
	stored, err := s.store.GetString(ctx, repository.KeyWebhookURL)
	if err != nil {
		s.logger.Warn("webhook setting unreadable", zap.Error(err))
		return s.envWebhook
	}
	if stored != "" {
		return stored
	}
	return s.envWebhook
}

// SetWebhookURL validates and stores a new notification endpoint.
func (s *SettingsService) SetWebhookURL(ctx context.Context, url string) error {
	if err := ValidateWebhookURL(url); err != nil {
		return apperrors.NewValidationError(err.Error(), map[string]any{"webhook_url": url})
	}
	if err := s.store.SetString(ctx, repository.KeyWebhookURL, url); err != nil {
		return apperrors.NewPersistenceError(err)
	}
	return nil
}

// RemoveWebhookURL disables notifications.
func (s *SettingsService) RemoveWebhookURL(ctx context.Context) error {
	s.envWebhook = ""
	if err := s.store.Remove(ctx, repository.KeyWebhookURL); err != nil {
		return apperrors.NewPersistenceError(err)
	}
	return nil
}

// SetRemote probes and installs new remote store credentials, persisting
// them for later restarts.
func (s *SettingsService) SetRemote(ctx context.Context, url, key string) error {
	if url == "" {
		return apperrors.NewValidationError("remote store URL required", nil)
	}
	if err := s.remote.Configure(ctx, url, key); err != nil {
		return apperrors.NewPersistenceError(err)
	}
	if err := s.store.SetString(ctx, repository.KeyRemoteStoreURL, url); err != nil {
		return apperrors.NewPersistenceError(err)
	}
	if err := s.store.SetString(ctx, repository.KeyRemoteStoreKey, key); err != nil {
		return apperrors.NewPersistenceError(err)
	}
	return nil
}

// RemoveRemote drops the remote store; the service continues on the local
// cache alone.
func (s *SettingsService) RemoveRemote(ctx context.Context) error {
	s.remote.Clear()
	if err := s.store.Remove(ctx, repository.KeyRemoteStoreURL); err != nil {
		return apperrors.NewPersistenceError(err)
	}
	if err := s.store.Remove(ctx, repository.KeyRemoteStoreKey); err != nil {
		return apperrors.NewPersistenceError(err)
	}
	return nil
}

// TestRemote probes remote store connectivity.
func (s *SettingsService) TestRemote(ctx context.Context) error {
	return s.remote.Ping(ctx)
}
