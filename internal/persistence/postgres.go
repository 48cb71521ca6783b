package persistence

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/intake-service/internal/config"
)

// ErrRemoteUnconfigured is returned when no remote store is configured.
var ErrRemoteUnconfigured = errors.New("remote store not configured")

// RemoteManager owns the pgx pool for the authoritative remote store. The
// pool can be swapped at runtime through the settings surface, so all access
// goes through Pool().
type RemoteManager struct {
	mu     sync.RWMutex
	pool   *pgxpool.Pool
	cfg    config.RemoteConfig
	logger *zap.Logger
}

// NewRemoteManager connects to the remote store when a URL is provided.
// Connection failure is not fatal: the service keeps running against the
// local cache and the remote can be reconfigured later.
func NewRemoteManager(ctx context.Context, cfg config.RemoteConfig, logger *zap.Logger) *RemoteManager {
	m := &RemoteManager{cfg: cfg, logger: logger}
	if cfg.URL == "" {
		logger.Warn("REMOTE_STORE_URL not provided; running on local cache only")
		return m
	}
	if err := m.Configure(ctx, cfg.URL, cfg.Key); err != nil {
		logger.Warn("unable to reach remote store; running on local cache only", zap.Error(err))
	}
	return m
}

// Configure builds, probes and installs a new pool, replacing any previous one.
func (m *RemoteManager) Configure(ctx context.Context, url, key string) error {
	poolCfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return err
	}
	if key != "" {
		poolCfg.ConnConfig.Password = key
	}
	if m.cfg.MaxConns > 0 {
		poolCfg.MaxConns = m.cfg.MaxConns
	}
	if m.cfg.MinConns > 0 {
		poolCfg.MinConns = m.cfg.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return err
	}

	m.mu.Lock()
	old := m.pool
	m.pool = pool
	m.mu.Unlock()
	if old != nil {
		old.Close()
	}

	m.logger.Info("connected to remote store")
	return nil
}

// Clear removes the remote store; subsequent calls fall back to local.
func (m *RemoteManager) Clear() {
	m.mu.Lock()
	old := m.pool
	m.pool = nil
	m.mu.Unlock()
	if old != nil {
		old.Close()
	}
}

// Pool returns the live pool, or nil when no remote is configured.
func (m *RemoteManager) Pool() *pgxpool.Pool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pool
}

// Configured reports whether a remote store is currently installed.
func (m *RemoteManager) Configured() bool {
	return m.Pool() != nil
}

// Ping verifies remote store connectivity.
func (m *RemoteManager) Ping(ctx context.Context) error {
	pool := m.Pool()
	if pool == nil {
		return ErrRemoteUnconfigured
	}
	return pool.Ping(ctx)
}

// Close releases pool resources.
func (m *RemoteManager) Close() {
	m.Clear()
}
