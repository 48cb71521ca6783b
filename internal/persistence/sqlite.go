package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/spec-kit/intake-service/internal/config"
)

// LocalCache wraps the embedded sqlite database used as the offline-capable
// fallback store. Collections are kept as whole JSON documents under fixed
// keys in a single key-value table.
type LocalCache struct {
	DB *sql.DB
}

const localSchema = `
CREATE TABLE IF NOT EXISTS kv_entries (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// NewLocalCache opens (creating if needed) the sqlite cache file.
func NewLocalCache(cfg config.LocalCacheConfig, logger *zap.Logger) (*LocalCache, error) {
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open local cache: %w", err)
	}
	// sqlite serializes writers; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(localSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init local cache schema: %w", err)
	}

	logger.Info("local cache ready", zap.String("path", cfg.Path))
	return &LocalCache{DB: db}, nil
}

// Close releases the sqlite handle.
func (c *LocalCache) Close() {
	if c != nil && c.DB != nil {
		_ = c.DB.Close()
	}
}

// Ping verifies the cache file is usable.
func (c *LocalCache) Ping(ctx context.Context) error {
	if c == nil || c.DB == nil {
		return fmt.Errorf("local cache not configured")
	}
	return c.DB.PingContext(ctx)
}
