package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Remote    RemoteConfig
	Redis     RedisConfig
	Local     LocalCacheConfig
	Logger    LoggerConfig
	Admin     AdminConfig
	Notify    NotifyConfig
	RateLimit RateLimitConfig
	Broadcast BroadcastConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// RemoteConfig holds the authoritative store connection values.
type RemoteConfig struct {
	URL            string
	Key            string
	RunMigrations  bool
	TimeoutSeconds int
	MaxConns       int32
	MinConns       int32
}

// RedisConfig holds Redis connection values for the submission ledger.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LocalCacheConfig configures the sqlite fallback cache.
type LocalCacheConfig struct {
	Path string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AdminConfig defines admin authentication parameters.
type AdminConfig struct {
	Secret            string
	SecretHash        string
	SessionTTLMinutes int
	JWTSecret         string
	MaxLoginAttempts  int
}

// NotifyConfig holds notification endpoint settings.
type NotifyConfig struct {
	WebhookURL     string
	TimeoutSeconds int
}

// RateLimitConfig controls the anti-spam window.
type RateLimitConfig struct {
	WindowMinutes int
}

// BroadcastConfig controls the broadcast poll loop.
type BroadcastConfig struct {
	PollSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "design-intake-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Remote: RemoteConfig{
			URL:            os.Getenv("REMOTE_STORE_URL"),
			Key:            os.Getenv("REMOTE_STORE_KEY"),
			RunMigrations:  getEnvAsBool("REMOTE_RUN_MIGRATIONS", true),
			TimeoutSeconds: getEnvAsInt("REMOTE_TIMEOUT_SECONDS", 5),
			MaxConns:       int32(getEnvAsInt("REMOTE_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("REMOTE_MIN_CONNS", 2)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Local: LocalCacheConfig{
			Path: getEnv("LOCAL_CACHE_PATH", "intake-cache.db"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Admin: AdminConfig{
			Secret:            os.Getenv("ADMIN_SECRET"),
			SecretHash:        os.Getenv("ADMIN_SECRET_HASH"),
			SessionTTLMinutes: getEnvAsInt("ADMIN_SESSION_TTL_MINUTES", 30),
			JWTSecret:         getEnv("ADMIN_JWT_SECRET", "dev-secret"),
			MaxLoginAttempts:  getEnvAsInt("ADMIN_MAX_LOGIN_ATTEMPTS", 3),
		},
		Notify: NotifyConfig{
			WebhookURL:     getEnv("NOTIFY_WEBHOOK_URL", ""),
			TimeoutSeconds: getEnvAsInt("NOTIFY_TIMEOUT_SECONDS", 5),
		},
		RateLimit: RateLimitConfig{
			WindowMinutes: getEnvAsInt("RATE_LIMIT_WINDOW_MINUTES", 60),
		},
		Broadcast: BroadcastConfig{
			PollSeconds: getEnvAsInt("BROADCAST_POLL_SECONDS", 30),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the per-call remote store deadline.
func (r RemoteConfig) Timeout() time.Duration {
	if r.TimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// Timeout returns the bounded notification delivery deadline.
func (n NotifyConfig) Timeout() time.Duration {
	if n.TimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(n.TimeoutSeconds) * time.Second
}

// SessionTTL returns the admin session lifetime.
func (a AdminConfig) SessionTTL() time.Duration {
	if a.SessionTTLMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(a.SessionTTLMinutes) * time.Minute
}

// Window returns the sliding rate-limit window.
func (r RateLimitConfig) Window() time.Duration {
	if r.WindowMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(r.WindowMinutes) * time.Minute
}

// PollInterval returns the broadcast refresh interval.
func (b BroadcastConfig) PollInterval() time.Duration {
	if b.PollSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(b.PollSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
