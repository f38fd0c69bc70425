// Package config centralizes environment-driven configuration so main and
// tests construct services from one struct instead of scattered os.Getenv
// calls.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	platformstrings "sigil/pkg/platform/strings"
)

// Config is the root configuration assembled by FromEnv.
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Auth     AuthConfig
	OTC      OTCConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Ledger   LedgerConfig
	Content  ContentConfig
	SMTP     SMTPConfig
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr            string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// LogConfig controls structured logging output.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json or text
}

// AuthConfig carries the wallet-challenge and session-token parameters.
type AuthConfig struct {
	// Independent signing secrets per token kind, so a refresh-secret
	// compromise cannot forge access tokens and vice versa.
	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	Issuer             string

	// Challenge nonces are a safety net, not a tight window.
	NonceMaxAge time.Duration

	LockoutThreshold  int
	LockoutDuration   time.Duration
	LoginHistoryLimit int
}

// OTCConfig carries the one-time-code parameters shared by the email and
// document verification flows.
type OTCConfig struct {
	TTL           time.Duration
	MaxAttempts   int
	SweepInterval time.Duration
}

// PostgresConfig configures the durable store. An empty DSN selects the
// in-memory stores.
type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the shared OTC store and token revocation list.
// An empty URL selects the in-process implementations.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the audit event publisher. No brokers means
// audit events stay in the in-memory publisher.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// LedgerConfig configures the document registry contract client.
type LedgerConfig struct {
	RPCURL          string
	ContractAddress string
	PrivateKey      string
	ChainID         int64
	CallTimeout     time.Duration
}

// ContentConfig configures the content-addressed store gateway.
type ContentConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SMTPConfig configures the outbound mail relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// FromEnv builds a Config from SIGIL_* environment variables so main stays
// lean. Defaults are suitable for local development only.
func FromEnv() Config {
	return Config{
		Server: ServerConfig{
			Addr:            envString("SIGIL_HTTP_ADDR", ":8080"),
			RequestTimeout:  envDuration("SIGIL_HTTP_REQUEST_TIMEOUT", 30*time.Second),
			ShutdownTimeout: envDuration("SIGIL_HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Log: LogConfig{
			Level:  envString("SIGIL_LOG_LEVEL", "info"),
			Format: envString("SIGIL_LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			// Dev-only fallbacks - must be overridden in production.
			AccessTokenSecret:  envString("SIGIL_ACCESS_TOKEN_SECRET", "dev-access-secret-change-me-0000000"),
			RefreshTokenSecret: envString("SIGIL_REFRESH_TOKEN_SECRET", "dev-refresh-secret-change-me-00000"),
			AccessTokenTTL:     envDuration("SIGIL_ACCESS_TOKEN_TTL", time.Hour),
			RefreshTokenTTL:    envDuration("SIGIL_REFRESH_TOKEN_TTL", 720*time.Hour),
			Issuer:             envString("SIGIL_TOKEN_ISSUER", "sigil"),
			NonceMaxAge:        envDuration("SIGIL_NONCE_MAX_AGE", 24*time.Hour),
			LockoutThreshold:   envInt("SIGIL_LOCKOUT_THRESHOLD", 5),
			LockoutDuration:    envDuration("SIGIL_LOCKOUT_DURATION", 15*time.Minute),
			LoginHistoryLimit:  envInt("SIGIL_LOGIN_HISTORY_LIMIT", 10),
		},
		OTC: OTCConfig{
			TTL:           envDuration("SIGIL_OTC_TTL", 5*time.Minute),
			MaxAttempts:   envInt("SIGIL_OTC_MAX_ATTEMPTS", 3),
			SweepInterval: envDuration("SIGIL_OTC_SWEEP_INTERVAL", time.Minute),
		},
		Postgres: PostgresConfig{
			DSN:             envString("SIGIL_POSTGRES_DSN", ""),
			MaxOpenConns:    envInt("SIGIL_POSTGRES_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    envInt("SIGIL_POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("SIGIL_POSTGRES_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          envString("SIGIL_REDIS_URL", ""),
			PoolSize:     envInt("SIGIL_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("SIGIL_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("SIGIL_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("SIGIL_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("SIGIL_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    envStringSlice("SIGIL_KAFKA_BROKERS"),
			AuditTopic: envString("SIGIL_KAFKA_AUDIT_TOPIC", "sigil.audit"),
		},
		Ledger: LedgerConfig{
			RPCURL:          envString("SIGIL_LEDGER_RPC_URL", ""),
			ContractAddress: envString("SIGIL_LEDGER_CONTRACT", ""),
			PrivateKey:      envString("SIGIL_LEDGER_PRIVATE_KEY", ""),
			ChainID:         int64(envInt("SIGIL_LEDGER_CHAIN_ID", 1337)),
			CallTimeout:     envDuration("SIGIL_LEDGER_CALL_TIMEOUT", 10*time.Second),
		},
		Content: ContentConfig{
			BaseURL: envString("SIGIL_CONTENT_STORE_URL", ""),
			Timeout: envDuration("SIGIL_CONTENT_STORE_TIMEOUT", 10*time.Second),
		},
		SMTP: SMTPConfig{
			Host:     envString("SIGIL_SMTP_HOST", ""),
			Port:     envInt("SIGIL_SMTP_PORT", 587),
			Username: envString("SIGIL_SMTP_USERNAME", ""),
			Password: envString("SIGIL_SMTP_PASSWORD", ""),
			From:     envString("SIGIL_SMTP_FROM", "no-reply@sigil.local"),
			Timeout:  envDuration("SIGIL_SMTP_TIMEOUT", 10*time.Second),
		},
	}
}

// Validate rejects configurations that would silently weaken the auth
// guarantees.
func (c Config) Validate() error {
	if len(c.Auth.AccessTokenSecret) < 32 || len(c.Auth.RefreshTokenSecret) < 32 {
		return fmt.Errorf("token secrets must be at least 32 bytes")
	}
	if c.Auth.AccessTokenSecret == c.Auth.RefreshTokenSecret {
		return fmt.Errorf("access and refresh token secrets must differ")
	}
	if c.Auth.LockoutThreshold < 1 {
		return fmt.Errorf("lockout threshold must be positive")
	}
	if c.Auth.LoginHistoryLimit < 1 {
		return fmt.Errorf("login history limit must be positive")
	}
	if c.OTC.MaxAttempts < 1 {
		return fmt.Errorf("otc max attempts must be positive")
	}
	return nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envStringSlice(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	out := platformstrings.DedupeAndTrim(strings.Split(v, ","))
	if len(out) == 0 {
		return nil
	}
	return out
}
