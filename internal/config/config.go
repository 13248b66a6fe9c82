package config

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/rezkam/tasko/internal/env"
)

// Storage backend names.
const (
	PrimaryFS   = "fs"
	PrimaryGCS  = "gcs"
	PrimaryNone = "none"

	FallbackSQLite   = "sqlite"
	FallbackPostgres = "postgres"
	FallbackMemory   = "memory"
)

var (
	// ErrUnknownPrimary is returned when TASKO_PRIMARY names no known backend.
	ErrUnknownPrimary = errors.New("TASKO_PRIMARY must be one of fs, gcs, none")

	// ErrFileDirRequired is returned when the fs primary has no directory.
	ErrFileDirRequired = errors.New("TASKO_FILE_DIR is required when TASKO_PRIMARY is 'fs'")

	// ErrGCSBucketRequired is returned when the gcs primary has no bucket.
	ErrGCSBucketRequired = errors.New("TASKO_GCS_BUCKET is required when TASKO_PRIMARY is 'gcs'")

	// ErrUnknownFallback is returned when TASKO_FALLBACK names no known backend.
	ErrUnknownFallback = errors.New("TASKO_FALLBACK must be one of sqlite, postgres, memory")

	// ErrSQLitePathRequired is returned when the sqlite fallback has no path.
	ErrSQLitePathRequired = errors.New("TASKO_SQLITE_PATH is required when TASKO_FALLBACK is 'sqlite'")

	// ErrPostgresDSNRequired is returned when the postgres fallback has no DSN.
	ErrPostgresDSNRequired = errors.New("TASKO_POSTGRES_DSN is required when TASKO_FALLBACK is 'postgres'")

	// ErrInvalidTimezone is returned when TASKO_TIMEZONE is not a known IANA zone.
	ErrInvalidTimezone = errors.New("invalid TASKO_TIMEZONE")
)

// Config holds all configuration for the tasko binary.
type Config struct {
	Storage       StorageConfig
	HTTP          HTTPConfig
	Engine        EngineConfig
	Notify        NotifyConfig
	Observability ObservabilityConfig

	// Timezone is the IANA zone used for due dates, the daily rollover and
	// export names. Empty means the host's local zone.
	Timezone        string        `env:"TASKO_TIMEZONE"`
	ShutdownTimeout time.Duration `env:"TASKO_SHUTDOWN_TIMEOUT" default:"15s"`

	location *time.Location
}

// StorageConfig selects the user file backend and the local fallback.
type StorageConfig struct {
	Primary   string `env:"TASKO_PRIMARY" default:"fs"` // fs, gcs, none
	FileDir   string `env:"TASKO_FILE_DIR" default:"./tasko-files"`
	File      string `env:"TASKO_FILE"` // opened at startup when set
	GCSBucket string `env:"TASKO_GCS_BUCKET"`
	GCSPrefix string `env:"TASKO_GCS_PREFIX"`

	// GCSEndpoint points the client at an emulator.
	GCSEndpoint string `env:"TASKO_GCS_ENDPOINT"`

	Fallback    string `env:"TASKO_FALLBACK" default:"sqlite"` // sqlite, postgres, memory
	SQLitePath  string `env:"TASKO_SQLITE_PATH" default:"./tasko.db"`
	PostgresDSN string `env:"TASKO_POSTGRES_DSN"`

	Namespace string        `env:"TASKO_NAMESPACE" default:"tasko-data"`
	Timeout   time.Duration `env:"TASKO_STORAGE_TIMEOUT" default:"10s"`
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	switch c.Primary {
	case PrimaryFS:
		if c.FileDir == "" {
			return ErrFileDirRequired
		}
	case PrimaryGCS:
		if c.GCSBucket == "" {
			return ErrGCSBucketRequired
		}
	case PrimaryNone:
	default:
		return fmt.Errorf("%w, got %q", ErrUnknownPrimary, c.Primary)
	}

	switch c.Fallback {
	case FallbackSQLite:
		if c.SQLitePath == "" {
			return ErrSQLitePathRequired
		}
	case FallbackPostgres:
		if c.PostgresDSN == "" {
			return ErrPostgresDSNRequired
		}
	case FallbackMemory:
	default:
		return fmt.Errorf("%w, got %q", ErrUnknownFallback, c.Fallback)
	}
	return nil
}

// HTTPConfig holds HTTP server configuration.
// Zero values fall back to the server's defaults.
type HTTPConfig struct {
	Host              string        `env:"TASKO_HTTP_HOST"`
	Port              string        `env:"TASKO_HTTP_PORT" default:"8081"`
	ReadTimeout       time.Duration `env:"TASKO_HTTP_READ_TIMEOUT"`
	WriteTimeout      time.Duration `env:"TASKO_HTTP_WRITE_TIMEOUT"`
	IdleTimeout       time.Duration `env:"TASKO_HTTP_IDLE_TIMEOUT"`
	ReadHeaderTimeout time.Duration `env:"TASKO_HTTP_READ_HEADER_TIMEOUT"`
	MaxHeaderBytes    int           `env:"TASKO_HTTP_MAX_HEADER_BYTES"`
	MaxBodyBytes      int64         `env:"TASKO_HTTP_MAX_BODY_BYTES"`
}

// EngineConfig holds task engine and sweep worker configuration.
type EngineConfig struct {
	SweepInterval  time.Duration `env:"TASKO_SWEEP_INTERVAL" default:"1s"`
	SweepTimeout   time.Duration `env:"TASKO_SWEEP_TIMEOUT" default:"5s"`
	PersistTimeout time.Duration `env:"TASKO_PERSIST_TIMEOUT" default:"30s"`
}

// NotifyConfig holds notification delivery configuration.
type NotifyConfig struct {
	QueueSize  int           `env:"TASKO_NOTIFY_QUEUE_SIZE" default:"64"`
	WebhookURL string        `env:"TASKO_NOTIFY_WEBHOOK_URL"`
	Timeout    time.Duration `env:"TASKO_NOTIFY_TIMEOUT" default:"10s"`
}

// ObservabilityConfig holds observability configuration.
type ObservabilityConfig struct {
	OTelEnabled bool   `env:"TASKO_OTEL_ENABLED"`
	ServiceName string `env:"OTEL_SERVICE_NAME" default:"tasko"`
}

// Load loads and validates configuration from environment.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Validate resolves the timezone.
func (c *Config) Validate() error {
	if c.Timezone == "" {
		c.location = time.Local
		return nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidTimezone, c.Timezone, err)
	}
	c.location = loc
	return nil
}

// Location returns the resolved timezone.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}
