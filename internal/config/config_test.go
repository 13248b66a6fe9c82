package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, PrimaryFS, cfg.Storage.Primary)
	assert.Equal(t, "./tasko-files", cfg.Storage.FileDir)
	assert.Empty(t, cfg.Storage.File)
	assert.Equal(t, FallbackSQLite, cfg.Storage.Fallback)
	assert.Equal(t, "./tasko.db", cfg.Storage.SQLitePath)
	assert.Equal(t, "tasko-data", cfg.Storage.Namespace)
	assert.Equal(t, 10*time.Second, cfg.Storage.Timeout)

	assert.Equal(t, "8081", cfg.HTTP.Port)
	assert.Zero(t, cfg.HTTP.ReadTimeout)

	assert.Equal(t, time.Second, cfg.Engine.SweepInterval)
	assert.Equal(t, 5*time.Second, cfg.Engine.SweepTimeout)
	assert.Equal(t, 30*time.Second, cfg.Engine.PersistTimeout)

	assert.Equal(t, 64, cfg.Notify.QueueSize)
	assert.Empty(t, cfg.Notify.WebhookURL)
	assert.Equal(t, 10*time.Second, cfg.Notify.Timeout)

	assert.False(t, cfg.Observability.OTelEnabled)
	assert.Equal(t, "tasko", cfg.Observability.ServiceName)

	assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, time.Local, cfg.Location())
}

func TestLoad_WithEnv(t *testing.T) {
	os.Clearenv()
	os.Setenv("TASKO_PRIMARY", "gcs")
	os.Setenv("TASKO_GCS_BUCKET", "tasko-prod")
	os.Setenv("TASKO_GCS_ENDPOINT", "http://localhost:4443/storage/v1/")
	os.Setenv("TASKO_FALLBACK", "postgres")
	os.Setenv("TASKO_POSTGRES_DSN", "postgres://tasko:secret@db:5432/tasko")
	os.Setenv("TASKO_HTTP_PORT", "9000")
	os.Setenv("TASKO_HTTP_MAX_BODY_BYTES", "2097152")
	os.Setenv("TASKO_SWEEP_INTERVAL", "250ms")
	os.Setenv("TASKO_NOTIFY_WEBHOOK_URL", "https://hooks.example.com/tasko")
	os.Setenv("TASKO_OTEL_ENABLED", "true")
	os.Setenv("TASKO_TIMEZONE", "Asia/Jakarta")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, PrimaryGCS, cfg.Storage.Primary)
	assert.Equal(t, "tasko-prod", cfg.Storage.GCSBucket)
	assert.Equal(t, "http://localhost:4443/storage/v1/", cfg.Storage.GCSEndpoint)
	assert.Equal(t, FallbackPostgres, cfg.Storage.Fallback)
	assert.Equal(t, "postgres://tasko:secret@db:5432/tasko", cfg.Storage.PostgresDSN)
	assert.Equal(t, "9000", cfg.HTTP.Port)
	assert.Equal(t, int64(2<<20), cfg.HTTP.MaxBodyBytes)
	assert.Equal(t, 250*time.Millisecond, cfg.Engine.SweepInterval)
	assert.Equal(t, "https://hooks.example.com/tasko", cfg.Notify.WebhookURL)
	assert.True(t, cfg.Observability.OTelEnabled)
	assert.Equal(t, "Asia/Jakarta", cfg.Location().String())
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want error
	}{
		{
			name: "unknown primary",
			env:  map[string]string{"TASKO_PRIMARY": "dropbox"},
			want: ErrUnknownPrimary,
		},
		{
			name: "fs without directory",
			env:  map[string]string{"TASKO_FILE_DIR": ""},
			want: ErrFileDirRequired,
		},
		{
			name: "gcs without bucket",
			env:  map[string]string{"TASKO_PRIMARY": "gcs"},
			want: ErrGCSBucketRequired,
		},
		{
			name: "unknown fallback",
			env:  map[string]string{"TASKO_FALLBACK": "redis"},
			want: ErrUnknownFallback,
		},
		{
			name: "sqlite without path",
			env:  map[string]string{"TASKO_SQLITE_PATH": ""},
			want: ErrSQLitePathRequired,
		},
		{
			name: "postgres without dsn",
			env:  map[string]string{"TASKO_FALLBACK": "postgres"},
			want: ErrPostgresDSNRequired,
		},
		{
			name: "unknown timezone",
			env:  map[string]string{"TASKO_TIMEZONE": "Mars/Olympus_Mons"},
			want: ErrInvalidTimezone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.env {
				os.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoad_NoPrimaryWithMemoryFallback(t *testing.T) {
	os.Clearenv()
	os.Setenv("TASKO_PRIMARY", "none")
	os.Setenv("TASKO_FALLBACK", "memory")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, PrimaryNone, cfg.Storage.Primary)
	assert.Equal(t, FallbackMemory, cfg.Storage.Fallback)
}

func TestLoad_InvalidDuration(t *testing.T) {
	os.Clearenv()
	os.Setenv("TASKO_SWEEP_INTERVAL", "every second")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TASKO_SWEEP_INTERVAL")
}
