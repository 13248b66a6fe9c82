package env

import (
	"errors"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TestConfig struct {
	Host    string        `env:"TEST_HOST" default:"localhost"`
	Port    int           `env:"TEST_PORT" default:"8080"`
	Enabled bool          `env:"TEST_ENABLED" default:"true"`
	Timeout time.Duration `env:"TEST_TIMEOUT" default:"5s"`
	Queue   int16         `env:"TEST_QUEUE"`
	NoDef   string        `env:"TEST_NO_DEF"`
}

func TestLoad(t *testing.T) {
	os.Clearenv()
	os.Setenv("TEST_HOST", "example.com")
	os.Setenv("TEST_PORT", "9090")
	os.Setenv("TEST_ENABLED", "false")
	os.Setenv("TEST_TIMEOUT", "1m30s")
	os.Setenv("TEST_QUEUE", "128")
	os.Setenv("TEST_NO_DEF", "foo")

	var cfg TestConfig
	err := Load(&cfg)
	require.NoError(t, err)

	assert.Equal(t, "example.com", cfg.Host)
	assert.Equal(t, 9090, cfg.Port)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, int16(128), cfg.Queue)
	assert.Equal(t, "foo", cfg.NoDef)
}

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	var cfg TestConfig
	err := Load(&cfg)
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Zero(t, cfg.Queue)
	assert.Empty(t, cfg.NoDef)
}

func TestLoad_EmptyStringRespected(t *testing.T) {
	os.Clearenv()
	os.Setenv("TEST_HOST", "") // Empty string for string field

	var cfg TestConfig
	err := Load(&cfg)
	require.NoError(t, err)

	// Empty strings should be respected for string fields (not use defaults)
	assert.Equal(t, "", cfg.Host)
	// Port not set, so uses default
	assert.Equal(t, 8080, cfg.Port)
}

func TestLoad_EmptyStringIntError(t *testing.T) {
	os.Clearenv()
	os.Setenv("TEST_PORT", "") // Empty string for int field

	var cfg TestConfig
	err := Load(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing")

	var invalid ErrInvalidValue
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "TEST_PORT", invalid.EnvVar)
	assert.Equal(t, "Port", invalid.Field)
}

func TestLoad_InvalidDefault(t *testing.T) {
	os.Clearenv()

	var cfg struct {
		Interval time.Duration `env:"TEST_INTERVAL" default:"soon"`
	}
	err := Load(&cfg)
	require.Error(t, err)

	var invalid ErrInvalidValue
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "soon", invalid.Value)
}

func TestLoad_Overflow(t *testing.T) {
	os.Clearenv()
	os.Setenv("TEST_QUEUE", "70000")

	var cfg TestConfig
	assert.ErrorIs(t, Load(&cfg), strconv.ErrRange)
}

func TestLoad_ReportsEveryInvalidValue(t *testing.T) {
	os.Clearenv()
	os.Setenv("TEST_PORT", "eighty")
	os.Setenv("TEST_SECTION_TIMEOUT", "forever")

	var cfg struct {
		Port    int `env:"TEST_PORT"`
		Storage struct {
			Timeout time.Duration `env:"TEST_SECTION_TIMEOUT"`
		}
	}
	err := Load(&cfg)
	require.Error(t, err)

	assert.Contains(t, err.Error(), "TEST_PORT")
	assert.Contains(t, err.Error(), "field: Storage.Timeout")
}

func TestLoad_ValidationSkippedWhenValuesInvalid(t *testing.T) {
	os.Clearenv()
	os.Setenv("TEST_LEVEL", "high")

	var cfg validatedRoot
	err := Load(&cfg)

	var invalid ErrInvalidValue
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "Level", invalid.Field)
	assert.NotErrorIs(t, err, errNameRequired)
}

func TestLoad_NotStructPointer(t *testing.T) {
	var cfg TestConfig

	err := Load(cfg)
	var notPtr ErrNotStructPointer
	require.ErrorAs(t, err, &notPtr)
	assert.Contains(t, err.Error(), "env.TestConfig")

	n := 3
	assert.ErrorAs(t, Load(&n), &notPtr)
}

func TestLoad_UnsupportedType(t *testing.T) {
	os.Clearenv()
	os.Setenv("TEST_RATIO", "0.5")

	var cfg struct {
		Ratio float64 `env:"TEST_RATIO"`
	}
	err := Load(&cfg)

	var unsupported ErrUnsupportedType
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "float64", unsupported.Kind)
}

func TestLoad_EmbeddedStruct(t *testing.T) {
	type BaseConfig struct {
		StorageDSN  string `env:"STORAGE_DSN"`
		StorageType string `env:"STORAGE_TYPE" default:"postgres"`
	}

	type AppConfig struct {
		BaseConfig
		AppName string `env:"APP_NAME" default:"myapp"`
	}

	t.Run("parses embedded struct fields", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("STORAGE_DSN", "postgres://localhost/db")
		os.Setenv("APP_NAME", "testapp")

		var cfg AppConfig
		err := Load(&cfg)
		require.NoError(t, err)

		assert.Equal(t, "postgres://localhost/db", cfg.StorageDSN)
		assert.Equal(t, "postgres", cfg.StorageType) // Uses default
		assert.Equal(t, "testapp", cfg.AppName)
	})

	t.Run("empty string in embedded struct is respected", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("STORAGE_DSN", "postgres://localhost/db")
		os.Setenv("STORAGE_TYPE", "") // Empty string

		var cfg AppConfig
		err := Load(&cfg)
		require.NoError(t, err)

		assert.Equal(t, "", cfg.StorageType) // Empty string is respected, not replaced with default
	})
}

var errNameRequired = errors.New("name required")

type validatedSection struct {
	Name string `env:"TEST_SECTION_NAME"`
}

func (v *validatedSection) Validate() error {
	if v.Name == "" {
		return errNameRequired
	}
	return nil
}

type validatedRoot struct {
	Section validatedSection
	Level   int `env:"TEST_LEVEL" default:"1"`
}

func (v *validatedRoot) Validate() error {
	if v.Level < 0 {
		return errors.New("level must not be negative")
	}
	return nil
}

func TestLoad_Validation(t *testing.T) {
	t.Run("nested validator runs", func(t *testing.T) {
		os.Clearenv()

		var cfg validatedRoot
		assert.ErrorIs(t, Load(&cfg), errNameRequired)
	})

	t.Run("root validator runs", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("TEST_SECTION_NAME", "ok")
		os.Setenv("TEST_LEVEL", "-1")

		var cfg validatedRoot
		err := Load(&cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "negative")
	})

	t.Run("valid", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("TEST_SECTION_NAME", "ok")

		var cfg validatedRoot
		require.NoError(t, Load(&cfg))
		assert.Equal(t, 1, cfg.Level)
	})
}
