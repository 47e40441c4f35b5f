package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var settleEnv = []string{
	"SETTLE_APP_NAME",
	"SETTLE_APP_ENV",
	"SETTLE_APP_PORT",
	"SETTLE_DATABASE_PATH",
	"SETTLE_LOG_LEVEL",
	"SETTLE_LOG_FORMAT",
	"SETTLE_LOG_OUTPUT",
	"SETTLE_HTTP_MAX_BODY_SIZE",
	"SETTLE_SCHEDULER_ENABLED",
	"SETTLE_SCHEDULER_RETENTION",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range settleEnv {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "settlement-engine", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, ":8080", cfg.Addr())
		assert.Equal(t, "", cfg.Database.Path)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "console", cfg.Log.Format)
		assert.Equal(t, "stderr", cfg.Log.Output)
		assert.Equal(t, int64(10<<20), cfg.HTTP.MaxBodySize)
		assert.NotEmpty(t, cfg.HTTP.CORSAllowOrigins)
		assert.True(t, cfg.Scheduler.Enabled)
		assert.Equal(t, time.Hour, cfg.Scheduler.CheckInterval)
		assert.Equal(t, 720*time.Hour, cfg.Scheduler.Retention)
		assert.False(t, cfg.IsProduction())
	})

	t.Run("loads values from environment variables with SETTLE prefix", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SETTLE_APP_ENV", "production")
		t.Setenv("SETTLE_APP_PORT", "9000")
		t.Setenv("SETTLE_DATABASE_PATH", "/tmp/runs.db")
		t.Setenv("SETTLE_LOG_FORMAT", "json")
		t.Setenv("SETTLE_HTTP_MAX_BODY_SIZE", "1024")
		t.Setenv("SETTLE_SCHEDULER_ENABLED", "false")
		t.Setenv("SETTLE_SCHEDULER_RETENTION", "48h")

		cfg, err := Load()
		require.NoError(t, err)

		assert.True(t, cfg.IsProduction())
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "/tmp/runs.db", cfg.Database.Path)
		assert.Equal(t, "json", cfg.Log.Format)
		assert.Equal(t, int64(1024), cfg.HTTP.MaxBodySize)
		assert.False(t, cfg.Scheduler.Enabled)
		assert.Equal(t, 48*time.Hour, cfg.Scheduler.Retention)
	})

	t.Run("production env picks json logging on stdout", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SETTLE_APP_ENV", "production")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "json", cfg.Log.Format)
		assert.Equal(t, "stdout", cfg.Log.Output)
	})

	t.Run("rejects unknown log format", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SETTLE_LOG_FORMAT", "xml")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "settle.toml")
	content := `
[app]
port = "7070"

[database]
path = "history.db"

[http]
cors_allow_origins = ["https://ledger.example"]

[scheduler]
check_interval = "5m"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// GIVEN: a file and an env override for one of its keys
	t.Setenv("SETTLE_APP_PORT", "7171")

	// WHEN: loading the file
	cfg, err := LoadFile(path)
	require.NoError(t, err)

	// THEN: env wins over file, file wins over defaults
	assert.Equal(t, "7171", cfg.App.Port)
	assert.Equal(t, "history.db", cfg.Database.Path)
	assert.Equal(t, []string{"https://ledger.example"}, cfg.HTTP.CORSAllowOrigins)
	assert.Equal(t, 5*time.Minute, cfg.Scheduler.CheckInterval)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
