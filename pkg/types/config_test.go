package types_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/traderview/journal-backend/pkg/types"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := types.LoadConfig("")

	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "/ws", cfg.Server.WebSocketPath)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.True(t, cfg.Server.EnableMetrics)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "./data/journal.db", cfg.Database.Path)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("JOURNAL_SERVER_PORT", "7777")
	t.Setenv("JOURNAL_DATABASE_PATH", "/tmp/override.db")
	t.Setenv("JOURNAL_LOG_LEVEL", "warn")

	cfg, err := types.LoadConfig("")

	require.NoError(t, err)
	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, "/tmp/override.db", cfg.Database.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.yaml")
	contents := []byte("server:\n  port: 9999\nlog:\n  level: debug\n")
	require.NoError(t, os.WriteFile(path, contents, 0644))

	cfg, err := types.LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Unset keys keep their defaults.
	assert.Equal(t, "localhost", cfg.Server.Host)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := types.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))

	assert.Error(t, err)
}
