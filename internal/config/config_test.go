package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, LiveBus, cfg.Live.Backend)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 512, cfg.Photos.MaxDimension)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: 127.0.0.1:9000
auth:
  token_ttl: 12h
live:
  backend: redis
  redis_url: redis://localhost:6379/0
system:
  location: Europe/Ljubljana
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, LiveRedis, cfg.Live.Backend)
	// Untouched sections keep their defaults.
	assert.Equal(t, "pantrypal.sqlite3", cfg.Database.Path)
	assert.Equal(t, "pantrypal", cfg.Live.Prefix)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Ljubljana", loc.String())
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadErrors(t *testing.T) {
	tests := map[string]string{
		"unknown field":     "server:\n  port: 80\n",
		"unknown backend":   "live:\n  backend: kafka\n",
		"redis without url": "live:\n  backend: redis\n",
		"unknown exporter":  "telemetry:\n  exporter: zipkin\n",
		"otlp without host": "telemetry:\n  exporter: otlp\n",
		"bad location":      "system:\n  location: Mars/Olympus\n",
		"bad duration":      "auth:\n  token_ttl: forever\n",
		"empty database":    "database:\n  path: \"\"\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
