package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, 512, cfg.QueryCacheSize)
	assert.Equal(t, []int{6, 7}, cfg.Defaults.Weekend)
	assert.Equal(t, "19:00", cfg.Defaults.NightStart)
	assert.Equal(t, "07:00", cfg.Defaults.NightEnd)
	assert.False(t, cfg.AuthEnabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("RATE_LIMIT", "5")
	t.Setenv("RATE_WINDOW", "30s")
	t.Setenv("QUERY_CACHE_SIZE", "64")
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Port)
	assert.Equal(t, 5, cfg.RateLimit)
	assert.Equal(t, 30*time.Second, cfg.RateWindow)
	assert.Equal(t, 64, cfg.QueryCacheSize)
	assert.True(t, cfg.AuthEnabled)
}

func TestLoad_AuthWithoutSecret(t *testing.T) {
	t.Setenv("AUTH_ENABLED", "1")
	_, err := Load()
	require.Error(t, err)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("USER_CACHE_SIZE", "many")
	_, err := Load()
	require.Error(t, err)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
db_path: /tmp/x.db
rate_window: 2m
defaults:
  weekend: [5, 6]
  night_start: "22:00"
  night_end: "06:00"
  groupby: month
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, path, cfg.ConfigFile)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, 2*time.Minute, cfg.RateWindow)
	assert.Equal(t, []int{5, 6}, cfg.Defaults.Weekend)
	assert.Equal(t, "22:00", cfg.Defaults.NightStart)
	assert.Equal(t, "month", cfg.Defaults.GroupBy)
	// untouched keys keep their defaults
	assert.Equal(t, "default", cfg.Defaults.Summary)
}

func TestValidate_Rejects(t *testing.T) {
	cfg := defaultConfig()
	cfg.Defaults.Weekend = []int{0}
	assert.Error(t, cfg.Validate())

	cfg = defaultConfig()
	cfg.Defaults.NightStart = "25:99"
	assert.Error(t, cfg.Validate())

	cfg = defaultConfig()
	cfg.Defaults.GroupBy = "hour"
	assert.Error(t, cfg.Validate())
}
