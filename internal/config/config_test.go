package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 50000, cfg.Grid.MaxCells)
	assert.Equal(t, 8, cfg.Grid.Workers)
	assert.Equal(t, "/tmp/climate_cache", cfg.Climate.CacheDir)
	assert.Equal(t, "s3.amazonaws.com", cfg.Climate.S3Endpoint)
	assert.Equal(t, "nasa-nex-gddp-cmip6", cfg.Climate.Bucket)
	assert.Equal(t, "ACCESS-CM2", cfg.Climate.Model)
	assert.InDelta(t, 4.0, cfg.Climate.DownloadsPerMin, 0.001)
	assert.Equal(t, 256, cfg.Cache.MaxEntries)
	assert.Equal(t, 15*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
server:
  port: 9090
grid:
  max_cells: 10000
climate:
  model: GFDL-ESM4
cache:
  ttl: 1h
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10000, cfg.Grid.MaxCells)
	assert.Equal(t, "GFDL-ESM4", cfg.Climate.Model)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	// Defaults still apply for unset values
	assert.Equal(t, 8, cfg.Grid.Workers)
	assert.Equal(t, "nasa-nex-gddp-cmip6", cfg.Climate.Bucket)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))
	t.Setenv("HEXCLIMATE_SERVER_PORT", "7070")
	t.Setenv("HEXCLIMATE_GRID_MAX_CELLS", "1234")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 1234, cfg.Grid.MaxCells)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "json"}))
	assert.True(t, zap.L().Core().Enabled(zap.DebugLevel))

	require.NoError(t, InitLogger(LogConfig{Level: "warn", Format: "console"}))
	assert.False(t, zap.L().Core().Enabled(zap.InfoLevel))
}

func TestInitLoggerBadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "shouting", Format: "json"})
	assert.Error(t, err)
}
