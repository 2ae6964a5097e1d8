package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func chTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://service.stuttgart.de/lhs-services/aws/strassennamen", cfg.Service.StreetURL)
	assert.Equal(t, "https://service.stuttgart.de/lhs-services/aws/hausnummern", cfg.Service.NumberURL)
	assert.Equal(t, "streetcrawl/1.0", cfg.HTTP.UserAgent)
	assert.Equal(t, 30, cfg.HTTP.TimeoutSecs)
	assert.InDelta(t, 5.0, cfg.HTTP.RequestsPerSecond, 0.001)
	assert.Equal(t, 3, cfg.HTTP.MaxRetries)
	assert.Equal(t, 1, cfg.Crawl.Workers)
	assert.Equal(t, 50, cfg.Crawl.SaveEvery)
	assert.Equal(t, "json", cfg.Store.Driver)
	assert.Equal(t, ".", cfg.Store.DataDir)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chTempDir(t)

	yaml := `
store:
  driver: sqlite
  sqlite_path: /var/lib/streetcrawl/state.db
crawl:
  workers: 4
  save_every: 25
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "/var/lib/streetcrawl/state.db", cfg.Store.SQLitePath)
	assert.Equal(t, 4, cfg.Crawl.Workers)
	assert.Equal(t, 25, cfg.Crawl.SaveEvery)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Unset keys keep their defaults.
	assert.Equal(t, "streetcrawl/1.0", cfg.HTTP.UserAgent)
}

func TestLoadFromEnvironment(t *testing.T) {
	chTempDir(t)

	t.Setenv("STREETCRAWL_STORE_DRIVER", "postgres")
	t.Setenv("STREETCRAWL_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Service: Service{StreetURL: "https://example.com/s", NumberURL: "https://example.com/n"},
		Store:   Store{Driver: "json"},
	}
	assert.NoError(t, cfg.Validate())

	cfg.Store.Driver = "postgres"
	assert.Error(t, cfg.Validate())
	cfg.Store.DatabaseURL = "postgres://localhost/streetcrawl"
	assert.NoError(t, cfg.Validate())

	cfg.Service.StreetURL = ""
	assert.Error(t, cfg.Validate())
}

func TestDumpRoundTrip(t *testing.T) {
	chTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	out, err := cfg.Dump()
	require.NoError(t, err)
	assert.Contains(t, out, "street_url:")

	var back Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &back))
	assert.Equal(t, *cfg, back)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(Log{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())

	require.NoError(t, InitLogger(Log{Level: "info", Format: "json"}))

	err := InitLogger(Log{Level: "nope", Format: "json"})
	require.Error(t, err)
}
