package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customerrors "github.com/axellelanca/edgelink/internal/errors"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, 6, cfg.Links.CodeLength)
	assert.EqualValues(t, 60, cfg.Links.MinTTLSeconds)
	assert.EqualValues(t, 31536000, cfg.Links.MaxTTLSeconds)
	assert.Equal(t, 100, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow())
	assert.Equal(t, time.Hour, cfg.MetadataCacheTTL())
	assert.Equal(t, 5*time.Second, cfg.MetadataFetchTimeout())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "edgelink.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  base_url: "https://sho.rt/"
storage:
  driver: Redis
  redis:
    addr: "redis:6379"
ratelimit:
  requests: 10
crawler:
  extra_signatures: ["MyBot"]
`), 0o600))

	t.Setenv("EDGELINK_RATELIMIT_REQUESTS", "25")
	t.Setenv("EDGELINK_LOG_FORMAT", "json")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://sho.rt", cfg.Server.BaseURL)
	assert.Equal(t, DriverRedis, cfg.Storage.Driver)
	assert.Equal(t, "redis:6379", cfg.Storage.Redis.Addr)
	assert.Equal(t, 25, cfg.RateLimit.Requests)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, []string{"MyBot"}, cfg.Crawler.ExtraSignatures)
}

func TestLoadConfig_BrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

	_, err := LoadConfig(path)
	var loadErr customerrors.ErrConfigLoad
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, path, loadErr.Path)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
