package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("TEST_PG_URL", "postgres://user:pass@db:5432/talentflow")
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: "9090"
redis:
  addr: "localhost:6379"
  ttl: "5m"
postgres:
  url: "${TEST_PG_URL}"
cache:
  ttl: "30s"
log:
  level: debug
  format: json
metrics:
  enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "postgres://user:pass@db:5432/talentflow", cfg.Postgres.URL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.MetricsEnabled())
	assert.Equal(t, 30*time.Second, TTLDuration(cfg.Cache.TTL, time.Minute))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestMetricsEnabledByDefault(t *testing.T) {
	assert.True(t, Config{}.MetricsEnabled())
}

func TestTTLDuration(t *testing.T) {
	assert.Equal(t, time.Minute, TTLDuration("", time.Minute))
	assert.Equal(t, time.Minute, TTLDuration("soon", time.Minute))
	assert.Equal(t, 2*time.Hour, TTLDuration("2h", time.Minute))
}
