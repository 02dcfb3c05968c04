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
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, "mysql", cfg.Ledger.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Stock.CacheTTL)
	assert.Equal(t, 100*time.Second, cfg.Stock.LockWait)
	assert.Equal(t, 10*time.Second, cfg.Stock.LockLease)
	assert.False(t, cfg.Kafka.Enabled)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
ledger:
  driver: sqlite3
  dsn: "file:stock.db"
stock:
  cache_ttl: 1m
  lock_lease: 30s
redis:
  addr: "redis:6379"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("STOCK_REDIS_ADDR", "cache:6380")
	t.Setenv("STOCK_STOCK_LOCK_WAIT", "2s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite3", cfg.Ledger.Driver)
	assert.Equal(t, "file:stock.db", cfg.Ledger.DSN)
	assert.Equal(t, time.Minute, cfg.Stock.CacheTTL)
	assert.Equal(t, 30*time.Second, cfg.Stock.LockLease)
	assert.Equal(t, 2*time.Second, cfg.Stock.LockWait)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base, err := Load("")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad http port", func(c *Config) { c.Server.HTTPPort = 0 }},
		{"bad grpc port", func(c *Config) { c.Server.GRPCPort = 70000 }},
		{"unknown driver", func(c *Config) { c.Ledger.Driver = "postgres" }},
		{"empty dsn", func(c *Config) { c.Ledger.DSN = "" }},
		{"empty redis", func(c *Config) { c.Redis.Addr = "" }},
		{"zero ttl", func(c *Config) { c.Stock.CacheTTL = 0 }},
		{"zero lease", func(c *Config) { c.Stock.LockLease = 0 }},
		{"negative wait", func(c *Config) { c.Stock.LockWait = -time.Second }},
		{"lease within purchase timeout", func(c *Config) { c.Stock.LockLease = 3 * time.Second; c.Purchase.Timeout = 3 * time.Second }},
		{"kafka without topic", func(c *Config) { c.Kafka.Enabled = true; c.Kafka.Topic = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_LeaseExceedsPurchaseTimeout(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Purchase.Timeout = 2 * time.Second
	cfg.Stock.LockLease = 2*time.Second + time.Millisecond
	assert.NoError(t, cfg.Validate())
}
