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
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, 10*time.Second, c.Server.ShutdownTimeout)
	assert.Equal(t, DriverSQLite, c.Database.Driver)
	assert.Equal(t, LockLocal, c.Lock.Backend)
	assert.Equal(t, 32, c.Lock.Tries)
	assert.Equal(t, 50*time.Millisecond, c.Lock.RetryDelay)
	assert.Equal(t, "info", c.Log.Level)
	assert.True(t, c.Metrics.Enabled)
	assert.Equal(t, "/metrics", c.Metrics.Path)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
database:
  driver: memory
lock:
  backend: redis
  redis_addr: "redis:6379"
  expiry: 3s
log:
  level: debug
`), 0o600))

	t.Setenv("SPLITLEDGER_SERVER_ADDR", ":7070")
	t.Setenv("SPLITLEDGER_LOCK_TRIES", "5")

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", c.Server.Addr)
	assert.Equal(t, DriverMemory, c.Database.Driver)
	assert.Equal(t, LockRedis, c.Lock.Backend)
	assert.Equal(t, "redis:6379", c.Lock.RedisAddr)
	assert.Equal(t, 3*time.Second, c.Lock.Expiry)
	assert.Equal(t, 5, c.Lock.Tries)
	assert.Equal(t, "debug", c.Log.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c, err := Load("")
		require.NoError(t, err)
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "defaults",
			mutate: func(*Config) {},
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Database.Driver = "postgres" },
			wantErr: `database.driver "postgres"`,
		},
		{
			name:    "sqlite without path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: "database.path is required",
		},
		{
			name:    "unknown lock backend",
			mutate:  func(c *Config) { c.Lock.Backend = "etcd" },
			wantErr: `lock.backend "etcd"`,
		},
		{
			name: "redis without address",
			mutate: func(c *Config) {
				c.Lock.Backend = LockRedis
				c.Lock.RedisAddr = ""
			},
			wantErr: "lock.redis_addr is required",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Log.Level = "loud" },
			wantErr: "log.level",
		},
		{
			name:    "relative metrics path",
			mutate:  func(c *Config) { c.Metrics.Path = "metrics" },
			wantErr: "metrics.path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)

			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
