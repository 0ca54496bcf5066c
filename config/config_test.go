package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 5*time.Millisecond, c.GetReadPoll())
	assert.Equal(t, zerolog.InfoLevel, c.GetLogLevel())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dominion.toml")
	err := os.WriteFile(path, []byte(`
[server]
tcp_addr = ":9000"
read_poll = "10ms"

[log]
level = "debug"

[store]
driver = "sqlite"
sqlite_path = "/tmp/x.db"
`), 0o644)
	require.NoError(t, err)

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", c.Server.TCPAddr)
	assert.Equal(t, ":8080", c.Server.WebAddr)
	assert.Equal(t, 10*time.Millisecond, c.GetReadPoll())
	assert.Equal(t, zerolog.DebugLevel, c.GetLogLevel())
	assert.Equal(t, "sqlite", c.Store.Driver)
	assert.Equal(t, 100, c.Server.DownBuffer)
}

func TestLoadMissingFile(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Server, c.Server)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DOMINION_TCP_ADDR", "127.0.0.1:1234")
	t.Setenv("DOMINION_STORE", "redis")
	t.Setenv("DOMINION_REDIS_ADDR", "cache:6379")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:1234", c.Server.TCPAddr)
	assert.Equal(t, "redis", c.Store.Driver)
	assert.Equal(t, "cache:6379", c.Store.RedisAddr)
}

func TestValidate(t *testing.T) {
	c := Default()
	c.Server.ReadPoll = "soon"
	assert.Error(t, c.Validate())

	c = Default()
	c.Store.Driver = "postgres"
	assert.Error(t, c.Validate())

	c = Default()
	c.Log.Level = "loud"
	assert.Error(t, c.Validate())

	c = Default()
	c.Server.RateBurst = 0
	assert.Error(t, c.Validate())
	c.Server.RateLimit = 0
	assert.NoError(t, c.Validate())

	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
