package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
)

// Config is the server configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Log    LogConfig    `toml:"log"`
	Store  StoreConfig  `toml:"store"`
}

// ServerConfig is about the network side.
type ServerConfig struct {
	TCPAddr        string   `toml:"tcp_addr"`         // game protocol listener
	WebAddr        string   `toml:"web_addr"`         // REST, websocket and metrics
	ReadPoll       string   `toml:"read_poll"`        // read deadline per poll (e.g. "5ms")
	MaxFrame       int      `toml:"max_frame"`        // largest payload in bytes
	MaxFrameErrors int      `toml:"max_frame_errors"` // bad frames in a row before hanging up
	RateLimit      float64  `toml:"rate_limit"`       // messages per second per connection
	RateBurst      int      `toml:"rate_burst"`
	DownBuffer     int      `toml:"down_buffer"` // queued outgoing messages per connection
	WSOrigins      []string `toml:"ws_origins"`  // allowed websocket origins
}

type LogConfig struct {
	Level string `toml:"level"`
	JSON  bool   `toml:"json"`
}

// StoreConfig picks where finished games are kept.
type StoreConfig struct {
	Driver        string `toml:"driver"` // "sqlite", "redis" or "none"
	SQLitePath    string `toml:"sqlite_path"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			TCPAddr:        ":7777",
			WebAddr:        ":8080",
			ReadPoll:       "5ms",
			MaxFrame:       1 << 20,
			MaxFrameErrors: 3,
			RateLimit:      20,
			RateBurst:      40,
			DownBuffer:     100,
			WSOrigins:      []string{"localhost:*"},
		},
		Log: LogConfig{
			Level: "info",
		},
		Store: StoreConfig{
			Driver:     "none",
			SQLitePath: "dominion.db",
			RedisAddr:  "localhost:6379",
		},
	}
}

// Load reads the file at path over the defaults, if path is given and the
// file is there, then applies the environment, including any .env file.
func Load(path string) (*Config, error) {
	c := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := toml.Unmarshal(data, c); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	_ = godotenv.Load()
	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv() {
	set := func(key string, to *string) {
		if v := os.Getenv(key); v != "" {
			*to = v
		}
	}
	set("DOMINION_TCP_ADDR", &c.Server.TCPAddr)
	set("DOMINION_WEB_ADDR", &c.Server.WebAddr)
	set("DOMINION_LOG_LEVEL", &c.Log.Level)
	set("DOMINION_STORE", &c.Store.Driver)
	set("DOMINION_SQLITE_PATH", &c.Store.SQLitePath)
	set("DOMINION_REDIS_ADDR", &c.Store.RedisAddr)
}

// Validate checks the values.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.Server.ReadPoll); err != nil {
		return fmt.Errorf("invalid read poll %q: %w", c.Server.ReadPoll, err)
	}
	if c.Server.MaxFrame <= 0 {
		return fmt.Errorf("max frame must be positive: %d", c.Server.MaxFrame)
	}
	if c.Server.MaxFrameErrors <= 0 {
		return fmt.Errorf("max frame errors must be positive: %d", c.Server.MaxFrameErrors)
	}
	if c.Server.RateLimit < 0 || c.Server.RateBurst < 0 {
		return fmt.Errorf("rate limit cannot be negative")
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst == 0 {
		return fmt.Errorf("rate burst must be positive when rate limit is set")
	}
	if c.Server.DownBuffer <= 0 {
		return fmt.Errorf("down buffer must be positive: %d", c.Server.DownBuffer)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	switch c.Store.Driver {
	case "none", "sqlite", "redis":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	return nil
}

// GetReadPoll returns the read poll as a duration.
func (c *Config) GetReadPoll() time.Duration {
	d, _ := time.ParseDuration(c.Server.ReadPoll)
	return d
}

// GetLogLevel returns the log level.
func (c *Config) GetLogLevel() zerolog.Level {
	l, _ := zerolog.ParseLevel(c.Log.Level)
	return l
}
