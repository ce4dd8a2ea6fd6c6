package config

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"
)

type Config struct {
	DatabaseDSN           string `env:"DATABASE_DSN,required=true"`
	RedisURL              string `env:"REDIS_URL,required=true"`
	APIPort               int    `env:"API_PORT,default=8080"`
	LogLevel              string `env:"LOG_LEVEL,default=info"`
	BatchTimezone         string `env:"BATCH_TIMEZONE,default=Asia/Manila"`
	StatsCacheTTLSeconds  int    `env:"STATS_CACHE_TTL_SECONDS,default=60"`
	DBMaxOpenConns        int    `env:"DB_MAX_OPEN_CONNS,default=25"`
	ShutdownTimeoutSecond int    `env:"SHUTDOWN_TIMEOUT_SECONDS,default=10"`

	location *time.Location
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	loc, err := time.LoadLocation(cfg.BatchTimezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: invalid BATCH_TIMEZONE %q: %w", cfg.BatchTimezone, err)
	}
	cfg.location = loc

	if cfg.StatsCacheTTLSeconds < 0 {
		return nil, fmt.Errorf("failed to load config: STATS_CACHE_TTL_SECONDS must not be negative")
	}

	return &cfg, nil
}

// Location is the calendar zone that decides what "today" means for batch windows.
func (c *Config) Location() *time.Location {
	if c == nil || c.location == nil {
		return time.UTC
	}
	return c.location
}

func (c *Config) StatsCacheTTL() time.Duration {
	return time.Duration(c.StatsCacheTTLSeconds) * time.Second
}

func (c *Config) ShutdownTimeout() time.Duration {
	if c.ShutdownTimeoutSecond <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.ShutdownTimeoutSecond) * time.Second
}
