// Package config loads runtime settings from .env, config.yml and the environment.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	CacheMemory = "memory"
	CacheRedis  = "redis"

	StrategyAtomic       = "atomic"
	StrategyCheckThenAct = "check-then-act"

	// MaxPerPage caps PER_PAGE and the per_page a caller may request.
	MaxPerPage = 200
)

type Config struct {
	Env           string        `mapstructure:"APP_ENV"`
	Port          string        `mapstructure:"PORT"`
	DBDriver      string        `mapstructure:"DB_DRIVER"`
	DatabaseURL   string        `mapstructure:"DATABASE_URL"`
	SQLitePath    string        `mapstructure:"SQLITE_PATH"`
	SessionSecret string        `mapstructure:"SESSION_SECRET"`
	CacheBackend  string        `mapstructure:"CACHE_BACKEND"`
	RedisURL      string        `mapstructure:"REDIS_URL"`
	CacheSize     int           `mapstructure:"CACHE_SIZE"`
	FeedCacheTTL  time.Duration `mapstructure:"FEED_CACHE_TTL"`
	PerPage       int           `mapstructure:"PER_PAGE"`
	VoteStrategy  string        `mapstructure:"VOTE_STRATEGY"`
	SeedDemo      bool          `mapstructure:"SEED_DEMO"`
	TemplatesDir  string        `mapstructure:"TEMPLATES_DIR"`
}

var keys = []string{
	"APP_ENV", "PORT", "DB_DRIVER", "DATABASE_URL", "SQLITE_PATH", "SESSION_SECRET",
	"CACHE_BACKEND", "REDIS_URL", "CACHE_SIZE", "FEED_CACHE_TTL", "PER_PAGE",
	"VOTE_STRATEGY", "SEED_DEMO", "TEMPLATES_DIR",
}

// Load reads .env (if present), then config.yml, then the environment. Environment wins.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	v.AutomaticEnv()
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=captionvote port=5432 sslmode=disable TimeZone=UTC")
	v.SetDefault("SQLITE_PATH", "captionvote.db")
	v.SetDefault("SESSION_SECRET", "secret_key_change_me")
	v.SetDefault("CACHE_BACKEND", CacheMemory)
	v.SetDefault("REDIS_URL", "localhost:6379")
	v.SetDefault("CACHE_SIZE", 500)
	v.SetDefault("FEED_CACHE_TTL", time.Minute)
	v.SetDefault("PER_PAGE", 60)
	v.SetDefault("VOTE_STRATEGY", StrategyAtomic)
	v.SetDefault("SEED_DEMO", false)
	v.SetDefault("TEMPLATES_DIR", "./web/templates")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects unknown enumerated values and out-of-range sizes.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.CacheBackend {
	case CacheMemory, CacheRedis:
	default:
		return fmt.Errorf("unsupported CACHE_BACKEND %q", c.CacheBackend)
	}
	switch c.VoteStrategy {
	case StrategyAtomic, StrategyCheckThenAct:
	default:
		return fmt.Errorf("unsupported VOTE_STRATEGY %q", c.VoteStrategy)
	}
	if c.PerPage <= 0 || c.PerPage > MaxPerPage {
		return fmt.Errorf("PER_PAGE must be between 1 and %d, got %d", MaxPerPage, c.PerPage)
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("CACHE_SIZE must be positive, got %d", c.CacheSize)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
