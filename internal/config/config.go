package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	LogLevel    slog.Level

	Database DatabaseConfig
	RedisURL string
	Kafka    KafkaConfig
	Matching MatchingConfig
}

type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

type KafkaConfig struct {
	Brokers       []string
	ConsumerGroup string
}

type MatchingConfig struct {
	Workers         int
	RefreshTimeout  time.Duration
	LockTTL         time.Duration
	CatalogCacheTTL time.Duration
}

// LoadConfig reads .env (if present) and the process environment
func LoadConfig() (*Config, error) {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		RedisURL:    os.Getenv("REDIS_URL"),
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Kafka: KafkaConfig{
			Brokers:       splitList(os.Getenv("KAFKA_BROKERS")),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "scholarship-matcher"),
		},
	}

	var err error
	if cfg.LogLevel, err = parseLogLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return nil, err
	}
	if cfg.Database.MaxOpenConns, err = getEnvInt("DB_MAX_OPEN_CONNS", 25); err != nil {
		return nil, err
	}
	if cfg.Database.MaxIdleConns, err = getEnvInt("DB_MAX_IDLE_CONNS", 5); err != nil {
		return nil, err
	}
	if cfg.Matching.Workers, err = getEnvInt("MATCH_WORKERS", 8); err != nil {
		return nil, err
	}
	if cfg.Matching.RefreshTimeout, err = getEnvDuration("MATCH_REFRESH_TIMEOUT", 2*time.Minute); err != nil {
		return nil, err
	}
	if cfg.Matching.LockTTL, err = getEnvDuration("MATCH_LOCK_TTL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.Matching.CatalogCacheTTL, err = getEnvDuration("CATALOG_CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive")
	}
	if c.Database.MaxIdleConns < 0 || c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS must be between 0 and DB_MAX_OPEN_CONNS")
	}
	if c.Matching.Workers < 1 {
		return fmt.Errorf("MATCH_WORKERS must be positive")
	}
	if c.Matching.RefreshTimeout <= 0 || c.Matching.LockTTL <= 0 || c.Matching.CatalogCacheTTL <= 0 {
		return fmt.Errorf("MATCH_REFRESH_TIMEOUT, MATCH_LOCK_TTL and CATALOG_CACHE_TTL must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

func parseLogLevel(value string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", value, err)
	}
	return level, nil
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
