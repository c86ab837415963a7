package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string
	// CORSHosts lists the origin hosts allowed by the CORS middleware.
	CORSHosts []string

	DB        DatabaseConfig
	Redis     RedisConfig
	Worker    WorkerConfig
	Pricing   PricingConfig
	RateLimit RateLimitConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN renders the connection string understood by lib/pq and golang-migrate.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(c.User), url.QueryEscape(c.Password), c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// RedisConfig contains Redis connection parameters. An empty Host disables caching.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// WorkerConfig contains interval configuration for background workers.
type WorkerConfig struct {
	// SaleSyncInterval drives the sale boundary reconciler; 0 disables it.
	SaleSyncInterval time.Duration
}

// PricingConfig tunes the pricing engine.
type PricingConfig struct {
	PreviewLimit       int
	HistoryLimit       int
	RecentChangesLimit int
	MaxRecentLimit     int
	RecentBulkLimit    int
	ActiveSalesTTL     time.Duration
	MigrationsPath     string
}

// RateLimitConfig configures the per-IP limiter on public endpoints.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; production relies on real environment variables.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.CORSHosts = splitList(getEnv("CORS_ALLOWED_HOSTS", "localhost:3000,127.0.0.1:3000"))

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", ""),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Pricing
	cfg.Pricing = PricingConfig{
		PreviewLimit:       getEnvInt("PRICING_PREVIEW_LIMIT", 50),
		HistoryLimit:       getEnvInt("PRICING_HISTORY_LIMIT", 50),
		RecentChangesLimit: getEnvInt("PRICING_RECENT_LIMIT", 50),
		MaxRecentLimit:     getEnvInt("PRICING_RECENT_MAX_LIMIT", 1000),
		RecentBulkLimit:    getEnvInt("PRICING_RECENT_BULK_LIMIT", 10),
		MigrationsPath:     getEnv("MIGRATIONS_PATH", "file://migrations"),
	}

	cfg.RateLimit = RateLimitConfig{
		RequestsPerSecond: getEnvFloat("PUBLIC_RATE_LIMIT_RPS", 10),
		Burst:             getEnvInt("PUBLIC_RATE_LIMIT_BURST", 20),
	}

	// Durations
	var err error
	if cfg.Worker.SaleSyncInterval, err = parseDurationEnv("SALE_SYNC_INTERVAL", "1m"); err != nil {
		return nil, fmt.Errorf("invalid SALE_SYNC_INTERVAL: %w", err)
	}
	if cfg.Pricing.ActiveSalesTTL, err = parseDurationEnv("ACTIVE_SALES_CACHE_TTL", "30s"); err != nil {
		return nil, fmt.Errorf("invalid ACTIVE_SALES_CACHE_TTL: %w", err)
	}

	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// splitList splits a comma separated value, dropping empty items.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
