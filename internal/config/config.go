// Package config loads the proxy configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration derived from environment variables.
type Config struct {
	// Server
	Port string

	// Redis is optional; empty disables the shared cache and quota tracking.
	RedisURL string

	// Card API
	APIBaseURL     string
	APIKey         string
	UserAgent      string
	APIRPS         float64
	APIMaxRetries  int
	APITimeout     time.Duration
	UpstreamPages  int
	CacheRetention time.Duration

	// Cache behavior
	CacheSingleFlight bool

	// SnapshotDir is an optional directory with local card data.
	SnapshotDir string

	// Query defaults
	DefaultPageSize int

	// JWTSecret verifies bearer tokens; empty disables the cache clear route.
	JWTSecret string

	// Logging
	LogLevel  string
	LogPretty bool
}

// LoadEnvFiles reads .env and .env.local into the environment.
// Variables already set are never overridden and missing files are ignored.
func LoadEnvFiles(files ...string) {
	if len(files) == 0 {
		files = []string{".env", ".env.local"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:              GetEnv("PORT", "8080"),
		RedisURL:          os.Getenv("REDIS_URL"),
		APIBaseURL:        GetEnv("TCG_API_BASE_URL", "https://api.pokemontcg.io/v2"),
		APIKey:            os.Getenv("TCG_API_KEY"),
		UserAgent:         GetEnv("USER_AGENT", "tcg-client/0.1.0"),
		APIRPS:            GetEnvAsFloat("API_RPS", 5),
		APIMaxRetries:     GetEnvAsInt("API_MAX_RETRIES", 3),
		APITimeout:        time.Duration(GetEnvAsInt("API_TIMEOUT_MS", 30000)) * time.Millisecond,
		UpstreamPages:     GetEnvAsInt("API_PAGE_SIZE", 250),
		CacheRetention:    time.Duration(GetEnvAsInt("CACHE_RETENTION_HOURS", 0)) * time.Hour,
		CacheSingleFlight: GetEnvAsBool("CACHE_SINGLE_FLIGHT", false),
		SnapshotDir:       os.Getenv("SNAPSHOT_DIR"),
		DefaultPageSize:   GetEnvAsInt("DEFAULT_PAGE_SIZE", 24),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		LogLevel:          GetEnv("LOG_LEVEL", "info"),
		LogPretty:         GetEnvAsBool("LOG_PRETTY", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.UserAgent) == "" {
		return fmt.Errorf("USER_AGENT must not be empty")
	}
	if c.APIRPS < 0 {
		return fmt.Errorf("API_RPS must be >= 0 (got %v)", c.APIRPS)
	}
	if c.APIMaxRetries < 1 {
		return fmt.Errorf("API_MAX_RETRIES must be >= 1 (got %d)", c.APIMaxRetries)
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("API_TIMEOUT_MS must be > 0")
	}
	if c.UpstreamPages < 1 || c.UpstreamPages > 250 {
		return fmt.Errorf("API_PAGE_SIZE must be between 1 and 250 (got %d)", c.UpstreamPages)
	}
	if c.DefaultPageSize < 1 {
		return fmt.Errorf("DEFAULT_PAGE_SIZE must be >= 1 (got %d)", c.DefaultPageSize)
	}
	return nil
}

// GetEnv returns the variable or def when unset or empty.
func GetEnv(key, def string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return def
}

// GetEnvAsInt returns the variable as int, or def when unset or invalid.
func GetEnvAsInt(key string, def int) int {
	if n, err := strconv.Atoi(GetEnv(key, "")); err == nil {
		return n
	}
	return def
}

// GetEnvAsFloat returns the variable as float64, or def when unset or invalid.
func GetEnvAsFloat(key string, def float64) float64 {
	if f, err := strconv.ParseFloat(GetEnv(key, ""), 64); err == nil {
		return f
	}
	return def
}

// GetEnvAsBool returns the variable as bool, or def when unset or invalid.
func GetEnvAsBool(key string, def bool) bool {
	if b, err := strconv.ParseBool(GetEnv(key, "")); err == nil {
		return b
	}
	return def
}
