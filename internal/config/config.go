// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/folio/internal/utils"
	"github.com/joho/godotenv"
)

// Price source kinds
const (
	PriceSourceLocal  = "local"  // prices.db, filled by the sync job
	PriceSourceRemote = "remote" // hosted PostgREST "prices" table
)

// Config holds application configuration
type Config struct {
	DataDir      string // Base directory for prices.db and cache.db (always absolute)
	Port         int
	LogLevel     string
	DevMode      bool
	PriceSource  string
	SupabaseURL  string
	SupabaseKey  string
	PageSize     int
	PriceCache   time.Duration
	SessionIdle  time.Duration // Sessions unseen for longer are dropped
	Jobs         JobsConfig
	SyncTickers  []string
	AllowOrigins []string
}

// JobsConfig holds cron schedules for background jobs. Empty disables the job.
type JobsConfig struct {
	PriceSync     string
	CacheCleanup  string
	SessionSweep  string
	WALCheckpoint string
	DatabaseCheck string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("FOLIO_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:     absDataDir,
		Port:        getEnvAsInt("FOLIO_PORT", 8080),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DevMode:     getEnvAsBool("DEV_MODE", false),
		PriceSource: strings.ToLower(getEnv("PRICE_SOURCE", PriceSourceLocal)),
		SupabaseURL: strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseKey: getEnv("SUPABASE_KEY", ""),
		PageSize:    getEnvAsInt("PRICE_PAGE_SIZE", 1000),
		PriceCache:  getEnvAsDuration("PRICE_CACHE_TTL", 15*time.Minute),
		SessionIdle: getEnvAsDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),
		Jobs: JobsConfig{
			PriceSync:     getEnv("PRICE_SYNC_SCHEDULE", "0 30 6 * * *"),
			CacheCleanup:  getEnv("CACHE_CLEANUP_SCHEDULE", "@hourly"),
			SessionSweep:  getEnv("SESSION_SWEEP_SCHEDULE", "0 */5 * * * *"),
			WALCheckpoint: getEnv("WAL_CHECKPOINT_SCHEDULE", "0 */30 * * * *"),
			DatabaseCheck: getEnv("DATABASE_CHECK_SCHEDULE", "0 0 4 * * *"),
		},
		SyncTickers:  utils.ParseCSV(getEnv("PRICE_SYNC_TICKERS", "")),
		AllowOrigins: utils.ParseCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	switch c.PriceSource {
	case PriceSourceLocal:
	case PriceSourceRemote:
		if c.SupabaseURL == "" {
			return fmt.Errorf("SUPABASE_URL is required when PRICE_SOURCE=%s", PriceSourceRemote)
		}
	default:
		return fmt.Errorf("invalid PRICE_SOURCE %q (must be %s or %s)", c.PriceSource, PriceSourceLocal, PriceSourceRemote)
	}

	if c.PageSize <= 0 {
		return fmt.Errorf("PRICE_PAGE_SIZE must be positive, got %d", c.PageSize)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}

	return nil
}

// RemoteEnabled reports whether a hosted price table is configured.
// The sync job needs it even when simulations read from the local store.
func (c *Config) RemoteEnabled() bool {
	return c.SupabaseURL != ""
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
