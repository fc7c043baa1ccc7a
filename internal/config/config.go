package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment.
type Config struct {
	ProdOrigins string
	AppEnv      string
	HTTPAddr    string
	DBDSN       string
	RedisAddr   string

	// LockTTL bounds how long a sector/restaurant slot lock survives a
	// crashed holder before another writer can reclaim it.
	LockTTL time.Duration

	// SlotMinutes is read from SLOT_MINUTES. Locking and availability do
	// not read it: their slot width is the fixed 15-minute lock.Step and
	// timegrid.Step.
	SlotMinutes int

	// AssignmentKMax bounds the table-combination fallback search.
	AssignmentKMax int

	// ExpireSweepInterval controls how often the background sweep
	// transitions timed-out PENDING holds to CANCELLED.
	ExpireSweepInterval time.Duration
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		log.Printf("failed to load .env file: %v", err)
	}

	cfg := &Config{}

	// Production origin (default: empty)
	cfg.ProdOrigins = getEnvOrDefault("PROD_ORIGINS", "")

	// Application environment (default: local)
	cfg.AppEnv = getEnvOrDefault("APP_ENV", "local")

	// HTTP listen address (default: :8080)
	cfg.HTTPAddr = getEnvOrDefault("HTTP_ADDR", ":8080")

	// Database DSN is required
	cfg.DBDSN = os.Getenv("DB_DSN")
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}

	cfg.RedisAddr = getEnvOrDefault("REDIS_ADDR", "localhost:6379")

	lockTTLStr := getEnvOrDefault("LOCK_TTL", "30s")
	lockTTL, err := time.ParseDuration(lockTTLStr)
	if err != nil {
		return nil, fmt.Errorf("invalid LOCK_TTL: %w", err)
	}
	cfg.LockTTL = lockTTL

	slotMinutes, err := getEnvAsIntOrDefault("SLOT_MINUTES", 15)
	if err != nil {
		return nil, err
	}
	cfg.SlotMinutes = slotMinutes

	kMax, err := getEnvAsIntOrDefault("ASSIGNMENT_K_MAX", 5)
	if err != nil {
		return nil, err
	}
	cfg.AssignmentKMax = kMax

	sweepStr := getEnvOrDefault("EXPIRE_SWEEP_INTERVAL", "1m")
	sweepInterval, err := time.ParseDuration(sweepStr)
	if err != nil {
		return nil, fmt.Errorf("invalid EXPIRE_SWEEP_INTERVAL: %w", err)
	}
	cfg.ExpireSweepInterval = sweepInterval

	return cfg, nil
}

// getEnvOrDefault returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnvOrDefault(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsIntOrDefault is a helper for parsing integer environment variables.
func getEnvAsIntOrDefault(key string, defaultValue int) (int, error) {
	if v, ok := os.LookupEnv(key); ok {
		i, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
		}
		return i, nil
	}
	return defaultValue, nil
}
