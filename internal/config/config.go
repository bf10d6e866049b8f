// Package config loads and validates application configuration from
// environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// DatabaseURL is the Postgres connection string. When empty the server
	// runs on the in-memory repository, which loses all state on restart.
	DatabaseURL string

	// RedisURL is the redis:// connection string for the availability
	// cache. When empty an in-process cache is used instead.
	RedisURL string

	// FirebaseCredentialsFile points at the service account JSON for FCM
	// delivery. When empty lifecycle events are only written to the log.
	FirebaseCredentialsFile string

	// AdminID is the requester identity allowed to cancel any reservation.
	// Defaults to "admin".
	AdminID string

	// SlotWidth is the availability bucket width. Set SLOT_MINUTES to
	// override the 60 minute default.
	SlotWidth time.Duration

	// OpenHour and CloseHour bound the bookable day. Defaults: 8 and 20.
	OpenHour  int
	CloseHour int

	// Buffer is the gap enforced between an existing reservation and a
	// proposed alternative. Set BUFFER_MINUTES to override the 15 minute
	// default; it must be positive.
	Buffer time.Duration
}

// Load reads configuration from the environment and returns a Config.
// A .env file in the working directory is applied first when present, so
// local development does not need exported variables.
func Load() (Config, error) {
	// Missing .env is the normal case in production.
	_ = godotenv.Load()

	cfg := Config{
		Port:                    getEnv("PORT", "8080"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		CORSOrigins:             splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		DatabaseURL:             os.Getenv("DATABASE_URL"),
		RedisURL:                os.Getenv("REDIS_URL"),
		FirebaseCredentialsFile: os.Getenv("FIREBASE_CREDENTIALS_FILE"),
		AdminID:                 getEnv("ADMIN_ID", "admin"),
	}

	slotMinutes, err := getEnvInt("SLOT_MINUTES", 60)
	if err != nil {
		return Config{}, err
	}
	if slotMinutes < 1 {
		return Config{}, fmt.Errorf("SLOT_MINUTES must be at least 1, got %d", slotMinutes)
	}
	cfg.SlotWidth = time.Duration(slotMinutes) * time.Minute

	cfg.OpenHour, err = getEnvInt("OPEN_HOUR", 8)
	if err != nil {
		return Config{}, err
	}
	cfg.CloseHour, err = getEnvInt("CLOSE_HOUR", 20)
	if err != nil {
		return Config{}, err
	}
	if cfg.OpenHour < 0 || cfg.CloseHour > 24 || cfg.OpenHour >= cfg.CloseHour {
		return Config{}, fmt.Errorf("OPEN_HOUR/CLOSE_HOUR must satisfy 0 <= open < close <= 24, got %d and %d", cfg.OpenHour, cfg.CloseHour)
	}

	bufferMinutes, err := getEnvInt("BUFFER_MINUTES", 15)
	if err != nil {
		return Config{}, err
	}
	if bufferMinutes <= 0 {
		return Config{}, fmt.Errorf("BUFFER_MINUTES must be positive, got %d", bufferMinutes)
	}
	cfg.Buffer = time.Duration(bufferMinutes) * time.Minute

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt parses an integer environment variable, applying fallback when
// the variable is not set.
func getEnvInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, raw)
	}
	return n, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
