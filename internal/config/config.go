// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/adhocore/gronx"
	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// AdminUser and AdminPassword are the single credential accepted by the
	// API. Both required.
	AdminUser     string
	AdminPassword string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// UploadDir is the root directory of stored documents. Defaults to "uploads".
	UploadDir string

	// MaxUploadSize bounds a single document upload, in bytes.
	// MAX_UPLOAD_SIZE accepts human sizes such as "20MB" or "512 KiB".
	MaxUploadSize int64

	// AlertCron is the cron expression of the expiration reminder job.
	AlertCron string

	// Location is the timezone that defines "today" for deadlines and the
	// reminder schedule. Set with SCHEDULER_TIMEZONE.
	Location *time.Location

	// LoginRatePerMinute is the number of failed logins tolerated per client
	// IP per minute.
	LoginRatePerMinute int

	// MigrateOnStart applies the embedded migrations before serving.
	MigrateOnStart bool
}

// Load reads configuration from environment variables and returns a Config.
// A .env file in the working directory is loaded first when present; real
// environment variables take precedence over it.
// Returns an error listing any required variables that are not set, or the
// first malformed value.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		UploadDir:   getEnv("UPLOAD_DIR", "uploads"),
		AlertCron:   getEnv("ALERT_CRON", "0 7 * * *"),
	}

	var missing []string
	for _, req := range []struct {
		key string
		dst *string
	}{
		{"DATABASE_URL", &cfg.DatabaseURL},
		{"ADMIN_USER", &cfg.AdminUser},
		{"ADMIN_PASSWORD", &cfg.AdminPassword},
	} {
		*req.dst = os.Getenv(req.key)
		if *req.dst == "" {
			missing = append(missing, req.key)
		}
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	size, err := humanize.ParseBytes(getEnv("MAX_UPLOAD_SIZE", "20MB"))
	if err != nil || size == 0 {
		return Config{}, fmt.Errorf("MAX_UPLOAD_SIZE: invalid size %q", os.Getenv("MAX_UPLOAD_SIZE"))
	}
	cfg.MaxUploadSize = int64(size)

	if !gronx.New().IsValid(cfg.AlertCron) {
		return Config{}, fmt.Errorf("ALERT_CRON: invalid cron expression %q", cfg.AlertCron)
	}

	cfg.Location, err = time.LoadLocation(getEnv("SCHEDULER_TIMEZONE", "UTC"))
	if err != nil {
		return Config{}, fmt.Errorf("SCHEDULER_TIMEZONE: %w", err)
	}

	cfg.LoginRatePerMinute, err = strconv.Atoi(getEnv("LOGIN_RATE_PER_MINUTE", "10"))
	if err != nil || cfg.LoginRatePerMinute < 1 {
		return Config{}, fmt.Errorf("LOGIN_RATE_PER_MINUTE: must be a positive integer")
	}

	cfg.MigrateOnStart, err = strconv.ParseBool(getEnv("MIGRATE_ON_START", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("MIGRATE_ON_START: %w", err)
	}

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
