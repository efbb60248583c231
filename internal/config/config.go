package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config captures runtime configuration sourced from environment variables.
type Config struct {
	Environment string
	HTTPPort    string

	// Database. Driver is "sqlite" or "mysql"; DatabaseDSN is the MySQL DSN
	// when driver is mysql, otherwise DatabasePath is used.
	DBDriver     string
	DatabaseDSN  string
	DatabasePath string

	// Auth
	JWTSecret          string
	TokenTTL           time.Duration
	AllowedEmailDomain string

	// Rate limiting. RedisAddr empty falls back to the in-process store.
	RedisAddr         string
	RedisPassword     string
	RateLimitPerMin   int
	RateLimitDisabled bool

	// Shoutrrr destination URLs for admin alerts, comma separated.
	AlertURLs []string

	// Audit log retention horizon in days. Zero disables pruning.
	AuditRetentionDays int

	// Cron expression for the nightly total_savings reconciliation.
	ReconcileSchedule string
}

// Load reads env vars and falls back to defaults so the server can boot with zero configuration.
func Load() (Config, error) {
	cfg := Config{
		Environment:        getEnv("FORTE_ENV", "development"),
		HTTPPort:           getEnv("FORTE_HTTP_PORT", "8080"),
		DBDriver:           getEnv("FORTE_DB_DRIVER", "sqlite"),
		DatabaseDSN:        getEnv("FORTE_DB_DSN", ""),
		DatabasePath:       getEnv("FORTE_DB_PATH", filepath.Join("data", "forte.db")),
		JWTSecret:          getEnv("FORTE_JWT_SECRET", ""),
		AllowedEmailDomain: getEnv("FORTE_EMAIL_DOMAIN", ""),
		RedisAddr:          getEnv("FORTE_REDIS_ADDR", ""),
		RedisPassword:      getEnv("FORTE_REDIS_PASSWORD", ""),
		RateLimitPerMin:    getEnvInt("FORTE_RATE_LIMIT_PER_MIN", 120),
		RateLimitDisabled:  getEnv("FORTE_RATE_LIMIT_DISABLED", "") == "true",
		AuditRetentionDays: getEnvInt("FORTE_AUDIT_RETENTION_DAYS", 180),
		ReconcileSchedule:  getEnv("FORTE_RECONCILE_SCHEDULE", "0 3 * * *"),
	}

	cfg.TokenTTL = time.Duration(getEnvInt("FORTE_TOKEN_TTL_HOURS", 24)) * time.Hour

	if urls := getEnv("FORTE_ALERT_URLS", ""); urls != "" {
		for _, u := range strings.Split(urls, ",") {
			if u = strings.TrimSpace(u); u != "" {
				cfg.AlertURLs = append(cfg.AlertURLs, u)
			}
		}
	}

	if cfg.DBDriver == "mysql" && cfg.DatabaseDSN == "" {
		return Config{}, fmt.Errorf("FORTE_DB_DSN is required when FORTE_DB_DRIVER=mysql")
	}

	if cfg.DBDriver == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
			return Config{}, fmt.Errorf("ensure data directory: %w", err)
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}

	return fallback
}
