// Package config loads this data access layer's runtime configuration from
// the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"curity-identity-dap/pkg/queryplan"
)

// Config holds every environment-tunable knob this DAP's stores and
// planner consult.
type Config struct {
	Environment string

	AWSRegion         string
	AccountsTableName string
	LinksTableName    string
	EventBusName      string

	// AllowTableScans gates UsingScan plans. When false, a plan that comes
	// back as UsingScan is itself surfaced as a table-scan-required error,
	// keeping expensive full-table reads opt-in per deployment.
	AllowTableScans bool
	// MaxQueries overrides queryplan.MaxQueries when non-zero.
	MaxQueries int

	RetryMaxAttempts int

	EnableMetrics bool
	EnableTracing bool

	LogLevel string
}

// Load reads configuration from the environment, applying a default for
// any variable that is unset.
func Load() (*Config, error) {
	cfg := &Config{
		Environment:          getEnv("ENVIRONMENT", "development"),
		AWSRegion:            getEnv("AWS_REGION", "us-west-2"),
		AccountsTableName: getEnv("ACCOUNTS_TABLE_NAME", "curity-accounts"),
		LinksTableName:    getEnv("LINKS_TABLE_NAME", "curity-links"),
		EventBusName:      getEnv("EVENT_BUS_NAME", "curity-identity-events"),
		AllowTableScans:   getEnvBool("ALLOW_TABLE_SCANS", true),
		MaxQueries:        getEnvInt("MAX_QUERIES", queryplan.MaxQueries),
		RetryMaxAttempts:  getEnvInt("RETRY_MAX_ATTEMPTS", 3),
		EnableMetrics:     getEnvBool("ENABLE_METRICS", true),
		EnableTracing:     getEnvBool("ENABLE_TRACING", true),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration invariants that are cheap to catch at
// startup rather than as a runtime UnsupportedQuery on the first request.
func (c *Config) Validate() error {
	if c.AccountsTableName == "" {
		return fmt.Errorf("config: ACCOUNTS_TABLE_NAME is required")
	}
	if c.MaxQueries <= 0 {
		return fmt.Errorf("config: MAX_QUERIES must be positive, got %d", c.MaxQueries)
	}
	if c.RetryMaxAttempts <= 0 {
		return fmt.Errorf("config: RETRY_MAX_ATTEMPTS must be positive, got %d", c.RetryMaxAttempts)
	}
	return nil
}

// IsProduction reports whether this DAP is configured for production,
// which the logger provider consults to pick zap's encoder.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	return v == "true" || v == "1" || v == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}
