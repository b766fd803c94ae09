// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

type Config struct {
	// HTTP Server
	Port string

	// Storage
	DataBackend    string
	LedgerFilePath string
	SQLiteDBPath   string
	SeedFile       string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Home Assistant
	HAURL        string
	HAToken      string
	SensorPrefix string

	// Workers
	RefreshInterval   time.Duration
	RecurringSchedule string

	// Behaviour
	RestrictDeactivation bool

	// Logging
	LogLevel string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		DataBackend:    getEnv("DATA_BACKEND", "sqlite"),
		LedgerFilePath: getEnv("LEDGER_FILE_PATH", "./data/ledger.json"),
		SQLiteDBPath:   getEnv("SQLITE_DB_PATH", "./data/ledger.db"),
		SeedFile:       getEnv("SEED_FILE", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "home_ledger"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_events"),

		HAURL:        getEnv("HA_URL", ""),
		HAToken:      getEnv("HA_TOKEN", ""),
		SensorPrefix: getEnv("SENSOR_PREFIX", "home_ledger"),

		RefreshInterval:   getEnvDuration("REFRESH_INTERVAL", 5*time.Minute),
		RecurringSchedule: getEnv("RECURRING_SCHEDULE", "0 6 * * *"),

		RestrictDeactivation: getEnvBool("RESTRICT_DEACTIVATION", false),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate collects every configuration problem instead of stopping at the
// first one.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port %q: must be a number", c.Port))
	} else if port < 0 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 0 and 65535", port))
	}

	switch c.DataBackend {
	case "file":
		if c.LedgerFilePath == "" {
			errs = append(errs, "ledger file path cannot be empty with the file backend")
		}
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty with the sqlite backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid data backend %q: must be \"file\" or \"sqlite\"", c.DataBackend))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL %q: %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme %q: must be amqp or amqps", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is set")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is set")
		}
	}

	if c.HAURL != "" {
		if parsed, err := url.Parse(c.HAURL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
			errs = append(errs, fmt.Sprintf("invalid Home Assistant URL %q", c.HAURL))
		}
		if c.HAToken == "" {
			errs = append(errs, "Home Assistant token cannot be empty when HA URL is set")
		}
	}

	if c.RefreshInterval < time.Second {
		errs = append(errs, fmt.Sprintf("invalid refresh interval %v: must be at least 1 second", c.RefreshInterval))
	} else if c.RefreshInterval > 24*time.Hour {
		errs = append(errs, fmt.Sprintf("invalid refresh interval %v: must be at most 24 hours", c.RefreshInterval))
	}

	if _, err := cron.ParseStandard(c.RecurringSchedule); err != nil {
		errs = append(errs, fmt.Sprintf("invalid recurring schedule %q: %v", c.RecurringSchedule, err))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log level %q: must be debug, info, warn or error", c.LogLevel))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
