// Package config provides configuration loading from environment variables.
package config

import (
	"os"
	"strconv"
	"time"
)

// Base contains common configuration shared by all tier services.
type Base struct {
	// Service identification
	ServiceName string
	ServiceTier string // web, api, data
	Environment string // development, staging, production
	Version     string

	// Server
	HTTPPort int

	// Downstream dependency (empty for the data tier)
	DownstreamURL     string
	DownstreamTimeout time.Duration

	// Observability
	OTLPEndpoint string
	LogLevel     string
	LogFormat    string // json, text

	// Tracing
	TracingEnabled  bool
	TracingSampling float64

	// Optional YAML latency profile overriding the built-in distribution
	LatencyProfilePath string
}

// Load loads base configuration from environment variables. The service
// name can be overridden with MESHTRACE_SERVICE_NAME so multiple instances
// of the same tier show up as distinct identities in the collector.
func Load(serviceName string) (*Base, error) {
	cfg := &Base{
		ServiceName: getEnv("MESHTRACE_SERVICE_NAME", serviceName),
		Environment: getEnv("MESHTRACE_ENV", "development"),
		Version:     getEnv("MESHTRACE_VERSION", "1.0.0"),

		// 0 means "not configured"; each service main fills in its
		// tier's default port.
		HTTPPort: getEnvInt("MESHTRACE_HTTP_PORT", 0),

		DownstreamURL:     getEnv("MESHTRACE_DOWNSTREAM_URL", ""),
		DownstreamTimeout: getEnvDuration("MESHTRACE_DOWNSTREAM_TIMEOUT", 5*time.Second),

		OTLPEndpoint: getEnv("MESHTRACE_OTLP_ENDPOINT", "localhost:4317"),
		LogLevel:     getEnv("MESHTRACE_LOG_LEVEL", "info"),
		LogFormat:    getEnv("MESHTRACE_LOG_FORMAT", "json"),

		TracingEnabled:  getEnvBool("MESHTRACE_TRACING_ENABLED", true),
		TracingSampling: getEnvFloat("MESHTRACE_TRACING_SAMPLING", 1.0),

		LatencyProfilePath: getEnv("MESHTRACE_LATENCY_PROFILE", ""),
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Base) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (c *Base) IsProduction() bool {
	return c.Environment == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
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

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
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
