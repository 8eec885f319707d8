package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/regionpulse/regionpulse/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Upstream data source configuration
	Upstream UpstreamConfig

	// Monitoring job orchestrator configuration
	Monitor MonitorConfig

	// Audit log configuration
	Audit AuditConfig

	// Region topology configuration
	Region RegionConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// UpstreamConfig holds the enrollment data source and forecast service
// settings.
type UpstreamConfig struct {
	DataURL     string
	ForecastURL string
	Timeout     time.Duration

	// Response cache
	CacheTTL  time.Duration
	CacheSize int
	RedisAddr string
	RedisDB   int
}

// MonitorConfig holds the job orchestrator settings.
type MonitorConfig struct {
	Workers            int
	JobTimeout         time.Duration
	Retention          time.Duration
	MaxJobs            int
	DefaultRecordLimit int
}

// AuditConfig holds the audit event store settings.
type AuditConfig struct {
	// Driver is "sqlite3" or "postgres". Empty disables audit persistence.
	Driver string
	DSN    string
}

// RegionConfig holds region topology settings.
type RegionConfig struct {
	// AdjacencyPath points at the YAML file with state neighbor lists and
	// centroids. Empty falls back to uniform spatial weights.
	AdjacencyPath string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Upstream:      loadUpstreamConfig(),
		Monitor:       loadMonitorConfig(),
		Audit:         loadAuditConfig(),
		Region:        loadRegionConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("REGIONPULSE_HOST", "0.0.0.0"),
		Port:            getEnv("REGIONPULSE_PORT", "8080"),
		ReadTimeout:     getEnvDuration("REGIONPULSE_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("REGIONPULSE_WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:     getEnvDuration("REGIONPULSE_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("REGIONPULSE_SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

func loadUpstreamConfig() UpstreamConfig {
	return UpstreamConfig{
		DataURL:     getEnv("REGIONPULSE_DATA_URL", "http://localhost:9000"),
		ForecastURL: getEnv("REGIONPULSE_FORECAST_URL", ""),
		Timeout:     getEnvDuration("REGIONPULSE_UPSTREAM_TIMEOUT", 30*time.Second),
		CacheTTL:    getEnvDuration("REGIONPULSE_CACHE_TTL", 5*time.Minute),
		CacheSize:   getEnvInt("REGIONPULSE_CACHE_SIZE", 256),
		RedisAddr:   getEnv("REGIONPULSE_REDIS_ADDR", ""),
		RedisDB:     getEnvInt("REGIONPULSE_REDIS_DB", 0),
	}
}

func loadMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Workers:            getEnvInt("REGIONPULSE_MONITOR_WORKERS", 4),
		JobTimeout:         getEnvDuration("REGIONPULSE_JOB_TIMEOUT", 5*time.Minute),
		Retention:          getEnvDuration("REGIONPULSE_JOB_RETENTION", 24*time.Hour),
		MaxJobs:            getEnvInt("REGIONPULSE_MAX_JOBS", 1024),
		DefaultRecordLimit: getEnvInt("REGIONPULSE_DEFAULT_RECORD_LIMIT", 5000),
	}
}

func loadAuditConfig() AuditConfig {
	return AuditConfig{
		Driver: getEnv("REGIONPULSE_AUDIT_DRIVER", "sqlite3"),
		DSN:    getEnv("REGIONPULSE_AUDIT_DSN", "file:regionpulse_audit.db?_journal_mode=WAL"),
	}
}

func loadRegionConfig() RegionConfig {
	return RegionConfig{
		AdjacencyPath: getEnv("REGIONPULSE_ADJACENCY_PATH", ""),
	}
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:       observability.ParseLogLevel(getEnv("REGIONPULSE_LOG_LEVEL", "info")),
		MetricsEnabled: getEnvBool("REGIONPULSE_METRICS_ENABLED", true),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Upstream.DataURL == "" {
		return fmt.Errorf("upstream data URL is required")
	}
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive")
	}
	if c.Upstream.CacheSize <= 0 {
		return fmt.Errorf("cache size must be positive")
	}

	if c.Monitor.Workers <= 0 {
		return fmt.Errorf("monitor workers must be positive")
	}
	if c.Monitor.JobTimeout <= 0 {
		return fmt.Errorf("job timeout must be positive")
	}
	if c.Monitor.MaxJobs <= 0 {
		return fmt.Errorf("max jobs must be positive")
	}

	switch c.Audit.Driver {
	case "", "sqlite3", "postgres":
	default:
		return fmt.Errorf("invalid audit driver: %s (must be sqlite3 or postgres)", c.Audit.Driver)
	}
	if c.Audit.Driver != "" && c.Audit.DSN == "" {
		return fmt.Errorf("audit DSN is required when an audit driver is set")
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
