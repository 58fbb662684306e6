// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SchedulerConfig provides settings for the asynq client and worker.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// EnrollmentConfig provides the tunables of the enrollment engine.
type EnrollmentConfig interface {
	GetLeadCadenceOrderMax() int
	GetOrderConflictMaxRetries() int
	GetEnforceTeamCadenceAccess() bool
	GetSyncRateLimit() (perSecond float64, burst int)
}

// OrderAuditConfig provides the period of the background order audit.
type OrderAuditConfig interface {
	GetOrderAuditInterval() time.Duration
}

// TaskServiceConfig provides settings for the external task service.
type TaskServiceConfig interface {
	GetTaskServiceURL() string
	GetTaskServiceToken() string
	GetTaskServiceTimeout() time.Duration
	IsTaskServiceEnabled() bool
}

// FieldMapCacheConfig provides settings for the field-map cache.
type FieldMapCacheConfig interface {
	GetFieldMapCacheTTL() time.Duration
}

// ArchiveConfig provides settings for the MinIO batch report archive.
type ArchiveConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetArchiveBucket() string
	IsArchiveEnabled() bool
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig interface {
	IsMetricsEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env             string
	HTTPAddr        string
	DatabaseURL     string
	JWTAccessSecret string
	CORSAllowAll    bool
	CORSOrigins     []string
	CORSAllowCreds  bool

	RedisURL         string
	RedisTLSInsecure bool
	AsynqQueueName   string
	AsynqConcurrency int

	LeadCadenceOrderMax      int
	OrderConflictMaxRetries  int
	EnforceTeamCadenceAccess bool
	SyncRatePerSecond        float64
	SyncRateBurst            int
	OrderAuditInterval       time.Duration

	TaskServiceURL     string
	TaskServiceToken   string
	TaskServiceTimeout time.Duration

	FieldMapCacheTTL time.Duration

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOUseSSL    bool
	ArchiveBucket  string

	MetricsEnabled bool
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// EnrollmentConfig implementation
func (c *Config) GetLeadCadenceOrderMax() int       { return c.LeadCadenceOrderMax }
func (c *Config) GetOrderConflictMaxRetries() int   { return c.OrderConflictMaxRetries }
func (c *Config) GetEnforceTeamCadenceAccess() bool { return c.EnforceTeamCadenceAccess }
func (c *Config) GetSyncRateLimit() (float64, int) {
	return c.SyncRatePerSecond, c.SyncRateBurst
}

// OrderAuditConfig implementation
func (c *Config) GetOrderAuditInterval() time.Duration { return c.OrderAuditInterval }

// TaskServiceConfig implementation
func (c *Config) GetTaskServiceURL() string            { return c.TaskServiceURL }
func (c *Config) GetTaskServiceToken() string          { return c.TaskServiceToken }
func (c *Config) GetTaskServiceTimeout() time.Duration { return c.TaskServiceTimeout }
func (c *Config) IsTaskServiceEnabled() bool           { return c.TaskServiceURL != "" }

// FieldMapCacheConfig implementation
func (c *Config) GetFieldMapCacheTTL() time.Duration { return c.FieldMapCacheTTL }

// ArchiveConfig implementation
func (c *Config) GetMinIOEndpoint() string  { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool      { return c.MinIOUseSSL }
func (c *Config) GetArchiveBucket() string  { return c.ArchiveBucket }
func (c *Config) IsArchiveEnabled() bool    { return c.MinIOEndpoint != "" }

// MetricsConfig implementation
func (c *Config) IsMetricsEnabled() bool { return c.MetricsEnabled }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:             getEnv("APP_ENV", "development"),
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		JWTAccessSecret: getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:    corsAllowAll,
		CORSOrigins:     corsOrigins,
		CORSAllowCreds:  strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),

		RedisURL:         getEnv("REDIS_URL", ""),
		RedisTLSInsecure: strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:   getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency: mustInt(getEnv("ASYNQ_CONCURRENCY", "10"), 10),

		LeadCadenceOrderMax:      mustInt(getEnv("LEAD_CADENCE_ORDER_MAX", "100000000"), 100000000),
		OrderConflictMaxRetries:  mustInt(getEnv("ORDER_CONFLICT_MAX_RETRIES", "3"), 3),
		EnforceTeamCadenceAccess: strings.EqualFold(getEnv("ENFORCE_TEAM_CADENCE_ACCESS", "false"), "true"),
		SyncRatePerSecond:        mustFloat(getEnv("SYNC_RATE_PER_SECOND", "20"), 20),
		SyncRateBurst:            mustInt(getEnv("SYNC_RATE_BURST", "40"), 40),
		OrderAuditInterval:       mustDuration(getEnv("ORDER_AUDIT_INTERVAL", "1h")),

		TaskServiceURL:     strings.TrimRight(getEnv("TASK_SERVICE_URL", ""), "/"),
		TaskServiceToken:   getEnv("TASK_SERVICE_TOKEN", ""),
		TaskServiceTimeout: mustDuration(getEnv("TASK_SERVICE_TIMEOUT", "10s")),

		FieldMapCacheTTL: mustDuration(getEnv("FIELD_MAP_CACHE_TTL", "10m")),

		MinIOEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:    strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		ArchiveBucket:  getEnv("MINIO_BUCKET_SYNC_REPORTS", "crm-sync-reports"),

		MetricsEnabled: strings.EqualFold(getEnv("METRICS_ENABLED", "true"), "true"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTAccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if c.CORSAllowAll && c.CORSAllowCreds {
		return fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if c.LeadCadenceOrderMax <= 1 {
		return fmt.Errorf("LEAD_CADENCE_ORDER_MAX must be greater than 1")
	}
	if c.OrderConflictMaxRetries < 0 {
		return fmt.Errorf("ORDER_CONFLICT_MAX_RETRIES cannot be negative")
	}
	if c.TaskServiceURL != "" && c.TaskServiceTimeout <= 0 {
		return fmt.Errorf("TASK_SERVICE_TIMEOUT must be a positive duration")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string, fallback int) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return result
}

func mustFloat(value string, fallback float64) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || result <= 0 {
		return fallback
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
