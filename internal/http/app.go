package http

import (
	"context"

	"cadence_sync_backend/platform/config"
	"cadence_sync_backend/platform/logger"
)

// RouterConfig is the configuration the router reads.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
	config.EnrollmentConfig
	config.MetricsConfig
}

// HealthChecker is a dependency probed by /api/ready.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App is assembled in cmd/api and passed to router.New.
type App struct {
	Config  RouterConfig
	Logger  *logger.Logger
	Health  []HealthChecker
	Modules []Module
}
