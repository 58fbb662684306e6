// Package http holds the contract between the router and the domain modules.
package http

import (
	"cadence_sync_backend/platform/config"
	"cadence_sync_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Module is a bounded context that mounts its own routes.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext is what the router hands every module.
type RouterContext struct {
	Engine *gin.Engine
	// V1 is /api/v1 without authentication.
	V1 *gin.RouterGroup
	// Protected is /api/v1 behind AuthMiddleware; handlers can rely on the
	// user and tenant being set.
	Protected       *gin.RouterGroup
	Config          config.JWTConfig
	AuthMiddleware  gin.HandlerFunc
	SyncRateLimiter *httpkit.SyncRateLimiter
}
