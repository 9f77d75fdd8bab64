// Package api serves the read-only campaign status endpoints.
package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/stackscout/api/handler"
	"github.com/use-agent/stackscout/api/middleware"
	"github.com/use-agent/stackscout/config"
)

// NewRouter creates a configured Gin engine with the status routes.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if keys are set) → RateLimit
//
// Health stays outside auth so monitoring probes always work.
func NewRouter(progress handler.ProgressSource, cfg config.StatusConfig, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	v1.GET("/health", handler.Health(progress, startTime))

	protected := v1.Group("")
	if len(cfg.APIKeys) > 0 {
		protected.Use(middleware.Auth(cfg.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RequestsPerSecond, cfg.Burst))

	protected.GET("/campaign", handler.Campaign(progress))

	return r
}
