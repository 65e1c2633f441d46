package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/scrapesheet/api/handler"
	"github.com/use-agent/scrapesheet/api/middleware"
	"github.com/use-agent/scrapesheet/cache"
	"github.com/use-agent/scrapesheet/config"
	"github.com/use-agent/scrapesheet/render"
	"github.com/use-agent/scrapesheet/upstream"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health stays outside auth so health checks always work. Background
// work started for the router, such as rate limiter eviction, ends with ctx.
func NewRouter(ctx context.Context, cfg *config.Config, client *upstream.Client, rd *render.Renderer, store *cache.Store, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	v1.GET("/health", handler.Health(store, startTime))

	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(ctx, cfg.RateLimit))

	// Normalize a posted payload, or fetch one from the upstream service.
	protected.POST("/normalize", handler.Normalize(rd, store, cfg.Server.MaxBodyBytes))
	protected.POST("/fetch", handler.Fetch(client, rd, store, cfg.Server.MaxBodyBytes))

	// Workbook download.
	protected.GET("/export/:id", handler.ExportStored(store, cfg.Export))
	protected.POST("/export", handler.ExportInline(cfg.Export, cfg.Server.MaxBodyBytes))

	return r
}
