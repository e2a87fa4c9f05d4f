package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stemsi/marksheet-analytics/internal/config"
	"github.com/stemsi/marksheet-analytics/internal/handler"
	"github.com/stemsi/marksheet-analytics/internal/middleware"
	"github.com/stemsi/marksheet-analytics/internal/response"
	"github.com/stemsi/marksheet-analytics/internal/service"
)

const metricsPath = "/metrics"

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Dataset  *handler.DatasetHandler
	Analysis *handler.AnalysisHandler
	Review   *handler.ReviewHandler
	Admin    *handler.AdminHandler
	System   *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// limiter may be nil to disable rate limiting.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	limiter *middleware.RateLimiter,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.MaxMultipartMemory = cfg.MaxUploadBytes

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Prometheus negotiates its own compression.
	router.Use(middleware.BrotliWithConfig(middleware.BrotliConfig{
		Quality:   middleware.DefaultBrotliConfig.Quality,
		MinLength: middleware.DefaultBrotliConfig.MinLength,
		Skipper:   middleware.SkipPaths(metricsPath),
	}))

	router.GET("/health", handlers.System.Health)
	router.GET(metricsPath, gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	api.Use(middleware.CacheControl("no-store"))
	if limiter != nil {
		api.Use(limiter.Middleware())
	}

	// ─── 1. Datasets ───────────────────────────────────────────────────
	datasets := api.Group("/datasets")
	{
		datasets.POST("", handlers.Dataset.Upload)
		datasets.GET("/:id", handlers.Dataset.Get)
		datasets.DELETE("/:id", handlers.Dataset.Delete)

		datasets.POST("/:id/teachers", handlers.Analysis.Teachers)
		datasets.POST("/:id/bias", handlers.Analysis.Bias)
		datasets.POST("/:id/subjects", handlers.Analysis.Subjects)
	}

	// ─── 2. Reviews ────────────────────────────────────────────────────
	reviews := api.Group("/reviews")
	{
		reviews.GET("", handlers.Review.List)
		reviews.POST("", handlers.Review.Create)
	}

	// ─── 3. Admin Group (JWT) ──────────────────────────────────────────
	adminAPI := api.Group("/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		adminAPI.GET("/runs", handlers.Admin.ListRuns)
	}

	return router
}
