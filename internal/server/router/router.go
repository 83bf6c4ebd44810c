package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/buildmat/internal/server/handlers"
)

// Handlers groups the HTTP adapters mounted by the router.
type Handlers struct {
	Catalog  *handlers.CatalogHandler
	Engine   *handlers.EngineHandler
	Projects *handlers.ProjectHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(handlers.ResolveRole())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		materials := api.Group("/materials")
		materials.GET("", h.Catalog.List)
		materials.POST("", h.Catalog.Create)
		materials.GET("/digest", h.Catalog.Digest)
		materials.POST("/price-sync", h.Catalog.SyncPrices)
		materials.GET("/:id", h.Catalog.Get)
		materials.PATCH("/:id", h.Catalog.Update)
		materials.DELETE("/:id", h.Catalog.Delete)

		api.POST("/recommendations", h.Engine.Recommend)
		api.POST("/optimizations", h.Engine.Optimize)

		projects := api.Group("/projects")
		projects.GET("", h.Projects.List)
		projects.POST("", h.Projects.Create)
		projects.GET("/:id", h.Projects.Get)
		projects.POST("/:id/progress", h.Projects.RecordProgress)
		projects.POST("/:id/optimize", h.Projects.Optimize)
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("role", string(handlers.RoleOf(c))))
	}
}
