package api

import (
	"curbfinder/internal/api/handlers"
	"curbfinder/internal/api/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Router struct {
	curbHandler *handlers.CurbHandler
	logger      *zap.Logger
}

func NewRouter(curbHandler *handlers.CurbHandler, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		curbHandler: curbHandler,
		logger:      logger,
	}
}

func (r *Router) Setup(engine *gin.Engine) {
	engine.Use(middleware.RequestID(), middleware.Logger(r.logger))

	// Health check endpoint
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	curbs := engine.Group("/curbs")
	{
		curbs.GET("/search", r.curbHandler.Search)
		curbs.PUT("", r.curbHandler.Upsert)
		curbs.GET("/buckets", r.curbHandler.Buckets)
		curbs.GET("/buckets/:key", r.curbHandler.Bucket)
		curbs.GET("/stats", r.curbHandler.Stats)
	}
}
