package router

import (
	"pricefeed/internal/config"
	"pricefeed/internal/handler"
	"pricefeed/internal/middleware"
	"pricefeed/internal/service"
	"pricefeed/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires the HTTP surface over an already-composed pipeline service.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis/Storage
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, store handler.Pinger, svc service.IngestService, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())

	ingestH := handler.NewIngestHandler(svc, dispatcher)

	r.GET("/health", handler.Health(db, rdb, store))

	v1 := r.Group("/v1")
	{
		v1.POST("/csv", ingestH.UploadCSV)
		v1.POST("/invoices", ingestH.UploadInvoice)
		v1.POST("/ingest", ingestH.Reprocess)
	}

	return r
}
