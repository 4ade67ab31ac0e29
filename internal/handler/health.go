package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Pinger probes one infrastructure dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports the state of every dependency a pipeline run touches:
// Postgres, the Redis job queue, and the object store. 503 when any is down.
// Never exposes credentials or internals.
func Health(db *gorm.DB, rdb *redis.Client, store Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{
			"db":      "connected",
			"redis":   "connected",
			"storage": "connected",
		}

		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			checks["db"] = "error"
		}
		if rdb.Ping(ctx).Err() != nil {
			checks["redis"] = "error"
		}
		if store == nil || store.Ping(ctx) != nil {
			checks["storage"] = "error"
		}

		status := http.StatusOK
		for _, state := range checks {
			if state != "connected" {
				status = http.StatusServiceUnavailable
				break
			}
		}

		c.JSON(status, gin.H{
			"ok":     status == http.StatusOK,
			"checks": checks,
		})
	}
}
