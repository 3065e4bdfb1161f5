package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Pinger is implemented by store backends that can check connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health returns a JSON health check response.
// store may be nil (in-memory store) and rdb may be nil (redis disabled);
// those report "disabled". Never exposes credentials or internals.
func Health(store Pinger, rdb redis.UniversalClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		storeStatus := "disabled"
		if store != nil {
			storeStatus = "connected"
			if store.Ping(ctx) != nil {
				storeStatus = "error"
			}
		}

		redisStatus := "disabled"
		if rdb != nil {
			redisStatus = "connected"
			if rdb.Ping(ctx).Err() != nil {
				redisStatus = "error"
			}
		}

		status := http.StatusOK
		if storeStatus == "error" || redisStatus == "error" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":    status == http.StatusOK,
			"store": storeStatus,
			"redis": redisStatus,
		})
	}
}
