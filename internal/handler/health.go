package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Health checks the database and, when settings live in Redis, the Redis
// connection. It never exposes credentials or internals.
func Health(st *store.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		if st.Ping(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "disabled"
		if rdb != nil {
			redisStatus = "connected"
			if rdb.Ping(ctx).Err() != nil {
				redisStatus = "error"
			}
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus == "error" {
			status = http.StatusServiceUnavailable
		}

		body := gin.H{
			"ok":    status == http.StatusOK,
			"db":    dbStatus,
			"redis": redisStatus,
		}
		if v, err := st.SchemaVersion(ctx); err == nil {
			body["schema_version"] = v
		}
		c.JSON(status, body)
	}
}
