package worker

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ReadinessDeps is what readiness pings besides the loop itself.
type ReadinessDeps interface {
	Ping(ctx context.Context) error
}

func (s *Sweeper) HealthHandler(deps ReadinessDeps) http.Handler {
	r := gin.New()

	r.Use(gin.Recovery())

	// liveness: process is up

	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"ok": true,
		})
	})

	// readiness: the loop is running and the database answers
	r.GET("/readyz", func(c *gin.Context) {
		if !s.isReady() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
			return
		}

		if deps != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 500*time.Millisecond)
			defer cancel()

			if err := deps.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_not_ready"})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/statsz", func(c *gin.Context) {
		snap := s.stats.Snapshot()
		c.JSON(http.StatusOK, gin.H{
			"runs":            snap.Runs,
			"failed":          snap.Failed,
			"cleared":         snap.Cleared,
			"avg_duration_ms": snap.AverageDuration.Milliseconds(),
			"max_duration_ms": snap.MaxDuration.Milliseconds(),
		})
	})

	return r
}
