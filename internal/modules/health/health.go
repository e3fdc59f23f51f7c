package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const pingTimeout = 2 * time.Second

// Check is one dependency pinged by the health endpoint.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// RegisterRoutes mounts GET /health. The status is "healthy" while every
// check passes and "degraded" with 503 otherwise.
func RegisterRoutes(r gin.IRoutes, checks ...Check) {
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()

		status := "healthy"
		code := http.StatusOK
		results := make(map[string]bool, len(checks))
		for _, check := range checks {
			ok := check.Ping(ctx) == nil
			results[check.Name] = ok
			if !ok {
				status = "degraded"
				code = http.StatusServiceUnavailable
			}
		}

		c.JSON(code, gin.H{
			"status": status,
			"checks": results,
		})
	})
}
