package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/forte-savings/backend/internal/metrics"
)

// RequestLogger logs basic request information along with the request_id
// and feeds the request counter.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()
		metrics.IncRequest(c.Request.Method, strconv.Itoa(status))
		entry := GetRequestLogger(c)
		entry.WithFields(map[string]interface{}{
			"status":  status,
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"latency": latency.String(),
			"client":  c.ClientIP(),
		}).Info("handled request")
	}
}
