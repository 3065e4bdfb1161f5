package middleware

import (
	"time"

	"pdv/internal/infra"

	"github.com/gin-gonic/gin"
)

// Metrics records request count and latency per route template. Unmatched
// routes are grouped under "unmatched" to keep label cardinality bounded.
func Metrics(m *infra.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
