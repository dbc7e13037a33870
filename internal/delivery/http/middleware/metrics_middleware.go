package middleware

import (
	"time"

	"agency-site-backend/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics records count and latency per route template. Unmatched paths are
// grouped under "unmatched" to keep label cardinality bounded.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, endpoint, c.Writer.Status(), time.Since(start))
	}
}
