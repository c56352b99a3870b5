package middleware

import (
	"strconv"

	"github.com/SscSPs/invoice_pipeline/internal/platform/metrics"
	"github.com/gin-gonic/gin"
)

// RequestMetrics counts served requests by route template and status code.
func RequestMetrics(m *metrics.PipelineMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTPRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()))
	}
}
