package middleware

import (
	"strconv"
	"time"

	"todoapi/backend/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics coleta métricas Prometheus por requisição HTTP.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// FullPath mantém a cardinalidade baixa (/api/todos/:id); rotas sem match viram "unmatched".
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		metrics.HTTPRequestCounter.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
