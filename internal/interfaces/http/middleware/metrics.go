package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// RequestObserver receives one call per finished request.
// *telemetry.Metrics implements it.
type RequestObserver interface {
	RequestStarted() func()
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

// HTTPMetrics records request counts, latency and in-flight requests. Routes
// are labelled by their pattern (e.g. "/s/:code"), never the raw path.
func HTTPMetrics(obs RequestObserver) gin.HandlerFunc {
	if obs == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		done := obs.RequestStarted()
		defer done()

		c.Next()

		obs.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
