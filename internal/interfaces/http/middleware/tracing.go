package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// TracingConfig holds tracing middleware configuration
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// Tracing returns middleware that creates a server span for each request.
// When disabled it returns a pass-through handler.
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return otelgin.Middleware(cfg.ServiceName)
}
