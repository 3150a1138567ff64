package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bounded-cache/internal/logs"
)

// RequestLogger records each request in the in-memory ring logger, where
// the health analyzer can see it.
func RequestLogger(logger *logs.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.Info("%s %s %d %s",
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start),
		)
	}
}

// RecoveryLogger turns handler panics into 500 responses and an ERROR
// log entry, which escalates the health report to CRITICAL.
func RecoveryLogger(logger *logs.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered: %v", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}
