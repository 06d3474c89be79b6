package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fabriqa/configurator-backend/internal/logger"
)

type RequestLogMiddleware struct {
	log *logger.Logger
}

func NewRequestLogMiddleware(log *logger.Logger) *RequestLogMiddleware {
	return &RequestLogMiddleware{log: log.With("middleware", "RequestLogMiddleware")}
}

// Handler tags every request with an id and logs method, path, status
// and duration on completion.
func (m *RequestLogMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		m.log.Info("request completed",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
