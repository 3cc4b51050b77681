package hostapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"subnode/internal/logging"
	"subnode/internal/services"
)

const (
	requestIDHeader = "X-Request-Id"
	requestIDKey    = "request_id"
)

// requestID tags every request with an id, reusing the caller's header when
// present, and carries it on the request context for log correlation.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(services.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic recovered",
					logging.String(logging.FieldEventType, "http_panic"),
					logging.String("error", fmt.Sprintf("%v", rec)),
					logging.String("stack", string(debug.Stack())),
					logging.String("path", c.Request.URL.Path),
					logging.String("method", c.Request.Method),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					RequestID: c.GetString(requestIDKey),
					Error:     ErrorBody{Kind: services.KindUnknown, Message: "internal server error"},
				})
			}
		}()
		c.Next()
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []logging.Attr{
			logging.String(logging.FieldEventType, "http_request"),
			logging.String("method", c.Request.Method),
			logging.String("path", c.Request.URL.Path),
			logging.Int("status", status),
			logging.Duration("latency", time.Since(start)),
			logging.String(logging.FieldCorrelationID, c.GetString(requestIDKey)),
		}
		switch {
		case status >= 500:
			logger.Error("request completed", logging.Args(attrs...)...)
		case status >= 400:
			logger.Warn("request completed", logging.Args(attrs...)...)
		default:
			logger.Debug("request completed", logging.Args(attrs...)...)
		}
	}
}
