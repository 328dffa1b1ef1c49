package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	RequestIDHeader  = "X-Request-ID"
	loggerContextKey = "logger"
)

// RequestLogger tags each request with an id and logs one line when it completes.
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		e := logger.WithContext(c.Request.Context()).WithField("request_id", requestID)
		c.Set(loggerContextKey, e)

		c.Next()

		fields := logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			e.WithFields(fields).Error("request failed")
		case status >= 400:
			e.WithFields(fields).Warn("request rejected")
		default:
			e.WithFields(fields).Info("request completed")
		}
	}
}

// Logger returns the request-scoped logger, or the standard one outside RequestLogger.
func Logger(c *gin.Context) *logrus.Entry {
	if v, ok := c.Get(loggerContextKey); ok {
		if e, ok := v.(*logrus.Entry); ok {
			return e
		}
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
