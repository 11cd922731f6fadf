package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zhanserikAmangeldi/taskmate-service/internal/dto"
	"github.com/zhanserikAmangeldi/taskmate-service/pkg/logger"
	"github.com/zhanserikAmangeldi/taskmate-service/pkg/metrics"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "request_id"
)

// RequestLogger logs one line per request and records its latency.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		reqLogger := logger.ForRequest(requestID).With(
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
		)

		reqLogger.Debug("request_started",
			zap.String("query", redactQuery(c)),
		)

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPLatency.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(statusCode)).
			Observe(duration.Seconds())

		userID := ""
		if id, ok := GetUserID(c); ok {
			userID = id.String()
		}

		fields := []zap.Field{
			zap.Int("status_code", statusCode),
			zap.Duration("duration", duration),
			zap.Int("response_size", c.Writer.Size()),
			zap.String("user_id", userID),
		}

		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		switch {
		case statusCode >= 500:
			reqLogger.Error("request_completed", fields...)
		case statusCode >= 400:
			reqLogger.Warn("request_completed", fields...)
		case duration > time.Second:
			reqLogger.Warn("slow_request", fields...)
		default:
			reqLogger.Info("request_completed", fields...)
		}
	}
}

// redactQuery keeps verification tokens out of the logs.
func redactQuery(c *gin.Context) string {
	q := c.Request.URL.Query()
	if q.Has("token") {
		q.Set("token", "REDACTED")
	}
	return q.Encode()
}

func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

// GetLogger returns a logger with request context
func GetLogger(c *gin.Context) *zap.Logger {
	log := logger.ForRequest(GetRequestID(c))
	if id, ok := GetUserID(c); ok {
		log = log.With(logger.UserID(id))
	}
	return log
}

func RecoveryWithLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				requestID := GetRequestID(c)

				logger.ErrorWithStack("panic_recovered", fmt.Errorf("%v", err),
					zap.String("request_id", requestID),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError,
					dto.NewErrorResponse("internal_server_error", "An unexpected error occurred"))
			}
		}()

		c.Next()
	}
}
