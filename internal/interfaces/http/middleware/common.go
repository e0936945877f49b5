package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/warehousepro/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Header and context key names shared across the API surface
const (
	RequestIDHeader = "X-Request-ID"
	UserIDHeader    = "X-User-ID"
	RequestIDKey    = "X-Request-ID"
)

// RequestID tags every request with an ID, echoes it back in the response
// and threads it through the request context so log lines correlate.
func RequestID(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(RequestIDKey, requestID)
		c.Writer.Header().Set(RequestIDHeader, requestID)

		ctx, _ := logger.WithRequestID(c.Request.Context(), log, requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// UserContext resolves the acting user from the X-User-ID header and stores
// it in the request context. The audit trail reads this identity when it
// stamps committed changes; absent a header the write is attributed to
// "system" downstream.
func UserContext(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(UserIDHeader)
		if userID != "" {
			ctx, _ := logger.WithUserID(c.Request.Context(), log, userID)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}
