package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorLogger logs the errors handlers attached to a request. Access lines
// are left to gin.Logger.
func ErrorLogger(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.String("errors", c.Errors.String()),
		}
		if userID, ok := UserID(c); ok {
			fields = append(fields, zap.String("user_id", userID.String()))
		}

		if c.Writer.Status() >= 500 {
			logger.Error("request failed", fields...)
			return
		}
		logger.Warn("request rejected", fields...)
	}
}
