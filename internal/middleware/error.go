package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/mealmate/backend/internal/apperrors"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// RespondError writes err as a plain-language JSON error. The raw error is
// attached to the gin context for the request logger.
func RespondError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(apperrors.HTTPStatus(err), ErrorResponse{Error: apperrors.UserMessage(err)})
}

// Recovery turns a panic into a JSON 500 and logs it.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic while handling request",
					zap.Any("panic", rec),
					zap.String("path", c.Request.URL.Path),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal Server Error"})
			}
		}()
		c.Next()
	}
}
