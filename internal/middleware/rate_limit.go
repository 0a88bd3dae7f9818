package middleware

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/mealmate/backend/internal/types"
)

// QuotaStatusSource reports the provider budget a user is charged to
type QuotaStatusSource interface {
	Status(ctx context.Context, userID uuid.UUID) (types.QuotaStatus, error)
}

// QuotaHeaders returns a Gin middleware that reports the caller's recipe
// provider budget. It never blocks a request.
func QuotaHeaders(source QuotaStatusSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			c.Next()
			return
		}

		status, err := source.Status(c.Request.Context(), userID)
		if err != nil {
			// Don't fail the request over a header
			c.Header("X-Quota-Error", "quota check failed")
			c.Next()
			return
		}

		SetQuotaHeaders(c, status)
		c.Next()
	}
}

// SetQuotaHeaders writes status as response headers
func SetQuotaHeaders(c *gin.Context, status types.QuotaStatus) {
	c.Header("X-Quota-Limit", strconv.Itoa(status.Limit))
	c.Header("X-Quota-Remaining", strconv.Itoa(status.Remaining))
	c.Header("X-Quota-Reset", strconv.Itoa(status.ResetInSeconds))
}
