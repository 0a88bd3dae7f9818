package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/mealmate/backend/internal/middleware"
	"github.com/pageza/mealmate/backend/internal/service"
	"github.com/pageza/mealmate/backend/internal/types"
)

type QuotaHandler struct {
	quotaService service.IQuotaService
}

func NewQuotaHandler(quotaService service.IQuotaService) *QuotaHandler {
	return &QuotaHandler{
		quotaService: quotaService,
	}
}

func (h *QuotaHandler) RegisterRoutes(router *gin.RouterGroup) {
	q := router.Group("/quota")
	{
		q.GET("", h.GetStatus)
		q.PUT("/api-key", h.SetAPIKey)
	}
}

func (h *QuotaHandler) GetStatus(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	status, err := h.quotaService.Status(c.Request.Context(), userID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *QuotaHandler) SetAPIKey(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.SetAPIKeyRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.quotaService.SetAPIKey(c.Request.Context(), userID, req.APIKey)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	middleware.SetQuotaHeaders(c, resp.Status)
	c.JSON(http.StatusOK, resp)
}
