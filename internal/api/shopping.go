package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/mealmate/backend/internal/apperrors"
	"github.com/pageza/mealmate/backend/internal/middleware"
	"github.com/pageza/mealmate/backend/internal/service"
	"github.com/pageza/mealmate/backend/internal/types"
)

type ShoppingHandler struct {
	shoppingService service.IShoppingService
}

func NewShoppingHandler(shoppingService service.IShoppingService) *ShoppingHandler {
	return &ShoppingHandler{
		shoppingService: shoppingService,
	}
}

func (h *ShoppingHandler) RegisterRoutes(router *gin.RouterGroup) {
	shopping := router.Group("/shopping")
	{
		shopping.GET("", h.GetList)
		shopping.POST("/from-plan", h.AddFromPlan)
		shopping.POST("/items", h.AddItem)
		shopping.PATCH("/items/:index/toggle", h.ToggleItem)
		shopping.DELETE("/items/:index", h.RemoveItem)
		shopping.POST("/items/:index/stock", h.MoveToStock)
		shopping.DELETE("", h.Clear)
	}

	stock := router.Group("/stock")
	{
		stock.GET("", h.GetStock)
		stock.PUT("/:name", h.UpdateStock)
		stock.DELETE("/:name", h.RemoveStock)
	}
}

func (h *ShoppingHandler) GetList(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	items, err := h.shoppingService.GetList(c.Request.Context(), userID)
	h.respondItems(c, items, err)
}

func (h *ShoppingHandler) AddFromPlan(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	items, err := h.shoppingService.AddFromPlan(c.Request.Context(), userID)
	h.respondItems(c, items, err)
}

func (h *ShoppingHandler) AddItem(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.AddShoppingItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, apperrors.ErrEmptyItemName)
		return
	}
	items, err := h.shoppingService.AddItem(c.Request.Context(), userID, req.Name)
	h.respondItems(c, items, err)
}

func (h *ShoppingHandler) ToggleItem(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	index, ok := indexParam(c)
	if !ok {
		return
	}
	items, err := h.shoppingService.ToggleItem(c.Request.Context(), userID, index)
	h.respondItems(c, items, err)
}

func (h *ShoppingHandler) RemoveItem(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	index, ok := indexParam(c)
	if !ok {
		return
	}
	items, err := h.shoppingService.RemoveItem(c.Request.Context(), userID, index)
	h.respondItems(c, items, err)
}

// MoveToStock moves the item at :index, and every other entry with the same
// name, into the stock.
func (h *ShoppingHandler) MoveToStock(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	index, ok := indexParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	items, err := h.shoppingService.GetList(ctx, userID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	if index < 0 || index >= len(items) {
		middleware.RespondError(c, apperrors.ErrItemNotFound)
		return
	}

	state, err := h.shoppingService.MoveToStock(ctx, userID, items[index].Name)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *ShoppingHandler) Clear(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.shoppingService.Clear(c.Request.Context(), userID); err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ShoppingHandler) GetStock(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	stock, err := h.shoppingService.GetStock(c.Request.Context(), userID)
	h.respondStock(c, stock, err)
}

func (h *ShoppingHandler) UpdateStock(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, apperrors.ErrInvalidQuantity)
		return
	}
	stock, err := h.shoppingService.UpdateStockQuantity(c.Request.Context(), userID, c.Param("name"), req.Quantity)
	h.respondStock(c, stock, err)
}

func (h *ShoppingHandler) RemoveStock(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	stock, err := h.shoppingService.RemoveStockItem(c.Request.Context(), userID, c.Param("name"))
	h.respondStock(c, stock, err)
}

func (h *ShoppingHandler) respondItems(c *gin.Context, items []types.ShoppingItem, err error) {
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *ShoppingHandler) respondStock(c *gin.Context, stock []types.StockItem, err error) {
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stock": stock})
}
