package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/mealmate/backend/internal/apperrors"
	"github.com/pageza/mealmate/backend/internal/middleware"
	"github.com/pageza/mealmate/backend/internal/service"
	"github.com/pageza/mealmate/backend/internal/types"
)

const defaultSimilarLimit = 5

type PlanHandler struct {
	planService    service.IPlanService
	sharingService service.ISharingService
	recipeCache    service.IRecipeCache
}

func NewPlanHandler(planService service.IPlanService, sharingService service.ISharingService, recipeCache service.IRecipeCache) *PlanHandler {
	return &PlanHandler{
		planService:    planService,
		sharingService: sharingService,
		recipeCache:    recipeCache,
	}
}

func (h *PlanHandler) RegisterRoutes(router *gin.RouterGroup) {
	plan := router.Group("/plan")
	{
		plan.GET("", h.GetPlan)
		plan.POST("/generate", h.GeneratePlan)
		plan.GET("/stats", h.Stats)
		plan.GET("/events", h.Events)
		plan.POST("/share/:date", h.ShareDay)

		slots := plan.Group("/slots/:date/:period")
		slots.POST("/generate", h.GenerateSlot)
		slots.DELETE("", h.DeleteSlot)
		slots.POST("/copy", h.CopySlot)
		slots.POST("/paste", h.PasteSlot)
		slots.GET("/similar", h.Similar)
	}

	templates := router.Group("/templates")
	{
		templates.GET("", h.ListTemplates)
		templates.POST("", h.CreateTemplate)
		templates.POST("/:id/apply", h.ApplyTemplate)
	}
}

type progressEvent struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

type generateOutcome struct {
	result *types.GenerationResult
	err    error
}

func wantsStream(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/event-stream")
}

func streamHeaders(c *gin.Context) {
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
}

func (h *PlanHandler) GetPlan(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	plan, err := h.planService.GetPlan(c.Request.Context(), userID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// GeneratePlan fills the requested slots. Clients that accept
// text/event-stream get "progress" events followed by one "complete" or
// "error" event.
func (h *PlanHandler) GeneratePlan(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.GeneratePlanRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()

	if !wantsStream(c) {
		result, err := h.planService.GeneratePlan(ctx, userID, &req, nil)
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	// Unbuffered so every progress event is written before the outcome.
	progress := make(chan progressEvent)
	done := make(chan generateOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- generateOutcome{err: fmt.Errorf("plan generation panicked: %v", r)}
			}
		}()
		result, err := h.planService.GeneratePlan(ctx, userID, &req, func(n, total int) {
			select {
			case progress <- progressEvent{Done: n, Total: total}:
			case <-ctx.Done():
			}
		})
		done <- generateOutcome{result: result, err: err}
	}()

	streamHeaders(c)
	c.Stream(func(w io.Writer) bool {
		select {
		case p := <-progress:
			c.SSEvent("progress", p)
			return true
		case out := <-done:
			if out.err != nil {
				_ = c.Error(out.err)
				c.SSEvent("error", middleware.ErrorResponse{Error: apperrors.UserMessage(out.err)})
				return false
			}
			c.SSEvent("complete", out.result)
			return false
		case <-ctx.Done():
			return false
		}
	})
}

// Events streams the stored plan as "plan" events until the client leaves.
func (h *PlanHandler) Events(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	updates := make(chan types.MealPlan)
	failures := make(chan error, 1)
	// quit releases a pending delivery once the stream has ended
	quit := make(chan struct{})
	stop, err := h.planService.Watch(ctx, userID, func(plan types.MealPlan) {
		select {
		case updates <- plan:
		case <-quit:
		case <-ctx.Done():
		}
	}, func(err error) {
		select {
		case failures <- err:
		default:
		}
	})
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	defer stop()
	defer close(quit)

	streamHeaders(c)
	c.Stream(func(w io.Writer) bool {
		select {
		case plan := <-updates:
			c.SSEvent("plan", plan)
			return true
		case err := <-failures:
			_ = c.Error(err)
			c.SSEvent("error", middleware.ErrorResponse{Error: apperrors.UserMessage(err)})
			return false
		case <-ctx.Done():
			return false
		}
	})
}

func (h *PlanHandler) Stats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	stats, err := h.planService.Stats(c.Request.Context(), userID, c.Query("from"), c.Query("to"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *PlanHandler) GenerateSlot(c *gin.Context) {
	h.slotAction(c, h.planService.GenerateSlot)
}

func (h *PlanHandler) CopySlot(c *gin.Context) {
	h.slotAction(c, h.planService.CopySlot)
}

func (h *PlanHandler) PasteSlot(c *gin.Context) {
	h.slotAction(c, h.planService.PasteSlot)
}

type slotFunc func(ctx context.Context, userID uuid.UUID, date string, period types.Period) (*types.Meal, error)

func (h *PlanHandler) slotAction(c *gin.Context, fn slotFunc) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	date, period := slotParams(c)
	meal, err := fn(c.Request.Context(), userID, date, period)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meal)
}

func (h *PlanHandler) DeleteSlot(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	date, period := slotParams(c)
	if err := h.planService.DeleteSlot(c.Request.Context(), userID, date, period); err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Similar suggests cached recipes close to a slot's macros.
func (h *PlanHandler) Similar(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	limit := defaultSimilarLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			middleware.RespondError(c, apperrors.ErrInvalidRequest)
			return
		}
		limit = n
	}

	ctx := c.Request.Context()
	plan, err := h.planService.GetPlan(ctx, userID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	date, period := slotParams(c)
	meal, found := plan.Slot(date, period)
	if !found {
		middleware.RespondError(c, apperrors.ErrMealNotFound)
		return
	}

	meals, err := h.recipeCache.Similar(ctx, *meal, limit)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meals": meals})
}

func (h *PlanHandler) ShareDay(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	resp, err := h.sharingService.ShareDay(c.Request.Context(), userID, c.Param("date"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PlanHandler) ListTemplates(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	templates, err := h.planService.ListTemplates(c.Request.Context(), userID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

func (h *PlanHandler) CreateTemplate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.CreateTemplateRequest
	if !bindJSON(c, &req) {
		return
	}
	tmpl, err := h.planService.CreateTemplate(c.Request.Context(), userID, req.Name)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tmpl)
}

func (h *PlanHandler) ApplyTemplate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		middleware.RespondError(c, apperrors.ErrTemplateNotFound)
		return
	}
	plan, err := h.planService.ApplyTemplate(c.Request.Context(), userID, id)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}
