package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/mealmate/backend/internal/apperrors"
	"github.com/pageza/mealmate/backend/internal/middleware"
	"github.com/pageza/mealmate/backend/internal/service"
	"github.com/pageza/mealmate/backend/internal/types"
)

// Services are the dependencies behind the HTTP handlers.
type Services struct {
	Auth     service.IAuthService
	Profile  service.IProfileService
	Plan     service.IPlanService
	Shopping service.IShoppingService
	Quota    service.IQuotaService
	Sharing  service.ISharingService
	Recipes  service.IRecipeCache
}

// Handlers groups every handler of the API.
type Handlers struct {
	Auth     *AuthHandler
	Profile  *ProfileHandler
	Plan     *PlanHandler
	Shopping *ShoppingHandler
	Quota    *QuotaHandler
}

func NewHandlers(svc Services) *Handlers {
	return &Handlers{
		Auth:     NewAuthHandler(svc.Auth),
		Profile:  NewProfileHandler(svc.Profile),
		Plan:     NewPlanHandler(svc.Plan, svc.Sharing, svc.Recipes),
		Shopping: NewShoppingHandler(svc.Shopping),
		Quota:    NewQuotaHandler(svc.Quota),
	}
}

// RegisterRoutes mounts public routes on public and everything else on
// protected, which must already require authentication.
func (h *Handlers) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/health", HealthCheck)
	h.Auth.RegisterPublicRoutes(public)

	h.Auth.RegisterRoutes(protected)
	h.Profile.RegisterRoutes(protected)
	h.Plan.RegisterRoutes(protected)
	h.Shopping.RegisterRoutes(protected)
	h.Quota.RegisterRoutes(protected)
}

// currentUser returns the authenticated user or answers 401.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		middleware.RespondError(c, apperrors.ErrAuthenticationRequired)
		return uuid.Nil, false
	}
	return userID, true
}

// bindJSON decodes the body or answers 400.
func bindJSON(c *gin.Context, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		middleware.RespondError(c, apperrors.ErrInvalidRequest)
		return false
	}
	return true
}

func indexParam(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		middleware.RespondError(c, apperrors.ErrItemNotFound)
		return 0, false
	}
	return index, true
}

func slotParams(c *gin.Context) (string, types.Period) {
	return c.Param("date"), types.Period(c.Param("period"))
}
