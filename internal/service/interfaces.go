package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/pageza/mealmate/backend/internal/models"
	"github.com/pageza/mealmate/backend/internal/quota"
	"github.com/pageza/mealmate/backend/internal/types"
)

// Documents is the per-user document store the services persist through.
type Documents interface {
	Get(ctx context.Context, userID uuid.UUID, collection string, out any) (bool, error)
	Set(ctx context.Context, userID uuid.UUID, collection string, doc any) error
	Subscribe(ctx context.Context, userID uuid.UUID, collection string, onUpdate func(json.RawMessage), onError func(error)) (func(), error)
}

// RecipeGateway searches the recipe provider.
type RecipeGateway interface {
	SearchRecipes(ctx context.Context, budget quota.Budget, query string, params types.SearchParams) ([]types.Recipe, error)
	GetRecipeInstructions(ctx context.Context, budget quota.Budget, id int) []types.Instruction
}

// RecipeSink receives every recipe the provider returns.
type RecipeSink interface {
	Remember(ctx context.Context, recipes []types.Recipe) error
}

// BudgetSource resolves the quota a user's provider calls are charged to.
type BudgetSource interface {
	Budget(ctx context.Context, userID uuid.UUID) (quota.Budget, error)
}

// ObjectStore publishes a text object and returns a link to it.
type ObjectStore interface {
	PutText(ctx context.Context, key, body string) (string, error)
}

// IMealGenerator produces single meals.
type IMealGenerator interface {
	GenerateMeal(ctx context.Context, budget quota.Budget, period types.Period, prefs types.UserPreferences) (*types.Meal, error)
}

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	ValidateToken(token string) (*types.TokenClaims, error)
	CurrentUser(ctx context.Context) (uuid.UUID, error)
	OnAuthChange(fn func(AuthEvent)) func()
}

// IProfileService defines the interface for user profile operations
type IProfileService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*types.Profile, error)
	UpdatePreferences(ctx context.Context, userID uuid.UUID, req *types.UpdatePreferencesRequest) (*types.Profile, error)
}

// IPlanService covers meal plan generation and editing
type IPlanService interface {
	GetPlan(ctx context.Context, userID uuid.UUID) (types.MealPlan, error)
	GeneratePlan(ctx context.Context, userID uuid.UUID, req *types.GeneratePlanRequest, progress ProgressFunc) (*types.GenerationResult, error)
	GenerateSlot(ctx context.Context, userID uuid.UUID, date string, period types.Period) (*types.Meal, error)
	CopySlot(ctx context.Context, userID uuid.UUID, date string, period types.Period) (*types.Meal, error)
	PasteSlot(ctx context.Context, userID uuid.UUID, date string, period types.Period) (*types.Meal, error)
	DeleteSlot(ctx context.Context, userID uuid.UUID, date string, period types.Period) error
	Stats(ctx context.Context, userID uuid.UUID, from, to string) (*types.PlanStats, error)
	CreateTemplate(ctx context.Context, userID uuid.UUID, name string) (*types.MealPlanTemplate, error)
	ListTemplates(ctx context.Context, userID uuid.UUID) ([]types.MealPlanTemplate, error)
	ApplyTemplate(ctx context.Context, userID uuid.UUID, id uuid.UUID) (types.MealPlan, error)
	Watch(ctx context.Context, userID uuid.UUID, onUpdate func(types.MealPlan), onError func(error)) (func(), error)
}

// IShoppingService covers the shopping list and the stock
type IShoppingService interface {
	GetList(ctx context.Context, userID uuid.UUID) ([]types.ShoppingItem, error)
	AddFromPlan(ctx context.Context, userID uuid.UUID) ([]types.ShoppingItem, error)
	AddItem(ctx context.Context, userID uuid.UUID, name string) ([]types.ShoppingItem, error)
	ToggleItem(ctx context.Context, userID uuid.UUID, index int) ([]types.ShoppingItem, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, index int) ([]types.ShoppingItem, error)
	Clear(ctx context.Context, userID uuid.UUID) error
	MoveToStock(ctx context.Context, userID uuid.UUID, name string) (*types.ShoppingState, error)
	GetStock(ctx context.Context, userID uuid.UUID) ([]types.StockItem, error)
	UpdateStockQuantity(ctx context.Context, userID uuid.UUID, name string, quantity int) ([]types.StockItem, error)
	RemoveStockItem(ctx context.Context, userID uuid.UUID, name string) ([]types.StockItem, error)
}

// IQuotaService reports and upgrades a user's provider budget
type IQuotaService interface {
	Status(ctx context.Context, userID uuid.UUID) (types.QuotaStatus, error)
	SetAPIKey(ctx context.Context, userID uuid.UUID, key string) (*types.APIKeyResponse, error)
}

// ISharingService exports plans for sharing
type ISharingService interface {
	ShareDay(ctx context.Context, userID uuid.UUID, date string) (*types.ShareResponse, error)
}

// IRecipeCache suggests meals from recipes seen before
type IRecipeCache interface {
	RecipeSink
	Similar(ctx context.Context, meal types.Meal, limit int) ([]types.Meal, error)
}
