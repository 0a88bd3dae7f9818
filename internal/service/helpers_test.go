package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pageza/mealmate/backend/internal/models"
	"github.com/pageza/mealmate/backend/internal/quota"
	"github.com/pageza/mealmate/backend/internal/store"
	"github.com/pageza/mealmate/backend/internal/types"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Document{}, &models.CachedRecipe{}))
	return db
}

func setupDocs(t *testing.T) *store.DocumentStore {
	t.Helper()
	return store.NewDocumentStore(setupTestDB(t), store.NewLocalBus(), nil)
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) SearchRecipes(ctx context.Context, budget quota.Budget, query string, params types.SearchParams) ([]types.Recipe, error) {
	args := m.Called(ctx, budget, query, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Recipe), args.Error(1)
}

func (m *mockGateway) GetRecipeInstructions(ctx context.Context, budget quota.Budget, id int) []types.Instruction {
	args := m.Called(ctx, budget, id)
	return args.Get(0).([]types.Instruction)
}

type stubBudget struct{}

func (stubBudget) CanCall() bool                 { return true }
func (stubBudget) TimeUntilReset() time.Duration { return 0 }
func (stubBudget) RecordCall(context.Context)    {}
func (stubBudget) APIKey() string                { return "key" }

type stubBudgets struct{}

func (stubBudgets) Budget(context.Context, uuid.UUID) (quota.Budget, error) { return stubBudget{}, nil }

// scriptedGenerator returns meals named after their slot unless told to fail.
type scriptedGenerator struct {
	mu     sync.Mutex
	calls  int
	fail   map[int]error
	cancel func()
	after  int
}

func (g *scriptedGenerator) GenerateMeal(ctx context.Context, budget quota.Budget, period types.Period, prefs types.UserPreferences) (*types.Meal, error) {
	g.mu.Lock()
	g.calls++
	n := g.calls
	g.mu.Unlock()

	if g.cancel != nil && n == g.after {
		g.cancel()
		return nil, ctx.Err()
	}
	if err, ok := g.fail[n]; ok {
		return nil, err
	}
	return &types.Meal{
		Name:        string(period) + " meal",
		Calories:    CalorieTarget(prefs.CalorieGoal, period),
		Ingredients: []string{string(period) + " base", "salt"},
	}, nil
}
