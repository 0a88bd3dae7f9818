package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/mealmate/backend/internal/service"
	"github.com/pageza/mealmate/backend/internal/types"
)

// MockPlanService is a mock implementation of the PlanService interface.
// GeneratePlan reports the progress steps queued in Progress before
// returning.
type MockPlanService struct {
	mock.Mock
	Progress [][2]int
	// WatchErr, when set, is reported through onError before any plan is delivered
	WatchErr error
}

var _ service.IPlanService = (*MockPlanService)(nil)

func (m *MockPlanService) GetPlan(ctx context.Context, userID uuid.UUID) (types.MealPlan, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(types.MealPlan), args.Error(1)
}

func (m *MockPlanService) GeneratePlan(ctx context.Context, userID uuid.UUID, req *types.GeneratePlanRequest, progress service.ProgressFunc) (*types.GenerationResult, error) {
	if progress != nil {
		for _, p := range m.Progress {
			progress(p[0], p[1])
		}
	}
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.GenerationResult), args.Error(1)
}

func (m *MockPlanService) GenerateSlot(ctx context.Context, userID uuid.UUID, date string, period types.Period) (*types.Meal, error) {
	return m.slot(m.Called(ctx, userID, date, period))
}

func (m *MockPlanService) CopySlot(ctx context.Context, userID uuid.UUID, date string, period types.Period) (*types.Meal, error) {
	return m.slot(m.Called(ctx, userID, date, period))
}

func (m *MockPlanService) PasteSlot(ctx context.Context, userID uuid.UUID, date string, period types.Period) (*types.Meal, error) {
	return m.slot(m.Called(ctx, userID, date, period))
}

func (m *MockPlanService) slot(args mock.Arguments) (*types.Meal, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Meal), args.Error(1)
}

func (m *MockPlanService) DeleteSlot(ctx context.Context, userID uuid.UUID, date string, period types.Period) error {
	args := m.Called(ctx, userID, date, period)
	return args.Error(0)
}

func (m *MockPlanService) Stats(ctx context.Context, userID uuid.UUID, from, to string) (*types.PlanStats, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.PlanStats), args.Error(1)
}

func (m *MockPlanService) CreateTemplate(ctx context.Context, userID uuid.UUID, name string) (*types.MealPlanTemplate, error) {
	args := m.Called(ctx, userID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.MealPlanTemplate), args.Error(1)
}

func (m *MockPlanService) ListTemplates(ctx context.Context, userID uuid.UUID) ([]types.MealPlanTemplate, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.MealPlanTemplate), args.Error(1)
}

func (m *MockPlanService) ApplyTemplate(ctx context.Context, userID uuid.UUID, id uuid.UUID) (types.MealPlan, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(types.MealPlan), args.Error(1)
}

// Watch delivers every plan passed as the first return value, then keeps
// the subscription open until ctx ends.
func (m *MockPlanService) Watch(ctx context.Context, userID uuid.UUID, onUpdate func(types.MealPlan), onError func(error)) (func(), error) {
	args := m.Called(ctx, userID)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	plans, _ := args.Get(0).([]types.MealPlan)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if m.WatchErr != nil && onError != nil {
			onError(m.WatchErr)
		}
		for _, p := range plans {
			onUpdate(p)
		}
	}()
	return func() { <-done }, nil
}

// MockSharingService is a mock implementation of the SharingService interface
type MockSharingService struct {
	mock.Mock
}

var _ service.ISharingService = (*MockSharingService)(nil)

func (m *MockSharingService) ShareDay(ctx context.Context, userID uuid.UUID, date string) (*types.ShareResponse, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ShareResponse), args.Error(1)
}

// MockRecipeCache is a mock implementation of the recipe cache
type MockRecipeCache struct {
	mock.Mock
}

var _ service.IRecipeCache = (*MockRecipeCache)(nil)

func (m *MockRecipeCache) Remember(ctx context.Context, recipes []types.Recipe) error {
	args := m.Called(ctx, recipes)
	return args.Error(0)
}

func (m *MockRecipeCache) Similar(ctx context.Context, meal types.Meal, limit int) ([]types.Meal, error) {
	args := m.Called(ctx, meal, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Meal), args.Error(1)
}
