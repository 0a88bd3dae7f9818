package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/mealmate/backend/internal/service"
	"github.com/pageza/mealmate/backend/internal/types"
)

// MockShoppingService is a mock implementation of the ShoppingService interface
type MockShoppingService struct {
	mock.Mock
}

var _ service.IShoppingService = (*MockShoppingService)(nil)

func (m *MockShoppingService) items(args mock.Arguments) ([]types.ShoppingItem, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.ShoppingItem), args.Error(1)
}

func (m *MockShoppingService) stock(args mock.Arguments) ([]types.StockItem, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.StockItem), args.Error(1)
}

func (m *MockShoppingService) GetList(ctx context.Context, userID uuid.UUID) ([]types.ShoppingItem, error) {
	return m.items(m.Called(ctx, userID))
}

func (m *MockShoppingService) AddFromPlan(ctx context.Context, userID uuid.UUID) ([]types.ShoppingItem, error) {
	return m.items(m.Called(ctx, userID))
}

func (m *MockShoppingService) AddItem(ctx context.Context, userID uuid.UUID, name string) ([]types.ShoppingItem, error) {
	return m.items(m.Called(ctx, userID, name))
}

func (m *MockShoppingService) ToggleItem(ctx context.Context, userID uuid.UUID, index int) ([]types.ShoppingItem, error) {
	return m.items(m.Called(ctx, userID, index))
}

func (m *MockShoppingService) RemoveItem(ctx context.Context, userID uuid.UUID, index int) ([]types.ShoppingItem, error) {
	return m.items(m.Called(ctx, userID, index))
}

func (m *MockShoppingService) Clear(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockShoppingService) MoveToStock(ctx context.Context, userID uuid.UUID, name string) (*types.ShoppingState, error) {
	args := m.Called(ctx, userID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ShoppingState), args.Error(1)
}

func (m *MockShoppingService) GetStock(ctx context.Context, userID uuid.UUID) ([]types.StockItem, error) {
	return m.stock(m.Called(ctx, userID))
}

func (m *MockShoppingService) UpdateStockQuantity(ctx context.Context, userID uuid.UUID, name string, quantity int) ([]types.StockItem, error) {
	return m.stock(m.Called(ctx, userID, name, quantity))
}

func (m *MockShoppingService) RemoveStockItem(ctx context.Context, userID uuid.UUID, name string) ([]types.StockItem, error) {
	return m.stock(m.Called(ctx, userID, name))
}
