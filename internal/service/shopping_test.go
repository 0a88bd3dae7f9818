package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/mealmate/backend/internal/apperrors"
	"github.com/pageza/mealmate/backend/internal/store"
	"github.com/pageza/mealmate/backend/internal/types"
)

func setupShopping(t *testing.T) (*ShoppingService, *store.DocumentStore) {
	t.Helper()
	svc, docs := setupPlanService(t, &scriptedGenerator{})
	return NewShoppingService(docs, svc), docs
}

func names(items []types.ShoppingItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

func TestDeriveShoppingList(t *testing.T) {
	plan := types.MealPlan{
		"2024-03-02": {Breakfast: meal("c", 0, 0, 0, 0, "2 eggs", "milk")},
		"2024-03-01": {
			Dinner:    meal("b", 0, 0, 0, 0, "rice", "2 eggs"),
			Breakfast: meal("a", 0, 0, 0, 0, "oats", "milk"),
		},
	}

	items := DeriveShoppingList(plan)
	assert.Equal(t, []string{"oats", "milk", "rice", "2 eggs"}, names(items))
	for _, it := range items {
		assert.False(t, it.Checked)
	}

	assert.Equal(t, []types.ShoppingItem{}, DeriveShoppingList(types.MealPlan{}))
}

func TestDeriveShoppingListKeepsNearDuplicates(t *testing.T) {
	plan := types.MealPlan{
		"2024-03-01": {Lunch: meal("a", 0, 0, 0, 0, "1 cup rice", "1 Cup Rice", "1 cup rice")},
	}
	assert.Equal(t, []string{"1 cup rice", "1 Cup Rice"}, names(DeriveShoppingList(plan)))
}

func TestShoppingListOperations(t *testing.T) {
	svc, _ := setupShopping(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.AddItem(ctx, userID, "   ")
	assert.ErrorIs(t, err, apperrors.ErrEmptyItemName)

	items, err := svc.AddItem(ctx, userID, "  bread ")
	require.NoError(t, err)
	assert.Equal(t, []types.ShoppingItem{{Name: "bread"}}, items)

	_, err = svc.AddItem(ctx, userID, "apples")
	require.NoError(t, err)

	items, err = svc.ToggleItem(ctx, userID, 1)
	require.NoError(t, err)
	assert.True(t, items[1].Checked)

	_, err = svc.ToggleItem(ctx, userID, 5)
	assert.ErrorIs(t, err, apperrors.ErrItemNotFound)
	_, err = svc.RemoveItem(ctx, userID, -1)
	assert.ErrorIs(t, err, apperrors.ErrItemNotFound)

	items, err = svc.RemoveItem(ctx, userID, 0)
	require.NoError(t, err)
	assert.Equal(t, []types.ShoppingItem{{Name: "apples", Checked: true}}, items)

	require.NoError(t, svc.Clear(ctx, userID))
	items, err = svc.GetList(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAddFromPlanSkipsListedItems(t *testing.T) {
	svc, docs := setupShopping(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, docs.Set(ctx, userID, store.MealPlans, types.MealPlan{
		"2024-03-01": {Lunch: meal("a", 0, 0, 0, 0, "rice", "beans")},
	}))
	require.NoError(t, docs.Set(ctx, userID, store.ShoppingLists, types.ShoppingList{
		Items: []types.ShoppingItem{{Name: "beans", Checked: true}},
	}))

	items, err := svc.AddFromPlan(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []types.ShoppingItem{{Name: "beans", Checked: true}, {Name: "rice"}}, items)
}

func TestMoveToStock(t *testing.T) {
	svc, docs := setupShopping(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, docs.Set(ctx, userID, store.ShoppingLists, types.ShoppingList{
		Items: []types.ShoppingItem{{Name: "milk"}, {Name: "eggs"}, {Name: "milk", Checked: true}},
	}))
	require.NoError(t, docs.Set(ctx, userID, store.Stocks, types.Stock{
		Items: []types.StockItem{{Name: "eggs", Quantity: 2}},
	}))

	state, err := svc.MoveToStock(ctx, userID, "milk")
	require.NoError(t, err)
	assert.Equal(t, []types.ShoppingItem{{Name: "eggs"}}, state.ShoppingList)
	assert.Equal(t, []types.StockItem{{Name: "eggs", Quantity: 2}, {Name: "milk", Quantity: 1}}, state.Stock)

	state, err = svc.MoveToStock(ctx, userID, "eggs")
	require.NoError(t, err)
	assert.Empty(t, state.ShoppingList)
	assert.Equal(t, 3, state.Stock[0].Quantity)

	_, err = svc.MoveToStock(ctx, userID, "caviar")
	assert.ErrorIs(t, err, apperrors.ErrItemNotFound)
}

func TestStockOperations(t *testing.T) {
	svc, docs := setupShopping(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, docs.Set(ctx, userID, store.Stocks, types.Stock{
		Items: []types.StockItem{{Name: "rice", Quantity: 1}, {Name: "oil", Quantity: 1}},
	}))

	_, err := svc.UpdateStockQuantity(ctx, userID, "rice", 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidQuantity)
	_, err = svc.UpdateStockQuantity(ctx, userID, "salt", 2)
	assert.ErrorIs(t, err, apperrors.ErrItemNotFound)

	stock, err := svc.UpdateStockQuantity(ctx, userID, "rice", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, stock[0].Quantity)

	stock, err = svc.RemoveStockItem(ctx, userID, "oil")
	require.NoError(t, err)
	assert.Equal(t, []types.StockItem{{Name: "rice", Quantity: 4}}, stock)

	stock, err = svc.GetStock(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, stock, 1)
}
