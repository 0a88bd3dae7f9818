package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/pageza/mealmate/backend/internal/apperrors"
	"github.com/pageza/mealmate/backend/internal/store"
	"github.com/pageza/mealmate/backend/internal/types"
)

// ShoppingService manages the shopping list and the pantry stock.
type ShoppingService struct {
	docs  Documents
	plans IPlanService
}

var _ IShoppingService = (*ShoppingService)(nil)

func NewShoppingService(docs Documents, plans IPlanService) *ShoppingService {
	return &ShoppingService{
		docs:  docs,
		plans: plans,
	}
}

// DeriveShoppingList collects the ingredient lines of a plan, deduplicated
// by exact text, in date then period then line order. Every item starts
// unchecked.
func DeriveShoppingList(plan types.MealPlan) []types.ShoppingItem {
	items := []types.ShoppingItem{}
	seen := make(map[string]bool)
	for _, date := range plan.Dates() {
		for _, meal := range plan[date].Meals() {
			for _, line := range meal.Ingredients {
				if seen[line] {
					continue
				}
				seen[line] = true
				items = append(items, types.ShoppingItem{Name: line})
			}
		}
	}
	return items
}

func (s *ShoppingService) list(ctx context.Context, userID uuid.UUID) ([]types.ShoppingItem, error) {
	var doc types.ShoppingList
	if _, err := s.docs.Get(ctx, userID, store.ShoppingLists, &doc); err != nil {
		return nil, err
	}
	if doc.Items == nil {
		doc.Items = []types.ShoppingItem{}
	}
	return doc.Items, nil
}

func (s *ShoppingService) saveList(ctx context.Context, userID uuid.UUID, items []types.ShoppingItem) error {
	return s.docs.Set(ctx, userID, store.ShoppingLists, types.ShoppingList{Items: items})
}

func (s *ShoppingService) stock(ctx context.Context, userID uuid.UUID) ([]types.StockItem, error) {
	var doc types.Stock
	if _, err := s.docs.Get(ctx, userID, store.Stocks, &doc); err != nil {
		return nil, err
	}
	if doc.Items == nil {
		doc.Items = []types.StockItem{}
	}
	return doc.Items, nil
}

func (s *ShoppingService) saveStock(ctx context.Context, userID uuid.UUID, items []types.StockItem) error {
	return s.docs.Set(ctx, userID, store.Stocks, types.Stock{Items: items})
}

func (s *ShoppingService) GetList(ctx context.Context, userID uuid.UUID) ([]types.ShoppingItem, error) {
	return s.list(ctx, userID)
}

// AddFromPlan appends the plan's ingredients that are not on the list yet.
func (s *ShoppingService) AddFromPlan(ctx context.Context, userID uuid.UUID) ([]types.ShoppingItem, error) {
	plan, err := s.plans.GetPlan(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.list(ctx, userID)
	if err != nil {
		return nil, err
	}

	present := make(map[string]bool, len(items))
	for _, it := range items {
		present[it.Name] = true
	}
	for _, it := range DeriveShoppingList(plan) {
		if !present[it.Name] {
			items = append(items, it)
		}
	}

	if err := s.saveList(ctx, userID, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *ShoppingService) AddItem(ctx context.Context, userID uuid.UUID, name string) ([]types.ShoppingItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.ErrEmptyItemName
	}
	items, err := s.list(ctx, userID)
	if err != nil {
		return nil, err
	}
	items = append(items, types.ShoppingItem{Name: name})
	if err := s.saveList(ctx, userID, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *ShoppingService) ToggleItem(ctx context.Context, userID uuid.UUID, index int) ([]types.ShoppingItem, error) {
	items, err := s.list(ctx, userID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(items) {
		return nil, apperrors.ErrItemNotFound
	}
	items[index].Checked = !items[index].Checked
	if err := s.saveList(ctx, userID, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *ShoppingService) RemoveItem(ctx context.Context, userID uuid.UUID, index int) ([]types.ShoppingItem, error) {
	items, err := s.list(ctx, userID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(items) {
		return nil, apperrors.ErrItemNotFound
	}
	items = append(items[:index], items[index+1:]...)
	if err := s.saveList(ctx, userID, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *ShoppingService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.saveList(ctx, userID, []types.ShoppingItem{})
}

// MoveToStock takes every list entry called name off the list and adds one
// unit of it to the stock.
func (s *ShoppingService) MoveToStock(ctx context.Context, userID uuid.UUID, name string) (*types.ShoppingState, error) {
	items, err := s.list(ctx, userID)
	if err != nil {
		return nil, err
	}
	kept := make([]types.ShoppingItem, 0, len(items))
	for _, it := range items {
		if it.Name != name {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(items) {
		return nil, apperrors.ErrItemNotFound
	}

	stock, err := s.stock(ctx, userID)
	if err != nil {
		return nil, err
	}
	merged := false
	for i := range stock {
		if stock[i].Name == name {
			stock[i].Quantity++
			merged = true
			break
		}
	}
	if !merged {
		stock = append(stock, types.StockItem{Name: name, Quantity: 1})
	}

	if err := s.saveList(ctx, userID, kept); err != nil {
		return nil, err
	}
	if err := s.saveStock(ctx, userID, stock); err != nil {
		return nil, err
	}
	return &types.ShoppingState{ShoppingList: kept, Stock: stock}, nil
}

func (s *ShoppingService) GetStock(ctx context.Context, userID uuid.UUID) ([]types.StockItem, error) {
	return s.stock(ctx, userID)
}

func (s *ShoppingService) UpdateStockQuantity(ctx context.Context, userID uuid.UUID, name string, quantity int) ([]types.StockItem, error) {
	if quantity < 1 {
		return nil, apperrors.ErrInvalidQuantity
	}
	stock, err := s.stock(ctx, userID)
	if err != nil {
		return nil, err
	}
	found := false
	for i := range stock {
		if stock[i].Name == name {
			stock[i].Quantity = quantity
			found = true
		}
	}
	if !found {
		return nil, apperrors.ErrItemNotFound
	}
	if err := s.saveStock(ctx, userID, stock); err != nil {
		return nil, err
	}
	return stock, nil
}

func (s *ShoppingService) RemoveStockItem(ctx context.Context, userID uuid.UUID, name string) ([]types.StockItem, error) {
	stock, err := s.stock(ctx, userID)
	if err != nil {
		return nil, err
	}
	kept := make([]types.StockItem, 0, len(stock))
	for _, it := range stock {
		if it.Name != name {
			kept = append(kept, it)
		}
	}
	if err := s.saveStock(ctx, userID, kept); err != nil {
		return nil, err
	}
	return kept, nil
}
