package types

// ShoppingItem is one line of a shopping list.
type ShoppingItem struct {
	Name    string `json:"name"`
	Checked bool   `json:"checked"`
}

// StockItem is a pantry entry.
type StockItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// ShoppingList is the stored shopping list document.
type ShoppingList struct {
	Items []ShoppingItem `json:"items"`
}

// Stock is the stored pantry document.
type Stock struct {
	Items []StockItem `json:"items"`
}

// AddShoppingItemRequest adds a manual item.
type AddShoppingItemRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateStockRequest sets a pantry quantity.
type UpdateStockRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// ShoppingState is the shopping list and stock after an item changes hands.
type ShoppingState struct {
	ShoppingList []ShoppingItem `json:"shoppingList"`
	Stock        []StockItem    `json:"stock"`
}
