package repositories

import (
	"storefront/internal/models"
)

// StockDecrement is one inventory adjustment applied atomically as part
// of an order's creation.
type StockDecrement struct {
	ProductID string
	Quantity  int
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// GetAll returns orders newest first, items and user hydrated.
	// limit <= 0 returns everything; offset skips that many records.
	GetAll(limit, offset int) ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	// Create persists the order with its items and applies every stock
	// decrement, all-or-nothing. A decrement that would drive stock
	// negative aborts the whole creation.
	Create(order *models.Order, decrements []StockDecrement) error
	UpdateStatus(id string, status models.OrderStatus) error
}
