package repositories

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"storefront/internal/apperrors"
	"storefront/internal/models"
)

// ProductStockStore is the slice of the product store the in-memory
// order repository needs: reads for hydration, guarded adjustments for
// decrements. The file-backed product repository satisfies it.
type ProductStockStore interface {
	GetByID(id string) (*models.Product, error)
	AdjustStock(id string, delta int) error
}

// MemoryOrderRepository is an in-memory implementation of
// OrderRepository. It pairs the file product store in development mode
// and simulates the database transaction by compensating already
// applied decrements when a later one fails.
type MemoryOrderRepository struct {
	orders   map[string]models.Order
	mu       sync.RWMutex
	products ProductStockStore
	users    UserRepository
}

// NewMemoryOrderRepository creates a new instance of
// MemoryOrderRepository. products and users are used to hydrate results
// and may be nil in tests that don't read back.
func NewMemoryOrderRepository(products ProductStockStore, users UserRepository) *MemoryOrderRepository {
	return &MemoryOrderRepository{
		orders:   make(map[string]models.Order),
		products: products,
		users:    users,
	}
}

// GetAll returns orders newest first.
func (r *MemoryOrderRepository) GetAll(limit, offset int) ([]models.Order, error) {
	r.mu.RLock()
	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		orderList = append(orderList, order)
	}
	r.mu.RUnlock()

	sort.Slice(orderList, func(i, j int) bool {
		return orderList[i].CreatedAt.After(orderList[j].CreatedAt)
	})
	if offset > 0 {
		if offset >= len(orderList) {
			return []models.Order{}, nil
		}
		orderList = orderList[offset:]
	}
	if limit > 0 && limit < len(orderList) {
		orderList = orderList[:limit]
	}
	for i := range orderList {
		r.hydrate(&orderList[i])
	}
	return orderList, nil
}

// GetByID returns an order by its ID.
func (r *MemoryOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	order, ok := r.orders[id]
	r.mu.RUnlock()
	if !ok {
		return nil, apperrors.E(apperrors.KindNotFound, "order with ID %s not found", id)
	}
	r.hydrate(&order)
	return &order, nil
}

// Create applies the decrements first, rolling back the ones already
// applied if any fails, then stores the order.
func (r *MemoryOrderRepository) Create(order *models.Order, decrements []StockDecrement) error {
	if r.products != nil {
		applied := make([]StockDecrement, 0, len(decrements))
		for _, d := range decrements {
			if err := r.products.AdjustStock(d.ProductID, -d.Quantity); err != nil {
				for _, a := range applied {
					// Best effort: give back what was taken.
					_ = r.products.AdjustStock(a.ProductID, a.Quantity)
				}
				return err
			}
			applied = append(applied, d)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	r.orders[order.ID] = *order
	return nil
}

// UpdateStatus updates the status of an order.
func (r *MemoryOrderRepository) UpdateStatus(id string, status models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return apperrors.E(apperrors.KindNotFound, "order with ID %s not found for status update", id)
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

// hydrate fills in item products and the minimal user projection the
// way the SQL preloads do.
func (r *MemoryOrderRepository) hydrate(order *models.Order) {
	if r.products != nil {
		for i := range order.Items {
			if product, err := r.products.GetByID(order.Items[i].ProductID); err == nil {
				order.Items[i].Product = product
			}
		}
	}
	if r.users != nil && order.UserID != nil {
		if user, err := r.users.GetByID(*order.UserID); err == nil {
			order.User = &models.User{ID: user.ID, Username: user.Username, Email: user.Email}
		}
	}
}
