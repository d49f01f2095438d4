package repositories

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront/internal/apperrors"
	"storefront/internal/models"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// userProjection limits the hydrated user to id, username and email.
// The password hash never rides along even before sanitization.
func userProjection(db *gorm.DB) *gorm.DB {
	return db.Select("id", "username", "email")
}

// GetAll returns orders newest first with items, item products and a
// minimal user projection.
func (r *GORMOrderRepository) GetAll(limit, offset int) ([]models.Order, error) {
	tx := r.db.
		Preload("Items.Product").
		Preload("User", userProjection).
		Order("created_at DESC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if offset > 0 {
		tx = tx.Offset(offset)
	}

	var orders []models.Order
	if err := tx.Find(&orders).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindStore, err, "failed to get all orders")
	}
	return orders, nil
}

// GetByID returns a single hydrated order.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	err := r.db.
		Preload("Items.Product").
		Preload("User", userProjection).
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.E(apperrors.KindNotFound, "order with ID %s not found", id)
		}
		return nil, apperrors.Wrap(apperrors.KindStore, err, "failed to get order by ID %s", id)
	}
	return &order, nil
}

// Create inserts the order with its items and applies every stock
// decrement inside one transaction. Each decrement is a guarded
// server-side update, so a concurrent order racing for the last units
// rolls the whole creation back instead of driving stock negative.
func (r *GORMOrderRepository) Create(order *models.Order, decrements []StockDecrement) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return apperrors.Wrap(apperrors.KindStore, err, "failed to create order")
		}

		for _, d := range decrements {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock IS NOT NULL AND stock >= ?", d.ProductID, d.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", d.Quantity))
			if res.Error != nil {
				return apperrors.Wrap(apperrors.KindStore, res.Error, "failed to decrement stock for product %s", d.ProductID)
			}
			if res.RowsAffected == 0 {
				return insufficientStockError(tx, d)
			}
		}
		return nil
	})
	return err
}

// insufficientStockError reconstructs the requested/available detail for
// a decrement whose guard matched no row.
func insufficientStockError(tx *gorm.DB, d StockDecrement) error {
	var product models.Product
	if err := tx.First(&product, "id = ?", d.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.E(apperrors.KindNotFound, "product with ID %s not found", d.ProductID)
		}
		return apperrors.Wrap(apperrors.KindStore, err, "failed to re-read product %s", d.ProductID)
	}
	available := 0
	if product.Stock != nil {
		available = *product.Stock
	}
	return apperrors.E(apperrors.KindValidation,
		"insufficient stock for product %s (requested: %d, available: %d)",
		product.Name, d.Quantity, available)
}

// UpdateStatus updates the status of an order.
func (r *GORMOrderRepository) UpdateStatus(id string, status models.OrderStatus) error {
	res := r.db.Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.KindStore, res.Error, "failed to update order status")
	}
	if res.RowsAffected == 0 {
		return apperrors.E(apperrors.KindNotFound, "order with ID %s not found for status update", id)
	}
	return nil
}
