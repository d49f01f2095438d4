package repositories

import (
	"storefront/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
	// List runs a catalog query and returns one page of matches plus the
	// total match count across all pages.
	List(q CatalogQuery) ([]models.Product, int64, error)
}
