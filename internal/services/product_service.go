package services

import (
	"strings"

	"storefront/internal/apperrors"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

// DefaultCatalogLimit is the page size when the client sends none.
const DefaultCatalogLimit = 20

// ProductService handles catalog queries and product management.
type ProductService struct {
	repo     repositories.ProductRepository
	maxLimit int
}

// NewProductService creates a new ProductService. maxLimit bounds the
// catalog page size.
func NewProductService(repo repositories.ProductRepository, maxLimit int) *ProductService {
	if maxLimit < 1 {
		maxLimit = 100
	}
	return &ProductService{
		repo:     repo,
		maxLimit: maxLimit,
	}
}

// CatalogParams are the raw, unnormalized catalog query inputs.
type CatalogParams struct {
	Search   string
	Category string
	Sort     string
	Order    string
	Page     int
	Limit    int
}

// normalize clamps pagination and resolves the sort key and direction.
// Unknown sort keys fall back to the store-native "featured" order.
func (s *ProductService) normalize(p CatalogParams) (repositories.CatalogQuery, error) {
	q := repositories.CatalogQuery{
		Search:   strings.TrimSpace(p.Search),
		Category: strings.TrimSpace(p.Category),
		Page:     p.Page,
		Limit:    p.Limit,
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = DefaultCatalogLimit
	}
	if q.Limit > s.maxLimit {
		q.Limit = s.maxLimit
	}

	switch repositories.SortKey(p.Sort) {
	case repositories.SortNewest:
		q.Sort = repositories.SortNewest
		q.Descending = true
	case repositories.SortPrice:
		q.Sort = repositories.SortPrice
	case repositories.SortFeatured, "":
		q.Sort = repositories.SortFeatured
	default:
		return q, apperrors.E(apperrors.KindValidation, "unknown sort key: %s", p.Sort)
	}

	switch strings.ToLower(p.Order) {
	case "":
	case "asc":
		q.Descending = false
	case "desc":
		q.Descending = true
	default:
		return q, apperrors.E(apperrors.KindValidation, "order must be asc or desc")
	}
	return q, nil
}

// ListResult is one catalog page plus the pagination metadata.
type ListResult struct {
	Products []models.Product
	Total    int64
	Page     int
	Limit    int
}

// List runs a catalog query against whichever backend the repository
// wraps; both backends answer identically for identical inputs.
func (s *ProductService) List(p CatalogParams) (*ListResult, error) {
	q, err := s.normalize(p)
	if err != nil {
		return nil, err
	}
	products, total, err := s.repo.List(q)
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Products: products,
		Total:    total,
		Page:     q.Page,
		Limit:    q.Limit,
	}, nil
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// CreateProduct creates a new product.
func (s *ProductService) CreateProduct(product *models.Product) error {
	return s.repo.Create(product)
}

// UpdateProduct updates an existing product.
func (s *ProductService) UpdateProduct(product *models.Product) error {
	return s.repo.Update(product)
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(id string) error {
	return s.repo.Delete(id)
}
