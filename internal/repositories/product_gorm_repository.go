package repositories

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront/internal/apperrors"
	"storefront/internal/models"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products from the database.
func (r *GORMProductRepository) GetAll() ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Find(&products).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindStore, err, "failed to get all products")
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.E(apperrors.KindNotFound, "product with ID %s not found", id)
		}
		return nil, apperrors.Wrap(apperrors.KindStore, err, "failed to get product by ID %s", id)
	}
	return &product, nil
}

// Create creates a new product in the database. The slug is derived
// from the name on insert.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if product.Slug == "" {
		product.Slug = models.Slugify(product.Name)
	}
	if err := r.db.Create(product).Error; err != nil {
		return apperrors.Wrap(apperrors.KindStore, err, "failed to create product")
	}
	return nil
}

// Update updates an existing product in the database.
func (r *GORMProductRepository) Update(product *models.Product) error {
	res := r.db.Save(product) // Save will update all fields, including zero values
	if res.Error != nil {
		return apperrors.Wrap(apperrors.KindStore, res.Error, "failed to update product")
	}
	if res.RowsAffected == 0 {
		// GORM's Save doesn't return ErrRecordNotFound if no rows were
		// affected by an update, so we check RowsAffected.
		return apperrors.E(apperrors.KindNotFound, "product with ID %s not found for update", product.ID)
	}
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(id string) error {
	res := r.db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.KindStore, res.Error, "failed to delete product")
	}
	if res.RowsAffected == 0 {
		return apperrors.E(apperrors.KindNotFound, "product with ID %s not found for deletion", id)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralizes LIKE metacharacters so user input matches
// literally, the same way the in-memory pipeline does.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// List pushes the catalog query down into SQL: filter and count first,
// then order, limit and offset. Semantics match the in-memory pipeline
// in catalog.go.
func (r *GORMProductRepository) List(q CatalogQuery) ([]models.Product, int64, error) {
	tx := r.db.Model(&models.Product{})

	if q.Search != "" {
		term := "%" + escapeLike(strings.ToLower(q.Search)) + "%"
		tx = tx.Where(
			"LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\' OR LOWER(category) LIKE ? ESCAPE '\\'",
			term, term, term,
		)
	}
	if q.Category != "" {
		// Category is a JSON-encoded string list; an exact element match
		// is a quoted-substring match on the encoded column.
		tx = tx.Where("category LIKE ? ESCAPE '\\'", `%"`+escapeLike(q.Category)+`"%`)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.KindStore, err, "failed to count products")
	}

	if order := orderClause(q); order != "" {
		tx = tx.Order(order)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit).Offset(q.Offset())
	}

	var products []models.Product
	if err := tx.Find(&products).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.KindStore, err, "failed to list products")
	}
	return products, total, nil
}

// orderClause renders the sort key with the missing-key rule: records
// lacking the key compare as +infinity in either direction.
func orderClause(q CatalogQuery) string {
	dir := "ASC"
	if q.Descending {
		dir = "DESC"
	}
	switch q.Sort {
	case SortNewest:
		return fmt.Sprintf("(CASE WHEN created_at IS NULL THEN 1 ELSE 0 END) %s, created_at %s", dir, dir)
	case SortPrice:
		return fmt.Sprintf(
			"(CASE WHEN price_amount = 0 AND (price_currency IS NULL OR price_currency = '') AND price_sale IS NULL THEN 1 ELSE 0 END) %s, price_amount %s",
			dir, dir,
		)
	default:
		// Featured keeps the store-native order.
		return ""
	}
}
