package repositories

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"storefront/internal/apperrors"
	"storefront/internal/models"
)

// FileProductRepository is a development-only product store backed by a
// JSON array file. State lives in memory behind one mutex and is written
// back after every mutation; it is not safe for multi-process use.
type FileProductRepository struct {
	path     string
	mu       sync.RWMutex
	products []models.Product
}

// NewFileProductRepository loads the product file at path. A missing
// file starts an empty store; the file is created on first write.
func NewFileProductRepository(path string) (*FileProductRepository, error) {
	r := &FileProductRepository{path: path}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindStore, err, "failed to read product file %s", path)
	}
	if err := json.Unmarshal(data, &r.products); err != nil {
		return nil, apperrors.Wrap(apperrors.KindStore, err, "failed to parse product file %s", path)
	}
	return r, nil
}

// persist writes the product list back to disk. Write-then-rename keeps
// the file whole if the process dies mid-write. Callers hold the lock.
func (r *FileProductRepository) persist() error {
	data, err := json.MarshalIndent(r.products, "", "  ")
	if err != nil {
		return apperrors.Wrap(apperrors.KindStore, err, "failed to encode product file")
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return apperrors.Wrap(apperrors.KindStore, err, "failed to write product file %s", filepath.Base(tmp))
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return apperrors.Wrap(apperrors.KindStore, err, "failed to replace product file %s", r.path)
	}
	return nil
}

func (r *FileProductRepository) indexOf(id string) int {
	for i := range r.products {
		if r.products[i].ID == id {
			return i
		}
	}
	return -1
}

// GetAll returns all products in store order.
func (r *FileProductRepository) GetAll() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Product, len(r.products))
	copy(list, r.products)
	return list, nil
}

// GetByID returns a product by its ID.
func (r *FileProductRepository) GetByID(id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(id); i >= 0 {
		product := r.products[i]
		return &product, nil
	}
	return nil, apperrors.E(apperrors.KindNotFound, "product with ID %s not found", id)
}

// Create appends a new product, generating ID and slug as needed.
func (r *FileProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if product.Slug == "" {
		product.Slug = models.Slugify(product.Name)
	}
	r.products = append(r.products, *product)
	if err := r.persist(); err != nil {
		r.products = r.products[:len(r.products)-1]
		return err
	}
	return nil
}

// Update replaces an existing product.
func (r *FileProductRepository) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(product.ID)
	if i < 0 {
		return apperrors.E(apperrors.KindNotFound, "product with ID %s not found for update", product.ID)
	}
	previous := r.products[i]
	r.products[i] = *product
	if err := r.persist(); err != nil {
		r.products[i] = previous
		return err
	}
	return nil
}

// Delete removes a product by its ID.
func (r *FileProductRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return apperrors.E(apperrors.KindNotFound, "product with ID %s not found for deletion", id)
	}
	removed := r.products[i]
	r.products = append(r.products[:i], r.products[i+1:]...)
	if err := r.persist(); err != nil {
		r.products = append(r.products[:i], append([]models.Product{removed}, r.products[i:]...)...)
		return err
	}
	return nil
}

// List applies the shared filter -> sort -> paginate pipeline in
// application code, mirroring the SQL pushdown path.
func (r *FileProductRepository) List(q CatalogQuery) ([]models.Product, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	page, total := queryProductList(r.products, q)
	return page, total, nil
}

// AdjustStock applies a guarded stock delta. Untracked-stock products
// are left unchanged; a decrement below zero is rejected.
func (r *FileProductRepository) AdjustStock(id string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return apperrors.E(apperrors.KindNotFound, "product with ID %s not found", id)
	}
	product := &r.products[i]
	if !product.TracksStock() {
		return nil
	}
	next := *product.Stock + delta
	if next < 0 {
		return apperrors.E(apperrors.KindValidation,
			"insufficient stock for product %s (requested: %d, available: %d)",
			product.Name, -delta, *product.Stock)
	}
	previous := *product.Stock
	*product.Stock = next
	if err := r.persist(); err != nil {
		*product.Stock = previous
		return err
	}
	return nil
}
