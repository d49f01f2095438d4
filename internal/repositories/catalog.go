package repositories

import (
	"math"
	"sort"
	"strings"

	"storefront/internal/models"
)

// SortKey enumerates the catalog sort orders.
type SortKey string

const (
	SortFeatured SortKey = "featured" // store-native order
	SortNewest   SortKey = "newest"
	SortPrice    SortKey = "price"
)

// CatalogQuery describes a catalog page request. Page is 1-based; Limit
// is already clamped by the caller.
type CatalogQuery struct {
	Search     string
	Category   string
	Sort       SortKey
	Descending bool
	Page       int
	Limit      int
}

// Offset returns the number of records to skip for the requested page.
func (q CatalogQuery) Offset() int {
	page := q.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * q.Limit
}

// The three-stage filter -> sort -> paginate pipeline below backs the
// in-memory product stores. The GORM repository pushes the same
// semantics down into SQL; the two paths must stay observably
// equivalent for identical inputs.

func matchesCatalogQuery(p *models.Product, q CatalogQuery) bool {
	if q.Category != "" && !p.Category.Contains(q.Category) {
		return false
	}
	if q.Search == "" {
		return true
	}
	term := strings.ToLower(q.Search)
	if strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Description), term) {
		return true
	}
	for _, cat := range p.Category {
		if strings.Contains(strings.ToLower(cat), term) {
			return true
		}
	}
	return false
}

// filterProducts returns the products matching q, preserving store order.
func filterProducts(products []models.Product, q CatalogQuery) []models.Product {
	matched := make([]models.Product, 0, len(products))
	for i := range products {
		if matchesCatalogQuery(&products[i], q) {
			matched = append(matched, products[i])
		}
	}
	return matched
}

// sortProducts orders products by the requested key. A record lacking
// the key compares as +infinity: after present records ascending, before
// them descending. Featured keeps the store-native order.
func sortProducts(products []models.Product, q CatalogQuery) {
	var key func(p *models.Product) int64
	switch q.Sort {
	case SortNewest:
		key = func(p *models.Product) int64 {
			if p.CreatedAt.IsZero() {
				return math.MaxInt64
			}
			return p.CreatedAt.UnixNano()
		}
	case SortPrice:
		key = func(p *models.Product) int64 {
			if p.Price.IsZero() {
				return math.MaxInt64
			}
			return int64(p.Price.Amount)
		}
	default:
		return
	}

	sort.SliceStable(products, func(i, j int) bool {
		a, b := key(&products[i]), key(&products[j])
		if q.Descending {
			return a > b
		}
		return a < b
	})
}

// paginateProducts slices out the requested page. Limit <= 0 means no
// pagination.
func paginateProducts(products []models.Product, q CatalogQuery) []models.Product {
	if q.Limit <= 0 {
		return products
	}
	offset := q.Offset()
	if offset >= len(products) {
		return []models.Product{}
	}
	end := offset + q.Limit
	if end > len(products) {
		end = len(products)
	}
	return products[offset:end]
}

// queryProductList applies the full pipeline and returns the page plus
// the total match count.
func queryProductList(products []models.Product, q CatalogQuery) ([]models.Product, int64) {
	matched := filterProducts(products, q)
	total := int64(len(matched))
	sortProducts(matched, q)
	return paginateProducts(matched, q), total
}
