package models

import (
	"regexp"
	"strings"
	"time"
)

// Product represents a product in the store. Stock is a pointer: nil
// means inventory is untracked and never blocks ordering.
type Product struct {
	ID          string     `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Slug        string     `json:"slug,omitempty" gorm:"index;type:varchar(150)"`
	Name        string     `json:"name" validate:"required,min=3,max=100"`
	Description string     `json:"description,omitempty" validate:"omitempty,max=500"`
	Price       Price      `json:"price" gorm:"embedded;embeddedPrefix:price_"`
	Stock       *int       `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Category    StringList `json:"category,omitempty" gorm:"type:text"`
	Images      StringList `json:"images,omitempty" gorm:"type:text"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TracksStock reports whether ordering is bounded by inventory.
func (p *Product) TracksStock() bool {
	return p.Stock != nil
}

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9-]`)
	slugRepeat  = regexp.MustCompile(`-+`)
)

// Slugify derives a URL slug from a product name: lowercase, whitespace
// to hyphens, non-word characters stripped, repeated hyphens collapsed.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.Join(strings.Fields(s), "-")
	s = slugInvalid.ReplaceAllString(s, "")
	s = slugRepeat.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
