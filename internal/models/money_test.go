package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront/internal/models"
)

func TestCentsFromFloat(t *testing.T) {
	assert.Equal(t, models.Cents(2000), models.CentsFromFloat(20))
	assert.Equal(t, models.Cents(1999), models.CentsFromFloat(19.99))
	// Rounding to 2 decimals happens at conversion, so component sums
	// stay exact afterwards.
	assert.Equal(t, models.Cents(10), models.CentsFromFloat(0.1))
	assert.Equal(t, models.Cents(13), models.CentsFromFloat(0.125))
	assert.Equal(t, 19.99, models.Cents(1999).Float64())
}

func TestPriceUnmarshalBareNumber(t *testing.T) {
	var p models.Price
	err := json.Unmarshal([]byte(`12.5`), &p)
	assert.NoError(t, err)
	assert.Equal(t, models.Cents(1250), p.Amount)
	assert.Equal(t, models.DefaultCurrency, p.Currency)
	assert.Nil(t, p.Sale)
}

func TestPriceUnmarshalStructured(t *testing.T) {
	var p models.Price
	err := json.Unmarshal([]byte(`{"amount": 30, "currency": "EUR", "salePrice": 19.99}`), &p)
	assert.NoError(t, err)
	assert.Equal(t, models.Cents(3000), p.Amount)
	assert.Equal(t, "EUR", p.Currency)
	if assert.NotNil(t, p.Sale) {
		assert.Equal(t, models.Cents(1999), *p.Sale)
	}

	// Legacy "price" key is accepted too.
	var q models.Price
	err = json.Unmarshal([]byte(`{"price": 5}`), &q)
	assert.NoError(t, err)
	assert.Equal(t, models.Cents(500), q.Amount)
	assert.Equal(t, models.DefaultCurrency, q.Currency)
}

func TestPriceUnmarshalRejectsGarbage(t *testing.T) {
	var p models.Price
	assert.Error(t, json.Unmarshal([]byte(`"twenty"`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{"currency": "USD"}`), &p))
}

func TestPriceEffective(t *testing.T) {
	sale := models.Cents(1500)
	p := models.Price{Amount: 2000, Currency: "USD", Sale: &sale}
	assert.Equal(t, models.Cents(1500), p.Effective())

	// A sale price at or above the regular amount is ignored.
	badSale := models.Cents(2500)
	p.Sale = &badSale
	assert.Equal(t, models.Cents(2000), p.Effective())

	p.Sale = nil
	assert.Equal(t, models.Cents(2000), p.Effective())
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Mechanical Keyboard":     "mechanical-keyboard",
		"  Laptop  Pro 15\" ":     "laptop-pro-15",
		"Café -- au -- Lait!":     "caf-au-lait",
		"already-slugged":         "already-slugged",
		"UPPER   lower   MiXeD":   "upper-lower-mixed",
		"trailing punctuation!!!": "trailing-punctuation",
	}
	for name, want := range cases {
		assert.Equal(t, want, models.Slugify(name), "slug of %q", name)
	}
}

func TestOrderItemsTotal(t *testing.T) {
	order := models.Order{
		Items: []models.OrderItem{
			{ProductID: "p1", Quantity: 2, Price: 2000},
			{ProductID: "p2", Quantity: 1, Price: 1999},
		},
	}
	assert.Equal(t, models.Cents(5999), order.ItemsTotal())
}

func TestStringListUnmarshal(t *testing.T) {
	var l models.StringList
	assert.NoError(t, json.Unmarshal([]byte(`["a","b"]`), &l))
	assert.Equal(t, models.StringList{"a", "b"}, l)
	assert.True(t, l.Contains("b"))
	assert.False(t, l.Contains("c"))

	// A single bare string is accepted for backward compatibility.
	var single models.StringList
	assert.NoError(t, json.Unmarshal([]byte(`"electronics"`), &single))
	assert.Equal(t, models.StringList{"electronics"}, single)
}
