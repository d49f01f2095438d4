package models

import (
	"encoding/json"
	"fmt"
	"math"
)

// Cents is a monetary amount in minor units (hundredths). Keeping money
// integral makes total = items + shipping + tax exact.
type Cents int64

// CentsFromFloat converts a major-unit amount to cents, rounding to two
// decimal places.
func CentsFromFloat(f float64) Cents {
	return Cents(math.Round(f * 100))
}

// Float64 returns the amount in major units.
func (c Cents) Float64() float64 {
	return float64(c) / 100
}

func (c Cents) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Float64())
}

func (c *Cents) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("amount must be a finite number")
	}
	*c = CentsFromFloat(f)
	return nil
}

// Price is the normalized monetary value for a product: an amount with a
// currency code and an optional sale price.
type Price struct {
	Amount   Cents  `json:"amount"`
	Currency string `json:"currency,omitempty" gorm:"type:varchar(3)"`
	Sale     *Cents `json:"salePrice,omitempty"`
}

// priceObject is the structured wire shape for a price.
type priceObject struct {
	Amount    *float64 `json:"amount"`
	Price     *float64 `json:"price"`
	Currency  string   `json:"currency"`
	SalePrice *float64 `json:"salePrice"`
}

// DefaultCurrency is assumed when the legacy bare-number shape carries
// no currency of its own.
const DefaultCurrency = "USD"

// UnmarshalJSON accepts either a bare number (legacy shape) or a
// structured {amount, currency, salePrice} object, normalizing both to
// cents once on ingestion.
func (p *Price) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("price must be a finite number")
		}
		p.Amount = CentsFromFloat(f)
		p.Currency = DefaultCurrency
		p.Sale = nil
		return nil
	}

	var obj priceObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("price must be a number or a price object: %w", err)
	}
	amount := obj.Amount
	if amount == nil {
		amount = obj.Price
	}
	if amount == nil {
		return fmt.Errorf("price object requires an amount")
	}
	if math.IsNaN(*amount) || math.IsInf(*amount, 0) {
		return fmt.Errorf("price must be a finite number")
	}
	p.Amount = CentsFromFloat(*amount)
	p.Currency = obj.Currency
	if p.Currency == "" {
		p.Currency = DefaultCurrency
	}
	p.Sale = nil
	if obj.SalePrice != nil && !math.IsNaN(*obj.SalePrice) && !math.IsInf(*obj.SalePrice, 0) {
		sale := CentsFromFloat(*obj.SalePrice)
		p.Sale = &sale
	}
	return nil
}

// IsZero reports whether the price was never set.
func (p Price) IsZero() bool {
	return p.Amount == 0 && p.Currency == "" && p.Sale == nil
}

// Effective returns the unit price a buyer actually pays: the sale price
// when one is set below the regular amount, the regular amount otherwise.
func (p Price) Effective() Cents {
	if p.Sale != nil && *p.Sale > 0 && *p.Sale < p.Amount {
		return *p.Sale
	}
	return p.Amount
}
