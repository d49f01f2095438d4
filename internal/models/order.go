package models

import "time"

// OrderStatus enumerates the payment/fulfillment states of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// OrderItem is a single line of an order. Price is a snapshot of the
// unit price at purchase time; later product price changes never touch
// it. Items are owned by their order and removed with it.
type OrderItem struct {
	ID        string   `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID   string   `json:"-" gorm:"index;type:varchar(36);not null"`
	ProductID string   `json:"product_id" gorm:"index;type:varchar(36);not null"`
	Quantity  int      `json:"quantity" gorm:"not null"`
	Price     Cents    `json:"price" gorm:"not null"`
	Product   *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// Order represents a customer order. UserID is nullable at the model
// level to leave room for guest checkout; the creation API requires it.
type Order struct {
	ID              string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID          *string     `json:"user_id,omitempty" gorm:"index;type:varchar(36)"`
	User            *User       `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Items           []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ShippingAddress JSONMap     `json:"shipping_address,omitempty" gorm:"type:text"`
	PaymentMethod   string      `json:"payment_method,omitempty" gorm:"type:varchar(50)"`
	ItemsPrice      Cents       `json:"items_price"`
	ShippingPrice   Cents       `json:"shipping_price"`
	TaxPrice        Cents       `json:"tax_price"`
	TotalPrice      Cents       `json:"total_price"`
	Status          OrderStatus `json:"status" gorm:"type:varchar(20)"`
	IsPaid          bool        `json:"is_paid"`
	PaidAt          *time.Time  `json:"paid_at,omitempty"`
	IsDelivered     bool        `json:"is_delivered"`
	DeliveredAt     *time.Time  `json:"delivered_at,omitempty"`
	Metadata        JSONMap     `json:"metadata,omitempty" gorm:"type:text"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// ItemsTotal sums snapshot price times quantity over all items.
func (o *Order) ItemsTotal() Cents {
	var total Cents
	for _, item := range o.Items {
		total += item.Price * Cents(item.Quantity)
	}
	return total
}
