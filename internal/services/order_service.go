package services

import (
	"encoding/json"
	"log"
	"math"

	"github.com/google/uuid"

	"storefront/internal/apperrors"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/rabbitmq"
)

// EventPublisher publishes domain events. The RabbitMQ client satisfies
// it; a nil publisher disables eventing.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	userRepo    repositories.UserRepository
	publisher   EventPublisher
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	productRepo repositories.ProductRepository,
	userRepo repositories.UserRepository,
	publisher EventPublisher,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		publisher:   publisher,
	}
}

// OrderItemRequest is one untrusted order line.
type OrderItemRequest struct {
	ProductID *string  `json:"productId"`
	Quantity  *float64 `json:"quantity"`
	Price     *float64 `json:"price"`
}

// CreateOrderRequest is the untrusted order creation payload.
type CreateOrderRequest struct {
	UserID        *string            `json:"userId"`
	Items         []OrderItemRequest `json:"items"`
	Total         *float64           `json:"total"`
	Shipping      models.JSONMap     `json:"shipping"`
	PaymentMethod *string            `json:"paymentMethod"`
	ShippingPrice *float64           `json:"shippingPrice"`
	TaxPrice      *float64           `json:"taxPrice"`
	Metadata      models.JSONMap     `json:"metadata"`
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Validate checks the payload field by field, short-circuiting on the
// first failure. It is pure: the same payload always produces the same
// tagged error. Quantities must be finite positive integers; NaN and
// infinities are rejected outright rather than rounded.
func (req *CreateOrderRequest) Validate() error {
	if req.UserID == nil || *req.UserID == "" {
		return apperrors.E(apperrors.KindValidation, "missing required field: userId")
	}
	if len(req.Items) == 0 {
		return apperrors.E(apperrors.KindValidation, "items must be a non-empty list")
	}
	for i, item := range req.Items {
		if item.ProductID == nil || *item.ProductID == "" {
			return apperrors.E(apperrors.KindValidation, "item %d: missing productId", i)
		}
		if item.Quantity == nil {
			return apperrors.E(apperrors.KindValidation, "item %d: missing quantity", i)
		}
		qty := *item.Quantity
		if !finite(qty) || qty <= 0 || qty != math.Trunc(qty) {
			return apperrors.E(apperrors.KindValidation, "item %d: quantity must be a positive integer", i)
		}
		// Bound before the int conversion: a huge float would wrap
		// negative and turn the stock decrement into an increment.
		if qty > math.MaxInt32 {
			return apperrors.E(apperrors.KindValidation, "item %d: quantity is too large", i)
		}
		if item.Price != nil && !finite(*item.Price) {
			return apperrors.E(apperrors.KindValidation, "item %d: price must be a finite number", i)
		}
	}
	if req.Total == nil {
		return apperrors.E(apperrors.KindValidation, "missing required field: total")
	}
	if !finite(*req.Total) || *req.Total < 0 {
		return apperrors.E(apperrors.KindValidation, "total must be a finite number greater than or equal to 0")
	}
	if req.ShippingPrice != nil && (!finite(*req.ShippingPrice) || *req.ShippingPrice < 0) {
		return apperrors.E(apperrors.KindValidation, "shippingPrice must be a finite number greater than or equal to 0")
	}
	if req.TaxPrice != nil && (!finite(*req.TaxPrice) || *req.TaxPrice < 0) {
		return apperrors.E(apperrors.KindValidation, "taxPrice must be a finite number greater than or equal to 0")
	}
	return nil
}

// GetAllOrders retrieves orders newest first. limit <= 0 returns all.
func (s *OrderService) GetAllOrders(limit, offset int) ([]models.Order, error) {
	orders, err := s.orderRepo.GetAll(limit, offset)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].User = orders[i].User.Sanitize()
	}
	return orders, nil
}

// GetOrderByID retrieves a single hydrated order by its ID.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	order.User = order.User.Sanitize()
	return order, nil
}

// CreateOrder runs the order creation workflow: validate the payload,
// check that the user and every referenced product exist, check stock
// for tracked products, then write the order, its items and the stock
// decrements in one atomic step and return the hydrated result. Nothing
// is mutated before every precondition passes.
func (s *OrderService) CreateOrder(req *CreateOrderRequest) (*models.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByID(*req.UserID); err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return nil, apperrors.E(apperrors.KindNotFound, "User not found")
		}
		return nil, err
	}

	// Load every distinct referenced product and aggregate requested
	// quantities per product for the stock check.
	products := make(map[string]*models.Product)
	requested := make(map[string]int)
	for _, item := range req.Items {
		id := *item.ProductID
		if _, ok := products[id]; !ok {
			product, err := s.productRepo.GetByID(id)
			if err != nil {
				return nil, err
			}
			products[id] = product
		}
		requested[id] += int(*item.Quantity)
	}

	for id, qty := range requested {
		product := products[id]
		if product.TracksStock() && qty > *product.Stock {
			return nil, apperrors.E(apperrors.KindValidation,
				"insufficient stock for product %s (requested: %d, available: %d)",
				product.Name, qty, *product.Stock)
		}
	}

	// Snapshot unit prices: the explicit item price wins, then the
	// product's effective catalog price, then zero.
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		product := products[*item.ProductID]
		var price models.Cents
		switch {
		case item.Price != nil:
			price = models.CentsFromFloat(*item.Price)
		default:
			price = product.Price.Effective()
		}
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Quantity:  int(*item.Quantity),
			Price:     price,
		})
	}

	var shippingPrice, taxPrice models.Cents
	if req.ShippingPrice != nil {
		shippingPrice = models.CentsFromFloat(*req.ShippingPrice)
	}
	if req.TaxPrice != nil {
		taxPrice = models.CentsFromFloat(*req.TaxPrice)
	}

	order := &models.Order{
		ID:              uuid.New().String(),
		UserID:          req.UserID,
		Items:           items,
		ShippingAddress: req.Shipping,
		Metadata:        req.Metadata,
		Status:          models.OrderStatusPending,
	}
	if req.PaymentMethod != nil {
		order.PaymentMethod = *req.PaymentMethod
	}
	order.ItemsPrice = order.ItemsTotal()
	order.ShippingPrice = shippingPrice
	order.TaxPrice = taxPrice
	order.TotalPrice = order.ItemsPrice + shippingPrice + taxPrice

	decrements := make([]repositories.StockDecrement, 0, len(requested))
	for id, qty := range requested {
		if products[id].TracksStock() {
			decrements = append(decrements, repositories.StockDecrement{ProductID: id, Quantity: qty})
		}
	}

	if err := s.orderRepo.Create(order, decrements); err != nil {
		return nil, err
	}

	created, err := s.orderRepo.GetByID(order.ID)
	if err != nil {
		return nil, err
	}
	created.User = created.User.Sanitize()

	s.publishOrderCreated(created)
	return created, nil
}

// publishOrderCreated emits an order.created event. Publishing is best
// effort: a broker failure is logged, never surfaced to the buyer.
func (s *OrderService) publishOrderCreated(order *models.Order) {
	if s.publisher == nil {
		return
	}
	event := map[string]interface{}{
		"orderID": order.ID,
		"userID":  order.UserID,
		"status":  order.Status,
		"total":   order.TotalPrice.Float64(),
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal order event: %v", err)
		return
	}
	if err := s.publisher.Publish(rabbitmq.OrderExchange, rabbitmq.OrderCreatedKey, body); err != nil {
		log.Printf("Warning: failed to publish order created event for order %s: %v", order.ID, err)
	}
}

// UpdateOrderStatus updates the status of an existing order.
func (s *OrderService) UpdateOrderStatus(id string, status models.OrderStatus) error {
	if !status.Valid() {
		return apperrors.E(apperrors.KindValidation, "invalid order status: %s", status)
	}
	return s.orderRepo.UpdateStatus(id, status)
}
