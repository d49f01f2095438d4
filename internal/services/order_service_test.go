package services_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"storefront/internal/apperrors"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/rabbitmq"
)

// MockOrderRepository is a mock implementation of repositories.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) GetAll(limit, offset int) ([]models.Order, error) {
	args := m.Called(limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) Create(order *models.Order, decrements []repositories.StockDecrement) error {
	args := m.Called(order, decrements)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateStatus(id string, status models.OrderStatus) error {
	args := m.Called(id, status)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of services.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(exchange, routingKey string, body []byte) error {
	args := m.Called(exchange, routingKey, body)
	return args.Error(0)
}

func strPtr(s string) *string      { return &s }
func floatPtr(f float64) *float64  { return &f }
func intPtr(i int) *int            { return &i }
func centsPtr(c models.Cents) *models.Cents { return &c }

func newOrderServiceForTest(t *testing.T) (*services.OrderService, *MockOrderRepository, *MockProductRepository, *MockUserRepository) {
	t.Helper()
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	userRepo := new(MockUserRepository)
	service := services.NewOrderService(orderRepo, productRepo, userRepo, nil)
	return service, orderRepo, productRepo, userRepo
}

func validRequest() *services.CreateOrderRequest {
	return &services.CreateOrderRequest{
		UserID: strPtr("u1"),
		Items: []services.OrderItemRequest{
			{ProductID: strPtr("p1"), Quantity: floatPtr(2)},
		},
		Total: floatPtr(40),
	}
}

func TestCreateOrder_SnapshotsCatalogPrice(t *testing.T) {
	service, orderRepo, productRepo, userRepo := newOrderServiceForTest(t)

	product := &models.Product{
		ID:    "p1",
		Name:  "Mechanical Keyboard",
		Price: models.Price{Amount: 2000, Currency: "USD"},
		Stock: intPtr(5),
	}
	userRepo.On("GetByID", "u1").Return(&models.User{ID: "u1"}, nil).Once()
	productRepo.On("GetByID", "p1").Return(product, nil).Once()

	var captured *models.Order
	orderRepo.On("Create", mock.AnythingOfType("*models.Order"), mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(0).(*models.Order)
		}).
		Return(nil).Once()
	hydrated := &models.Order{ID: "o1", Status: models.OrderStatusPending}
	orderRepo.On("GetByID", mock.AnythingOfType("string")).Return(hydrated, nil).Once()

	result, err := service.CreateOrder(validRequest())
	assert.NoError(t, err)
	assert.Equal(t, hydrated, result)

	// Snapshot price is the catalog price; totals follow from it.
	assert.Len(t, captured.Items, 1)
	assert.Equal(t, models.Cents(2000), captured.Items[0].Price)
	assert.Equal(t, 2, captured.Items[0].Quantity)
	assert.Equal(t, models.Cents(4000), captured.ItemsPrice)
	assert.Equal(t, models.Cents(4000), captured.TotalPrice)
	assert.Equal(t, models.OrderStatusPending, captured.Status)

	decrements := orderRepo.Calls[0].Arguments.Get(1).([]repositories.StockDecrement)
	assert.Equal(t, []repositories.StockDecrement{{ProductID: "p1", Quantity: 2}}, decrements)

	orderRepo.AssertExpectations(t)
	productRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestCreateOrder_ExplicitItemPriceWins(t *testing.T) {
	service, orderRepo, productRepo, userRepo := newOrderServiceForTest(t)

	userRepo.On("GetByID", "u1").Return(&models.User{ID: "u1"}, nil).Once()
	productRepo.On("GetByID", "p1").Return(&models.Product{
		ID:    "p1",
		Name:  "Laptop",
		Price: models.Price{Amount: 120000, Currency: "USD"},
	}, nil).Once()

	var captured *models.Order
	orderRepo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(0).(*models.Order) }).
		Return(nil).Once()
	orderRepo.On("GetByID", mock.Anything).Return(&models.Order{ID: "o1"}, nil).Once()

	req := validRequest()
	req.Items[0].Price = floatPtr(999.99)
	req.Items[0].Quantity = floatPtr(1)

	_, err := service.CreateOrder(req)
	assert.NoError(t, err)
	assert.Equal(t, models.Cents(99999), captured.Items[0].Price)
	// Untracked stock: no decrements are issued.
	decrements := orderRepo.Calls[0].Arguments.Get(1).([]repositories.StockDecrement)
	assert.Empty(t, decrements)
}

func TestCreateOrder_SalePriceSnapshot(t *testing.T) {
	service, orderRepo, productRepo, userRepo := newOrderServiceForTest(t)

	userRepo.On("GetByID", "u1").Return(&models.User{ID: "u1"}, nil).Once()
	productRepo.On("GetByID", "p1").Return(&models.Product{
		ID:    "p1",
		Name:  "Mouse",
		Price: models.Price{Amount: 2500, Currency: "USD", Sale: centsPtr(1800)},
		Stock: intPtr(10),
	}, nil).Once()

	var captured *models.Order
	orderRepo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(0).(*models.Order) }).
		Return(nil).Once()
	orderRepo.On("GetByID", mock.Anything).Return(&models.Order{ID: "o1"}, nil).Once()

	req := validRequest()
	_, err := service.CreateOrder(req)
	assert.NoError(t, err)
	assert.Equal(t, models.Cents(1800), captured.Items[0].Price)
}

func TestCreateOrder_UserNotFound(t *testing.T) {
	service, orderRepo, _, userRepo := newOrderServiceForTest(t)

	userRepo.On("GetByID", "u1").
		Return(nil, apperrors.E(apperrors.KindNotFound, "user with ID u1 not found")).Once()

	_, err := service.CreateOrder(validRequest())
	assert.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	assert.Equal(t, "User not found", apperrors.MessageOf(err))
	orderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateOrder_ProductNotFound(t *testing.T) {
	service, orderRepo, productRepo, userRepo := newOrderServiceForTest(t)

	userRepo.On("GetByID", "u1").Return(&models.User{ID: "u1"}, nil).Once()
	productRepo.On("GetByID", "p1").
		Return(nil, apperrors.E(apperrors.KindNotFound, "product with ID p1 not found")).Once()

	_, err := service.CreateOrder(validRequest())
	assert.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "p1")
	orderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	service, orderRepo, productRepo, userRepo := newOrderServiceForTest(t)

	userRepo.On("GetByID", "u1").Return(&models.User{ID: "u1"}, nil).Once()
	productRepo.On("GetByID", "p1").Return(&models.Product{
		ID:    "p1",
		Name:  "Laptop",
		Price: models.Price{Amount: 2000, Currency: "USD"},
		Stock: intPtr(5),
	}, nil).Once()

	req := validRequest()
	req.Items[0].Quantity = floatPtr(10)
	req.Total = floatPtr(200)

	_, err := service.CreateOrder(req)
	assert.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "Laptop")
	assert.Contains(t, err.Error(), "requested: 10")
	assert.Contains(t, err.Error(), "available: 5")
	orderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateOrder_AggregatesQuantityAcrossItems(t *testing.T) {
	service, orderRepo, productRepo, userRepo := newOrderServiceForTest(t)

	userRepo.On("GetByID", "u1").Return(&models.User{ID: "u1"}, nil).Once()
	productRepo.On("GetByID", "p1").Return(&models.Product{
		ID:    "p1",
		Name:  "Monitor",
		Price: models.Price{Amount: 20000, Currency: "USD"},
		Stock: intPtr(3),
	}, nil).Once()

	// Two lines of the same product must be checked against stock as a
	// combined quantity.
	req := &services.CreateOrderRequest{
		UserID: strPtr("u1"),
		Items: []services.OrderItemRequest{
			{ProductID: strPtr("p1"), Quantity: floatPtr(2)},
			{ProductID: strPtr("p1"), Quantity: floatPtr(2)},
		},
		Total: floatPtr(800),
	}

	_, err := service.CreateOrder(req)
	assert.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "requested: 4")
	orderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateOrder_PublishesOnOrderExchange(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	userRepo := new(MockUserRepository)
	publisher := new(MockEventPublisher)
	service := services.NewOrderService(orderRepo, productRepo, userRepo, publisher)

	userRepo.On("GetByID", "u1").Return(&models.User{ID: "u1"}, nil).Once()
	productRepo.On("GetByID", "p1").Return(&models.Product{
		ID:    "p1",
		Name:  "Mouse",
		Price: models.Price{Amount: 2500, Currency: "USD"},
	}, nil).Once()
	orderRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	orderRepo.On("GetByID", mock.Anything).Return(&models.Order{ID: "o1"}, nil).Once()

	publisher.On("Publish", rabbitmq.OrderExchange, rabbitmq.OrderCreatedKey, mock.Anything).
		Return(nil).Once()

	_, err := service.CreateOrder(validRequest())
	assert.NoError(t, err)
	publisher.AssertExpectations(t)
}

func TestCreateOrder_RejectsOverflowingQuantity(t *testing.T) {
	service, orderRepo, productRepo, userRepo := newOrderServiceForTest(t)

	// 1e19 is a finite positive integral float that wraps negative when
	// converted to int; it must fail validation before any repository is
	// touched, or the stock decrement would come out negative.
	req := validRequest()
	req.Items[0].Quantity = floatPtr(1e19)

	_, err := service.CreateOrder(req)
	assert.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "too large")
	userRepo.AssertNotCalled(t, "GetByID", mock.Anything)
	productRepo.AssertNotCalled(t, "GetByID", mock.Anything)
	orderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateOrderRequestValidation(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*services.CreateOrderRequest)
		wantMsg string
	}{
		{"missing userId", func(r *services.CreateOrderRequest) { r.UserID = nil }, "userId"},
		{"empty items", func(r *services.CreateOrderRequest) { r.Items = nil }, "items"},
		{"missing productId", func(r *services.CreateOrderRequest) { r.Items[0].ProductID = nil }, "item 0: missing productId"},
		{"missing quantity", func(r *services.CreateOrderRequest) { r.Items[0].Quantity = nil }, "item 0: missing quantity"},
		{"zero quantity", func(r *services.CreateOrderRequest) { r.Items[0].Quantity = floatPtr(0) }, "positive integer"},
		{"negative quantity", func(r *services.CreateOrderRequest) { r.Items[0].Quantity = floatPtr(-1) }, "positive integer"},
		{"fractional quantity", func(r *services.CreateOrderRequest) { r.Items[0].Quantity = floatPtr(1.5) }, "positive integer"},
		{"huge quantity", func(r *services.CreateOrderRequest) { r.Items[0].Quantity = floatPtr(1e19) }, "too large"},
		{"quantity just past the bound", func(r *services.CreateOrderRequest) { r.Items[0].Quantity = floatPtr(float64(math.MaxInt32) + 1) }, "too large"},
		{"missing total", func(r *services.CreateOrderRequest) { r.Total = nil }, "total"},
		{"negative total", func(r *services.CreateOrderRequest) { r.Total = floatPtr(-5) }, "total"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(req)

			err := req.Validate()
			assert.Error(t, err)
			assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
			assert.Contains(t, err.Error(), tc.wantMsg)

			// Validation is pure: a second pass over the same payload
			// yields the same kind and message.
			again := req.Validate()
			assert.Equal(t, apperrors.KindOf(err), apperrors.KindOf(again))
			assert.Equal(t, err.Error(), again.Error())
		})
	}

	assert.NoError(t, validRequest().Validate())
}

func TestUpdateOrderStatus(t *testing.T) {
	service, orderRepo, _, _ := newOrderServiceForTest(t)

	orderRepo.On("UpdateStatus", "o1", models.OrderStatusShipped).Return(nil).Once()
	assert.NoError(t, service.UpdateOrderStatus("o1", models.OrderStatusShipped))
	orderRepo.AssertExpectations(t)

	err := service.UpdateOrderStatus("o1", models.OrderStatus("teleported"))
	assert.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	orderRepo.AssertNotCalled(t, "UpdateStatus", "o1", models.OrderStatus("teleported"))
}
