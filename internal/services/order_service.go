package services

import (
	"errors"
	"fmt"
	"strings"

	"ticktee/internal/models"
	"ticktee/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CheckoutItem is one requested line at checkout.
type CheckoutItem struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1,lte=1000"`
}

// CheckoutInput is a checkout request.
type CheckoutInput struct {
	Items           []CheckoutItem         `json:"items" validate:"omitempty,dive"`
	PaymentMethod   models.PaymentMethod   `json:"payment_method" validate:"required,oneof=cod jazzcash easypaisa"`
	ShippingAddress models.ShippingAddress `json:"shipping_address" validate:"required"`
	Notes           string                 `json:"notes" validate:"omitempty,max=1000"`
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	cartRepo    repositories.CartRepository
	pricing     *Pricing
	publisher   EventPublisher
	log         logrus.FieldLogger
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository, cartRepo repositories.CartRepository, pricing *Pricing, publisher EventPublisher, log logrus.FieldLogger) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cartRepo:    cartRepo,
		pricing:     pricing,
		publisher:   publisher,
		log:         log,
	}
}

// Checkout turns the customer's cart into an order. Items sent by the client are
// authoritative; when none are sent the server-side cart is used. Every line is
// checked against current stock and priced at the current product price.
func (s *OrderService) Checkout(userID string, in CheckoutInput) (*models.Order, error) {
	if !in.PaymentMethod.Valid() {
		return nil, fmt.Errorf("unsupported payment method %q: %w", in.PaymentMethod, ErrInvalidInput)
	}

	items := mergeCheckoutItems(in.Items)
	if len(items) == 0 {
		saved, err := s.cartRepo.GetByUser(userID)
		if err != nil {
			return nil, err
		}
		for _, ci := range saved {
			items = append(items, CheckoutItem{ProductID: ci.ProductID, Quantity: ci.Quantity})
		}
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ProductID
	}
	products, err := s.productRepo.GetByIDs(ids)
	if err != nil {
		return nil, err
	}

	lines := make([]CartLine, 0, len(items))
	orderItems := make([]models.OrderItem, 0, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			return nil, fmt.Errorf("quantity for product %s must be at least 1: %w", it.ProductID, ErrInvalidInput)
		}
		product, ok := products[it.ProductID]
		if !ok {
			return nil, fmt.Errorf("product %s is no longer available: %w", it.ProductID, ErrInvalidInput)
		}
		if product.Stock < it.Quantity {
			return nil, fmt.Errorf("%s (requested: %d, available: %d): %w", product.Name, it.Quantity, product.Stock, ErrInsufficientStock)
		}
		lines = append(lines, CartLine{Product: product, Quantity: it.Quantity})
		orderItems = append(orderItems, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    it.Quantity,
			UnitPrice:   product.Price,
		})
	}

	totals := s.pricing.Calculate(lines, in.PaymentMethod)
	order := &models.Order{
		ID:              uuid.New().String(),
		UserID:          userID,
		Items:           orderItems,
		Subtotal:        totals.Subtotal,
		Tax:             totals.Tax,
		ShippingFee:     totals.Shipping,
		PaymentFee:      totals.PaymentFee,
		TotalAmount:     totals.Total,
		Status:          initialStatus(in.PaymentMethod),
		PaymentMethod:   in.PaymentMethod,
		ShippingAddress: in.ShippingAddress,
		Notes:           strings.TrimSpace(in.Notes),
	}

	if err := s.orderRepo.Create(order); err != nil {
		if errors.Is(err, repositories.ErrInsufficientStock) {
			return nil, fmt.Errorf("%v: %w", err, ErrInsufficientStock)
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.log.WithFields(logrus.Fields{"order_id": order.ID, "user_id": userID, "total": order.TotalAmount}).Info("order created")
	publishEvent(s.publisher, s.log, newOrderEvent(EventOrderCreated, order, "", ""))
	return order, nil
}

// mergeCheckoutItems folds repeated products into one line, keeping first-seen order.
func mergeCheckoutItems(items []CheckoutItem) []CheckoutItem {
	out := make([]CheckoutItem, 0, len(items))
	pos := make(map[string]int, len(items))
	for _, it := range items {
		if i, ok := pos[it.ProductID]; ok {
			out[i].Quantity = addQuantity(out[i].Quantity, it.Quantity)
			continue
		}
		pos[it.ProductID] = len(out)
		out = append(out, it)
	}
	return out
}

// GetOrderForUser returns an order the user owns. Admins may read any order.
func (s *OrderService) GetOrderForUser(userID string, isAdmin bool, orderID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.UserID != userID {
		// Do not reveal that the order exists.
		return nil, fmt.Errorf("order with ID %s: %w", orderID, repositories.ErrNotFound)
	}
	return order, nil
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

// ListUserOrders returns one page of the user's orders.
func (s *OrderService) ListUserOrders(userID string, page Page) ([]models.Order, int64, error) {
	page = page.Normalize()
	return s.orderRepo.List(repositories.OrderFilter{UserID: userID, Offset: page.Offset(), Limit: page.Limit})
}

// ListOrders returns one page of all orders, optionally filtered by status.
func (s *OrderService) ListOrders(status models.OrderStatus, page Page) ([]models.Order, int64, error) {
	filter := repositories.OrderFilter{}
	if status != "" {
		if !status.Valid() {
			return nil, 0, fmt.Errorf("unknown status %q: %w", status, ErrInvalidInput)
		}
		filter.Statuses = []models.OrderStatus{status}
	}
	page = page.Normalize()
	filter.Offset, filter.Limit = page.Offset(), page.Limit
	return s.orderRepo.List(filter)
}

// UpdateOrderStatus moves an order to status on behalf of an admin. Setting the
// current status again changes nothing.
func (s *OrderService) UpdateOrderStatus(id string, status models.OrderStatus, note string) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid order status: %s: %w", status, ErrInvalidInput)
	}
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order.Status == status {
		return order, nil
	}
	return s.transition(order, status, note)
}

// CancelOrder cancels a customer's own order while it has not been worked on yet.
func (s *OrderService) CancelOrder(userID, orderID string) (*models.Order, error) {
	order, err := s.GetOrderForUser(userID, false, orderID)
	if err != nil {
		return nil, err
	}
	if !customerCancellable(order.Status) {
		return nil, fmt.Errorf("order in status %s cannot be cancelled: %w", order.Status, ErrInvalidTransition)
	}
	return s.transition(order, models.StatusCancelled, "cancelled by customer")
}

func (s *OrderService) transition(order *models.Order, to models.OrderStatus, note string) (*models.Order, error) {
	from := order.Status
	if !CanTransition(from, to) {
		return nil, fmt.Errorf("%s -> %s: %w", from, to, ErrInvalidTransition)
	}
	order.Status = to
	if err := s.orderRepo.Update(order, from, to == models.StatusCancelled); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"order_id": order.ID, "from": from, "to": to}).Info("order status changed")
	publishEvent(s.publisher, s.log, newOrderEvent(EventOrderStatusChanged, order, from, note))
	return order, nil
}

// DashboardStats summarizes orders for the back-office.
func (s *OrderService) DashboardStats() (*repositories.DashboardStats, error) {
	return s.orderRepo.DashboardStats()
}
