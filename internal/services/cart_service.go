package services

import (
	"fmt"

	"ticktee/internal/models"
	"ticktee/internal/repositories"
)

// CartView is a priced cart.
type CartView struct {
	Items  []CartLine `json:"items"`
	Totals Totals     `json:"totals"`
}

// CartService keeps the server-side mirror of a customer's cart. The mirror is a
// convenience copy; checkout reconciles whatever the client sends.
type CartService struct {
	carts    repositories.CartRepository
	products repositories.ProductRepository
	pricing  *Pricing
}

// NewCartService creates a CartService.
func NewCartService(carts repositories.CartRepository, products repositories.ProductRepository, pricing *Pricing) *CartService {
	return &CartService{carts: carts, products: products, pricing: pricing}
}

func (s *CartService) load(userID string) (*Cart, error) {
	items, err := s.carts.GetByUser(userID)
	if err != nil {
		return nil, err
	}
	return s.build(items)
}

// build prices stored items with current product data. Products that were
// removed or sold out drop out of the cart.
func (s *CartService) build(items []models.CartItem) (*Cart, error) {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ProductID
	}
	products, err := s.products.GetByIDs(ids)
	if err != nil {
		return nil, err
	}
	cart := &Cart{}
	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok || !p.InStock() || it.Quantity < 1 {
			continue
		}
		_ = cart.Add(p, it.Quantity)
	}
	return cart, nil
}

func (s *CartService) save(userID string, cart *Cart) error {
	lines := cart.Lines()
	items := make([]models.CartItem, len(lines))
	for i, l := range lines {
		items[i] = models.CartItem{ProductID: l.Product.ID, Quantity: l.Quantity}
	}
	return s.carts.Replace(userID, items)
}

func (s *CartService) view(cart *Cart) *CartView {
	return &CartView{Items: cart.Lines(), Totals: cart.Totals(s.pricing, "")}
}

// Get returns the user's cart.
func (s *CartService) Get(userID string) (*CartView, error) {
	cart, err := s.load(userID)
	if err != nil {
		return nil, err
	}
	return s.view(cart), nil
}

// AddItem adds qty of a product, accumulating onto an existing line.
func (s *CartService) AddItem(userID, productID string, qty int) (*CartView, error) {
	product, err := s.products.GetByID(productID)
	if err != nil {
		return nil, err
	}
	cart, err := s.load(userID)
	if err != nil {
		return nil, err
	}
	if err := cart.Add(*product, qty); err != nil {
		return nil, err
	}
	if err := s.save(userID, cart); err != nil {
		return nil, err
	}
	return s.view(cart), nil
}

// SetItemQuantity changes a line's quantity; zero removes it.
func (s *CartService) SetItemQuantity(userID, productID string, qty int) (*CartView, error) {
	cart, err := s.load(userID)
	if err != nil {
		return nil, err
	}
	if !cart.SetQuantity(productID, qty) {
		return nil, fmt.Errorf("product %s is not in the cart: %w", productID, repositories.ErrNotFound)
	}
	if err := s.save(userID, cart); err != nil {
		return nil, err
	}
	return s.view(cart), nil
}

// RemoveItem drops a product from the cart.
func (s *CartService) RemoveItem(userID, productID string) (*CartView, error) {
	return s.SetItemQuantity(userID, productID, 0)
}

// Replace overwrites the mirror with the client's cart.
func (s *CartService) Replace(userID string, items []CheckoutItem) (*CartView, error) {
	stored := make([]models.CartItem, len(items))
	for i, it := range items {
		stored[i] = models.CartItem{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	cart, err := s.build(stored)
	if err != nil {
		return nil, err
	}
	if err := s.save(userID, cart); err != nil {
		return nil, err
	}
	return s.view(cart), nil
}

// Clear empties the user's cart.
func (s *CartService) Clear(userID string) error {
	return s.carts.Clear(userID)
}

// Quote prices items without touching any stored cart.
func (s *CartService) Quote(items []CheckoutItem, method models.PaymentMethod) (*CartView, error) {
	if method != "" && !method.Valid() {
		return nil, fmt.Errorf("unsupported payment method %q: %w", method, ErrInvalidInput)
	}
	stored := make([]models.CartItem, len(items))
	for i, it := range items {
		stored[i] = models.CartItem{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	cart, err := s.build(stored)
	if err != nil {
		return nil, err
	}
	return &CartView{Items: cart.Lines(), Totals: cart.Totals(s.pricing, method)}, nil
}
