package services

import (
	"fmt"
	"math"

	"ticktee/internal/models"
)

// Cart is an ordered list of product lines, one per product.
type Cart struct {
	lines []CartLine
}

// NewCart builds a cart from existing lines, merging duplicates.
func NewCart(lines ...CartLine) *Cart {
	c := &Cart{}
	for _, l := range lines {
		// Lines restored from storage may exceed current stock; clamp instead of failing.
		_ = c.Add(l.Product, l.Quantity)
	}
	return c
}

func (c *Cart) index(productID string) int {
	for i, l := range c.lines {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}

// addQuantity sums two non-negative quantities, saturating instead of wrapping.
func addQuantity(a, b int) int {
	if b > math.MaxInt-a {
		return math.MaxInt
	}
	return a + b
}

func clamp(qty, stock int) int {
	if qty > stock {
		return stock
	}
	return qty
}

// Add puts qty of product in the cart. Adding a product already present increases
// its quantity. The resulting quantity never exceeds the product's stock.
func (c *Cart) Add(product models.Product, qty int) error {
	if qty < 1 {
		return fmt.Errorf("quantity must be at least 1: %w", ErrInvalidInput)
	}
	if !product.InStock() {
		return fmt.Errorf("%s: %w", product.Name, ErrOutOfStock)
	}
	if i := c.index(product.ID); i >= 0 {
		c.lines[i].Product = product
		c.lines[i].Quantity = clamp(addQuantity(c.lines[i].Quantity, qty), product.Stock)
		return nil
	}
	c.lines = append(c.lines, CartLine{Product: product, Quantity: clamp(qty, product.Stock)})
	return nil
}

// SetQuantity sets the quantity of a product already in the cart. A quantity below 1
// removes the line. It reports whether the product was in the cart.
func (c *Cart) SetQuantity(productID string, qty int) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	if qty < 1 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
		return true
	}
	c.lines[i].Quantity = clamp(qty, c.lines[i].Product.Stock)
	if c.lines[i].Quantity < 1 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
	return true
}

// Remove drops a product from the cart and reports whether it was there.
func (c *Cart) Remove(productID string) bool {
	return c.SetQuantity(productID, 0)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns a copy of the cart lines.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// ItemCount is the total number of units in the cart.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Totals prices the cart.
func (c *Cart) Totals(p *Pricing, method models.PaymentMethod) Totals {
	return p.Calculate(c.lines, method)
}
