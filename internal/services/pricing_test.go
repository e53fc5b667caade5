package services_test

import (
	"testing"

	"ticktee/internal/models"
	"ticktee/internal/services"

	"github.com/stretchr/testify/assert"
)

func watch(id string, price float64, stock int) models.Product {
	return models.Product{ID: id, Name: "Watch " + id, Brand: "Casio", Price: price, Stock: stock, Category: models.CategoryUnisex}
}

func TestPricing_Calculate(t *testing.T) {
	pricing := services.NewPricing(services.DefaultPricing)

	tests := []struct {
		name   string
		lines  []services.CartLine
		method models.PaymentMethod
		want   services.Totals
	}{
		{
			name:  "empty cart is all zero",
			lines: nil,
			want:  services.Totals{},
		},
		{
			name:   "cod below free shipping",
			lines:  []services.CartLine{{Product: watch("a", 500, 5), Quantity: 2}},
			method: models.PaymentCOD,
			want:   services.Totals{ItemCount: 2, Subtotal: 1000, Tax: 100, Shipping: 250, PaymentFee: 100, Total: 1450},
		},
		{
			name:   "wallet has no surcharge",
			lines:  []services.CartLine{{Product: watch("a", 500, 5), Quantity: 2}},
			method: models.PaymentJazzCash,
			want:   services.Totals{ItemCount: 2, Subtotal: 1000, Tax: 100, Shipping: 250, Total: 1350},
		},
		{
			name: "free shipping at threshold",
			lines: []services.CartLine{
				{Product: watch("a", 4000, 5), Quantity: 2},
				{Product: watch("b", 2000, 5), Quantity: 1},
			},
			want: services.Totals{ItemCount: 3, Subtotal: 10000, Tax: 1000, Total: 11000},
		},
		{
			name:  "fractional prices",
			lines: []services.CartLine{{Product: watch("a", 0.1, 50), Quantity: 3}},
			want:  services.Totals{ItemCount: 3, Subtotal: 0.3, Tax: 0.03, Shipping: 250, Total: 250.33},
		},
		{
			name:  "non-positive quantities are ignored",
			lines: []services.CartLine{{Product: watch("a", 500, 5), Quantity: 0}},
			want:  services.Totals{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pricing.Calculate(tt.lines, tt.method))
		})
	}
}

func TestPricing_CustomRates(t *testing.T) {
	pricing := services.NewPricing(services.PricingConfig{TaxRate: 0.17, ShippingFee: 300, FreeShippingThreshold: 5000, CODFee: 0})
	got := pricing.Calculate([]services.CartLine{{Product: watch("a", 1000, 9), Quantity: 1}}, models.PaymentCOD)
	assert.Equal(t, 170.0, got.Tax)
	assert.Equal(t, 300.0, got.Shipping)
	assert.Equal(t, 0.0, got.PaymentFee)
	assert.Equal(t, 1470.0, got.Total)
}
