package services

import (
	"ticktee/internal/models"

	"github.com/shopspring/decimal"
)

// PricingConfig holds the rates and fees applied to a cart.
type PricingConfig struct {
	TaxRate               float64
	ShippingFee           float64
	FreeShippingThreshold float64
	CODFee                float64
}

// DefaultPricing is used when no configuration overrides it.
var DefaultPricing = PricingConfig{
	TaxRate:               0.10,
	ShippingFee:           250,
	FreeShippingThreshold: 10000,
	CODFee:                100,
}

// CartLine is a product snapshot and the quantity being bought.
type CartLine struct {
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

func (l CartLine) amount() decimal.Decimal {
	return decimal.NewFromFloat(l.Product.Price).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Totals is the money breakdown of a cart.
type Totals struct {
	ItemCount  int     `json:"item_count"`
	Subtotal   float64 `json:"subtotal"`
	Tax        float64 `json:"tax"`
	Shipping   float64 `json:"shipping"`
	PaymentFee float64 `json:"payment_fee"`
	Total      float64 `json:"total"`
}

// Pricing computes cart totals.
type Pricing struct {
	cfg PricingConfig
}

// NewPricing creates a Pricing with the given rates.
func NewPricing(cfg PricingConfig) *Pricing {
	return &Pricing{cfg: cfg}
}

// Calculate returns the totals for lines paid with method. An empty method adds no
// surcharge. An empty cart totals to zero everywhere.
func (p *Pricing) Calculate(lines []CartLine, method models.PaymentMethod) Totals {
	subtotal := decimal.Zero
	count := 0
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		subtotal = subtotal.Add(l.amount())
		count += l.Quantity
	}
	if count == 0 {
		return Totals{}
	}

	tax := subtotal.Mul(decimal.NewFromFloat(p.cfg.TaxRate))
	shipping := decimal.NewFromFloat(p.cfg.ShippingFee)
	if subtotal.GreaterThanOrEqual(decimal.NewFromFloat(p.cfg.FreeShippingThreshold)) {
		shipping = decimal.Zero
	}
	fee := decimal.Zero
	if method == models.PaymentCOD {
		fee = decimal.NewFromFloat(p.cfg.CODFee)
	}
	total := subtotal.Add(tax).Add(shipping).Add(fee)

	return Totals{
		ItemCount:  count,
		Subtotal:   subtotal.InexactFloat64(),
		Tax:        tax.InexactFloat64(),
		Shipping:   shipping.InexactFloat64(),
		PaymentFee: fee.InexactFloat64(),
		Total:      total.InexactFloat64(),
	}
}
