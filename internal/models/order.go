package models

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending         OrderStatus = "pending"
	StatusAwaitingPayment OrderStatus = "awaiting_payment"
	StatusPaymentVerified OrderStatus = "payment_verified"
	StatusPaymentRejected OrderStatus = "payment_rejected"
	StatusProcessing      OrderStatus = "processing"
	StatusShipped         OrderStatus = "shipped"
	StatusDelivered       OrderStatus = "delivered"
	StatusCancelled       OrderStatus = "cancelled"
	StatusRefunded        OrderStatus = "refunded"
)

// OrderStatuses lists every order status.
var OrderStatuses = []OrderStatus{
	StatusPending,
	StatusAwaitingPayment,
	StatusPaymentVerified,
	StatusPaymentRejected,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
	StatusRefunded,
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	return s.in(OrderStatuses)
}

// ClosedStatuses need no further work from the store.
var ClosedStatuses = []OrderStatus{StatusDelivered, StatusCancelled, StatusRefunded}

// UnpaidStatuses are orders whose money has not been received.
var UnpaidStatuses = []OrderStatus{StatusAwaitingPayment, StatusPaymentRejected, StatusCancelled, StatusRefunded}

func (s OrderStatus) in(set []OrderStatus) bool {
	for _, known := range set {
		if s == known {
			return true
		}
	}
	return false
}

// Open reports whether the order still needs work from the store.
func (s OrderStatus) Open() bool {
	return !s.in(ClosedStatuses)
}

// Paid reports whether the order counts as money received.
func (s OrderStatus) Paid() bool {
	return !s.in(UnpaidStatuses)
}

// PaymentMethod is how the customer pays for an order.
type PaymentMethod string

const (
	PaymentCOD       PaymentMethod = "cod"
	PaymentJazzCash  PaymentMethod = "jazzcash"
	PaymentEasypaisa PaymentMethod = "easypaisa"
)

// Valid reports whether m is a supported payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCOD, PaymentJazzCash, PaymentEasypaisa:
		return true
	}
	return false
}

// IsWallet reports whether m is a mobile wallet that needs a payment proof and
// admin verification.
func (m PaymentMethod) IsWallet() bool {
	return m == PaymentJazzCash || m == PaymentEasypaisa
}

// ShippingAddress is stored serialized on the order.
type ShippingAddress struct {
	FullName   string `json:"full_name" validate:"required,max=150"`
	Phone      string `json:"phone" validate:"required,min=7,max=30"`
	Address    string `json:"address" validate:"required,max=500"`
	City       string `json:"city" validate:"required,max=100"`
	PostalCode string `json:"postal_code,omitempty" validate:"omitempty,max=20"`
}

// OrderItem is one line of an order. Name and price are copied from the product at
// checkout and never change afterwards.
type OrderItem struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	OrderID     string    `json:"order_id" gorm:"type:varchar(36);index;not null"`
	ProductID   string    `json:"product_id" gorm:"type:varchar(36);index;not null"`
	ProductName string    `json:"product_name" gorm:"type:varchar(150);not null"`
	Quantity    int       `json:"quantity" gorm:"not null"`
	UnitPrice   float64   `json:"unit_price" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
}

// LineTotal is the unit price times quantity.
func (i OrderItem) LineTotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

// Order represents a customer order.
type Order struct {
	ID              string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID          string          `json:"user_id" gorm:"type:varchar(36);index;not null"`
	Items           []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Subtotal        float64         `json:"subtotal"`
	Tax             float64         `json:"tax"`
	ShippingFee     float64         `json:"shipping_fee"`
	PaymentFee      float64         `json:"payment_fee"`
	TotalAmount     float64         `json:"total_amount" gorm:"not null"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(30);index;not null"`
	PaymentMethod   PaymentMethod   `json:"payment_method" gorm:"type:varchar(20);not null"`
	PaymentProof    string          `json:"payment_proof,omitempty" gorm:"type:text"`
	IsVerified      bool            `json:"is_verified" gorm:"not null;default:false"`
	VerifiedAt      *time.Time      `json:"verified_at,omitempty"`
	VerifiedBy      string          `json:"verified_by,omitempty" gorm:"type:varchar(36)"`
	PaymentNote     string          `json:"payment_note,omitempty" gorm:"type:text"`
	ShippingAddress ShippingAddress `json:"shipping_address" gorm:"serializer:json;type:text"`
	Notes           string          `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
