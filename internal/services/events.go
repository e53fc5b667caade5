package services

import (
	"encoding/json"
	"time"

	"ticktee/internal/models"

	"github.com/sirupsen/logrus"
)

// Routing keys of order events.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventPaymentVerified    = "payment.verified"
	EventPaymentRejected    = "payment.rejected"
)

// OrderEvent is the message body published for every order change.
type OrderEvent struct {
	Type           string               `json:"type"`
	OrderID        string               `json:"order_id"`
	UserID         string               `json:"user_id"`
	Status         models.OrderStatus   `json:"status"`
	PreviousStatus models.OrderStatus   `json:"previous_status,omitempty"`
	PaymentMethod  models.PaymentMethod `json:"payment_method"`
	Total          float64              `json:"total"`
	Note           string               `json:"note,omitempty"`
	OccurredAt     time.Time            `json:"occurred_at"`
}

func newOrderEvent(eventType string, order *models.Order, previous models.OrderStatus, note string) OrderEvent {
	return OrderEvent{
		Type:           eventType,
		OrderID:        order.ID,
		UserID:         order.UserID,
		Status:         order.Status,
		PreviousStatus: previous,
		PaymentMethod:  order.PaymentMethod,
		Total:          order.TotalAmount,
		Note:           note,
		OccurredAt:     time.Now().UTC(),
	}
}

// EventPublisher delivers event bodies under a routing key.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// InlinePublisher hands events straight to a handler in the calling goroutine.
// It stands in for the broker when none is configured.
type InlinePublisher struct {
	handler func(routingKey string, body []byte) error
}

// NewInlinePublisher creates an InlinePublisher.
func NewInlinePublisher(handler func(routingKey string, body []byte) error) *InlinePublisher {
	return &InlinePublisher{handler: handler}
}

// Publish implements EventPublisher.
func (p *InlinePublisher) Publish(routingKey string, body []byte) error {
	return p.handler(routingKey, body)
}

// publishEvent marshals and publishes ev. Failures are logged, never returned:
// the change that triggered the event has already been committed.
func publishEvent(pub EventPublisher, log logrus.FieldLogger, ev OrderEvent) {
	entry := log.WithFields(logrus.Fields{"event": ev.Type, "order_id": ev.OrderID})
	if pub == nil {
		entry.Debug("no event publisher configured, skipping")
		return
	}
	body, err := json.Marshal(ev)
	if err != nil {
		entry.WithError(err).Error("failed to marshal order event")
		return
	}
	if err := pub.Publish(ev.Type, body); err != nil {
		entry.WithError(err).Warn("failed to publish order event")
		return
	}
	entry.Debug("published order event")
}
