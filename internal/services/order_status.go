package services

import "ticktee/internal/models"

// allowedTransitions lists, for each status, the statuses it may move to.
var allowedTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPending:         {models.StatusProcessing, models.StatusCancelled},
	models.StatusAwaitingPayment: {models.StatusPaymentVerified, models.StatusPaymentRejected, models.StatusCancelled},
	models.StatusPaymentVerified: {models.StatusProcessing, models.StatusCancelled, models.StatusRefunded},
	models.StatusPaymentRejected: {models.StatusAwaitingPayment, models.StatusCancelled},
	models.StatusProcessing:      {models.StatusShipped, models.StatusCancelled, models.StatusRefunded},
	models.StatusShipped:         {models.StatusDelivered, models.StatusRefunded},
	models.StatusDelivered:       {models.StatusRefunded},
	models.StatusCancelled:       nil,
	models.StatusRefunded:        nil,
}

// CanTransition reports whether an order in from may be moved to to.
func CanTransition(from, to models.OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from s.
func NextStatuses(s models.OrderStatus) []models.OrderStatus {
	next := allowedTransitions[s]
	out := make([]models.OrderStatus, len(next))
	copy(out, next)
	return out
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s models.OrderStatus) bool {
	return len(allowedTransitions[s]) == 0
}

// customerCancellable are the statuses a customer may cancel from.
func customerCancellable(s models.OrderStatus) bool {
	return s == models.StatusPending || s == models.StatusAwaitingPayment
}

// initialStatus is the status a new order starts in.
func initialStatus(m models.PaymentMethod) models.OrderStatus {
	if m.IsWallet() {
		return models.StatusAwaitingPayment
	}
	return models.StatusPending
}
