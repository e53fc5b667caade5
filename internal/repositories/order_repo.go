package repositories

import (
	"ticktee/internal/models"
)

// OrderFilter narrows an order listing.
type OrderFilter struct {
	UserID       string
	Statuses     []models.OrderStatus
	WalletOnly   bool
	ProofPending bool // only orders with an uploaded proof
	Offset       int
	Limit        int
}

// OrderStats summarizes one customer's orders.
type OrderStats struct {
	TotalOrders     int64   `json:"total_orders"`
	TotalSpent      float64 `json:"total_spent"`
	OpenOrders      int64   `json:"open_orders"`
	DeliveredOrders int64   `json:"delivered_orders"`
}

// DashboardStats summarizes every order for the back-office.
type DashboardStats struct {
	TotalOrders     int64                        `json:"total_orders"`
	Revenue         float64                      `json:"revenue"`
	OpenOrders      int64                        `json:"open_orders"`
	PendingPayments int64                        `json:"pending_payments"`
	ByStatus        map[models.OrderStatus]int64 `json:"by_status"`
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// Create decrements stock for every item, inserts the order with its items and
	// clears the owner's server cart, all in one transaction.
	Create(order *models.Order) error
	GetByID(id string) (*models.Order, error)
	List(filter OrderFilter) ([]models.Order, int64, error)
	// Update writes status and payment fields only if the stored status still equals
	// expected. With restock set, item quantities go back to product stock.
	Update(order *models.Order, expected models.OrderStatus, restock bool) error
	UserStats(userID string) (*OrderStats, error)
	DashboardStats() (*DashboardStats, error)
}
