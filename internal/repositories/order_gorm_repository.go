package repositories

import (
	"errors"
	"fmt"
	"time"

	"ticktee/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// Create stores a new order.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
			if res.Error != nil {
				return fmt.Errorf("failed to reserve stock for product %s: %w", item.ProductID, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("product %s: %w", item.ProductName, ErrInsufficientStock)
			}
		}
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		if err := tx.Where("user_id = ?", order.UserID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		return nil
	})
}

// GetByID returns an order with its items.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order %s: %w", id, err)
	}
	return &order, nil
}

// List returns one page of orders matching filter, newest first, and the total match count.
func (r *GORMOrderRepository) List(filter OrderFilter) ([]models.Order, int64, error) {
	q := r.db.Model(&models.Order{})
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if len(filter.Statuses) > 0 {
		q = q.Where("status IN ?", filter.Statuses)
	}
	if filter.WalletOnly {
		q = q.Where("payment_method IN ?", []models.PaymentMethod{models.PaymentJazzCash, models.PaymentEasypaisa})
	}
	if filter.ProofPending {
		q = q.Where("payment_proof IS NOT NULL AND payment_proof <> ''")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}
	if filter.Limit > 0 {
		q = q.Offset(filter.Offset).Limit(filter.Limit)
	}
	var orders []models.Order
	if err := q.Preload("Items").Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

// Update applies status and payment changes conditionally on the expected status.
func (r *GORMOrderRepository) Update(order *models.Order, expected models.OrderStatus, restock bool) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, expected).
			Updates(map[string]interface{}{
				"status":        order.Status,
				"payment_proof": order.PaymentProof,
				"is_verified":   order.IsVerified,
				"verified_at":   order.VerifiedAt,
				"verified_by":   order.VerifiedBy,
				"payment_note":  order.PaymentNote,
				"updated_at":    time.Now(),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update order %s: %w", order.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Count(&n).Error; err != nil {
				return fmt.Errorf("failed to update order %s: %w", order.ID, err)
			}
			if n == 0 {
				return fmt.Errorf("order with ID %s: %w", order.ID, ErrNotFound)
			}
			return fmt.Errorf("order %s is no longer %s: %w", order.ID, expected, ErrConflict)
		}
		if !restock {
			return nil
		}
		// Soft-deleted products get their stock back too.
		for _, item := range order.Items {
			err := tx.Unscoped().Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error
			if err != nil {
				return fmt.Errorf("failed to restock product %s: %w", item.ProductID, err)
			}
		}
		return nil
	})
}

// UserStats aggregates a customer's orders.
func (r *GORMOrderRepository) UserStats(userID string) (*OrderStats, error) {
	stats := &OrderStats{}
	base := func() *gorm.DB { return r.db.Model(&models.Order{}).Where("user_id = ?", userID) }

	if err := base().Count(&stats.TotalOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	if err := base().Where("status NOT IN ?", models.UnpaidStatuses).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&stats.TotalSpent).Error; err != nil {
		return nil, fmt.Errorf("failed to sum orders: %w", err)
	}
	if err := base().Where("status NOT IN ?", models.ClosedStatuses).Count(&stats.OpenOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count open orders: %w", err)
	}
	if err := base().Where("status = ?", models.StatusDelivered).Count(&stats.DeliveredOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count delivered orders: %w", err)
	}
	return stats, nil
}

// DashboardStats aggregates every order.
func (r *GORMOrderRepository) DashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{ByStatus: make(map[models.OrderStatus]int64)}

	var rows []struct {
		Status models.OrderStatus
		Count  int64
		Amount float64
	}
	err := r.db.Model(&models.Order{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS amount").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate orders: %w", err)
	}

	for _, row := range rows {
		stats.ByStatus[row.Status] = row.Count
		stats.TotalOrders += row.Count
		if row.Status.Open() {
			stats.OpenOrders += row.Count
		}
		if row.Status.Paid() {
			stats.Revenue += row.Amount
		}
	}

	err = r.db.Model(&models.Order{}).
		Where("status = ? AND payment_proof IS NOT NULL AND payment_proof <> ''", models.StatusAwaitingPayment).
		Count(&stats.PendingPayments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count pending payments: %w", err)
	}
	return stats, nil
}
