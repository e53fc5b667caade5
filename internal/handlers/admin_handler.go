package handlers

import (
	"ticktee/internal/middleware"
	"ticktee/internal/models"
	"ticktee/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const lowStockThreshold = 5

// AdminHandler handles back-office order and payment routes.
type AdminHandler struct {
	orders   *services.OrderService
	payments *services.PaymentService
	products *services.ProductService
	validate *validator.Validate
	log      logrus.FieldLogger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(orders *services.OrderService, payments *services.PaymentService, products *services.ProductService, log logrus.FieldLogger) *AdminHandler {
	return &AdminHandler{
		orders:   orders,
		payments: payments,
		products: products,
		validate: newValidator(),
		log:      log,
	}
}

// RegisterRoutes registers the routes on a router already limited to admins.
func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/orders", h.HandleListOrders)
	router.Get("/orders/:id", h.HandleGetOrder)
	router.Put("/orders/:id", h.HandleUpdateOrder)
	router.Get("/pending-payments", h.HandlePendingPayments)
	router.Post("/verify-payment", h.HandleVerifyPayment)
	router.Get("/stats", h.HandleStats)
}

// UpdateOrderRequest moves an order to a new status.
type UpdateOrderRequest struct {
	Status models.OrderStatus `json:"status" validate:"required"`
	Note   string             `json:"note" validate:"omitempty,max=1000"`
}

// HandleListOrders returns every order, optionally filtered by ?status=.
func (h *AdminHandler) HandleListOrders(c *fiber.Ctx) error {
	page := pageFrom(c)
	orders, total, err := h.orders.ListOrders(models.OrderStatus(c.Query("status")), page)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(listResponse("orders", orders, total, page))
}

// HandleGetOrder returns any order together with the statuses it may move to.
func (h *AdminHandler) HandleGetOrder(c *fiber.Ctx) error {
	order, err := h.orders.GetOrderByID(c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"order":         order,
		"next_statuses": services.NextStatuses(order.Status),
	})
}

// HandleUpdateOrder changes an order's status.
func (h *AdminHandler) HandleUpdateOrder(c *fiber.Ctx) error {
	var req UpdateOrderRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	order, err := h.orders.UpdateOrderStatus(c.Params("id"), req.Status, req.Note)
	if err != nil {
		return respondError(c, h.log, err)
	}
	h.log.WithFields(logrus.Fields{"order_id": order.ID, "status": order.Status, "admin_id": middleware.UserID(c)}).Info("order updated by admin")
	return c.JSON(order)
}

// HandlePendingPayments lists wallet orders waiting for proof review.
func (h *AdminHandler) HandlePendingPayments(c *fiber.Ctx) error {
	page := pageFrom(c)
	orders, total, err := h.payments.PendingPayments(page)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(listResponse("orders", orders, total, page))
}

// HandleVerifyPayment approves or rejects a payment proof.
func (h *AdminHandler) HandleVerifyPayment(c *fiber.Ctx) error {
	var req services.VerifyInput
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	order, err := h.payments.VerifyPayment(middleware.UserID(c), req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(order)
}

// HandleStats returns the dashboard summary.
func (h *AdminHandler) HandleStats(c *fiber.Ctx) error {
	stats, err := h.orders.DashboardStats()
	if err != nil {
		return respondError(c, h.log, err)
	}
	lowStock, err := h.products.LowStockCount(lowStockThreshold)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"total_orders":     stats.TotalOrders,
		"revenue":          stats.Revenue,
		"open_orders":      stats.OpenOrders,
		"pending_payments": stats.PendingPayments,
		"by_status":        stats.ByStatus,
		"low_stock":        lowStock,
	})
}
