package handlers

import (
	"fmt"

	"ticktee/internal/middleware"
	"ticktee/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// OrderHandler handles HTTP requests for a customer's orders.
type OrderHandler struct {
	orders   *services.OrderService
	payments *services.PaymentService
	validate *validator.Validate
	log      logrus.FieldLogger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orders *services.OrderService, payments *services.PaymentService, log logrus.FieldLogger) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		payments: payments,
		validate: newValidator(),
		log:      log,
	}
}

// RegisterRoutes registers checkout and order routes on an authenticated router.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/checkout", h.HandleCheckout)

	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/:id/cancel", h.HandleCancelOrder)
	orderRoutes.Post("/:id/payment-proof", h.HandleUploadProof)
	orderRoutes.Get("/:id/payment-qr", h.HandlePaymentQR)
}

// HandleCheckout turns the cart into an order.
func (h *OrderHandler) HandleCheckout(c *fiber.Ctx) error {
	var req services.CheckoutInput
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	order, err := h.orders.Checkout(middleware.UserID(c), req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleGetOrders returns the caller's orders, newest first.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	page := pageFrom(c)
	orders, total, err := h.orders.ListUserOrders(middleware.UserID(c), page)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(listResponse("orders", orders, total, page))
}

// HandleGetOrderByID retrieves one of the caller's orders.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.orders.GetOrderForUser(middleware.UserID(c), false, c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(order)
}

// HandleCancelOrder cancels one of the caller's orders.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	order, err := h.orders.CancelOrder(middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(order)
}

// HandleUploadProof accepts the multipart "proof" file for a wallet order.
func (h *OrderHandler) HandleUploadProof(c *fiber.Ctx) error {
	fh, err := c.FormFile("proof")
	if err != nil {
		return respondError(c, h.log, fmt.Errorf("proof file is required: %w", services.ErrInvalidInput))
	}
	if fh.Size > services.MaxProofSize {
		return respondError(c, h.log, fmt.Errorf("file exceeds %d bytes: %w", services.MaxProofSize, services.ErrInvalidInput))
	}
	f, err := fh.Open()
	if err != nil {
		return respondError(c, h.log, err)
	}
	defer f.Close()

	order, err := h.payments.SubmitProof(c.UserContext(), middleware.UserID(c), c.Params("id"), services.ProofUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(order)
}

// HandlePaymentQR renders the wallet payment QR code as PNG.
func (h *OrderHandler) HandlePaymentQR(c *fiber.Ctx) error {
	png, err := h.payments.PaymentQR(middleware.UserID(c), false, c.Params("id"), c.QueryInt("size", 256))
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, "private, max-age=300")
	return c.Send(png)
}
