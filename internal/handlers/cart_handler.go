package handlers

import (
	"ticktee/internal/middleware"
	"ticktee/internal/models"
	"ticktee/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// CartHandler handles HTTP requests for the shopping cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
	log      logrus.FieldLogger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService, log logrus.FieldLogger) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: newValidator(),
		log:      log,
	}
}

// RegisterPublicRoutes registers cart routes that need no session.
func (h *CartHandler) RegisterPublicRoutes(router fiber.Router) {
	router.Post("/cart/quote", h.HandleQuote)
}

// RegisterRoutes registers the routes for the caller's stored cart.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Put("/", h.HandleReplaceCart)
	cartRoutes.Delete("/", h.HandleClearCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Patch("/items/:productId", h.HandleUpdateItem)
	cartRoutes.Delete("/items/:productId", h.HandleRemoveItem)
}

// QuoteRequest is a set of lines to price.
type QuoteRequest struct {
	Items         []services.CheckoutItem `json:"items" validate:"dive"`
	PaymentMethod models.PaymentMethod    `json:"payment_method" validate:"omitempty,oneof=cod jazzcash easypaisa"`
}

// ReplaceCartRequest is the client's whole cart.
type ReplaceCartRequest struct {
	Items []services.CheckoutItem `json:"items" validate:"dive"`
}

// AddItemRequest adds a product to the cart.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,gte=1,lte=1000"`
}

// UpdateItemRequest sets a line's quantity. Zero removes the line.
type UpdateItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=0,lte=1000"`
}

// HandleQuote prices posted lines without storing them.
func (h *CartHandler) HandleQuote(c *fiber.Ctx) error {
	var req QuoteRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	view, err := h.service.Quote(req.Items, req.PaymentMethod)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(view)
}

// HandleGetCart returns the caller's cart with totals.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	view, err := h.service.Get(middleware.UserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(view)
}

// HandleReplaceCart overwrites the stored cart with the client's.
func (h *CartHandler) HandleReplaceCart(c *fiber.Ctx) error {
	var req ReplaceCartRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	view, err := h.service.Replace(middleware.UserID(c), req.Items)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(view)
}

// HandleClearCart empties the caller's cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	if err := h.service.Clear(middleware.UserID(c)); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleAddItem adds a product, one unit unless a quantity is given.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddItemRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	view, err := h.service.AddItem(middleware.UserID(c), req.ProductID, req.Quantity)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(view)
}

// HandleUpdateItem changes a line's quantity.
func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req UpdateItemRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	view, err := h.service.SetItemQuantity(middleware.UserID(c), c.Params("productId"), req.Quantity)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(view)
}

// HandleRemoveItem drops a line from the cart.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	view, err := h.service.RemoveItem(middleware.UserID(c), c.Params("productId"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(view)
}
