package handlers

import (
	"ticktee/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ContactHandler handles the contact form.
type ContactHandler struct {
	service  *services.ContactService
	validate *validator.Validate
	log      logrus.FieldLogger
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(service *services.ContactService, log logrus.FieldLogger) *ContactHandler {
	return &ContactHandler{
		service:  service,
		validate: newValidator(),
		log:      log,
	}
}

// RegisterRoutes registers the contact route behind the given middlewares.
func (h *ContactHandler) RegisterRoutes(router fiber.Router, middlewares ...fiber.Handler) {
	handlers := append(middlewares, h.HandleSubmit)
	router.Post("/contact", handlers...)
}

// HandleSubmit stores a contact message.
func (h *ContactHandler) HandleSubmit(c *fiber.Ctx) error {
	var req services.ContactInput
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	msg, err := h.service.Submit(c.UserContext(), req, c.IP())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Thank you for reaching out. We will get back to you soon.",
		"id":      msg.ID,
	})
}
