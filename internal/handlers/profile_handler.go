package handlers

import (
	"ticktee/internal/middleware"
	"ticktee/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ProfileHandler handles HTTP requests for the caller's profile.
type ProfileHandler struct {
	service  *services.ProfileService
	validate *validator.Validate
	log      logrus.FieldLogger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(service *services.ProfileService, log logrus.FieldLogger) *ProfileHandler {
	return &ProfileHandler{
		service:  service,
		validate: newValidator(),
		log:      log,
	}
}

// RegisterRoutes registers the profile routes on an authenticated router.
func (h *ProfileHandler) RegisterRoutes(router fiber.Router) {
	profileRoutes := router.Group("/profile")
	profileRoutes.Get("/", h.HandleGetProfile)
	profileRoutes.Put("/", h.HandleUpdateProfile)
	profileRoutes.Get("/stats", h.HandleStats)
}

// HandleGetProfile returns the caller's profile.
func (h *ProfileHandler) HandleGetProfile(c *fiber.Ctx) error {
	profile, err := h.service.Get(middleware.UserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(profile)
}

// HandleUpdateProfile edits the caller's contact details.
func (h *ProfileHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req services.ProfileInput
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	profile, err := h.service.Update(middleware.UserID(c), req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(profile)
}

// HandleStats summarizes the caller's orders.
func (h *ProfileHandler) HandleStats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(middleware.UserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(stats)
}
