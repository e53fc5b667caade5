package handlers

import (
	"context"
	"time"

	"ticktee/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Pinger checks a backing dependency.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// SiteHandler serves health and public storefront settings.
type SiteHandler struct {
	site config.SiteConfig
	db   Pinger
	log  logrus.FieldLogger
}

// NewSiteHandler creates a SiteHandler. db may be nil.
func NewSiteHandler(site config.SiteConfig, db Pinger, log logrus.FieldLogger) *SiteHandler {
	return &SiteHandler{site: site, db: db, log: log}
}

// RegisterRoutes registers the health and site-config routes.
func (h *SiteHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
	router.Get("/site-config", h.HandleSiteConfig)
}

// HandleHealth reports whether the service and its database respond.
func (h *SiteHandler) HandleHealth(c *fiber.Ctx) error {
	status, code := "healthy", fiber.StatusOK
	database := "up"
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			h.log.WithError(err).Warn("database ping failed")
			status, code, database = "degraded", fiber.StatusServiceUnavailable, "down"
		}
	}
	return c.Status(code).JSON(fiber.Map{
		"status":   status,
		"database": database,
		"time":     time.Now().Format(time.RFC3339),
	})
}

// HandleSiteConfig returns the public storefront settings.
func (h *SiteHandler) HandleSiteConfig(c *fiber.Ctx) error {
	return c.JSON(h.site)
}
