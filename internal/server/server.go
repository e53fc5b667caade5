package server

import (
	"errors"
	"strings"

	"ticktee/internal/config"
	"ticktee/internal/handlers"
	"ticktee/internal/middleware"
	"ticktee/internal/ratelimit"
	"ticktee/internal/repositories"
	"ticktee/internal/services"
	"ticktee/pkg/mailer"
	"ticktee/pkg/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps are the process-scoped resources the HTTP server is built from.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Log    *logrus.Logger

	// LimiterStore backs every rate limiter.
	LimiterStore ratelimit.Store
	// Uploader is nil when object storage is not configured.
	Uploader storage.Uploader
	// Publisher is nil to deliver events inline to the notification service.
	Publisher services.EventPublisher
	Mailer    mailer.Mailer
}

// Server is the assembled application.
type Server struct {
	App           *fiber.App
	Auth          *services.AuthService
	Notifications *services.NotificationService
}

// New wires repositories, services, handlers and middleware into a fiber app.
func New(d Deps) (*Server, error) {
	if d.Config == nil || d.DB == nil || d.Log == nil || d.LimiterStore == nil || d.Mailer == nil {
		return nil, errors.New("server: config, db, log, limiter store and mailer are required")
	}
	cfg, log := d.Config, d.Log

	// --- Repositories ---
	productRepo := repositories.NewGORMProductRepository(d.DB)
	userRepo := repositories.NewGORMUserRepository(d.DB)
	profileRepo := repositories.NewGORMProfileRepository(d.DB)
	cartRepo := repositories.NewGORMCartRepository(d.DB)
	orderRepo := repositories.NewGORMOrderRepository(d.DB)
	contactRepo := repositories.NewGORMContactRepository(d.DB)

	// --- Services ---
	pricing := services.NewPricing(services.PricingConfig(cfg.Pricing))
	notifications := services.NewNotificationService(orderRepo, profileRepo, d.Mailer, cfg.Site.Name, cfg.Site.URL, log)
	publisher := d.Publisher
	if publisher == nil {
		publisher = services.NewInlinePublisher(notifications.HandleEvent)
	}

	authService := services.NewAuthService(userRepo, profileRepo, cfg.JWTSecret, cfg.SessionTTL, log)
	productService := services.NewProductService(productRepo, d.Uploader)
	cartService := services.NewCartService(cartRepo, productRepo, pricing)
	orderService := services.NewOrderService(orderRepo, productRepo, cartRepo, pricing, publisher, log)
	paymentService := services.NewPaymentService(orderRepo, d.Uploader, publisher,
		services.WalletInfo{Name: cfg.Site.WalletName, Number: cfg.Site.WalletNumber}, log)
	profileService := services.NewProfileService(profileRepo, orderRepo)
	contactService := services.NewContactService(contactRepo, d.Mailer, cfg.Site.ContactEmail, log)

	// --- Handlers ---
	secureCookies := !cfg.IsDevelopment()
	var pinger handlers.Pinger
	if sqlDB, err := d.DB.DB(); err == nil {
		pinger = sqlDB
	}
	siteHandler := handlers.NewSiteHandler(cfg.Site, pinger, log)
	authHandler := handlers.NewAuthHandler(authService, secureCookies, log)
	productHandler := handlers.NewProductHandler(productService, log)
	cartHandler := handlers.NewCartHandler(cartService, log)
	orderHandler := handlers.NewOrderHandler(orderService, paymentService, log)
	profileHandler := handlers.NewProfileHandler(profileService, log)
	contactHandler := handlers.NewContactHandler(contactService, log)
	adminHandler := handlers.NewAdminHandler(orderService, paymentService, productService, log)

	// --- Rate limiters ---
	apiLimiter := ratelimit.New(d.LimiterStore, "api", cfg.Limits.APIRequests, cfg.Limits.APIWindow)
	authLimiter := ratelimit.New(d.LimiterStore, "auth", cfg.Limits.AuthRequests, cfg.Limits.AuthWindow)
	contactLimiter := ratelimit.New(d.LimiterStore, "contact", cfg.Limits.ContactRequests, cfg.Limits.ContactWindow)

	// --- Fiber app ---
	// Rate limits key on c.IP(); behind a proxy it reads the client IP from ProxyHeader.
	app := fiber.New(fiber.Config{
		AppName:                 cfg.Site.Name,
		ErrorHandler:            handlers.ErrorHandler(log),
		BodyLimit:               int(services.MaxProofSize) + 1<<20,
		ProxyHeader:             cfg.ProxyHeader,
		EnableIPValidation:      cfg.ProxyHeader != "",
		EnableTrustedProxyCheck: len(cfg.TrustedProxies) > 0,
		TrustedProxies:          cfg.TrustedProxies,
	})
	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.IsDevelopment()}))
	app.Use(logger.New(logger.Config{Output: log.Out}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins(cfg.Site.URL),
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
	}))

	api := app.Group("/api", middleware.RateLimit(apiLimiter, log))

	// Public routes are registered before the authenticated groups so the
	// session middleware never runs for them.
	siteHandler.RegisterRoutes(api)
	productHandler.RegisterRoutes(api)
	cartHandler.RegisterPublicRoutes(api)
	authHandler.RegisterRoutes(api, middleware.RateLimit(authLimiter, log))
	contactHandler.RegisterRoutes(api, middleware.RateLimit(contactLimiter, log))

	auth := middleware.AuthRequired(authService, secureCookies, log)

	admin := api.Group("/admin", auth, middleware.AdminOnly(authService, log))
	productHandler.RegisterAdminRoutes(admin)
	adminHandler.RegisterRoutes(admin)

	protected := api.Group("", auth)
	profileHandler.RegisterRoutes(protected)
	cartHandler.RegisterRoutes(protected)
	orderHandler.RegisterRoutes(protected)

	return &Server{App: app, Auth: authService, Notifications: notifications}, nil
}

// allowedOrigins turns the storefront URL into a CORS origin list.
func allowedOrigins(siteURL string) string {
	origin := strings.TrimRight(strings.TrimSpace(siteURL), "/")
	if origin == "" || origin == "*" {
		return "http://localhost:3000"
	}
	return origin
}
