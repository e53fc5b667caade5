package handlers

import (
	"strings"

	"ticktee/internal/middleware"
	"ticktee/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService   *services.AuthService
	validate      *validator.Validate
	secureCookies bool
	log           logrus.FieldLogger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, secureCookies bool, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		validate:      newValidator(),
		secureCookies: secureCookies,
		log:           log,
	}
}

// RegisterRoutes registers the authentication routes. Extra handlers, such as a
// rate limiter, run in front of every route.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, middlewares ...fiber.Handler) {
	authRoutes := router.Group("/auth", middlewares...)
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/logout", h.HandleLogout)
}

// HandleRegister opens a customer account and starts a session for it.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}

	user, profile, err := h.authService.RegisterUser(req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	h.log.WithField("user_id", user.ID).Info("user registered")

	token, exp, err := h.authService.IssueToken(user.ID, user.Email)
	if err != nil {
		return respondError(c, h.log, err)
	}
	middleware.SetSessionCookie(c, token, exp, h.secureCookies)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "User registered successfully",
		"user":       user,
		"profile":    profile,
		"token":      token,
		"expires_at": exp,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin handles user login and issues a session token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}

	session, err := h.authService.LoginUser(strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		h.log.WithField("ip", c.IP()).Info("failed login attempt")
		return respondError(c, h.log, err)
	}
	middleware.SetSessionCookie(c, session.Token, session.ExpiresAt, h.secureCookies)

	return c.JSON(fiber.Map{
		"message":    "Login successful",
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
		"user":       session.User,
	})
}

// HandleLogout ends the cookie session.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	middleware.ClearSessionCookie(c, h.secureCookies)
	return c.JSON(fiber.Map{"message": "Logged out"})
}
