package middleware

import (
	"strings"
	"time"

	"ticktee/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "ticktee_session"

const (
	localUserID = "user_id"
	localEmail  = "email"
)

// AuthRequired is a Fiber middleware to check for a valid session token. The token
// is read from the session cookie or an "Authorization: Bearer" header. Tokens
// close to expiry are re-issued in a fresh cookie.
func AuthRequired(authService *services.AuthService, secureCookies bool, log logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(SessionCookie)
		if tokenString == "" {
			authHeader := c.Get(fiber.HeaderAuthorization)
			if authHeader == "" {
				return abort(c, fiber.StatusUnauthorized, "authentication required")
			}
			// Expected format: "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return abort(c, fiber.StatusUnauthorized, "Authorization header format must be 'Bearer <token>'")
			}
			tokenString = strings.TrimSpace(parts[1])
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			log.WithError(err).WithField("ip", c.IP()).Debug("session validation failed")
			ClearSessionCookie(c, secureCookies)
			return abort(c, fiber.StatusUnauthorized, "invalid or expired session")
		}

		userID, _ := claims["user_id"].(string)
		email, _ := claims["email"].(string)
		c.Locals(localUserID, userID)
		c.Locals(localEmail, email)

		if authService.NeedsRefresh(claims) {
			token, exp, err := authService.IssueToken(userID, email)
			if err != nil {
				log.WithError(err).WithField("user_id", userID).Warn("failed to refresh session")
			} else {
				SetSessionCookie(c, token, exp, secureCookies)
			}
		}

		return c.Next()
	}
}

// SetSessionCookie stores token in an HttpOnly cookie that expires with it.
func SetSessionCookie(c *fiber.Ctx, token string, expires time.Time, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *fiber.Ctx, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// UserID returns the authenticated user's ID, or "" outside AuthRequired.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(localUserID).(string)
	return id
}

// Email returns the authenticated user's email.
func Email(c *fiber.Ctx) string {
	email, _ := c.Locals(localEmail).(string)
	return email
}

func abort(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}
