package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// AdminChecker looks up whether a user holds the admin role.
type AdminChecker interface {
	IsAdmin(userID string) (bool, error)
}

// AdminOnly rejects callers whose profile is not an admin. Lookup failures are
// treated as "not admin". Must run after AuthRequired.
func AdminOnly(checker AdminChecker, log logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := UserID(c)
		if userID == "" {
			return abort(c, fiber.StatusUnauthorized, "authentication required")
		}
		ok, err := checker.IsAdmin(userID)
		if err != nil {
			log.WithError(err).WithField("user_id", userID).Error("admin check failed")
		}
		if err != nil || !ok {
			return abort(c, fiber.StatusForbidden, "admin access required")
		}
		return c.Next()
	}
}
