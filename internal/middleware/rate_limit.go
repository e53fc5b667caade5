package middleware

import (
	"strconv"
	"time"

	"ticktee/internal/ratelimit"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// RateLimit counts requests per client IP against limiter. Over the limit the
// request is answered with 429 and Retry-After. If the counter store fails the
// request goes through.
func RateLimit(limiter *ratelimit.Limiter, log logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()
		res, err := limiter.Allow(c.UserContext(), ip)
		if err != nil {
			log.WithError(err).WithField("ip", ip).Warn("rate limit store unavailable, allowing request")
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

		if !res.Allowed {
			retry := res.RetryAfter(time.Now())
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(retry/time.Second)))
			log.WithField("ip", ip).WithField("path", c.Path()).Info("rate limit exceeded")
			return abort(c, fiber.StatusTooManyRequests, "too many requests, please try again later")
		}
		return c.Next()
	}
}
