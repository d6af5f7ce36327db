package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/unilift/backend/internal/apperr"
)

// RateLimiter allows max requests per client IP in each fixed window.
// A nil storage keeps counters in process memory.
func RateLimiter(max int, window time.Duration, storage fiber.Storage) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "otp:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return apperr.ErrRateLimited
		},
		Storage:           storage,
		LimiterMiddleware: limiter.FixedWindow{},
	})
}
