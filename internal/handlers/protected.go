package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/unilift/backend/internal/apperr"
	"github.com/unilift/backend/internal/middleware"
)

// Protected echoes the authenticated user.
func Protected(c *fiber.Ctx) error {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		return apperr.ErrUnauthorized
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Authenticated",
		"user":    user.Sanitized(),
	})
}
