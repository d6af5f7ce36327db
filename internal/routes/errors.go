package routes

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/unilift/backend/internal/apperr"
)

const internalErrorMessage = "Internal server error"

// ErrorHandler renders domain errors as {success:false,message}. Anything
// unclassified is logged and reported as a generic 500.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if appErr, ok := apperr.As(err); ok {
			status := apperr.Status(appErr.Kind)
			if status >= fiber.StatusInternalServerError {
				logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
			}

			body := fiber.Map{
				"success": false,
				"message": appErr.Message,
			}
			if errors.Is(err, apperr.ErrUserExists) {
				body["redirectToLogin"] = true
			}
			return c.Status(status).JSON(body)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"success": false,
				"message": fiberErr.Message,
			})
		}

		logger.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": internalErrorMessage,
		})
	}
}
