package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unilift/backend/internal/apperr"
	"github.com/unilift/backend/internal/models"
	"github.com/unilift/backend/internal/session"
	"github.com/unilift/backend/internal/utils"
)

const userContextKey = "currentUser"

// UserResolver loads the active user behind a session or token.
type UserResolver interface {
	Resolve(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AuthMiddleware authenticates the request from the session cookie, falling
// back to a Bearer token, and re-resolves the user on every request.
func AuthMiddleware(sessions *session.Manager, users UserResolver, jwtSecret string, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, fromSession, err := sessions.UserID(c)
		if err != nil {
			logger.Warn("session lookup failed", zap.Error(err))
			return apperr.ErrUnauthorized
		}

		if !fromSession {
			claims, ok := BearerClaims(c, jwtSecret)
			if !ok {
				return apperr.ErrUnauthorized
			}
			// Tokens die with the session they were issued for.
			active, err := sessions.Active(claims.SessionID)
			if err != nil {
				logger.Warn("session lookup failed", zap.Error(err))
				return apperr.ErrUnauthorized
			}
			if !active {
				return apperr.ErrUnauthorized
			}
			userID = claims.UserID
		}

		user, err := users.Resolve(c.UserContext(), userID)
		if err != nil {
			return err
		}
		if user == nil {
			if fromSession {
				if err := sessions.Logout(c); err != nil {
					logger.Warn("revoking stale session failed", zap.Error(err))
				}
			}
			return apperr.ErrUnauthorized
		}

		c.Locals(userContextKey, user)
		return c.Next()
	}
}

// RequireAdmin rejects authenticated users without the admin flag.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := GetCurrentUser(c)
		if !ok {
			return apperr.ErrUnauthorized
		}
		if !user.IsAdmin {
			return apperr.ErrAccessDenied
		}
		return c.Next()
	}
}

// GetCurrentUser extracts the authenticated user from context.
func GetCurrentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(userContextKey).(*models.User)
	return user, ok && user != nil
}

// BearerClaims parses and validates the request's Bearer token, if any.
func BearerClaims(c *fiber.Ctx, secret string) (utils.TokenClaims, bool) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return utils.TokenClaims{}, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return utils.TokenClaims{}, false
	}

	claims, err := utils.ParseToken(secret, strings.TrimSpace(parts[1]))
	if err != nil {
		return utils.TokenClaims{}, false
	}
	return claims, true
}
