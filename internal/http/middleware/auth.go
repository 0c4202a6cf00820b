package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"leftoverapi/internal/auth"
)

// UserIDLocalKey stores the authenticated user id (int64) in Fiber locals.
const UserIDLocalKey = "user_id"

// RequireAuth rejects requests without a valid "Authorization: Bearer <token>" header.
// onError writes the rejection so the response follows the API error envelope.
func RequireAuth(tokens auth.TokenParser, onError func(c *fiber.Ctx, status int, code, message string) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scheme, token, ok := strings.Cut(c.Get(fiber.HeaderAuthorization), " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
			return onError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		}

		userID, err := tokens.ParseUserID(strings.TrimSpace(token))
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrTokenExpired):
				return onError(c, fiber.StatusUnauthorized, "TOKEN_EXPIRED", "token expired")
			case errors.Is(err, auth.ErrInvalidCredentials):
				return onError(c, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials")
			default:
				return onError(c, fiber.StatusUnauthorized, "INVALID_TOKEN", "invalid token")
			}
		}

		c.Locals(UserIDLocalKey, userID)
		return c.Next()
	}
}

// UserID returns the id stored by RequireAuth.
func UserID(c *fiber.Ctx) (int64, bool) {
	id, ok := c.Locals(UserIDLocalKey).(int64)
	return id, ok
}
