package handler

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"leftoverapi/internal/http/middleware"
	"leftoverapi/internal/service"
)

type messageResponse struct {
	Message string `json:"message"`
}

// Register creates an account.
// @Summary Register a user
// @Tags users
// @Accept json
// @Produce json
// @Param body body service.RegisterInput true "user"
// @Success 201 {object} messageResponse
// @Failure 400 {object} errorPayload
// @Router /api/register [post]
func Register(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.RegisterInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if _, err := svc.Register(c.UserContext(), in); err != nil {
			return userError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(messageResponse{Message: "registration completed"})
	}
}

// Login issues a token for a phone number.
// @Summary Log in by phone number
// @Tags users
// @Accept json
// @Produce json
// @Param body body service.LoginInput true "credentials"
// @Success 200 {object} service.Token
// @Failure 401 {object} errorPayload
// @Router /api/login [post]
func Login(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.LoginInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		tok, err := svc.Login(c.UserContext(), in)
		if err != nil {
			return userError(c, err)
		}
		return c.JSON(tok)
	}
}

// LoginWithName issues a token for a name and phone number pair.
// @Summary Log in by name and phone number
// @Tags users
// @Accept json
// @Produce json
// @Param body body service.NameLoginInput true "credentials"
// @Success 200 {object} service.Token
// @Failure 401 {object} errorPayload
// @Router /api/login/with-name [post]
func LoginWithName(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.NameLoginInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		tok, err := svc.LoginWithName(c.UserContext(), in)
		if err != nil {
			return userError(c, err)
		}
		return c.JSON(tok)
	}
}

// UserInfo returns the authenticated user's profile.
// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Failure 401 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/user/info [get]
func UserInfo(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := middleware.UserID(c)
		if !ok {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		}
		u, err := svc.Info(c.UserContext(), userID)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "user not found")
			}
			return internalError(c, err)
		}
		return c.JSON(u)
	}
}

func userError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		_, detail, _ := strings.Cut(err.Error(), ": ")
		return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", detail)
	case errors.Is(err, service.ErrDuplicateUser):
		return writeError(c, fiber.StatusBadRequest, "DUPLICATE_USER", "user with this name and phone number already exists")
	case errors.Is(err, service.ErrUserNotFound):
		return writeError(c, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "user not found")
	default:
		return internalError(c, err)
	}
}

// internalError logs err and answers 500 without exposing it.
func internalError(c *fiber.Ctx, err error) error {
	slog.ErrorContext(c.UserContext(), "request failed",
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
		slog.String("error", err.Error()),
	)
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}
