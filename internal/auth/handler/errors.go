package handler

import (
	"errors"

	autherror "github.com/AnthoniusHendriyanto/travel-auth/internal/errors"
	"github.com/gofiber/fiber/v2"
)

// respondError writes the client-facing status and message for err. A nil
// err means the request reached a protected handler without claims.
func (h *AuthHandler) respondError(c *fiber.Ctx, err error) error {
	status, msg := statusFor(err)
	if status == fiber.StatusInternalServerError {
		h.log.ErrorContext(c.UserContext(), "request failed",
			"method", c.Method(),
			"path", c.Path(),
			"error", err,
		)
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func statusFor(err error) (int, string) {
	var ve *autherror.ValidationError
	switch {
	case err == nil:
		return fiber.StatusUnauthorized, "Unauthorized"
	case errors.As(err, &ve):
		return fiber.StatusBadRequest, ve.Message
	case errors.Is(err, autherror.ErrEmailAlreadyInUse):
		return fiber.StatusConflict, "Email already registered"
	case errors.Is(err, autherror.ErrInvalidCredentials), errors.Is(err, autherror.ErrNoPasswordSet):
		return fiber.StatusUnauthorized, "Invalid credentials."
	case errors.Is(err, autherror.ErrInvalidFederatedToken):
		return fiber.StatusUnauthorized, "Invalid or expired federated token"
	case errors.Is(err, autherror.ErrUnauthorized),
		errors.Is(err, autherror.ErrTokenExpired),
		errors.Is(err, autherror.ErrTokenInvalid),
		errors.Is(err, autherror.ErrRefreshTokenNotFound):
		return fiber.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, autherror.ErrFederatedEmailMissing):
		return fiber.StatusBadRequest, "Federated account has no valid email"
	case errors.Is(err, autherror.ErrMissingAuthMethod):
		return fiber.StatusBadRequest, "A password or federated identity is required"
	case errors.Is(err, autherror.ErrForbidden):
		return fiber.StatusForbidden, "Forbidden"
	case errors.Is(err, autherror.ErrAccountDisabled):
		return fiber.StatusForbidden, "Account is disabled"
	case errors.Is(err, autherror.ErrAccountNotFound):
		return fiber.StatusNotFound, "Account not found"
	case errors.Is(err, autherror.ErrFederatedUnavailable):
		return fiber.StatusServiceUnavailable, "Federated login is not available"
	case errors.Is(err, autherror.ErrStoreUnavailable):
		return fiber.StatusServiceUnavailable, "Service temporarily unavailable"
	default:
		return fiber.StatusInternalServerError, "Internal server error"
	}
}

// ErrorHandler is the app-level fallback for errors returned by handlers and
// panics caught by the recover middleware.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
}
