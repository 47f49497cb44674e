package handler

import (
	"errors"

	autherror "github.com/AnthoniusHendriyanto/travel-auth/internal/errors"
	authconstant "github.com/AnthoniusHendriyanto/travel-auth/pkg/constant"
	"github.com/gofiber/fiber/v2"
)

// RequireAuth rejects requests without a valid access token and stores the
// verified claims under LocalsClaimsKey.
func (h *AuthHandler) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing or malformed token"})
		}

		claims, err := h.tokenService.VerifyAccess(token)
		if err != nil {
			if errors.Is(err, autherror.ErrTokenExpired) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token expired"})
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
		}

		c.Locals(authconstant.LocalsClaimsKey, claims)
		return c.Next()
	}
}
