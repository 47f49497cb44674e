package handler

import (
	"log/slog"
	"strings"

	"github.com/AnthoniusHendriyanto/travel-auth/internal/auth/dto"
	"github.com/AnthoniusHendriyanto/travel-auth/internal/auth/service"
	authconstant "github.com/AnthoniusHendriyanto/travel-auth/pkg/constant"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	accountService *service.AccountService
	tokenService   service.TokenGenerator
	log            *slog.Logger
}

func NewAuthHandler(accountService *service.AccountService, tokenService service.TokenGenerator, log *slog.Logger) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{accountService: accountService, tokenService: tokenService, log: log}
}

type registerResponse struct {
	Message string `json:"message"`
	*dto.AuthResponse
}

type profileResponse struct {
	Message string             `json:"message"`
	Account *dto.AccountOutput `json:"account"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input dto.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid input",
		})
	}

	resp, err := h.accountService.Register(c.UserContext(), input)
	if err != nil {
		return h.respondError(c, err)
	}

	msg := "Account created"
	if resp.TokenResponse == nil {
		msg = "Account created, sign in with your federated provider to start a session"
	}
	return c.Status(fiber.StatusCreated).JSON(registerResponse{
		Message:      msg,
		AuthResponse: resp,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input dto.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid input",
		})
	}

	input.IPAddress = c.IP()

	resp, err := h.accountService.Login(c.UserContext(), input)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

// FederatedLogin expects the provider-issued ID token as a Bearer credential.
func (h *AuthHandler) FederatedLogin(c *fiber.Ctx) error {
	resp, err := h.accountService.FederatedLogin(c.UserContext(), bearerToken(c))
	if err != nil {
		return h.respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var input dto.RefreshInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	tokens, err := h.accountService.Refresh(c.UserContext(), input)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(tokens)
}

// Logout always succeeds, whatever the body holds.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var input dto.LogoutInput
	_ = c.BodyParser(&input)

	h.accountService.Logout(c.UserContext(), input)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Logged out"})
}

func (h *AuthHandler) GetMe(c *fiber.Ctx) error {
	claims := claimsFrom(c)
	if claims == nil {
		return h.respondError(c, nil)
	}

	account, err := h.accountService.Me(c.UserContext(), claims.UserID)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(account)
}

func (h *AuthHandler) UpdateMe(c *fiber.Ctx) error {
	claims := claimsFrom(c)
	if claims == nil {
		return h.respondError(c, nil)
	}

	var input dto.UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	account, err := h.accountService.UpdateProfile(c.UserContext(), claims.UserID, input)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(profileResponse{Message: "Profile updated", Account: account})
}

func (h *AuthHandler) GetAccount(c *fiber.Ctx) error {
	claims := claimsFrom(c)
	if claims == nil {
		return h.respondError(c, nil)
	}

	account, err := h.accountService.GetAccount(c.UserContext(), claims.UserID, c.Params("id"))
	if err != nil {
		return h.respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(account)
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	prefix := authconstant.DefaultTokenType + " "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func claimsFrom(c *fiber.Ctx) *service.JWTCustomClaims {
	claims, _ := c.Locals(authconstant.LocalsClaimsKey).(*service.JWTCustomClaims)
	return claims
}
