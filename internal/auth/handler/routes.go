package handler

import (
	"log/slog"
	"time"

	"github.com/AnthoniusHendriyanto/travel-auth/config"
	"github.com/AnthoniusHendriyanto/travel-auth/internal/logging"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// NewApp returns a fiber app with panic recovery, request logging and the
// JSON error handler installed. cfg.ProxyHeader decides where c.IP(), and so
// the rate limiter key, comes from.
func NewApp(log *slog.Logger, cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:            ErrorHandler,
		ProxyHeader:             cfg.ProxyHeader,
		EnableTrustedProxyCheck: len(cfg.TrustedProxies) > 0,
		TrustedProxies:          cfg.TrustedProxies,
	})
	app.Use(logging.Middleware(log))
	app.Use(recover.New())
	return app
}

func RegisterRoutes(app *fiber.App, h *AuthHandler, cfg *config.Config) {
	window := time.Duration(cfg.RateLimitWindowMin) * time.Minute

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	accounts := app.Group("/api/v1/accounts")
	accounts.Post("/", rateLimit(cfg.RegisterRateLimit, window, "Too many registration attempts, try again later"), h.Register)
	accounts.Post("/login", rateLimit(cfg.LoginRateLimit, window, "Too many login attempts, try again later"), h.Login)
	accounts.Post("/federated-login", rateLimit(cfg.FederatedRateLimit, window, "Too many federated login attempts, try again later"), h.FederatedLogin)
	accounts.Post("/token/refresh", h.Refresh)
	accounts.Post("/logout", h.Logout)

	// Authenticated endpoints
	accounts.Get("/me", h.RequireAuth(), h.GetMe)
	accounts.Patch("/me", h.RequireAuth(), h.UpdateMe)
	accounts.Get("/:id", h.RequireAuth(), h.GetAccount)
}

// rateLimit allows max requests per client IP within a sliding window.
// A non-positive max disables the limit.
func rateLimit(max int, window time.Duration, msg string) fiber.Handler {
	if max <= 0 || window <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": msg})
		},
		LimiterMiddleware: limiter.SlidingWindow{},
	})
}
