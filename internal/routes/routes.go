package routes

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/unilift/backend/internal/config"
	"github.com/unilift/backend/internal/handlers"
	"github.com/unilift/backend/internal/middleware"
	"github.com/unilift/backend/internal/services"
	"github.com/unilift/backend/internal/session"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Config   *config.Config
	Logger   *zap.Logger
	OTP      *services.OTPService
	Auth     *services.AuthService
	Sessions *session.Manager
	// Storage backs the rate limiter; nil keeps counters in memory.
	Storage fiber.Storage
}

// NewApp builds the Fiber application with middleware and routes.
func NewApp(deps Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:                 "UniLift Backend",
		ErrorHandler:            ErrorHandler(deps.Logger),
		ProxyHeader:             deps.Config.ProxyHeader,
		EnableTrustedProxyCheck: len(deps.Config.TrustedProxies) > 0,
		TrustedProxies:          deps.Config.TrustedProxies,
		EnableIPValidation:      deps.Config.ProxyHeader != "",
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger(deps.Logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(deps.Config.AllowedOrigins, ","),
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PATCH,OPTIONS",
	}))

	Register(app, deps)
	return app
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, deps Dependencies) {
	cfg := deps.Config

	authHandler := handlers.NewAuthHandler(deps.OTP, deps.Auth, deps.Sessions, cfg, deps.Logger)
	adminHandler := handlers.NewAdminHandler(deps.Auth)

	requireAuth := middleware.AuthMiddleware(deps.Sessions, deps.Auth, cfg.JWTSecret, deps.Logger)
	otpLimiter := middleware.RateLimiter(cfg.OTPRateLimit, cfg.OTPRateWindow, deps.Storage)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("UniLift Backend Running")
	})

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/send-otp", otpLimiter, authHandler.SendOTP)
	auth.Post("/verify-otp", authHandler.VerifyOTP)
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/logout", authHandler.Logout)
	auth.Post("/logout", authHandler.Logout)

	// Admin routes
	auth.Patch("/approve-driver/:id", requireAuth, middleware.RequireAdmin(), adminHandler.ApproveDriver)
	auth.Get("/admin/drivers", requireAuth, middleware.RequireAdmin(), adminHandler.ListDrivers)

	api.Get("/protected", requireAuth, handlers.Protected)
}
