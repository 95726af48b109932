package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/viajes/internal/config"
	"github.com/example/viajes/internal/handlers"
	"github.com/example/viajes/internal/middleware"
	"github.com/example/viajes/internal/services"
	"github.com/example/viajes/internal/storage"
	"github.com/example/viajes/internal/verification"
)

// Deps are the collaborators shared by the handlers.
type Deps struct {
	DB       *gorm.DB
	Config   *config.Config
	Codes    verification.Store
	Mailer   services.CodeSender
	Notifier handlers.SignupNotifier
	Storage  *storage.Local
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, deps Deps) {
	cfg := deps.Config

	authHandler := handlers.NewAuthHandler(deps.DB, cfg, deps.Codes, deps.Mailer, deps.Notifier)
	destinationHandler := handlers.NewDestinationHandler(deps.DB, deps.Storage)
	companyHandler := handlers.NewCompanyHandler(deps.DB, deps.Storage)
	flightHandler := handlers.NewFlightHandler(deps.DB)
	uploadHandler := handlers.NewUploadHandler(deps.Storage)
	busHandler := handlers.NewBusHandler()
	funnelHandler := handlers.NewFunnelHandler()

	app.Static(deps.Storage.URLPrefix, deps.Storage.Root)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "status": "ok"})
	})

	// Auth routes
	auth := app.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/verify-code", authHandler.VerifyCode)
	auth.Post("/resend-code", authHandler.ResendCode)
	auth.Post("/login", authHandler.Login)
	auth.Post("/google", authHandler.Google)
	auth.Get("/me", middleware.AuthMiddleware(cfg.JWTSecret), authHandler.Me)

	destinationHandler.RegisterDestinationRoutes(app.Group("/destinos"))
	companyHandler.RegisterCompanyRoutes(app.Group("/empresas"))
	flightHandler.RegisterFlightRoutes(app.Group("/vuelos"))
	uploadHandler.RegisterUploadRoutes(app.Group("/upload"))

	app.Post("/buses/search", busHandler.Search)

	optional := middleware.OptionalAuth(cfg.JWTSecret)
	app.Post("/funnel/check", optional, funnelHandler.Check)
	app.Post("/funnel/transition", optional, funnelHandler.Transition)
	app.Post("/pagos/checkout", optional, funnelHandler.Checkout)
}
