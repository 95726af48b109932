package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/viajes/internal/config"
	"github.com/example/viajes/internal/database"
	"github.com/example/viajes/internal/middleware"
	"github.com/example/viajes/internal/routes"
	"github.com/example/viajes/internal/services"
	"github.com/example/viajes/internal/storage"
	"github.com/example/viajes/internal/verification"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	codes := newCodeStore(ctx, cfg)

	app := fiber.New(fiber.Config{
		AppName:      "Viajes Backend",
		ErrorHandler: middleware.ErrorHandler,
		BodyLimit:    64 << 20,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins(),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	routes.Register(app, routes.Deps{
		DB:       db,
		Config:   cfg,
		Codes:    codes,
		Mailer:   services.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom),
		Notifier: services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat),
		Storage:  storage.NewLocal(cfg.UploadDir),
	})

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}()

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}

// newCodeStore prefers Redis when configured so codes survive restarts and
// are shared between instances.
func newCodeStore(ctx context.Context, cfg *config.Config) verification.Store {
	if cfg.RedisURL != "" {
		store, err := verification.NewRedisStoreFromURL(ctx, cfg.RedisURL)
		if err == nil {
			log.Println("verification codes stored in redis")
			return store
		}
		log.Printf("redis unavailable, falling back to memory store: %v", err)
	}

	store := verification.NewMemoryStore()
	go store.RunJanitor(ctx, time.Minute)
	return store
}
