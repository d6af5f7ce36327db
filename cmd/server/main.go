package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/unilift/backend/internal/config"
	"github.com/unilift/backend/internal/database"
	"github.com/unilift/backend/internal/logging"
	"github.com/unilift/backend/internal/queue"
	"github.com/unilift/backend/internal/repository"
	"github.com/unilift/backend/internal/routes"
	"github.com/unilift/backend/internal/services"
	"github.com/unilift/backend/internal/session"
	"github.com/unilift/backend/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Connect(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	var store fiber.Storage
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := storage.Connect(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			logger.Fatal("redis connection failed", zap.Error(err))
		}
		defer func() { _ = client.Close() }()
		store = storage.NewRedis(client, "unilift")
		logger.Info("using redis for sessions and rate limits")
	}

	var mailer services.Mailer
	if cfg.MailProvider == config.MailProviderKafka {
		producer := queue.NewProducer(queue.Dialer{
			Broker:   cfg.KafkaBroker,
			Username: cfg.KafkaUsername,
			Password: cfg.KafkaPassword,
		}, cfg.KafkaTopic, logger)
		defer func() { _ = producer.Close() }()
		mailer = producer
	} else {
		mailer = services.NewDeliveryMailer(cfg, logger)
	}

	users := repository.NewUserRepository(db)
	otps := repository.NewOTPRepository(db)
	verifications := repository.NewVerificationRepository(db)
	telegram := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat, logger)

	otpService := services.NewOTPService(otps, users, verifications, mailer, services.OTPConfig{
		Domain:      cfg.AllowedEmailDomain,
		TTL:         cfg.OTPTTL,
		VerifiedTTL: cfg.VerifiedEmailTTL,
		MailTimeout: cfg.MailTimeout,
	}, logger)
	authService := services.NewAuthService(users, telegram, services.AuthConfig{
		Domain:               cfg.AllowedEmailDomain,
		RequireVerifiedEmail: cfg.RequireVerifiedEmail,
	}, logger)

	if cfg.AdminEmail != "" {
		if err := authService.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
			logger.Fatal("admin bootstrap failed", zap.Error(err))
		}
	}

	sessions := session.New(session.Config{
		CookieName: cfg.SessionCookie,
		Expiration: cfg.SessionExpires,
		Secure:     cfg.CookieSecure,
		Storage:    store,
	})

	app := routes.NewApp(routes.Dependencies{
		Config:   cfg,
		Logger:   logger,
		OTP:      otpService,
		Auth:     authService,
		Sessions: sessions,
		Storage:  store,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("port", cfg.AppPort))
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		logger.Fatal("fiber.Listen error", zap.Error(err))
	}
}
