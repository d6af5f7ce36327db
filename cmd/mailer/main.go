// Command mailer relays queued mail events from Kafka to the mail provider.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/unilift/backend/internal/config"
	"github.com/unilift/backend/internal/logging"
	"github.com/unilift/backend/internal/queue"
	"github.com/unilift/backend/internal/services"
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

	if cfg.KafkaBroker == "" {
		logger.Fatal("KAFKA_BROKER must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumer := queue.NewConsumer(queue.Dialer{
		Broker:   cfg.KafkaBroker,
		Username: cfg.KafkaUsername,
		Password: cfg.KafkaPassword,
	}, cfg.KafkaTopic, cfg.KafkaGroupID, services.NewDeliveryMailer(cfg, logger), cfg.MailTimeout, logger)
	defer func() { _ = consumer.Close() }()

	logger.Info("mail relay started", zap.String("topic", cfg.KafkaTopic))
	if err := consumer.Run(ctx); err != nil {
		logger.Fatal("mail relay stopped", zap.Error(err))
	}
	logger.Info("mail relay stopped")
}
