package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/unilift/backend/internal/services"
)

// Reader is the subset of *kafka.Reader used by Consumer.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer relays queued mail events to a Mailer.
type Consumer struct {
	reader      Reader
	mailer      services.Mailer
	sendTimeout time.Duration
	logger      *zap.Logger
}

// NewConsumer constructs a Consumer reading topic as part of groupID.
func NewConsumer(d Dialer, topic, groupID string, mailer services.Mailer, sendTimeout time.Duration, logger *zap.Logger) *Consumer {
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	if t := d.transport(); t.SASL != nil {
		dialer.SASLMechanism = t.SASL
		dialer.TLS = t.TLS
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{d.Broker},
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
		Dialer:   dialer,
	})
	return NewConsumerWithReader(reader, mailer, sendTimeout, logger)
}

// NewConsumerWithReader wraps an existing reader.
func NewConsumerWithReader(r Reader, mailer services.Mailer, sendTimeout time.Duration, logger *zap.Logger) *Consumer {
	return &Consumer{reader: r, mailer: mailer, sendTimeout: sendTimeout, logger: logger}
}

// Run consumes until ctx is cancelled. Each message is committed after one
// delivery attempt; failed deliveries are logged, not retried.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return fmt.Errorf("fetch mail event: %w", err)
		}

		if err := c.handle(ctx, msg); err != nil {
			c.logger.Error("mail relay failed",
				zap.Int64("offset", msg.Offset),
				zap.Int("partition", msg.Partition),
				zap.Error(err),
			)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("commit mail event: %w", err)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) error {
	var event MailEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("invalid mail event payload: %w", err)
	}
	if event.Message.To == "" {
		return errors.New("mail event without recipient")
	}

	sendCtx, cancel := context.WithTimeout(ctx, c.sendTimeout)
	defer cancel()

	if err := c.mailer.Send(sendCtx, event.Message); err != nil {
		return fmt.Errorf("deliver event %s: %w", event.ID, err)
	}

	c.logger.Info("mail relayed", zap.String("event_id", event.ID), zap.String("to", event.Message.To))
	return nil
}

// Close closes the reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

func newEventID() string {
	return uuid.NewString()
}
