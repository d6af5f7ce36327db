package queue

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
	"go.uber.org/zap"

	"github.com/unilift/backend/internal/services"
)

// MailEvent is the payload published for the mail relay.
type MailEvent struct {
	ID       string           `json:"id"`
	Message  services.Message `json:"message"`
	QueuedAt time.Time        `json:"queued_at"`
}

// Writer is the subset of *kafka.Writer used by Producer.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes outgoing mail to Kafka. It satisfies services.Mailer, so
// a successful Send means the message was durably queued.
type Producer struct {
	writer Writer
	logger *zap.Logger
}

var _ services.Mailer = (*Producer)(nil)

// Dialer settings shared by the producer and consumer.
type Dialer struct {
	Broker   string
	Username string
	Password string
}

func (d Dialer) transport() *kafka.Transport {
	t := &kafka.Transport{DialTimeout: 10 * time.Second}
	if d.Username != "" {
		t.SASL = plain.Mechanism{Username: d.Username, Password: d.Password}
		t.TLS = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return t
}

// NewProducer constructs a Producer writing to topic.
func NewProducer(d Dialer, topic string, logger *zap.Logger) *Producer {
	return NewProducerWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(d.Broker),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		Transport:    d.transport(),
		WriteTimeout: 10 * time.Second,
	}, logger)
}

// NewProducerWithWriter wraps an existing writer.
func NewProducerWithWriter(w Writer, logger *zap.Logger) *Producer {
	return &Producer{writer: w, logger: logger}
}

// Send queues msg keyed by recipient so retries for one address stay ordered.
func (p *Producer) Send(ctx context.Context, msg services.Message) error {
	event := MailEvent{
		ID:       newEventID(),
		Message:  msg,
		QueuedAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal mail event: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.To),
		Value: payload,
		Time:  event.QueuedAt,
	}); err != nil {
		return fmt.Errorf("publish mail event: %w", err)
	}

	p.logger.Debug("mail event queued", zap.String("event_id", event.ID), zap.String("to", msg.To))
	return nil
}

// Close flushes and closes the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
