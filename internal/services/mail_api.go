package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HTTPMailer delivers mail through a JSON email API.
type HTTPMailer struct {
	endpoint string
	apiKey   string
	from     string
	fromName string
	client   *http.Client
	logger   *zap.Logger
}

// NewHTTPMailer constructs an HTTPMailer posting to endpoint.
func NewHTTPMailer(endpoint, apiKey, from, fromName string, timeout time.Duration, logger *zap.Logger) *HTTPMailer {
	return &HTTPMailer{
		endpoint: endpoint,
		apiKey:   apiKey,
		from:     from,
		fromName: fromName,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

type mailAPIRequest struct {
	From     string `json:"from"`
	FromName string `json:"from_name,omitempty"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Text     string `json:"text"`
}

// Send posts msg to the provider; any non-2xx response is an error.
func (m *HTTPMailer) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(mailAPIRequest{
		From:     m.from,
		FromName: m.fromName,
		To:       msg.To,
		Subject:  msg.Subject,
		Text:     msg.Body,
	})
	if err != nil {
		return fmt.Errorf("mail api marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("mail api request build: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if m.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.apiKey)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("mail api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("mail api failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	m.logger.Info("mail sent", zap.String("to", msg.To), zap.String("via", "api"))
	return nil
}
