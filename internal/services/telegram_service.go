package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/unilift/backend/internal/models"
)

// TelegramService sends moderation notifications to the admin chat.
type TelegramService struct {
	botToken    string
	adminChatID string
	baseURL     string
	client      *http.Client
	logger      *zap.Logger
}

// NewTelegramService creates a new TelegramService. Empty credentials make
// every notification a no-op.
func NewTelegramService(botToken, adminChatID string, logger *zap.Logger) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
		baseURL:     "https://api.telegram.org",
		client:      &http.Client{Timeout: 10 * time.Second},
		logger:      logger,
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends a message to specified chat.
func (s *TelegramService) SendMessage(ctx context.Context, chatID, text string) error {
	if s.botToken == "" {
		s.logger.Debug("telegram bot token not configured")
		return nil
	}

	body, err := json.Marshal(telegramMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}

// SendToAdmin sends a message to the admin chat.
func (s *TelegramService) SendToAdmin(ctx context.Context, text string) error {
	if s.adminChatID == "" {
		s.logger.Debug("telegram admin chat not configured")
		return nil
	}
	return s.SendMessage(ctx, s.adminChatID, text)
}

// NotifyDriverPending tells admins a driver registered and awaits approval.
func (s *TelegramService) NotifyDriverPending(ctx context.Context, driver *models.User) error {
	message := fmt.Sprintf(`<b>🚗 New driver awaiting approval</b>
<b>Name:</b> %s
<b>Email:</b> %s
<b>Vehicle:</b> %s (%s)
<b>License:</b> %s
<b>ID:</b> <code>%s</code>`,
		html.EscapeString(driver.Name),
		html.EscapeString(driver.Email),
		html.EscapeString(driver.DriverProfile.VehicleNumber),
		html.EscapeString(driver.DriverProfile.VehicleType),
		html.EscapeString(driver.DriverProfile.LicenseNumber),
		driver.ID,
	)

	return s.SendToAdmin(ctx, strings.TrimSpace(message))
}
