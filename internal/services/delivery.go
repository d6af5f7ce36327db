package services

import (
	"go.uber.org/zap"

	"github.com/unilift/backend/internal/config"
)

// NewDeliveryMailer returns the mailer that talks to a real mail provider.
// The HTTP API is used when configured as the provider, or when mail is
// queued and an API endpoint is set; SMTP otherwise.
func NewDeliveryMailer(cfg *config.Config, logger *zap.Logger) Mailer {
	useAPI := cfg.MailProvider == config.MailProviderHTTP ||
		(cfg.MailProvider == config.MailProviderKafka && cfg.MailAPIURL != "")
	if useAPI {
		return NewHTTPMailer(cfg.MailAPIURL, cfg.MailAPIKey, cfg.MailFrom, cfg.MailFromName, cfg.MailTimeout, logger)
	}

	return NewSMTPMailer(SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.MailFrom,
		FromName: cfg.MailFromName,
		Timeout:  cfg.MailTimeout,
	}, logger)
}
