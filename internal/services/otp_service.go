package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/unilift/backend/internal/apperr"
	"github.com/unilift/backend/internal/models"
	"github.com/unilift/backend/internal/utils"
)

const otpSubject = "UniLift OTP Verification"

// OTPConfig holds the issuance and verification policy.
type OTPConfig struct {
	Domain      string
	TTL         time.Duration
	VerifiedTTL time.Duration
	MailTimeout time.Duration
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// OTPService issues, delivers and verifies email one-time codes.
type OTPService struct {
	otps          OTPStore
	users         UserStore
	verifications VerificationStore
	mailer        Mailer
	cfg           OTPConfig
	logger        *zap.Logger
	now           func() time.Time
}

// NewOTPService constructs an OTPService.
func NewOTPService(otps OTPStore, users UserStore, verifications VerificationStore, mailer Mailer, cfg OTPConfig, logger *zap.Logger) *OTPService {
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &OTPService{
		otps:          otps,
		users:         users,
		verifications: verifications,
		mailer:        mailer,
		cfg:           cfg,
		logger:        logger,
		now:           now,
	}
}

// Send issues a fresh code for email, replacing any live one, and mails it.
// The record is persisted before delivery; a delivery failure leaves it in
// place and is reported as apperr.ErrDelivery.
func (s *OTPService) Send(ctx context.Context, rawEmail string) error {
	email := utils.NormalizeEmail(rawEmail)
	if !utils.HasEmailDomain(email, s.cfg.Domain) {
		return apperr.ErrInvalidEmailDomain
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	codeHash, err := utils.HashOTP(code)
	if err != nil {
		return fmt.Errorf("hash otp: %w", err)
	}

	record := &models.OTPRecord{
		Email:     email,
		CodeHash:  codeHash,
		ExpiresAt: s.now().Add(s.cfg.TTL),
	}
	if err := s.otps.Upsert(ctx, record); err != nil {
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.MailTimeout)
	defer cancel()

	msg := Message{
		To:      email,
		Subject: otpSubject,
		Body:    fmt.Sprintf("Your OTP is %s. It expires in %d minutes.", code, int(s.cfg.TTL.Minutes())),
	}
	if err := s.mailer.Send(sendCtx, msg); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrDelivery, err)
	}

	s.logger.Info("otp issued", zap.String("email", email), zap.Time("expires_at", record.ExpiresAt))
	return nil
}

// Verify checks code against the live record for email. A correct code is
// single-use: the record is removed and the email becomes verified, either on
// the existing user or as a marker consumed by registration.
func (s *OTPService) Verify(ctx context.Context, rawEmail, rawCode string) error {
	email := utils.NormalizeEmail(rawEmail)
	code := strings.TrimSpace(rawCode)
	if email == "" || code == "" {
		return apperr.ErrEmailOTPRequired
	}

	record, err := s.otps.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if record == nil {
		return apperr.ErrOTPNotFound
	}

	now := s.now()
	if record.Expired(now) {
		if _, err := s.otps.Delete(ctx, record); err != nil {
			return err
		}
		return apperr.ErrOTPExpired
	}

	if !utils.CheckOTP(record.CodeHash, code) {
		return apperr.ErrOTPInvalid
	}

	deleted, err := s.otps.Delete(ctx, record)
	if err != nil {
		return err
	}
	if !deleted {
		// Consumed or superseded concurrently.
		return apperr.ErrOTPNotFound
	}

	found, err := s.users.MarkVerified(ctx, email)
	if err != nil {
		return err
	}
	if !found {
		if err := s.verifications.Upsert(ctx, email, now.Add(s.cfg.VerifiedTTL)); err != nil {
			return err
		}
	}

	s.logger.Info("email verified", zap.String("email", email), zap.Bool("existing_user", found))
	return nil
}
