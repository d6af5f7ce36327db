package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/unilift/backend/internal/models"
)

// OTPRepository persists one-time codes with GORM.
type OTPRepository struct {
	db *gorm.DB
}

// NewOTPRepository constructs an OTPRepository.
func NewOTPRepository(db *gorm.DB) *OTPRepository {
	return &OTPRepository{db: db}
}

// Upsert replaces any live record for the email in a single statement.
func (r *OTPRepository) Upsert(ctx context.Context, record *models.OTPRecord) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"code_hash", "expires_at", "updated_at"}),
	}).Create(record).Error
	if err != nil {
		return fmt.Errorf("upsert otp: %w", err)
	}
	return nil
}

// FindByEmail returns the record for email, or nil when none exists.
func (r *OTPRepository) FindByEmail(ctx context.Context, email string) (*models.OTPRecord, error) {
	var record models.OTPRecord
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find otp: %w", err)
	}
	return &record, nil
}

// Delete removes record unless it was superseded since it was read, and
// reports whether a row was removed.
func (r *OTPRepository) Delete(ctx context.Context, record *models.OTPRecord) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("email = ? AND code_hash = ?", record.Email, record.CodeHash).
		Delete(&models.OTPRecord{})
	if res.Error != nil {
		return false, fmt.Errorf("delete otp: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// VerificationRepository persists verified-email markers.
type VerificationRepository struct {
	db *gorm.DB
}

// NewVerificationRepository constructs a VerificationRepository.
func NewVerificationRepository(db *gorm.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

// Upsert records that email was verified, valid until expiresAt.
func (r *VerificationRepository) Upsert(ctx context.Context, email string, expiresAt time.Time) error {
	marker := models.EmailVerification{Email: email, ExpiresAt: expiresAt}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"expires_at", "updated_at"}),
	}).Create(&marker).Error
	if err != nil {
		return fmt.Errorf("upsert email verification: %w", err)
	}
	return nil
}
