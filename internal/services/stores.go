package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/unilift/backend/internal/models"
	"github.com/unilift/backend/internal/repository"
)

// UserStore is the credential store used by the auth flows.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Register(ctx context.Context, user *models.User, now time.Time) error
	MarkVerified(ctx context.Context, email string) (bool, error)
	SetApproved(ctx context.Context, id uuid.UUID) error
	GrantAdmin(ctx context.Context, id uuid.UUID) error
	ListDrivers(ctx context.Context, filter repository.DriverFilter, limit, offset int) ([]models.User, int64, error)
}

// OTPStore keeps at most one live code per email.
type OTPStore interface {
	Upsert(ctx context.Context, record *models.OTPRecord) error
	FindByEmail(ctx context.Context, email string) (*models.OTPRecord, error)
	Delete(ctx context.Context, record *models.OTPRecord) (bool, error)
}

// VerificationStore records emails proven by OTP before registration.
type VerificationStore interface {
	Upsert(ctx context.Context, email string, expiresAt time.Time) error
}

var (
	_ UserStore         = (*repository.UserRepository)(nil)
	_ OTPStore          = (*repository.OTPRepository)(nil)
	_ VerificationStore = (*repository.VerificationRepository)(nil)
)
