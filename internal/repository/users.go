package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/unilift/backend/internal/apperr"
	"github.com/unilift/backend/internal/models"
)

// DriverFilter narrows ListDrivers. A nil Approved lists every driver.
type DriverFilter struct {
	Approved *bool
}

// UserRepository persists users with GORM.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns the user for a normalized email, or nil when none exists.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindByID returns the user with id, or nil when none exists.
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// Register consumes a live verified-email marker (setting IsVerified) and
// inserts the user in one transaction. A duplicate email rolls the marker
// back and yields apperr.ErrUserExists.
func (r *UserRepository) Register(ctx context.Context, user *models.User, now time.Time) error {
	verified := user.IsVerified
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("email = ? AND expires_at > ?", user.Email, now).
			Delete(&models.EmailVerification{})
		if res.Error != nil {
			return fmt.Errorf("consume email verification: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			user.IsVerified = true
		}

		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.ErrUserExists
			}
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		user.IsVerified = verified
	}
	return err
}

// MarkVerified flips IsVerified for email and reports whether a user matched.
func (r *UserRepository) MarkVerified(ctx context.Context, email string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", email).
		Update("is_verified", true)
	if res.Error != nil {
		return false, fmt.Errorf("mark user verified: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// SetApproved marks the user with id as approved.
func (r *UserRepository) SetApproved(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("is_approved", true).Error; err != nil {
		return fmt.Errorf("approve user: %w", err)
	}
	return nil
}

// GrantAdmin sets the admin, verified and approved flags on the user with id.
func (r *UserRepository) GrantAdmin(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_admin": true, "is_verified": true, "is_approved": true}).Error; err != nil {
		return fmt.Errorf("grant admin: %w", err)
	}
	return nil
}

// ListDrivers returns a page of drivers, newest first, with the total count.
func (r *UserRepository) ListDrivers(ctx context.Context, filter DriverFilter, limit, offset int) ([]models.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", models.RoleDriver)
	if filter.Approved != nil {
		query = query.Where("is_approved = ?", *filter.Approved)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count drivers: %w", err)
	}

	var users []models.User
	if err := query.Omit("password_hash").
		Order("created_at desc").
		Limit(limit).Offset(offset).
		Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("list drivers: %w", err)
	}
	return users, total, nil
}
