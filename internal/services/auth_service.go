package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unilift/backend/internal/apperr"
	"github.com/unilift/backend/internal/models"
	"github.com/unilift/backend/internal/repository"
	"github.com/unilift/backend/internal/utils"
)

const minPasswordLength = 6

var errPasswordTooShort = apperr.New(apperr.KindValidation, fmt.Sprintf("Password must be at least %d characters", minPasswordLength))

// DriverNotifier is told about drivers waiting for approval.
type DriverNotifier interface {
	NotifyDriverPending(ctx context.Context, driver *models.User) error
}

// AuthConfig holds the registration and login policy.
type AuthConfig struct {
	Domain               string
	RequireVerifiedEmail bool
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// RegisterInput carries the registration request fields.
type RegisterInput struct {
	Email         string
	Password      string
	Role          string
	Name          string
	License       string
	VehicleNumber string
	VehicleType   string
}

// AuthService implements registration, login gating and driver approval.
type AuthService struct {
	users    UserStore
	notifier DriverNotifier
	cfg      AuthConfig
	logger   *zap.Logger
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService constructs an AuthService.
func NewAuthService(users UserStore, notifier DriverNotifier, cfg AuthConfig, logger *zap.Logger) *AuthService {
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		users:    users,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
		now:      now,
	}
}

// Register validates in and creates the user. Riders are approved at
// creation; drivers wait for an admin.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := utils.NormalizeEmail(in.Email)
	role := models.Role(strings.ToLower(strings.TrimSpace(in.Role)))

	if email == "" || in.Password == "" || role == "" {
		return nil, apperr.ErrMissingFields
	}
	if !utils.HasEmailDomain(email, s.cfg.Domain) {
		return nil, apperr.ErrInvalidEmailDomain
	}
	if !role.Valid() {
		return nil, apperr.ErrInvalidRole
	}
	if len(in.Password) < minPasswordLength {
		return nil, errPasswordTooShort
	}

	var profile models.DriverProfile
	if role == models.RoleDriver {
		profile = models.DriverProfile{
			LicenseNumber: strings.TrimSpace(in.License),
			VehicleNumber: strings.TrimSpace(in.VehicleNumber),
			VehicleType:   strings.TrimSpace(in.VehicleType),
		}
		if profile.LicenseNumber == "" || profile.VehicleNumber == "" || profile.VehicleType == "" {
			return nil, apperr.ErrDriverDetails
		}
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.ErrUserExists
	}

	passwordHash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = utils.LocalPart(email)
	}

	user := &models.User{
		Email:         email,
		Name:          name,
		PasswordHash:  passwordHash,
		Role:          role,
		DriverProfile: profile,
		IsApproved:    role == models.RoleRider,
	}
	if err := s.users.Register(ctx, user, s.now()); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
		zap.Bool("verified", user.IsVerified),
	)

	if user.IsDriver() && s.notifier != nil {
		if err := s.notifier.NotifyDriverPending(ctx, user); err != nil {
			s.logger.Warn("driver approval notification failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		}
	}

	return user, nil
}

// Authenticate checks credentials, then the ban, verification and approval
// gates in that order. Unknown users and wrong passwords are indistinguishable.
func (s *AuthService) Authenticate(ctx context.Context, rawEmail, password string) (*models.User, error) {
	email := utils.NormalizeEmail(rawEmail)
	if email == "" || password == "" {
		return nil, apperr.ErrCredentialsRequired
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == "" {
		utils.CheckPassword(s.dummyPasswordHash(), password)
		return nil, apperr.ErrInvalidCredentials
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, apperr.ErrInvalidCredentials
	}

	if user.IsBanned {
		return nil, apperr.ErrAccountBanned
	}
	if s.cfg.RequireVerifiedEmail && !user.IsVerified {
		return nil, apperr.ErrEmailNotVerified
	}
	if user.IsDriver() && !user.IsApproved {
		return nil, apperr.ErrPendingApproval
	}

	return user, nil
}

// Resolve returns the active user for id, or nil when it no longer exists
// or has been banned.
func (s *AuthService) Resolve(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil || user.IsBanned {
		return nil, nil
	}
	return user, nil
}

// ApproveDriver sets IsApproved on the driver identified by driverID.
func (s *AuthService) ApproveDriver(ctx context.Context, admin *models.User, driverID uuid.UUID) (*models.User, error) {
	if admin == nil || !admin.IsAdmin {
		return nil, apperr.ErrAccessDenied
	}

	driver, err := s.users.FindByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if driver == nil || !driver.IsDriver() {
		return nil, apperr.ErrDriverNotFound
	}

	if err := s.users.SetApproved(ctx, driver.ID); err != nil {
		return nil, err
	}
	driver.IsApproved = true

	s.logger.Info("driver approved",
		zap.String("driver_id", driver.ID.String()),
		zap.String("admin_id", admin.ID.String()),
	)
	return driver, nil
}

// ListDrivers returns a page of drivers for an admin.
func (s *AuthService) ListDrivers(ctx context.Context, admin *models.User, approved *bool, page utils.Pagination) ([]models.User, int64, error) {
	if admin == nil || !admin.IsAdmin {
		return nil, 0, apperr.ErrAccessDenied
	}
	return s.users.ListDrivers(ctx, repository.DriverFilter{Approved: approved}, page.Limit, page.Offset)
}

// EnsureAdmin grants admin rights to email, creating the account when it
// does not exist yet.
func (s *AuthService) EnsureAdmin(ctx context.Context, rawEmail, password string) error {
	email := utils.NormalizeEmail(rawEmail)

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		if existing.IsAdmin {
			return nil
		}
		if err := s.users.GrantAdmin(ctx, existing.ID); err != nil {
			return err
		}
		s.logger.Info("admin granted", zap.String("user_id", existing.ID.String()))
		return nil
	}

	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	admin := &models.User{
		Email:        email,
		Name:         "Admin",
		PasswordHash: passwordHash,
		Role:         models.RoleRider,
		IsVerified:   true,
		IsApproved:   true,
		IsAdmin:      true,
	}
	if err := s.users.Register(ctx, admin, s.now()); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	s.logger.Info("admin created", zap.String("user_id", admin.ID.String()))
	return nil
}

func (s *AuthService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		buf := make([]byte, 16)
		_, _ = rand.Read(buf)
		s.dummyHash, _ = utils.HashPassword(hex.EncodeToString(buf))
	})
	return s.dummyHash
}
