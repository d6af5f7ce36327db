// Package testutil provides in-memory stand-ins for the GORM repositories.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/unilift/backend/internal/apperr"
	"github.com/unilift/backend/internal/models"
	"github.com/unilift/backend/internal/repository"
)

// Store holds users, OTP records and verification markers in memory with
// the same consistency rules as the database-backed repositories.
type Store struct {
	mu       sync.Mutex
	users    map[uuid.UUID]models.User
	otps     map[string]models.OTPRecord
	verified map[string]time.Time
	seq      int
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		users:    make(map[uuid.UUID]models.User),
		otps:     make(map[string]models.OTPRecord),
		verified: make(map[string]time.Time),
	}
}

// Users returns the user store view.
func (s *Store) Users() *Users { return &Users{s: s} }

// OTPs returns the OTP store view.
func (s *Store) OTPs() *OTPs { return &OTPs{s: s} }

// Verifications returns the verification marker view.
func (s *Store) Verifications() *Verifications { return &Verifications{s: s} }

// User returns a copy of the user with email.
func (s *Store) User(email string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, true
		}
	}
	return models.User{}, false
}

// Update applies fn to the stored user with email.
func (s *Store) Update(email string, fn func(*models.User)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, u := range s.users {
		if u.Email == email {
			fn(&u)
			s.users[id] = u
			return true
		}
	}
	return false
}

// OTP returns a copy of the live record for email.
func (s *Store) OTP(email string) (models.OTPRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.otps[email]
	return rec, ok
}

// OTPCount reports how many OTP records are stored.
func (s *Store) OTPCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.otps)
}

// Marker returns the expiry of the verification marker for email.
func (s *Store) Marker(email string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.verified[email]
	return exp, ok
}

// Users implements the user store.
type Users struct{ s *Store }

// FindByEmail returns a copy of the user with email, or nil.
func (u *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := u.s.User(email)
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// FindByID returns a copy of the user with id, or nil.
func (u *Users) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	user, ok := u.s.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// Register inserts user, consuming a live verification marker for its email.
// A duplicate email yields apperr.ErrUserExists.
func (u *Users) Register(_ context.Context, user *models.User, now time.Time) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	for _, existing := range u.s.users {
		if existing.Email == user.Email {
			return apperr.ErrUserExists
		}
	}

	if exp, ok := u.s.verified[user.Email]; ok && exp.After(now) {
		delete(u.s.verified, user.Email)
		user.IsVerified = true
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	u.s.seq++
	user.CreatedAt = now.Add(time.Duration(u.s.seq) * time.Microsecond)
	user.UpdatedAt = user.CreatedAt
	u.s.users[user.ID] = *user
	return nil
}

// MarkVerified sets IsVerified and reports whether the user exists.
func (u *Users) MarkVerified(_ context.Context, email string) (bool, error) {
	return u.s.Update(email, func(user *models.User) { user.IsVerified = true }), nil
}

// SetApproved marks the user with id as approved.
func (u *Users) SetApproved(_ context.Context, id uuid.UUID) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if user, ok := u.s.users[id]; ok {
		user.IsApproved = true
		u.s.users[id] = user
	}
	return nil
}

// GrantAdmin sets the admin, verified and approved flags.
func (u *Users) GrantAdmin(_ context.Context, id uuid.UUID) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if user, ok := u.s.users[id]; ok {
		user.IsAdmin = true
		user.IsVerified = true
		user.IsApproved = true
		u.s.users[id] = user
	}
	return nil
}

// ListDrivers returns a page of drivers, newest first, with the total count.
func (u *Users) ListDrivers(_ context.Context, filter repository.DriverFilter, limit, offset int) ([]models.User, int64, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	var drivers []models.User
	for _, user := range u.s.users {
		if !user.IsDriver() {
			continue
		}
		if filter.Approved != nil && user.IsApproved != *filter.Approved {
			continue
		}
		user.PasswordHash = ""
		drivers = append(drivers, user)
	}
	sort.Slice(drivers, func(i, j int) bool {
		return drivers[i].CreatedAt.After(drivers[j].CreatedAt)
	})

	total := int64(len(drivers))
	if offset >= len(drivers) {
		return []models.User{}, total, nil
	}
	end := offset + limit
	if end > len(drivers) {
		end = len(drivers)
	}
	return drivers[offset:end], total, nil
}

// OTPs implements the OTP store.
type OTPs struct{ s *Store }

// Upsert replaces the record for the email.
func (o *OTPs) Upsert(_ context.Context, record *models.OTPRecord) error {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	o.s.otps[record.Email] = *record
	return nil
}

// FindByEmail returns a copy of the record for email, or nil.
func (o *OTPs) FindByEmail(_ context.Context, email string) (*models.OTPRecord, error) {
	rec, ok := o.s.OTP(email)
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// Delete removes record unless it was superseded, reporting whether it did.
func (o *OTPs) Delete(_ context.Context, record *models.OTPRecord) (bool, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	current, ok := o.s.otps[record.Email]
	if !ok || current.CodeHash != record.CodeHash {
		return false, nil
	}
	delete(o.s.otps, record.Email)
	return true, nil
}

// Verifications implements the verification marker store.
type Verifications struct{ s *Store }

// Upsert records email as verified until expiresAt.
func (v *Verifications) Upsert(_ context.Context, email string, expiresAt time.Time) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	v.s.verified[email] = expiresAt
	return nil
}
