package models

import (
	"github.com/google/uuid"
)

// Role is fixed at registration.
type Role string

const (
	RoleDriver Role = "driver"
	RoleRider  Role = "rider"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleDriver || r == RoleRider
}

// DriverProfile is populated only for drivers; all fields are set together.
type DriverProfile struct {
	LicenseNumber string `json:"license,omitempty"`
	VehicleNumber string `json:"vehicleNumber,omitempty"`
	VehicleType   string `json:"vehicleType,omitempty"`
}

// User represents a registered rider or driver.
type User struct {
	BaseModel
	Email         string        `gorm:"uniqueIndex;not null" json:"email"`
	Name          string        `json:"name"`
	PasswordHash  string        `json:"-"`
	Role          Role          `gorm:"type:varchar(16);not null;index" json:"role"`
	DriverProfile DriverProfile `gorm:"embedded;embeddedPrefix:driver_" json:"driverProfile"`
	IsVerified    bool          `gorm:"not null;default:false" json:"isVerified"`
	IsApproved    bool          `gorm:"not null;default:false;index" json:"isApproved"`
	IsAdmin       bool          `gorm:"not null;default:false" json:"isAdmin"`
	IsBanned      bool          `gorm:"not null;default:false" json:"isBanned"`
}

// IsDriver reports whether the user registered as a driver.
func (u *User) IsDriver() bool {
	return u.Role == RoleDriver
}

// PublicUser is the projection of User safe to return to clients.
type PublicUser struct {
	ID            uuid.UUID      `json:"id"`
	Name          string         `json:"name"`
	Email         string         `json:"email"`
	Role          Role           `json:"role"`
	IsAdmin       bool           `json:"isAdmin"`
	IsVerified    bool           `json:"isVerified"`
	IsApproved    bool           `json:"isApproved"`
	DriverProfile *DriverProfile `json:"driverProfile,omitempty"`
}

// Sanitized strips credentials and moderation state.
func (u *User) Sanitized() PublicUser {
	out := PublicUser{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		IsAdmin:    u.IsAdmin,
		IsVerified: u.IsVerified,
		IsApproved: u.IsApproved,
	}
	if u.IsDriver() {
		profile := u.DriverProfile
		out.DriverProfile = &profile
	}
	return out
}
