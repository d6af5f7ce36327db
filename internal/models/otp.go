package models

import "time"

// OTPRecord is the single live one-time code for an email. The code itself
// is never stored, only its bcrypt hash.
type OTPRecord struct {
	BaseModel
	Email     string    `gorm:"uniqueIndex;not null"`
	CodeHash  string    `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null"`
}

// Expired reports whether the record is past its expiry at now.
func (o *OTPRecord) Expired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}

// EmailVerification marks an email whose ownership was proven by OTP before
// an account existed. Registration consumes it.
type EmailVerification struct {
	BaseModel
	Email     string    `gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
}
