// Package apperr defines the domain error taxonomy shared by services and
// the HTTP layer.
package apperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies a domain error for transport mapping.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindConflict
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindOTP
	KindRateLimited
	KindDelivery
)

// Error is a client-safe domain error. Message is returned to callers as-is.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New constructs a domain error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Validation
var (
	ErrInvalidRequest      = New(KindValidation, "Invalid request body")
	ErrMissingFields       = New(KindValidation, "Missing required fields")
	ErrInvalidEmailDomain  = New(KindValidation, "Only college email allowed")
	ErrInvalidRole         = New(KindValidation, "Role must be driver or rider")
	ErrDriverDetails       = New(KindValidation, "Driver details are required")
	ErrInvalidID           = New(KindValidation, "Invalid identifier")
	ErrEmailOTPRequired    = New(KindValidation, "Email and OTP are required")
	ErrCredentialsRequired = New(KindValidation, "Email and password are required")
)

// Registration
var (
	ErrUserExists = New(KindConflict, "User already exists")
)

// OTP
var (
	ErrOTPNotFound = New(KindOTP, "OTP not found")
	ErrOTPExpired  = New(KindOTP, "OTP expired")
	ErrOTPInvalid  = New(KindOTP, "Invalid OTP")
	ErrRateLimited = New(KindRateLimited, "Too many OTP requests, please try again later")
	ErrDelivery    = New(KindDelivery, "Failed to send OTP")
)

// Authentication and account state
var (
	ErrInvalidCredentials = New(KindUnauthenticated, "Invalid credentials")
	ErrUnauthorized       = New(KindUnauthenticated, "Unauthorized")
	ErrAccountBanned      = New(KindForbidden, "Account banned")
	ErrEmailNotVerified   = New(KindForbidden, "Email not verified")
	ErrPendingApproval    = New(KindForbidden, "Driver account pending approval")
	ErrAccessDenied       = New(KindForbidden, "Access denied")
	ErrDriverNotFound     = New(KindNotFound, "Driver not found")
)

// Status maps a kind to its HTTP status code.
func Status(kind Kind) int {
	switch kind {
	case KindValidation, KindOTP:
		return fiber.StatusBadRequest
	case KindConflict:
		return fiber.StatusConflict
	case KindUnauthenticated:
		return fiber.StatusUnauthorized
	case KindForbidden:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	case KindRateLimited:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

// As extracts a domain error from err's chain.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
