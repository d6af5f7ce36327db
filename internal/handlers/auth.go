package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/unilift/backend/internal/apperr"
	"github.com/unilift/backend/internal/config"
	"github.com/unilift/backend/internal/middleware"
	"github.com/unilift/backend/internal/services"
	"github.com/unilift/backend/internal/session"
	"github.com/unilift/backend/internal/utils"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	otp      *services.OTPService
	auth     *services.AuthService
	sessions *session.Manager
	cfg      *config.Config
	logger   *zap.Logger
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(otp *services.OTPService, auth *services.AuthService, sessions *session.Manager, cfg *config.Config, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{otp: otp, auth: auth, sessions: sessions, cfg: cfg, logger: logger}
}

type sendOTPRequest struct {
	Email string `json:"email"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type registerRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	Role          string `json:"role"`
	Name          string `json:"name"`
	License       string `json:"license"`
	LicenseNumber string `json:"licenseNumber"`
	VehicleNumber string `json:"vehicleNumber"`
	VehicleType   string `json:"vehicleType"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SendOTP issues and mails a verification code.
func (h *AuthHandler) SendOTP(c *fiber.Ctx) error {
	var req sendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.ErrInvalidRequest
	}

	if err := h.otp.Send(c.UserContext(), req.Email); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "OTP sent successfully",
	})
}

// VerifyOTP consumes a code and marks the email as verified.
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.ErrInvalidRequest
	}

	if err := h.otp.Verify(c.UserContext(), req.Email, req.OTP); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "OTP verified successfully",
	})
}

// Register creates a new rider or driver account.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.ErrInvalidRequest
	}

	license := req.License
	if license == "" {
		license = req.LicenseNumber
	}

	user, err := h.auth.Register(c.UserContext(), services.RegisterInput{
		Email:         req.Email,
		Password:      req.Password,
		Role:          req.Role,
		Name:          req.Name,
		License:       license,
		VehicleNumber: req.VehicleNumber,
		VehicleType:   req.VehicleType,
	})
	if err != nil {
		return err
	}

	message := "User registered successfully"
	if user.IsDriver() {
		message = "Driver registered successfully, awaiting admin approval"
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": message,
		"user":    user.Sanitized(),
	})
}

// Login authenticates credentials and starts a session. A bearer token bound
// to that session is returned as well for clients that cannot hold cookies.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.ErrInvalidRequest
	}

	user, err := h.auth.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	sessionID, err := h.sessions.Login(c, user.ID)
	if err != nil {
		return err
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, sessionID, string(user.Role), h.cfg.TokenExpires)
	if err != nil {
		return err
	}

	h.logger.Info("user logged in", zap.String("user_id", user.ID.String()))

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged in successfully",
		"token":   token,
		"user":    user.Sanitized(),
	})
}

// Logout destroys the current session, whether it is presented as the cookie
// or through a bearer token.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.sessions.Logout(c); err != nil {
		return err
	}
	if claims, ok := middleware.BearerClaims(c, h.cfg.JWTSecret); ok {
		if err := h.sessions.Revoke(claims.SessionID); err != nil {
			return err
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged out",
	})
}
