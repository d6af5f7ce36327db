package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/unilift/backend/internal/apperr"
	"github.com/unilift/backend/internal/middleware"
	"github.com/unilift/backend/internal/models"
	"github.com/unilift/backend/internal/services"
	"github.com/unilift/backend/internal/utils"
)

var errInvalidStatus = apperr.New(apperr.KindValidation, "Status must be pending or approved")

// AdminHandler manages admin-only endpoints.
type AdminHandler struct {
	auth *services.AuthService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(auth *services.AuthService) *AdminHandler {
	return &AdminHandler{auth: auth}
}

// ApproveDriver marks a driver account as approved.
func (h *AdminHandler) ApproveDriver(c *fiber.Ctx) error {
	driverID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperr.ErrInvalidID
	}

	admin, _ := middleware.GetCurrentUser(c)
	driver, err := h.auth.ApproveDriver(c.UserContext(), admin, driverID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "Driver approved",
		"driverId": driver.ID,
	})
}

// ListDrivers returns drivers, optionally filtered by approval status.
func (h *AdminHandler) ListDrivers(c *fiber.Ctx) error {
	var approved *bool
	switch strings.ToLower(strings.TrimSpace(c.Query("status"))) {
	case "":
	case "pending":
		v := false
		approved = &v
	case "approved":
		v := true
		approved = &v
	default:
		return errInvalidStatus
	}

	pg := utils.ParsePagination(c)
	admin, _ := middleware.GetCurrentUser(c)

	drivers, total, err := h.auth.ListDrivers(c.UserContext(), admin, approved, pg)
	if err != nil {
		return err
	}

	data := make([]models.PublicUser, 0, len(drivers))
	for i := range drivers {
		data = append(data, drivers[i].Sanitized())
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}
