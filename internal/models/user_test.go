package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitized(t *testing.T) {
	rider := &User{BaseModel: BaseModel{ID: uuid.New()}, Email: "a@medicaps.ac.in", PasswordHash: "hash", Role: RoleRider, IsApproved: true}
	out := rider.Sanitized()
	assert.Equal(t, rider.ID, out.ID)
	assert.Nil(t, out.DriverProfile)

	driver := &User{Role: RoleDriver, DriverProfile: DriverProfile{LicenseNumber: "L1", VehicleNumber: "MP09", VehicleType: "bike"}}
	out = driver.Sanitized()
	require.NotNil(t, out.DriverProfile)
	assert.Equal(t, "MP09", out.DriverProfile.VehicleNumber)
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleDriver.Valid())
	assert.True(t, RoleRider.Valid())
	assert.False(t, Role("admin").Valid())
}

func TestOTPRecordExpired(t *testing.T) {
	now := time.Now()
	rec := OTPRecord{ExpiresAt: now.Add(time.Second)}
	assert.False(t, rec.Expired(now))
	assert.True(t, rec.Expired(now.Add(time.Second)))
}
