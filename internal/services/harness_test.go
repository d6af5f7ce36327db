package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/unilift/backend/internal/models"
	"github.com/unilift/backend/internal/services"
	"github.com/unilift/backend/internal/testutil"
)

const testDomain = "medicaps.ac.in"

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeNotifier struct {
	mu      sync.Mutex
	drivers []string
}

func (n *fakeNotifier) NotifyDriverPending(_ context.Context, driver *models.User) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.drivers = append(n.drivers, driver.Email)
	return nil
}

func (n *fakeNotifier) notified() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.drivers...)
}

type harness struct {
	store    *testutil.Store
	mailer   *testutil.Mailer
	notifier *fakeNotifier
	clock    *fakeClock
	otp      *services.OTPService
	auth     *services.AuthService
}

func newHarness(t *testing.T, requireVerified bool) *harness {
	t.Helper()

	h := &harness{
		store:    testutil.NewStore(),
		mailer:   &testutil.Mailer{},
		notifier: &fakeNotifier{},
		clock:    &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
	}
	logger := zap.NewNop()

	h.otp = services.NewOTPService(h.store.OTPs(), h.store.Users(), h.store.Verifications(), h.mailer, services.OTPConfig{
		Domain:      testDomain,
		TTL:         5 * time.Minute,
		VerifiedTTL: 30 * time.Minute,
		MailTimeout: time.Second,
		Clock:       h.clock.Now,
	}, logger)
	h.auth = services.NewAuthService(h.store.Users(), h.notifier, services.AuthConfig{
		Domain:               testDomain,
		RequireVerifiedEmail: requireVerified,
		Clock:                h.clock.Now,
	}, logger)
	return h
}
