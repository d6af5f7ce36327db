package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SMTP_USER", "noreply@medicaps.ac.in")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.AppPort)
	assert.Equal(t, "unilift.sid", cfg.SessionCookie)
	assert.Equal(t, 24*time.Hour, cfg.SessionExpires)
	assert.Equal(t, "medicaps.ac.in", cfg.AllowedEmailDomain)
	assert.Equal(t, 5*time.Minute, cfg.OTPTTL)
	assert.Equal(t, 5, cfg.OTPRateLimit)
	assert.Equal(t, time.Minute, cfg.OTPRateWindow)
	assert.True(t, cfg.RequireVerifiedEmail)
	assert.Equal(t, MailProviderSMTP, cfg.MailProvider)
	assert.Equal(t, "noreply@medicaps.ac.in", cfg.MailFrom)
	assert.Equal(t, []string{"http://localhost:3000", "https://unilift-frontend.vercel.app"}, cfg.AllowedOrigins)
	assert.False(t, cfg.IsProduction())
	assert.Empty(t, cfg.ProxyHeader)
	assert.Empty(t, cfg.TrustedProxies)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ALLOWED_EMAIL_DOMAIN", "@Example.EDU")
	t.Setenv("OTP_TTL_MINUTES", "10")
	t.Setenv("OTP_RATE_LIMIT", "3")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("MAIL_PROVIDER", "HTTP")
	t.Setenv("MAIL_API_URL", "https://mail.example/send")
	t.Setenv("MAIL_FROM", "otp@example.edu")
	t.Setenv("PROXY_HEADER", "X-Forwarded-For")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1, 10.0.0.2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "example.edu", cfg.AllowedEmailDomain)
	assert.Equal(t, 10*time.Minute, cfg.OTPTTL)
	assert.Equal(t, 3, cfg.OTPRateLimit)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, MailProviderHTTP, cfg.MailProvider)
	assert.Equal(t, "X-Forwarded-For", cfg.ProxyHeader)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.TrustedProxies)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing jwt secret", env: map[string]string{"JWT_SECRET": "", "SMTP_USER": "a@b.c"}},
		{name: "unknown mail provider", env: map[string]string{"JWT_SECRET": "s", "MAIL_PROVIDER": "pigeon"}},
		{name: "kafka without broker", env: map[string]string{"JWT_SECRET": "s", "MAIL_PROVIDER": "kafka", "KAFKA_BROKER": ""}},
		{name: "smtp without sender", env: map[string]string{"JWT_SECRET": "s", "SMTP_USER": "", "MAIL_FROM": ""}},
		{name: "trusted proxies without header", env: map[string]string{"JWT_SECRET": "s", "SMTP_USER": "a@b.c", "PROXY_HEADER": "", "TRUSTED_PROXIES": "10.0.0.1"}},
		{name: "zero rate limit", env: map[string]string{"JWT_SECRET": "s", "SMTP_USER": "a@b.c", "OTP_RATE_LIMIT": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}
