package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unilift/backend/internal/config"
	"github.com/unilift/backend/internal/models"
)

func TestHTTPMailerSend(t *testing.T) {
	var got mailAPIRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	m := NewHTTPMailer(srv.URL, "key-1", "noreply@unilift.app", "UniLift", time.Second, zap.NewNop())
	err := m.Send(context.Background(), Message{To: "a@medicaps.ac.in", Subject: "Hi", Body: "Your OTP is 123456."})
	require.NoError(t, err)

	assert.Equal(t, "Bearer key-1", auth)
	assert.Equal(t, "noreply@unilift.app", got.From)
	assert.Equal(t, "a@medicaps.ac.in", got.To)
	assert.Equal(t, "Your OTP is 123456.", got.Text)
}

func TestHTTPMailerRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	m := NewHTTPMailer(srv.URL, "", "noreply@unilift.app", "", time.Second, zap.NewNop())
	err := m.Send(context.Background(), Message{To: "a@medicaps.ac.in"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestSMTPMailerUnreachable(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "127.0.0.1", Port: 1, From: "noreply@unilift.app", Timeout: time.Second}, zap.NewNop())
	assert.Error(t, m.Send(context.Background(), Message{To: "a@medicaps.ac.in"}))
}

func TestNewDeliveryMailer(t *testing.T) {
	cfg := &config.Config{MailProvider: config.MailProviderSMTP}
	assert.IsType(t, &SMTPMailer{}, NewDeliveryMailer(cfg, zap.NewNop()))

	cfg = &config.Config{MailProvider: config.MailProviderHTTP, MailAPIURL: "https://mail.example.com"}
	assert.IsType(t, &HTTPMailer{}, NewDeliveryMailer(cfg, zap.NewNop()))

	cfg = &config.Config{MailProvider: config.MailProviderKafka, MailAPIURL: "https://mail.example.com"}
	assert.IsType(t, &HTTPMailer{}, NewDeliveryMailer(cfg, zap.NewNop()))

	cfg = &config.Config{MailProvider: config.MailProviderKafka}
	assert.IsType(t, &SMTPMailer{}, NewDeliveryMailer(cfg, zap.NewNop()))
}

func TestTelegramNotifyDriverPending(t *testing.T) {
	var got telegramMessage
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewTelegramService("token", "42", zap.NewNop())
	s.baseURL = srv.URL

	driver := &models.User{
		Email: "d@medicaps.ac.in",
		Name:  "<Dev>",
		Role:  models.RoleDriver,
		DriverProfile: models.DriverProfile{
			LicenseNumber: "L-1",
			VehicleNumber: "MP09",
			VehicleType:   "car",
		},
	}
	driver.ID = uuid.New()

	require.NoError(t, s.NotifyDriverPending(context.Background(), driver))
	assert.Equal(t, "/bottoken/sendMessage", path)
	assert.Equal(t, "42", got.ChatID)
	assert.Contains(t, got.Text, "&lt;Dev&gt;")
	assert.Contains(t, got.Text, driver.ID.String())
}

func TestTelegramUnconfiguredIsNoop(t *testing.T) {
	s := NewTelegramService("", "", zap.NewNop())
	assert.NoError(t, s.SendToAdmin(context.Background(), "hello"))

	s = NewTelegramService("token", "", zap.NewNop())
	assert.NoError(t, s.SendToAdmin(context.Background(), "hello"))
}

func TestTelegramErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	s := NewTelegramService("token", "42", zap.NewNop())
	s.baseURL = srv.URL
	assert.Error(t, s.SendToAdmin(context.Background(), "hello"))
}
