package testutil

import (
	"context"
	"regexp"
	"sync"

	"github.com/unilift/backend/internal/services"
)

var codePattern = regexp.MustCompile(`\b\d{6}\b`)

// Mailer records sent messages and optionally fails every send.
type Mailer struct {
	mu   sync.Mutex
	sent []services.Message
	Err  error
}

// Send records msg, or fails with Err when set.
func (m *Mailer) Send(_ context.Context, msg services.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, msg)
	return nil
}

// Sent returns a copy of the delivered messages.
func (m *Mailer) Sent() []services.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]services.Message(nil), m.sent...)
}

// LastCode returns the six-digit code from the latest message to email.
func (m *Mailer) LastCode(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].To == email {
			return codePattern.FindString(m.sent[i].Body)
		}
	}
	return ""
}
