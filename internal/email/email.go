package email

import (
	"context"

	"github.com/seamark/curio/internal/domain"
)

// Message is an outbound email. Only plain text is needed here; the
// single consumer is the contact form relay.
type Message struct {
	To      []string
	From    string
	ReplyTo string
	Subject string
	Text    string
}

// Sender delivers an email through a provider.
// Returns the provider's message ID when available.
type Sender interface {
	Send(ctx context.Context, msg *Message) (string, error)
}

// Disabled is the Sender used when no provider is configured. Every
// send fails with EUNAVAILABLE so callers can surface a clear error
// instead of silently dropping mail.
type Disabled struct{}

func (Disabled) Send(ctx context.Context, msg *Message) (string, error) {
	return "", domain.Unavailable(nil, "email.send", "email service is not configured")
}

// MockSender implements Sender with function fields for tests.
type MockSender struct {
	SendFunc func(ctx context.Context, msg *Message) (string, error)
}

func (m *MockSender) Send(ctx context.Context, msg *Message) (string, error) {
	return m.SendFunc(ctx, msg)
}
