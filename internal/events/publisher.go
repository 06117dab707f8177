// Package events publishes order lifecycle events for downstream
// consumers (fulfillment, reconciliation tooling). Publishing is best
// effort: a failed publish is logged by callers, never fatal.
package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
)

// Subjects published by the checkout flow.
const (
	SubjectOrderCreated     = "orders.created"
	SubjectOrderWriteFailed = "orders.write_failed"
)

// OrderCreated is published after an order is durably stored.
type OrderCreated struct {
	OrderNumber     string    `json:"order_number"`
	StripeSessionID string    `json:"stripe_session_id"`
	CustomerEmail   string    `json:"customer_email"`
	TotalCents      int64     `json:"total_cents"`
	CreatedAt       time.Time `json:"created_at"`
}

// OrderWriteFailed is published when a confirmed payment could not be
// recorded. The webhook still acknowledges the gateway; this event is
// how operators find orders needing manual reconciliation.
type OrderWriteFailed struct {
	StripeSessionID string    `json:"stripe_session_id"`
	CustomerEmail   string    `json:"customer_email"`
	Error           string    `json:"error"`
	FailedAt        time.Time `json:"failed_at"`
}

// Publisher emits serialized events on a subject.
type Publisher interface {
	Publish(subject string, event any) error
}

// NatsPublisher publishes events to a NATS server.
type NatsPublisher struct {
	conn *nats.Conn
}

func NewNatsPublisher(url string) (*NatsPublisher, error) {
	conn, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &NatsPublisher{conn: conn}, nil
}

func (p *NatsPublisher) Publish(subject string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.conn.Publish(subject, data)
}

func (p *NatsPublisher) Close() {
	p.conn.Drain()
}

// NopPublisher discards events. Used when no NATS server is
// configured.
type NopPublisher struct{}

func (NopPublisher) Publish(subject string, event any) error { return nil }

// RecordingPublisher captures events for test assertions.
type RecordingPublisher struct {
	Published []RecordedEvent
}

type RecordedEvent struct {
	Subject string
	Event   any
}

func (p *RecordingPublisher) Publish(subject string, event any) error {
	p.Published = append(p.Published, RecordedEvent{Subject: subject, Event: event})
	return nil
}
