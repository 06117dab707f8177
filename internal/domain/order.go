package domain

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Order statuses. An order is created as OrderStatusPaid when the
// payment webhook confirms the checkout session; OrderStatusPending is
// reserved for flows that record the order before confirmation.
const (
	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
)

// ErrSessionAlreadyProcessed is returned by OrderStore.CreateOrder when
// an order for the same checkout session already exists. Callers treat
// this as a benign duplicate, not a failure.
var ErrSessionAlreadyProcessed = errors.New("checkout session already processed")

// IsSessionAlreadyProcessed reports whether err is the benign
// duplicate-session condition.
func IsSessionAlreadyProcessed(err error) bool {
	return errors.Is(err, ErrSessionAlreadyProcessed)
}

// OrderItem is one purchased line item, snapshotted at checkout time.
// Price is the unit price in major currency units as it was when the
// buyer checked out; later catalog edits never reach past orders.
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// Order is a confirmed purchase keyed by its Stripe checkout session.
// StripeSessionID is the canonical external identifier: webhook
// processing, success-page lookup and duplicate detection all use it.
type Order struct {
	ID              uuid.UUID   `json:"id"`
	OrderNumber     string      `json:"order_number"`
	StripeSessionID string      `json:"stripe_session_id"`
	CustomerEmail   string      `json:"customer_email"`
	Items           []OrderItem `json:"items"`
	TotalCents      int64       `json:"total_cents"`
	Currency        string      `json:"currency"`
	Status          string      `json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
}

// Total returns the order total in major currency units.
func (o *Order) Total() float64 {
	return float64(o.TotalCents) / 100
}

// OrderStore persists confirmed orders.
//
// CreateOrder must be idempotent per checkout session: a second call
// with the same StripeSessionID returns ErrSessionAlreadyProcessed and
// leaves the stored order untouched.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *Order) error

	// GetOrderBySessionID returns ENOTFOUND when no order exists for
	// the session. Absence is not an error state for callers: the
	// webhook may simply not have arrived yet.
	GetOrderBySessionID(ctx context.Context, sessionID string) (*Order, error)

	// GetOrdersByEmail returns orders newest first. An email with no
	// orders yields an empty slice, not an error.
	GetOrdersByEmail(ctx context.Context, email string) ([]Order, error)
}

const orderNumberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewOrderNumber generates a human-readable order reference like
// "CR-MF3K2J1A-X7Q4". Uniqueness is enforced by the session id, not
// the order number; this is purely for receipts and support tickets.
func NewOrderNumber() string {
	ts := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))

	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// Fall back to the uuid package's randomness source.
		copy(buf, uuid.New().NodeID())
	}
	for i := range buf {
		buf[i] = orderNumberAlphabet[int(buf[i])%len(orderNumberAlphabet)]
	}

	return fmt.Sprintf("CR-%s-%s", ts, buf)
}
