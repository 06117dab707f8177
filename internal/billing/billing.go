// Package billing abstracts the hosted payment provider behind a
// small interface so checkout and webhook logic can be tested without
// network calls.
package billing

import (
	"context"
)

// LineItem is one priced checkout line. UnitAmount is in the
// provider's minor currency units (cents).
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

// CheckoutParams describes a hosted checkout session request.
// Metadata travels opaquely through the provider and comes back on
// the session; it carries the cart snapshot for reconciliation.
type CheckoutParams struct {
	LineItems  []LineItem
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

// CheckoutSession is the provider's response to a session request.
type CheckoutSession struct {
	ID  string
	URL string
}

// SessionDetails is the state of a checkout session as known to the
// provider, used when reconciling a confirmed payment.
type SessionDetails struct {
	ID            string
	CustomerEmail string
	AmountTotal   int64
	Currency      string
	PaymentStatus string
	Metadata      map[string]string
}

// WebhookEvent is a signature-verified provider event. Session is
// populated for checkout session events; other event types carry only
// the Type.
type WebhookEvent struct {
	ID      string
	Type    string
	Session *SessionDetails
}

// Event types this system reacts to. Everything else is acknowledged
// and ignored.
const (
	EventCheckoutSessionCompleted = "checkout.session.completed"
)

// Provider is the payment gateway port.
type Provider interface {
	// CreateCheckoutSession requests a hosted payment page and returns
	// the session with its redirect URL.
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)

	// RetrieveCheckoutSession fetches session state by id.
	RetrieveCheckoutSession(ctx context.Context, sessionID string) (*SessionDetails, error)

	// VerifyWebhookEvent checks the payload signature against the
	// signing secret and parses the event. Returns ErrInvalidSignature
	// when verification fails; no event data is trusted before this
	// succeeds.
	VerifyWebhookEvent(payload []byte, signatureHeader string) (*WebhookEvent, error)
}
