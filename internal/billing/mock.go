package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// MockProvider is a mock payment provider for testing.
// Simulates checkout flows without calling the Stripe API.
type MockProvider struct {
	// CreateCheckoutSessionFunc allows customizing session creation behavior
	CreateCheckoutSessionFunc func(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)

	// RetrieveCheckoutSessionFunc allows customizing session retrieval behavior
	RetrieveCheckoutSessionFunc func(ctx context.Context, sessionID string) (*SessionDetails, error)

	// VerifyWebhookEventFunc allows customizing webhook verification behavior
	VerifyWebhookEventFunc func(payload []byte, signatureHeader string) (*WebhookEvent, error)

	// Sessions stores created sessions for retrieval
	Sessions map[string]*SessionDetails

	// CallLog tracks method calls for test assertions
	CallLog []string
}

// NewMockProvider creates a new mock payment provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Sessions: make(map[string]*SessionDetails),
		CallLog:  []string{},
	}
}

// CreateCheckoutSession creates a mock checkout session.
func (m *MockProvider) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("CreateCheckoutSession(%d items)", len(params.LineItems)))

	if m.CreateCheckoutSessionFunc != nil {
		return m.CreateCheckoutSessionFunc(ctx, params)
	}

	if len(params.LineItems) == 0 {
		return nil, ErrEmptyLineItems
	}

	// Default mock behavior: issue a session and remember it
	var total int64
	for _, item := range params.LineItems {
		total += item.UnitAmount * item.Quantity
	}

	sess := &SessionDetails{
		ID:            "cs_test_" + uuid.New().String(),
		AmountTotal:   total,
		Currency:      "usd",
		PaymentStatus: "unpaid",
		Metadata:      params.Metadata,
	}
	m.Sessions[sess.ID] = sess

	return &CheckoutSession{
		ID:  sess.ID,
		URL: "https://checkout.stripe.test/pay/" + sess.ID,
	}, nil
}

// RetrieveCheckoutSession retrieves a stored mock session.
func (m *MockProvider) RetrieveCheckoutSession(ctx context.Context, sessionID string) (*SessionDetails, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("RetrieveCheckoutSession(%s)", sessionID))

	if m.RetrieveCheckoutSessionFunc != nil {
		return m.RetrieveCheckoutSessionFunc(ctx, sessionID)
	}

	sess, exists := m.Sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// VerifyWebhookEvent verifies a mock webhook delivery. The default
// behavior accepts any payload carrying the literal signature header
// "valid-signature" and rejects everything else.
func (m *MockProvider) VerifyWebhookEvent(payload []byte, signatureHeader string) (*WebhookEvent, error) {
	m.CallLog = append(m.CallLog, "VerifyWebhookEvent")

	if m.VerifyWebhookEventFunc != nil {
		return m.VerifyWebhookEventFunc(payload, signatureHeader)
	}

	if signatureHeader != "valid-signature" {
		return nil, ErrInvalidSignature
	}
	return &WebhookEvent{ID: "evt_" + uuid.New().String(), Type: "mock.event"}, nil
}
