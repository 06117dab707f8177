package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/seamark/curio/internal/billing"
	"github.com/seamark/curio/internal/cart"
	"github.com/seamark/curio/internal/domain"
	"github.com/seamark/curio/internal/events"
	"github.com/seamark/curio/internal/storage"
	"github.com/seamark/curio/internal/telemetry"
)

type checkoutFixture struct {
	svc      *CheckoutService
	provider *billing.MockProvider
	orders   *storage.MemoryOrderStore
	events   *events.RecordingPublisher
}

func makeTestCheckoutService(t *testing.T) *checkoutFixture {
	t.Helper()

	provider := billing.NewMockProvider()
	orders := storage.NewMemoryOrderStore()
	publisher := &events.RecordingPublisher{}
	metrics := telemetry.NewBusinessMetricsWith(prometheus.NewRegistry(), "curio_test")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &checkoutFixture{
		svc:      NewCheckoutService(provider, orders, publisher, metrics, logger, "https://shop.example.com"),
		provider: provider,
		orders:   orders,
		events:   publisher,
	}
}

func makeTestSession(id string) *billing.SessionDetails {
	return &billing.SessionDetails{
		ID:            id,
		CustomerEmail: "buyer@example.com",
		AmountTotal:   2400,
		Currency:      "usd",
		PaymentStatus: "paid",
		Metadata: map[string]string{
			metadataItemsKey: `[{"product_id":"p1","title":"Mug","price":12,"quantity":2}]`,
		},
	}
}

func TestCreateCheckoutSession(t *testing.T) {
	t.Run("empty cart is rejected before any gateway call", func(t *testing.T) {
		f := makeTestCheckoutService(t)

		_, err := f.svc.CreateCheckoutSession(context.Background(), nil)
		if domain.ErrorCode(err) != domain.EINVALID {
			t.Errorf("expected EINVALID, got %v", err)
		}
		if len(f.provider.CallLog) != 0 {
			t.Errorf("gateway was called for an empty cart: %v", f.provider.CallLog)
		}
	})

	t.Run("structurally invalid items are rejected", func(t *testing.T) {
		tests := []struct {
			name string
			item cart.Item
		}{
			{"missing product id", cart.Item{Title: "Mug", Price: 12.00, Quantity: 1}},
			{"missing title", cart.Item{ProductID: "p1", Price: 12.00, Quantity: 1}},
			{"zero price", cart.Item{ProductID: "p1", Title: "Mug", Price: 0, Quantity: 1}},
			{"negative price", cart.Item{ProductID: "p1", Title: "Mug", Price: -5, Quantity: 1}},
			{"zero quantity", cart.Item{ProductID: "p1", Title: "Mug", Price: 12.00, Quantity: 0}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := makeTestCheckoutService(t)

				_, err := f.svc.CreateCheckoutSession(context.Background(), []cart.Item{tt.item})
				if domain.ErrorCode(err) != domain.EINVALID {
					t.Errorf("expected EINVALID, got %v", err)
				}
				if len(f.provider.CallLog) != 0 {
					t.Errorf("gateway was called for an invalid cart")
				}
			})
		}
	})

	t.Run("valid cart yields redirect url with snapshot metadata", func(t *testing.T) {
		f := makeTestCheckoutService(t)

		var captured billing.CheckoutParams
		f.provider.CreateCheckoutSessionFunc = func(ctx context.Context, params billing.CheckoutParams) (*billing.CheckoutSession, error) {
			captured = params
			return &billing.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.test/cs_test_1"}, nil
		}

		url, err := f.svc.CreateCheckoutSession(context.Background(), []cart.Item{
			{ProductID: "p1", Title: "Mug", Price: 12.00, Quantity: 2},
			{ProductID: "p2", Title: "Vase", Price: 45.99, Quantity: 1},
		})
		if err != nil {
			t.Fatalf("CreateCheckoutSession failed: %v", err)
		}
		if url != "https://checkout.test/cs_test_1" {
			t.Errorf("url = %q", url)
		}

		if len(captured.LineItems) != 2 {
			t.Fatalf("line items = %d, want 2", len(captured.LineItems))
		}
		if captured.LineItems[0].UnitAmount != 1200 || captured.LineItems[0].Quantity != 2 {
			t.Errorf("line 0 = %+v, want 1200 cents x2", captured.LineItems[0])
		}
		if captured.LineItems[1].UnitAmount != 4599 {
			t.Errorf("line 1 unit amount = %d, want 4599", captured.LineItems[1].UnitAmount)
		}

		var snapshot []domain.OrderItem
		if err := json.Unmarshal([]byte(captured.Metadata[metadataItemsKey]), &snapshot); err != nil {
			t.Fatalf("metadata snapshot is not valid JSON: %v", err)
		}
		if len(snapshot) != 2 || snapshot[0].ProductID != "p1" || snapshot[0].Quantity != 2 {
			t.Errorf("snapshot = %+v", snapshot)
		}

		if captured.SuccessURL != "https://shop.example.com/checkout/success?session_id={CHECKOUT_SESSION_ID}" {
			t.Errorf("success url = %q", captured.SuccessURL)
		}
	})

	t.Run("gateway failure surfaces as internal error", func(t *testing.T) {
		f := makeTestCheckoutService(t)
		f.provider.CreateCheckoutSessionFunc = func(ctx context.Context, params billing.CheckoutParams) (*billing.CheckoutSession, error) {
			return nil, errors.New("connection refused")
		}

		_, err := f.svc.CreateCheckoutSession(context.Background(), []cart.Item{
			{ProductID: "p1", Title: "Mug", Price: 12.00, Quantity: 1},
		})
		if domain.ErrorCode(err) != domain.EINTERNAL {
			t.Errorf("expected EINTERNAL, got %v", err)
		}
	})
}

func TestHandlePaymentConfirmed(t *testing.T) {
	t.Run("creates order from session details", func(t *testing.T) {
		f := makeTestCheckoutService(t)

		if err := f.svc.HandlePaymentConfirmed(context.Background(), makeTestSession("cs_test_1")); err != nil {
			t.Fatalf("HandlePaymentConfirmed failed: %v", err)
		}

		order, err := f.orders.GetOrderBySessionID(context.Background(), "cs_test_1")
		if err != nil {
			t.Fatalf("order not stored: %v", err)
		}
		if order.Total() != 24.00 {
			t.Errorf("Total() = %v, want 24.00", order.Total())
		}
		if order.CustomerEmail != "buyer@example.com" {
			t.Errorf("email = %q", order.CustomerEmail)
		}
		if order.Status != domain.OrderStatusPaid {
			t.Errorf("status = %q, want paid", order.Status)
		}
		if len(order.Items) != 1 || order.Items[0].Title != "Mug" || order.Items[0].Quantity != 2 || order.Items[0].Price != 12.00 {
			t.Errorf("items = %+v", order.Items)
		}
		if order.OrderNumber == "" {
			t.Error("order number not assigned")
		}

		if len(f.events.Published) != 1 || f.events.Published[0].Subject != events.SubjectOrderCreated {
			t.Errorf("published = %+v", f.events.Published)
		}
	})

	t.Run("second delivery for same session creates no duplicate", func(t *testing.T) {
		f := makeTestCheckoutService(t)
		ctx := context.Background()

		if err := f.svc.HandlePaymentConfirmed(ctx, makeTestSession("cs_test_1")); err != nil {
			t.Fatalf("first delivery failed: %v", err)
		}
		if err := f.svc.HandlePaymentConfirmed(ctx, makeTestSession("cs_test_1")); err != nil {
			t.Fatalf("second delivery errored: %v", err)
		}

		if f.orders.Count() != 1 {
			t.Errorf("order count = %d, want 1", f.orders.Count())
		}
	})

	t.Run("missing buyer email falls back to sentinel", func(t *testing.T) {
		f := makeTestCheckoutService(t)

		session := makeTestSession("cs_test_2")
		session.CustomerEmail = ""
		if err := f.svc.HandlePaymentConfirmed(context.Background(), session); err != nil {
			t.Fatalf("HandlePaymentConfirmed failed: %v", err)
		}

		order, _ := f.orders.GetOrderBySessionID(context.Background(), "cs_test_2")
		if order.CustomerEmail != sentinelEmail {
			t.Errorf("email = %q, want sentinel", order.CustomerEmail)
		}
	})

	t.Run("missing snapshot metadata still records the order", func(t *testing.T) {
		f := makeTestCheckoutService(t)

		session := makeTestSession("cs_test_3")
		session.Metadata = nil
		if err := f.svc.HandlePaymentConfirmed(context.Background(), session); err != nil {
			t.Fatalf("HandlePaymentConfirmed failed: %v", err)
		}

		order, err := f.orders.GetOrderBySessionID(context.Background(), "cs_test_3")
		if err != nil {
			t.Fatalf("order not stored: %v", err)
		}
		if len(order.Items) != 0 {
			t.Errorf("items = %+v, want none", order.Items)
		}
	})

	t.Run("store failure is swallowed but published", func(t *testing.T) {
		f := makeTestCheckoutService(t)

		failing := &failingOrderStore{err: errors.New("disk full")}
		f.svc.orders = failing

		if err := f.svc.HandlePaymentConfirmed(context.Background(), makeTestSession("cs_test_4")); err != nil {
			t.Fatalf("write failure must not propagate, got %v", err)
		}

		if len(f.events.Published) != 1 || f.events.Published[0].Subject != events.SubjectOrderWriteFailed {
			t.Errorf("published = %+v, want one write-failed event", f.events.Published)
		}
	})
}

func TestGetOrderBySession(t *testing.T) {
	f := makeTestCheckoutService(t)
	ctx := context.Background()

	t.Run("missing session id is invalid", func(t *testing.T) {
		_, err := f.svc.GetOrderBySession(ctx, "")
		if domain.ErrorCode(err) != domain.EINVALID {
			t.Errorf("expected EINVALID, got %v", err)
		}
	})

	t.Run("unprocessed session is not found", func(t *testing.T) {
		_, err := f.svc.GetOrderBySession(ctx, "cs_never_seen")
		if domain.ErrorCode(err) != domain.ENOTFOUND {
			t.Errorf("expected ENOTFOUND, got %v", err)
		}
	})

	t.Run("processed session returns the order", func(t *testing.T) {
		if err := f.svc.HandlePaymentConfirmed(ctx, makeTestSession("cs_test_1")); err != nil {
			t.Fatalf("setup failed: %v", err)
		}

		order, err := f.svc.GetOrderBySession(ctx, "cs_test_1")
		if err != nil {
			t.Fatalf("GetOrderBySession failed: %v", err)
		}
		if order.StripeSessionID != "cs_test_1" {
			t.Errorf("session id = %q", order.StripeSessionID)
		}
	})
}

func TestGetOrdersByEmail(t *testing.T) {
	f := makeTestCheckoutService(t)
	ctx := context.Background()

	t.Run("missing email is invalid", func(t *testing.T) {
		_, err := f.svc.GetOrdersByEmail(ctx, "")
		if domain.ErrorCode(err) != domain.EINVALID {
			t.Errorf("expected EINVALID, got %v", err)
		}
	})

	t.Run("malformed email is invalid", func(t *testing.T) {
		_, err := f.svc.GetOrdersByEmail(ctx, "not-an-email")
		if domain.ErrorCode(err) != domain.EINVALID {
			t.Errorf("expected EINVALID, got %v", err)
		}
	})

	t.Run("no orders yields empty list", func(t *testing.T) {
		orders, err := f.svc.GetOrdersByEmail(ctx, "nobody@example.com")
		if err != nil {
			t.Fatalf("GetOrdersByEmail failed: %v", err)
		}
		if orders == nil || len(orders) != 0 {
			t.Errorf("orders = %#v, want empty non-nil slice", orders)
		}
	})

	t.Run("returns stored orders", func(t *testing.T) {
		if err := f.svc.HandlePaymentConfirmed(ctx, makeTestSession("cs_test_1")); err != nil {
			t.Fatalf("setup failed: %v", err)
		}

		orders, err := f.svc.GetOrdersByEmail(ctx, "buyer@example.com")
		if err != nil {
			t.Fatalf("GetOrdersByEmail failed: %v", err)
		}
		if len(orders) != 1 {
			t.Errorf("orders = %d, want 1", len(orders))
		}
	})
}

// failingOrderStore always fails writes. Reads delegate to nothing.
type failingOrderStore struct {
	err error
}

func (s *failingOrderStore) CreateOrder(ctx context.Context, order *domain.Order) error {
	return s.err
}

func (s *failingOrderStore) GetOrderBySessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	return nil, domain.NotFound("order.get", "order", sessionID)
}

func (s *failingOrderStore) GetOrdersByEmail(ctx context.Context, email string) ([]domain.Order, error) {
	return []domain.Order{}, nil
}
