package storefront

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/seamark/curio/internal/cart"
	"github.com/seamark/curio/internal/domain"
)

// mockCheckoutService implements CheckoutService with function fields.
type mockCheckoutService struct {
	CreateCheckoutSessionFunc func(ctx context.Context, items []cart.Item) (string, error)
	GetOrderBySessionFunc     func(ctx context.Context, sessionID string) (*domain.Order, error)
	GetOrdersByEmailFunc      func(ctx context.Context, email string) ([]domain.Order, error)
}

func (m *mockCheckoutService) CreateCheckoutSession(ctx context.Context, items []cart.Item) (string, error) {
	return m.CreateCheckoutSessionFunc(ctx, items)
}

func (m *mockCheckoutService) GetOrderBySession(ctx context.Context, sessionID string) (*domain.Order, error) {
	return m.GetOrderBySessionFunc(ctx, sessionID)
}

func (m *mockCheckoutService) GetOrdersByEmail(ctx context.Context, email string) ([]domain.Order, error) {
	return m.GetOrdersByEmailFunc(ctx, email)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makeTestOrder(sessionID string) *domain.Order {
	return &domain.Order{
		ID:              uuid.New(),
		OrderNumber:     "CR-TEST-0001",
		StripeSessionID: sessionID,
		CustomerEmail:   "buyer@example.com",
		Items:           []domain.OrderItem{{ProductID: "p1", Title: "Mug", Price: 12.00, Quantity: 2}},
		TotalCents:      2400,
		Currency:        "usd",
		Status:          domain.OrderStatusPaid,
		CreatedAt:       time.Now(),
	}
}

func TestCheckoutCreate(t *testing.T) {
	t.Run("returns redirect url", func(t *testing.T) {
		svc := &mockCheckoutService{
			CreateCheckoutSessionFunc: func(ctx context.Context, items []cart.Item) (string, error) {
				if len(items) != 1 || items[0].ProductID != "p1" {
					t.Errorf("items = %+v", items)
				}
				return "https://checkout.test/cs_1", nil
			},
		}
		h := NewCheckoutHandler(svc, testLogger())

		body := `{"items":[{"product_id":"p1","title":"Mug","price":12.00,"quantity":2}]}`
		req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.Create(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var resp map[string]string
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if resp["url"] != "https://checkout.test/cs_1" {
			t.Errorf("url = %q", resp["url"])
		}
	})

	t.Run("empty cart is a 400", func(t *testing.T) {
		svc := &mockCheckoutService{
			CreateCheckoutSessionFunc: func(ctx context.Context, items []cart.Item) (string, error) {
				return "", domain.Invalid("checkout.create", "cart is empty")
			},
		}
		h := NewCheckoutHandler(svc, testLogger())

		req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(`{"items":[]}`))
		rec := httptest.NewRecorder()
		h.Create(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("malformed body is a 400", func(t *testing.T) {
		h := NewCheckoutHandler(&mockCheckoutService{}, testLogger())

		req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(`{broken`))
		rec := httptest.NewRecorder()
		h.Create(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("gateway failure is a 500", func(t *testing.T) {
		svc := &mockCheckoutService{
			CreateCheckoutSessionFunc: func(ctx context.Context, items []cart.Item) (string, error) {
				return "", domain.Internal(nil, "checkout.create", "failed to create checkout session")
			},
		}
		h := NewCheckoutHandler(svc, testLogger())

		req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(`{"items":[{"product_id":"p1","title":"Mug","price":12.00,"quantity":1}]}`))
		rec := httptest.NewRecorder()
		h.Create(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", rec.Code)
		}
	})
}

func TestCheckoutSuccess(t *testing.T) {
	t.Run("order found renders complete and clears cart", func(t *testing.T) {
		svc := &mockCheckoutService{
			GetOrderBySessionFunc: func(ctx context.Context, sessionID string) (*domain.Order, error) {
				return makeTestOrder(sessionID), nil
			},
		}
		h := NewCheckoutHandler(svc, testLogger())

		req := httptest.NewRequest(http.MethodGet, "/checkout/success?session_id=cs_1", nil)
		rec := httptest.NewRecorder()
		h.Success(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var resp successResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if resp.Status != "complete" || resp.Order == nil {
			t.Errorf("resp = %+v", resp)
		}

		// Cart cookie must be expired
		cleared := false
		for _, c := range rec.Result().Cookies() {
			if c.Name == "curio_cart" && c.MaxAge < 0 {
				cleared = true
			}
		}
		if !cleared {
			t.Error("cart cookie was not cleared")
		}
	})

	t.Run("webhook race renders processing", func(t *testing.T) {
		svc := &mockCheckoutService{
			GetOrderBySessionFunc: func(ctx context.Context, sessionID string) (*domain.Order, error) {
				return nil, domain.NotFound("order.get", "order", sessionID)
			},
		}
		h := NewCheckoutHandler(svc, testLogger())

		req := httptest.NewRequest(http.MethodGet, "/checkout/success?session_id=cs_1", nil)
		rec := httptest.NewRecorder()
		h.Success(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 while processing", rec.Code)
		}

		var resp successResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if resp.Status != "processing" || resp.Order != nil {
			t.Errorf("resp = %+v, want processing with no order", resp)
		}
	})

	t.Run("missing session id is a 400", func(t *testing.T) {
		h := NewCheckoutHandler(&mockCheckoutService{}, testLogger())

		req := httptest.NewRequest(http.MethodGet, "/checkout/success", nil)
		rec := httptest.NewRecorder()
		h.Success(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestOrdersList(t *testing.T) {
	t.Run("missing email is a 400", func(t *testing.T) {
		h := NewOrdersHandler(&mockCheckoutService{})

		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		rec := httptest.NewRecorder()
		h.List(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("no orders yields empty array", func(t *testing.T) {
		svc := &mockCheckoutService{
			GetOrdersByEmailFunc: func(ctx context.Context, email string) ([]domain.Order, error) {
				return []domain.Order{}, nil
			},
		}
		h := NewOrdersHandler(svc)

		req := httptest.NewRequest(http.MethodGet, "/orders?email=nobody@example.com", nil)
		rec := httptest.NewRecorder()
		h.List(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if body := rec.Body.String(); !strings.Contains(body, `"orders":[]`) {
			t.Errorf("body = %s, want empty orders array", body)
		}
	})

	t.Run("returns orders for email", func(t *testing.T) {
		svc := &mockCheckoutService{
			GetOrdersByEmailFunc: func(ctx context.Context, email string) ([]domain.Order, error) {
				return []domain.Order{*makeTestOrder("cs_1")}, nil
			},
		}
		h := NewOrdersHandler(svc)

		req := httptest.NewRequest(http.MethodGet, "/orders?email=buyer@example.com", nil)
		rec := httptest.NewRecorder()
		h.List(rec, req)

		var resp ordersResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if len(resp.Orders) != 1 || resp.Orders[0].OrderNumber != "CR-TEST-0001" {
			t.Errorf("orders = %+v", resp.Orders)
		}
	})
}

func TestOrdersGetBySession(t *testing.T) {
	t.Run("known session returns order", func(t *testing.T) {
		svc := &mockCheckoutService{
			GetOrderBySessionFunc: func(ctx context.Context, sessionID string) (*domain.Order, error) {
				if sessionID != "cs_1" {
					t.Errorf("sessionID = %q, want cs_1", sessionID)
				}
				return makeTestOrder(sessionID), nil
			},
		}
		h := NewOrdersHandler(svc)

		req := httptest.NewRequest(http.MethodGet, "/orders/session/cs_1", nil)
		req.SetPathValue("sessionID", "cs_1")
		rec := httptest.NewRecorder()
		h.GetBySession(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var resp struct {
			Order domain.Order `json:"order"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if resp.Order.StripeSessionID != "cs_1" {
			t.Errorf("order = %+v", resp.Order)
		}
	})

	t.Run("unknown session is a 404", func(t *testing.T) {
		svc := &mockCheckoutService{
			GetOrderBySessionFunc: func(ctx context.Context, sessionID string) (*domain.Order, error) {
				return nil, domain.NotFound("order.get", "order", sessionID)
			},
		}
		h := NewOrdersHandler(svc)

		req := httptest.NewRequest(http.MethodGet, "/orders/session/cs_missing", nil)
		req.SetPathValue("sessionID", "cs_missing")
		rec := httptest.NewRecorder()
		h.GetBySession(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}
