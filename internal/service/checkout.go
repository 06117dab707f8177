// Package service implements the checkout coordinator: it bridges
// cart contents to the payment gateway and reconciles gateway-
// confirmed payments into durable orders, exactly once per session.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/seamark/curio/internal/billing"
	"github.com/seamark/curio/internal/cart"
	"github.com/seamark/curio/internal/domain"
	"github.com/seamark/curio/internal/events"
	"github.com/seamark/curio/internal/telemetry"
)

// metadataItemsKey is the checkout session metadata slot carrying the
// serialized cart snapshot. The snapshot, not the live cart, is the
// record of what was purchased: the cart may be cleared or mutated
// while payment is in flight.
const metadataItemsKey = "items_json"

// sentinelEmail stands in when the gateway reports no buyer email.
const sentinelEmail = "unknown@example.com"

// CheckoutService coordinates checkout sessions and order
// reconciliation.
type CheckoutService struct {
	billing  billing.Provider
	orders   domain.OrderStore
	events   events.Publisher
	metrics  *telemetry.BusinessMetrics
	logger   *slog.Logger
	validate *validator.Validate

	successURL string
	cancelURL  string
}

func NewCheckoutService(
	billingProvider billing.Provider,
	orders domain.OrderStore,
	publisher events.Publisher,
	metrics *telemetry.BusinessMetrics,
	logger *slog.Logger,
	baseURL string,
) *CheckoutService {
	return &CheckoutService{
		billing:    billingProvider,
		orders:     orders,
		events:     publisher,
		metrics:    metrics,
		logger:     logger,
		validate:   validator.New(),
		successURL: baseURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		cancelURL:  baseURL + "/cart",
	}
}

// CreateCheckoutSession converts cart line items into a hosted
// checkout session and returns the redirect URL. An empty or invalid
// cart is rejected before any gateway call is made.
func (s *CheckoutService) CreateCheckoutSession(ctx context.Context, items []cart.Item) (string, error) {
	op := "checkout.create"

	if len(items) == 0 {
		s.metrics.CheckoutRejected.WithLabelValues("empty_cart").Inc()
		return "", domain.Invalid(op, "cart is empty")
	}

	for _, item := range items {
		if err := s.validate.Struct(item); err != nil {
			s.metrics.CheckoutRejected.WithLabelValues("invalid_item").Inc()
			return "", domain.Errorf(domain.EINVALID, op, "invalid cart item %q: %v", item.ProductID, err)
		}
	}

	lineItems := make([]billing.LineItem, 0, len(items))
	snapshot := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		lineItems = append(lineItems, billing.LineItem{
			Name:       item.Title,
			UnitAmount: toMinorUnits(item.Price),
			Quantity:   int64(item.Quantity),
		})
		snapshot = append(snapshot, domain.OrderItem{
			ProductID: item.ProductID,
			Title:     item.Title,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}

	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return "", domain.Internal(err, op, "failed to serialize cart snapshot")
	}

	session, err := s.billing.CreateCheckoutSession(ctx, billing.CheckoutParams{
		LineItems:  lineItems,
		SuccessURL: s.successURL,
		CancelURL:  s.cancelURL,
		Metadata:   map[string]string{metadataItemsKey: string(snapshotJSON)},
	})
	if err != nil {
		s.logger.Error("checkout session creation failed",
			slog.String("op", op),
			slog.String("error", err.Error()),
		)
		return "", domain.Internal(err, op, "failed to create checkout session")
	}

	s.metrics.CheckoutStarted.Inc()
	s.logger.Info("checkout session created",
		slog.String("session_id", session.ID),
		slog.Int("line_items", len(lineItems)),
	)

	return session.URL, nil
}

// HandlePaymentConfirmed reconciles a confirmed checkout session into
// a durable order. Safe to invoke more than once per session: the
// store's session-id uniqueness turns retries into no-ops.
//
// A failed order write is logged and published for reconciliation but
// still returns nil: the caller must acknowledge the gateway either
// way, and a returned error here must never block that.
func (s *CheckoutService) HandlePaymentConfirmed(ctx context.Context, session *billing.SessionDetails) error {
	op := "checkout.confirm"

	email := session.CustomerEmail
	if email == "" {
		email = sentinelEmail
	}

	var items []domain.OrderItem
	if raw, ok := session.Metadata[metadataItemsKey]; ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			s.logger.Warn("unparsable items snapshot in session metadata",
				slog.String("session_id", session.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	currency := session.Currency
	if currency == "" {
		currency = "usd"
	}

	order := &domain.Order{
		ID:              uuid.New(),
		OrderNumber:     domain.NewOrderNumber(),
		StripeSessionID: session.ID,
		CustomerEmail:   email,
		Items:           items,
		TotalCents:      session.AmountTotal,
		Currency:        currency,
		Status:          domain.OrderStatusPaid,
		CreatedAt:       time.Now(),
	}

	err := s.orders.CreateOrder(ctx, order)
	switch {
	case err == nil:
		s.metrics.OrdersCreated.Inc()
		s.metrics.OrderValue.Observe(order.Total())
		s.logger.Info("order created",
			slog.String("order_number", order.OrderNumber),
			slog.String("session_id", order.StripeSessionID),
			slog.Int64("total_cents", order.TotalCents),
		)
		s.publish(events.SubjectOrderCreated, events.OrderCreated{
			OrderNumber:     order.OrderNumber,
			StripeSessionID: order.StripeSessionID,
			CustomerEmail:   order.CustomerEmail,
			TotalCents:      order.TotalCents,
			CreatedAt:       order.CreatedAt,
		})

	case domain.IsSessionAlreadyProcessed(err):
		s.metrics.OrdersDuplicate.Inc()
		s.logger.Info("duplicate payment confirmation ignored",
			slog.String("session_id", session.ID),
		)

	default:
		s.metrics.OrderWriteFailed.Inc()
		s.logger.Error("order write failed after confirmed payment",
			slog.String("op", op),
			slog.String("session_id", session.ID),
			slog.String("error", err.Error()),
		)
		s.publish(events.SubjectOrderWriteFailed, events.OrderWriteFailed{
			StripeSessionID: session.ID,
			CustomerEmail:   email,
			Error:           err.Error(),
			FailedAt:        time.Now(),
		})
	}

	return nil
}

// GetOrderBySession looks up the order for a confirmation page.
// Returns ENOTFOUND when the webhook has not landed yet; callers
// render that as "processing", not as a failure.
func (s *CheckoutService) GetOrderBySession(ctx context.Context, sessionID string) (*domain.Order, error) {
	if sessionID == "" {
		return nil, domain.Invalid("order.get", "session id is required")
	}
	return s.orders.GetOrderBySessionID(ctx, sessionID)
}

// GetOrdersByEmail returns the order history for an email address,
// newest first. No orders is an empty list, not an error.
func (s *CheckoutService) GetOrdersByEmail(ctx context.Context, email string) ([]domain.Order, error) {
	op := "order.list"

	if email == "" {
		return nil, domain.Invalid(op, "email is required")
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return nil, domain.Invalid(op, "invalid email address")
	}

	orders, err := s.orders.GetOrdersByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

func (s *CheckoutService) publish(subject string, event any) {
	if err := s.events.Publish(subject, event); err != nil {
		s.logger.Warn("event publish failed",
			slog.String("subject", subject),
			slog.String("error", err.Error()),
		)
	}
}

// toMinorUnits converts a major-unit price to the gateway's integer
// minor units, rounding to the nearest cent.
func toMinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}
