// Package webhook receives signed payment gateway callbacks.
package webhook

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/seamark/curio/internal/billing"
	"github.com/seamark/curio/internal/domain"
	"github.com/seamark/curio/internal/handler"
	"github.com/seamark/curio/internal/middleware"
	"github.com/seamark/curio/internal/telemetry"
)

// CheckoutConfirmer is the slice of the checkout coordinator the
// webhook needs: reconcile one confirmed session into an order.
type CheckoutConfirmer interface {
	HandlePaymentConfirmed(ctx context.Context, session *billing.SessionDetails) error
}

// StripeHandler handles Stripe webhook events.
//
// Contract with the gateway: once the signature verifies, respond 200
// with {"received": true} no matter what happens downstream. An error
// status here triggers gateway retries; the order write is already
// idempotent, so retrying buys nothing and risks a retry storm.
type StripeHandler struct {
	provider billing.Provider
	checkout CheckoutConfirmer
	metrics  *telemetry.BusinessMetrics
	logger   *slog.Logger
}

func NewStripeHandler(provider billing.Provider, checkout CheckoutConfirmer, metrics *telemetry.BusinessMetrics, logger *slog.Logger) *StripeHandler {
	return &StripeHandler{
		provider: provider,
		checkout: checkout,
		metrics:  metrics,
		logger:   logger,
	}
}

type receivedResponse struct {
	Received bool `json:"received"`
}

// HandleWebhook processes incoming Stripe webhook events.
//
// Stripe CLI testing:
//
//	stripe listen --forward-to localhost:3000/webhook
//	stripe trigger checkout.session.completed
func (h *StripeHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context(), h.logger)

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.metrics.WebhookRejected.WithLabelValues("unreadable_body").Inc()
		handler.ErrorResponse(w, r, domain.Invalid("webhook.read", "error reading request body"))
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	if signature == "" {
		h.metrics.WebhookRejected.WithLabelValues("missing_signature").Inc()
		handler.ErrorResponse(w, r, domain.Invalid("webhook.verify", "missing signature"))
		return
	}

	event, err := h.provider.VerifyWebhookEvent(payload, signature)
	if err != nil {
		switch {
		case err == billing.ErrMissingWebhookSecret:
			// Fail closed: never process unsigned events.
			h.metrics.WebhookRejected.WithLabelValues("no_secret").Inc()
			logger.Error("webhook signing secret not configured, rejecting event")
			handler.ErrorResponse(w, r, domain.Internal(err, "webhook.verify", "webhook not configured"))
		default:
			h.metrics.WebhookRejected.WithLabelValues("bad_signature").Inc()
			logger.Warn("webhook signature verification failed",
				slog.String("error", err.Error()),
			)
			handler.ErrorResponse(w, r, domain.Unauthorized("webhook.verify", "invalid signature"))
		}
		return
	}

	h.metrics.WebhookReceived.WithLabelValues(event.Type).Inc()
	logger.Info("webhook event received",
		slog.String("event_id", event.ID),
		slog.String("event_type", event.Type),
	)

	// Only completed checkout sessions create orders; every other
	// verified event type is acknowledged and ignored.
	if event.Type == billing.EventCheckoutSessionCompleted && event.Session != nil {
		// HandlePaymentConfirmed never returns an error by contract;
		// failures are logged and published inside it.
		_ = h.checkout.HandlePaymentConfirmed(r.Context(), event.Session)
	}

	handler.JSON(w, http.StatusOK, receivedResponse{Received: true})
}
