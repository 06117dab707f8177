// Package telemetry exposes business-level Prometheus metrics.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics holds Prometheus metrics for business-level
// observability of the storefront.
type BusinessMetrics struct {
	// Checkout funnel
	CheckoutStarted  prometheus.Counter
	CheckoutRejected *prometheus.CounterVec

	// Orders
	OrdersCreated    prometheus.Counter
	OrdersDuplicate  prometheus.Counter
	OrderWriteFailed prometheus.Counter
	OrderValue       prometheus.Histogram

	// Webhooks
	WebhookReceived *prometheus.CounterVec
	WebhookRejected *prometheus.CounterVec

	// Cart
	CartItemsAdded prometheus.Counter
	CartCleared    prometheus.Counter
}

// NewBusinessMetrics creates and registers all business metrics on
// the default registry.
func NewBusinessMetrics(namespace string) *BusinessMetrics {
	return NewBusinessMetricsWith(prometheus.DefaultRegisterer, namespace)
}

// NewBusinessMetricsWith registers on a specific registry. Tests use
// this with a fresh registry to avoid duplicate registration panics.
func NewBusinessMetricsWith(reg prometheus.Registerer, namespace string) *BusinessMetrics {
	if namespace == "" {
		namespace = "curio"
	}

	subsystem := "business"
	factory := promauto.With(reg)

	return &BusinessMetrics{
		CheckoutStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "checkout_started_total",
			Help:      "Checkout sessions successfully created",
		}),
		CheckoutRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "checkout_rejected_total",
			Help:      "Checkout requests rejected before reaching the payment gateway",
		}, []string{"reason"}),
		OrdersCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "orders_created_total",
			Help:      "Orders durably recorded from confirmed payments",
		}),
		OrdersDuplicate: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "orders_duplicate_total",
			Help:      "Duplicate webhook deliveries suppressed by session idempotency",
		}),
		OrderWriteFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "order_write_failed_total",
			Help:      "Confirmed payments whose order write failed and needs manual reconciliation",
		}),
		OrderValue: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "order_value_dollars",
			Help:      "Order totals in major currency units",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		WebhookReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "webhook_received_total",
			Help:      "Signature-verified webhook events by type",
		}, []string{"event_type"}),
		WebhookRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "webhook_rejected_total",
			Help:      "Webhook deliveries rejected before processing",
		}, []string{"reason"}),
		CartItemsAdded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cart_items_added_total",
			Help:      "Line items added to carts",
		}),
		CartCleared: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cart_cleared_total",
			Help:      "Carts emptied by checkout completion or user action",
		}),
	}
}
