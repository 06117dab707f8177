package routes

import (
	"github.com/seamark/curio/internal/handler/storefront"
	"github.com/seamark/curio/internal/handler/webhook"
)

// StorefrontDeps contains dependencies for storefront routes
type StorefrontDeps struct {
	// Cart
	CartHandler *storefront.CartHandler

	// Checkout
	CheckoutHandler *storefront.CheckoutHandler

	// Order history
	OrdersHandler *storefront.OrdersHandler

	// Products and CMS content
	ProductsHandler *storefront.ProductsHandler

	// Contact form
	ContactHandler *storefront.ContactHandler
}

// WebhookDeps contains dependencies for webhook routes
type WebhookDeps struct {
	StripeHandler *webhook.StripeHandler
}
