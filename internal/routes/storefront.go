package routes

import (
	"github.com/seamark/curio/internal/router"
)

// RegisterStorefrontRoutes registers all customer-facing storefront routes.
// Every route speaks JSON; the cart routes read and rewrite the cart cookie
// on each request.
func RegisterStorefrontRoutes(r *router.Router, deps StorefrontDeps) {
	// Product browsing
	r.Get("/products", deps.ProductsHandler.List)
	r.Get("/products/{slug}", deps.ProductsHandler.Get)
	r.Get("/products/{slug}/reviews", deps.ProductsHandler.ListProductReviews)

	// Collections
	r.Get("/collections", deps.ProductsHandler.ListCollections)
	r.Get("/collections/{slug}", deps.ProductsHandler.GetCollection)
	r.Get("/collections/{slug}/products", deps.ProductsHandler.ListCollectionProducts)

	// Reviews
	r.Get("/reviews", deps.ProductsHandler.ListReviews)

	// Blog
	r.Get("/blog", deps.ProductsHandler.ListBlogPosts)
	r.Get("/blog/{slug}", deps.ProductsHandler.GetBlogPost)

	// CMS pages
	r.Get("/pages/{slug}", deps.ProductsHandler.GetPage)

	// Contact form
	r.Post("/contact", deps.ContactHandler.Send)

	// Shopping cart
	r.Get("/cart", deps.CartHandler.View)
	r.Post("/cart/items", deps.CartHandler.Add)
	r.Put("/cart/items/{productID}", deps.CartHandler.Update)
	r.Delete("/cart/items/{productID}", deps.CartHandler.Remove)
	r.Delete("/cart", deps.CartHandler.Clear)

	// Checkout flow
	r.Post("/checkout", deps.CheckoutHandler.Create)
	r.Get("/checkout/success", deps.CheckoutHandler.Success)

	// Order history
	r.Get("/orders", deps.OrdersHandler.List)
	r.Get("/orders/session/{sessionID}", deps.OrdersHandler.GetBySession)
}
