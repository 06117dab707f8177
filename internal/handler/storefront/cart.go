// Package storefront holds the buyer-facing JSON endpoints: cart
// mutations, checkout, order lookup and catalog reads.
package storefront

import (
	"log/slog"
	"net/http"

	"github.com/seamark/curio/internal/cart"
	"github.com/seamark/curio/internal/cookie"
	"github.com/seamark/curio/internal/handler"
	"github.com/seamark/curio/internal/telemetry"
)

// CartHandler exposes the cart state machine over HTTP. Cart state
// lives in a cookie owned by the browsing session; each request
// hydrates it, applies one mutation and writes the snapshot back.
type CartHandler struct {
	metrics *telemetry.BusinessMetrics
	logger  *slog.Logger
}

func NewCartHandler(metrics *telemetry.BusinessMetrics, logger *slog.Logger) *CartHandler {
	return &CartHandler{metrics: metrics, logger: logger}
}

type cartResponse struct {
	Items      []cart.Item `json:"items"`
	TotalItems int         `json:"total_items"`
	TotalPrice float64     `json:"total_price"`
}

func toCartResponse(c *cart.Cart) cartResponse {
	items := c.Items
	if items == nil {
		items = []cart.Item{}
	}
	return cartResponse{
		Items:      items,
		TotalItems: c.TotalItems(),
		TotalPrice: c.TotalPrice(),
	}
}

func (h *CartHandler) store(w http.ResponseWriter, r *http.Request) *cart.Store {
	return cart.NewStore(cookie.NewCartPersistence(w, r))
}

// View handles GET /cart
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	c, err := h.store(w, r).Get(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, toCartResponse(c))
}

// Add handles POST /cart/items
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	var item cart.Item
	if err := handler.DecodeJSON(r, &item); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	c, err := h.store(w, r).AddItem(r.Context(), item)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	h.metrics.CartItemsAdded.Inc()
	handler.JSON(w, http.StatusOK, toCartResponse(c))
}

// Update handles PUT /cart/items/{productID}
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("productID")

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	c, err := h.store(w, r).UpdateQuantity(r.Context(), productID, req.Quantity)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, toCartResponse(c))
}

// Remove handles DELETE /cart/items/{productID}
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("productID")

	c, err := h.store(w, r).RemoveItem(r.Context(), productID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, toCartResponse(c))
}

// Clear handles DELETE /cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	c, err := h.store(w, r).ClearCart(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	h.metrics.CartCleared.Inc()
	handler.JSON(w, http.StatusOK, toCartResponse(c))
}
