package storefront

import (
	"net/http"

	"github.com/seamark/curio/internal/domain"
	"github.com/seamark/curio/internal/handler"
)

// OrdersHandler serves self-service order history lookups.
type OrdersHandler struct {
	checkout CheckoutService
}

func NewOrdersHandler(checkout CheckoutService) *OrdersHandler {
	return &OrdersHandler{checkout: checkout}
}

type ordersResponse struct {
	Orders []domain.Order `json:"orders"`
}

// List handles GET /orders?email=
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		handler.ErrorResponse(w, r, domain.Invalid("order.list", "email query parameter is required"))
		return
	}

	orders, err := h.checkout.GetOrdersByEmail(r.Context(), email)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, ordersResponse{Orders: orders})
}

// GetBySession handles GET /orders/session/{sessionID}. Unlike the
// checkout success endpoint this is a plain lookup: an order that has
// not landed yet is a 404, with no processing semantics attached.
func (h *OrdersHandler) GetBySession(w http.ResponseWriter, r *http.Request) {
	order, err := h.checkout.GetOrderBySession(r.Context(), r.PathValue("sessionID"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, map[string]any{"order": order})
}
