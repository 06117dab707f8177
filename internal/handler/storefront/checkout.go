package storefront

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/seamark/curio/internal/cart"
	"github.com/seamark/curio/internal/cookie"
	"github.com/seamark/curio/internal/domain"
	"github.com/seamark/curio/internal/handler"
)

// CheckoutService is the slice of the checkout coordinator the
// storefront endpoints need.
type CheckoutService interface {
	CreateCheckoutSession(ctx context.Context, items []cart.Item) (string, error)
	GetOrderBySession(ctx context.Context, sessionID string) (*domain.Order, error)
	GetOrdersByEmail(ctx context.Context, email string) ([]domain.Order, error)
}

// CheckoutHandler bridges the cart to the hosted payment page and
// serves the post-payment confirmation lookup.
type CheckoutHandler struct {
	checkout CheckoutService
	logger   *slog.Logger
}

func NewCheckoutHandler(checkout CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, logger: logger}
}

type checkoutRequest struct {
	Items []cart.Item `json:"items"`
}

type checkoutResponse struct {
	URL string `json:"url"`
}

// Create handles POST /checkout. The client posts its cart lines and
// receives the hosted payment page URL to redirect to.
func (h *CheckoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	url, err := h.checkout.CreateCheckoutSession(r.Context(), req.Items)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, checkoutResponse{URL: url})
}

type successResponse struct {
	Status string        `json:"status"`
	Order  *domain.Order `json:"order,omitempty"`
}

// Success handles GET /checkout/success?session_id=. The browser
// lands here after paying; the webhook may not have arrived yet, so
// an absent order renders as "processing" rather than an error. A
// found order clears the cart cookie.
func (h *CheckoutHandler) Success(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		handler.ErrorResponse(w, r, domain.Invalid("checkout.success", "session_id is required"))
		return
	}

	order, err := h.checkout.GetOrderBySession(r.Context(), sessionID)
	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			handler.JSON(w, http.StatusOK, successResponse{Status: "processing"})
			return
		}
		handler.ErrorResponse(w, r, err)
		return
	}

	if err := cookie.NewCartPersistence(w, r).Clear(r.Context()); err != nil {
		h.logger.Warn("failed to clear cart after checkout", slog.String("error", err.Error()))
	}

	handler.JSON(w, http.StatusOK, successResponse{Status: "complete", Order: order})
}
