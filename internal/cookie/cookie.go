// Package cookie persists cart snapshots in a browser cookie, scoped
// to the browsing session's storage the same way client-side storage
// would be. The server never owns cart state pre-checkout.
package cookie

import (
	"context"
	"net/http"
	"time"

	"github.com/seamark/curio/internal/cart"
)

const (
	// cartCookieName is the fixed namespaced slot the cart lives under.
	cartCookieName = "curio_cart"

	cartCookieTTL = 30 * 24 * time.Hour
)

// CartPersistence implements cart.Persistence over a single
// request/response pair. Construct one per request.
type CartPersistence struct {
	w http.ResponseWriter
	r *http.Request
}

func NewCartPersistence(w http.ResponseWriter, r *http.Request) *CartPersistence {
	return &CartPersistence{w: w, r: r}
}

// Load hydrates the cart from the cookie. A missing or corrupt cookie
// yields an empty cart.
func (p *CartPersistence) Load(ctx context.Context) (*cart.Cart, error) {
	c, err := p.r.Cookie(cartCookieName)
	if err != nil {
		return &cart.Cart{}, nil
	}
	return cart.Decode(c.Value), nil
}

// Save writes the cart snapshot back to the cookie.
func (p *CartPersistence) Save(ctx context.Context, c *cart.Cart) error {
	blob, err := cart.Encode(c)
	if err != nil {
		return err
	}

	http.SetCookie(p.w, &http.Cookie{
		Name:     cartCookieName,
		Value:    blob,
		Path:     "/",
		MaxAge:   int(cartCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   p.r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires the cart cookie.
func (p *CartPersistence) Clear(ctx context.Context) error {
	http.SetCookie(p.w, &http.Cookie{
		Name:     cartCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   p.r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
