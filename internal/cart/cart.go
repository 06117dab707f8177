// Package cart implements the shopping cart state machine.
//
// A Cart is a pure value: mutations recompute nothing and store
// nothing derived, so totals can never drift out of sync with the
// line items. The Store wraps a Cart with a Persistence port and
// writes a snapshot after every mutation.
package cart

import (
	"context"

	"github.com/seamark/curio/internal/domain"
)

// Item is one cart line. Title, Price and ImageURL are display
// snapshots captured when the item was added; later catalog edits do
// not reach carts that already hold the item.
type Item struct {
	ProductID string  `json:"product_id" validate:"required"`
	Title     string  `json:"title" validate:"required"`
	Price     float64 `json:"price" validate:"gt=0"`
	ImageURL  string  `json:"image_url,omitempty"`
	Quantity  int     `json:"quantity" validate:"gt=0"`
}

// Cart holds line items unique by ProductID, in insertion order.
// The zero value is a valid empty cart.
type Cart struct {
	Items []Item `json:"items"`
}

// Add merges an item into the cart. If a line with the same ProductID
// already exists its quantity is incremented and the stored price
// snapshot wins; otherwise the item is appended. A quantity below 1
// defaults to 1.
func (c *Cart) Add(item Item) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID {
			c.Items[i].Quantity += item.Quantity
			return
		}
	}

	c.Items = append(c.Items, item)
}

// Remove deletes the line with the given product id. Removing an
// absent id is a no-op, not an error.
func (c *Cart) Remove(productID string) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// SetQuantity replaces the stored quantity for a product id. A
// quantity of 0 or less removes the line. Absent ids are a no-op.
func (c *Cart) SetQuantity(productID string, quantity int) {
	if quantity <= 0 {
		c.Remove(productID)
		return
	}

	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = nil
}

// IsEmpty reports whether the cart has no line items.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// TotalItems returns the sum of line quantities.
func (c *Cart) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// TotalPrice returns the sum of price times quantity across lines,
// in major currency units.
func (c *Cart) TotalPrice() float64 {
	total := 0.0
	for _, item := range c.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Persistence is the storage port for cart snapshots. Load must
// return a valid empty cart when nothing is stored or the stored
// blob is corrupt; a broken cart blob is never a user-facing error.
type Persistence interface {
	Load(ctx context.Context) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Clear(ctx context.Context) error
}

// Store binds the cart state machine to a Persistence backend.
// Every mutation persists the resulting snapshot before returning it.
type Store struct {
	persistence Persistence
}

func NewStore(p Persistence) *Store {
	return &Store{persistence: p}
}

// Get returns the current cart state.
func (s *Store) Get(ctx context.Context) (*Cart, error) {
	c, err := s.persistence.Load(ctx)
	if err != nil {
		return nil, domain.Internal(err, "cart.get", "failed to load cart")
	}
	return c, nil
}

// AddItem merges the item into the stored cart and persists the
// result.
func (s *Store) AddItem(ctx context.Context, item Item) (*Cart, error) {
	if item.ProductID == "" {
		return nil, domain.Invalid("cart.add", "product id is required")
	}

	c, err := s.persistence.Load(ctx)
	if err != nil {
		return nil, domain.Internal(err, "cart.add", "failed to load cart")
	}

	c.Add(item)

	if err := s.persistence.Save(ctx, c); err != nil {
		return nil, domain.Internal(err, "cart.add", "failed to save cart")
	}
	return c, nil
}

// RemoveItem deletes the line for the product id and persists.
func (s *Store) RemoveItem(ctx context.Context, productID string) (*Cart, error) {
	c, err := s.persistence.Load(ctx)
	if err != nil {
		return nil, domain.Internal(err, "cart.remove", "failed to load cart")
	}

	c.Remove(productID)

	if err := s.persistence.Save(ctx, c); err != nil {
		return nil, domain.Internal(err, "cart.remove", "failed to save cart")
	}
	return c, nil
}

// UpdateQuantity sets the absolute quantity for a product id and
// persists. Zero or negative removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) (*Cart, error) {
	c, err := s.persistence.Load(ctx)
	if err != nil {
		return nil, domain.Internal(err, "cart.update", "failed to load cart")
	}

	c.SetQuantity(productID, quantity)

	if err := s.persistence.Save(ctx, c); err != nil {
		return nil, domain.Internal(err, "cart.update", "failed to save cart")
	}
	return c, nil
}

// ClearCart empties the stored cart.
func (s *Store) ClearCart(ctx context.Context) (*Cart, error) {
	c := &Cart{}
	if err := s.persistence.Clear(ctx); err != nil {
		return nil, domain.Internal(err, "cart.clear", "failed to clear cart")
	}
	return c, nil
}
