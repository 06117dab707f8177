package cart

import (
	"context"
	"encoding/base64"
	"encoding/json"
)

// Encode serializes a cart to a cookie-safe base64 blob.
func Encode(c *Cart) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(data), nil
}

// Decode deserializes a cart blob. A corrupt or unparsable blob
// yields an empty cart, never an error: the cart is a convenience
// cache, not a system of record.
func Decode(blob string) *Cart {
	if blob == "" {
		return &Cart{}
	}

	data, err := base64.URLEncoding.DecodeString(blob)
	if err != nil {
		return &Cart{}
	}

	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return &Cart{}
	}
	return &c
}

// MemoryPersistence holds a cart in process memory. Used by tests and
// in-request scratch carts.
type MemoryPersistence struct {
	cart *Cart
}

func NewMemoryPersistence() *MemoryPersistence {
	return &MemoryPersistence{cart: &Cart{}}
}

func (m *MemoryPersistence) Load(ctx context.Context) (*Cart, error) {
	// Round-trip through the codec so memory and cookie backends
	// share corruption semantics.
	blob, err := Encode(m.cart)
	if err != nil {
		return &Cart{}, nil
	}
	return Decode(blob), nil
}

func (m *MemoryPersistence) Save(ctx context.Context, c *Cart) error {
	m.cart = c
	return nil
}

func (m *MemoryPersistence) Clear(ctx context.Context) error {
	m.cart = &Cart{}
	return nil
}
