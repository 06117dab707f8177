package cms

import (
	"context"
	"encoding/json"
	"math"

	"github.com/google/uuid"
	"github.com/seamark/curio/internal/domain"
)

const typeOrders = "orders"

// orderMetadata is the CMS record shape for an order. Items are kept
// as a serialized snapshot string, mirroring how they travel through
// checkout session metadata.
type orderMetadata struct {
	OrderNumber     string  `json:"order_number"`
	StripeSessionID string  `json:"stripe_session_id"`
	CustomerEmail   string  `json:"customer_email"`
	ItemsJSON       string  `json:"items_json"`
	Total           float64 `json:"total"`
	Currency        string  `json:"currency"`
	Status          string  `json:"status"`
}

// OrderStore persists orders as CMS objects. Used by deployments that
// run without Postgres and keep everything in the content bucket.
//
// The CMS API offers no uniqueness constraint, so idempotency is a
// check-then-insert against the session id. A concurrent duplicate
// delivery can slip through the gap; the Postgres store is the
// backend of choice where that matters.
type OrderStore struct {
	client *Client
}

func NewOrderStore(client *Client) *OrderStore {
	return &OrderStore{client: client}
}

func (s *OrderStore) CreateOrder(ctx context.Context, order *domain.Order) error {
	existing, err := s.client.findOne(ctx, typeOrders, map[string]string{
		"metadata.stripe_session_id": order.StripeSessionID,
	})
	if err != nil {
		return domain.Internal(err, "order.create", "failed to check for existing order")
	}
	if existing != nil {
		return domain.ErrSessionAlreadyProcessed
	}

	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return domain.Internal(err, "order.create", "failed to serialize order items")
	}

	meta := orderMetadata{
		OrderNumber:     order.OrderNumber,
		StripeSessionID: order.StripeSessionID,
		CustomerEmail:   order.CustomerEmail,
		ItemsJSON:       string(itemsJSON),
		Total:           order.Total(),
		Currency:        order.Currency,
		Status:          order.Status,
	}

	if _, err := s.client.insertOne(ctx, typeOrders, order.OrderNumber, meta); err != nil {
		return domain.Internal(err, "order.create", "failed to save order")
	}
	return nil
}

func (s *OrderStore) GetOrderBySessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	obj, err := s.client.findOne(ctx, typeOrders, map[string]string{
		"metadata.stripe_session_id": sessionID,
	})
	if err != nil {
		return nil, domain.Internal(err, "order.get", "failed to fetch order")
	}
	if obj == nil {
		return nil, domain.NotFound("order.get", "order", sessionID)
	}

	order := toOrder(obj)
	return &order, nil
}

func (s *OrderStore) GetOrdersByEmail(ctx context.Context, email string) ([]domain.Order, error) {
	objects, err := s.client.find(ctx, typeOrders, map[string]string{
		"metadata.customer_email": email,
	}, 0)
	if err != nil {
		return nil, domain.Internal(err, "order.list", "failed to fetch orders")
	}

	orders := make([]domain.Order, 0, len(objects))
	for i := range objects {
		orders = append(orders, toOrder(&objects[i]))
	}
	return orders, nil
}

func toOrder(obj *object) domain.Order {
	var meta orderMetadata
	_ = json.Unmarshal(obj.Metadata, &meta)

	var items []domain.OrderItem
	_ = json.Unmarshal([]byte(meta.ItemsJSON), &items)

	id, err := uuid.Parse(obj.ID)
	if err != nil {
		// CMS object ids are not UUIDs; derive a stable one.
		id = uuid.NewSHA1(uuid.NameSpaceOID, []byte(obj.ID))
	}

	return domain.Order{
		ID:              id,
		OrderNumber:     meta.OrderNumber,
		StripeSessionID: meta.StripeSessionID,
		CustomerEmail:   meta.CustomerEmail,
		Items:           items,
		TotalCents:      int64(math.Round(meta.Total * 100)),
		Currency:        meta.Currency,
		Status:          meta.Status,
		CreatedAt:       obj.CreatedAt,
	}
}
