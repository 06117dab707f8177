// Package postgres implements the durable order store on PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seamark/curio/internal/domain"
)

// OrderStore persists orders in the orders table. The unique index on
// stripe_session_id makes CreateOrder idempotent under concurrent
// webhook deliveries.
type OrderStore struct {
	pool *pgxpool.Pool
}

// Compile-time check that OrderStore implements domain.OrderStore.
var _ domain.OrderStore = (*OrderStore)(nil)

func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

// CreateOrder inserts the order. ON CONFLICT DO NOTHING on the
// session id turns duplicate deliveries into
// domain.ErrSessionAlreadyProcessed without a read-then-write race.
func (s *OrderStore) CreateOrder(ctx context.Context, order *domain.Order) error {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return domain.Internal(err, "order.create", "failed to serialize order items")
	}

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO orders (id, order_number, stripe_session_id, customer_email, items, total_cents, currency, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (stripe_session_id) DO NOTHING`,
		order.ID, order.OrderNumber, order.StripeSessionID, order.CustomerEmail,
		itemsJSON, order.TotalCents, order.Currency, order.Status, order.CreatedAt,
	)
	if err != nil {
		return domain.Internal(err, "order.create", "failed to save order")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionAlreadyProcessed
	}
	return nil
}

func (s *OrderStore) GetOrderBySessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, order_number, stripe_session_id, customer_email, items, total_cents, currency, status, created_at
		FROM orders
		WHERE stripe_session_id = $1`,
		sessionID,
	)

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("order.get", "order", sessionID)
		}
		return nil, domain.Internal(err, "order.get", "failed to fetch order")
	}
	return order, nil
}

func (s *OrderStore) GetOrdersByEmail(ctx context.Context, email string) ([]domain.Order, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, order_number, stripe_session_id, customer_email, items, total_cents, currency, status, created_at
		FROM orders
		WHERE customer_email = $1
		ORDER BY created_at DESC`,
		email,
	)
	if err != nil {
		return nil, domain.Internal(err, "order.list", "failed to fetch orders")
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, domain.Internal(err, "order.list", "failed to scan order")
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "order.list", "failed to iterate orders")
	}
	return orders, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var order domain.Order
	var itemsJSON []byte

	err := row.Scan(
		&order.ID, &order.OrderNumber, &order.StripeSessionID, &order.CustomerEmail,
		&itemsJSON, &order.TotalCents, &order.Currency, &order.Status, &order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, err
	}
	return &order, nil
}
