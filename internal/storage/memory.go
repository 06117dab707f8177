package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/seamark/curio/internal/domain"
)

// MemoryOrderStore is an in-memory domain.OrderStore for tests.
// Idempotency matches the Postgres store: at most one order per
// session id, enforced atomically under the mutex.
type MemoryOrderStore struct {
	mu     sync.Mutex
	orders map[string]domain.Order // keyed by session id
}

var _ domain.OrderStore = (*MemoryOrderStore)(nil)

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{orders: make(map[string]domain.Order)}
}

func (s *MemoryOrderStore) CreateOrder(ctx context.Context, order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[order.StripeSessionID]; exists {
		return domain.ErrSessionAlreadyProcessed
	}
	s.orders[order.StripeSessionID] = *order
	return nil
}

func (s *MemoryOrderStore) GetOrderBySessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, exists := s.orders[sessionID]
	if !exists {
		return nil, domain.NotFound("order.get", "order", sessionID)
	}
	return &order, nil
}

func (s *MemoryOrderStore) GetOrdersByEmail(ctx context.Context, email string) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := make([]domain.Order, 0)
	for _, order := range s.orders {
		if order.CustomerEmail == email {
			orders = append(orders, order)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

// Count returns the number of stored orders. Test helper.
func (s *MemoryOrderStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}
