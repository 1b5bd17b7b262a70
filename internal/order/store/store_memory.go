package store

import (
	"context"
	"slices"
	"sync"

	"storefront/internal/order/models"
	id "storefront/pkg/domain"
	"storefront/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	orders map[id.OrderID]*models.Order
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{orders: make(map[id.OrderID]*models.Order)}
}

func clone(o *models.Order) *models.Order {
	cp := *o
	cp.Items = slices.Clone(o.Items)
	return &cp
}

func (s *InMemoryStore) Create(_ context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[o.ID]; ok {
		return sentinel.ErrConflict
	}
	s.orders[o.ID] = clone(o)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, orderID id.OrderID) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(o), nil
}

func (s *InMemoryStore) collect(keep func(*models.Order) bool) []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if keep(o) {
			out = append(out, *clone(o))
		}
	}
	slices.SortFunc(out, func(a, b models.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return compareIDs(a.ID, b.ID)
	})
	return out
}

func compareIDs(a, b id.OrderID) int {
	return slices.Compare(a[:], b[:])
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID id.UserID) ([]models.Order, error) {
	return s.collect(func(o *models.Order) bool { return o.UserID == userID }), nil
}

// List returns orders newest first, restricted to statuses when any are given.
func (s *InMemoryStore) List(_ context.Context, statuses []models.Status) ([]models.Order, error) {
	return s.collect(func(o *models.Order) bool {
		return len(statuses) == 0 || slices.Contains(statuses, o.Status)
	}), nil
}

func (s *InMemoryStore) Execute(_ context.Context, orderID id.OrderID, validate func(*models.Order) error, mutate func(*models.Order)) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := clone(o)
	if err := validate(cp); err != nil {
		return nil, err
	}
	mutate(cp)
	s.orders[orderID] = cp
	return clone(cp), nil
}

func (s *InMemoryStore) Delete(_ context.Context, orderID id.OrderID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[orderID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.orders, orderID)
	return nil
}

// Totals returns the order count and the sum of order totals.
func (s *InMemoryStore) Totals(_ context.Context) (int, id.Amount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var revenue id.Amount
	for _, o := range s.orders {
		revenue += o.Total
	}
	return len(s.orders), revenue, nil
}
