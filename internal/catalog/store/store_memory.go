package store

import (
	"context"
	"sync"

	"storefront/internal/catalog/models"
	id "storefront/pkg/domain"
	"storefront/pkg/platform/sentinel"
)

// InMemoryStore keeps products in insertion order.
type InMemoryStore struct {
	mu       sync.RWMutex
	products map[id.ProductID]*models.Product
	order    []id.ProductID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{products: make(map[id.ProductID]*models.Product)}
}

func (s *InMemoryStore) List(_ context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, 0, len(s.order))
	for _, pid := range s.order {
		out = append(out, *s.products[pid])
	}
	return out, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, productID id.ProductID) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[productID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *InMemoryStore) Create(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; ok {
		return sentinel.ErrConflict
	}
	cp := *p
	s.products[p.ID] = &cp
	s.order = append(s.order, p.ID)
	return nil
}

// Execute runs validate then mutate under the write lock. A validate error
// leaves the product unchanged.
func (s *InMemoryStore) Execute(_ context.Context, productID id.ProductID, validate func(*models.Product) error, mutate func(*models.Product)) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	work := *p
	if err := validate(&work); err != nil {
		return nil, err
	}
	mutate(&work)
	s.products[productID] = &work
	out := work
	return &out, nil
}

func (s *InMemoryStore) Delete(_ context.Context, productID id.ProductID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[productID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.products, productID)
	for i, pid := range s.order {
		if pid == productID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// CountLowStock counts products with stock below threshold.
func (s *InMemoryStore) CountLowStock(_ context.Context, threshold int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, p := range s.products {
		if p.IsLowStock(threshold) {
			n++
		}
	}
	return n, nil
}
