package store

import (
	"context"
	"sync"

	"storefront/internal/content/models"
	"storefront/pkg/platform/sentinel"
)

type HeroInMemory struct {
	mu   sync.RWMutex
	hero *models.Hero
}

func NewHeroInMemory() *HeroInMemory {
	return &HeroInMemory{}
}

// Get returns sentinel.ErrNotFound until the hero is first written.
func (s *HeroInMemory) Get(_ context.Context) (*models.Hero, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.hero == nil {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.hero
	return &cp, nil
}

func (s *HeroInMemory) Put(_ context.Context, h *models.Hero) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *h
	s.hero = &cp
	return nil
}
