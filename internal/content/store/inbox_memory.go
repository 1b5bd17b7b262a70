package store

import (
	"context"
	"slices"
	"sync"

	"storefront/internal/content/models"
	id "storefront/pkg/domain"
	"storefront/pkg/platform/sentinel"
)

type MessagesInMemory struct {
	mu       sync.RWMutex
	messages map[id.MessageID]models.Message
}

func NewMessagesInMemory() *MessagesInMemory {
	return &MessagesInMemory{messages: make(map[id.MessageID]models.Message)}
}

func (s *MessagesInMemory) Create(_ context.Context, m *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.messages[m.ID]; ok {
		return sentinel.ErrConflict
	}
	s.messages[m.ID] = *m
	return nil
}

// List returns messages newest first.
func (s *MessagesInMemory) List(_ context.Context) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Message, 0, len(s.messages))
	for _, m := range s.messages {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b models.Message) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (s *MessagesInMemory) Delete(_ context.Context, messageID id.MessageID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.messages[messageID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.messages, messageID)
	return nil
}

type ContactsInMemory struct {
	mu       sync.RWMutex
	contacts []models.Contact
}

func NewContactsInMemory() *ContactsInMemory {
	return &ContactsInMemory{}
}

func (s *ContactsInMemory) Create(_ context.Context, c *models.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts = append(s.contacts, *c)
	return nil
}

// List returns submissions newest first.
func (s *ContactsInMemory) List(_ context.Context) ([]models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := slices.Clone(s.contacts)
	slices.SortStableFunc(out, func(a, b models.Contact) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}
