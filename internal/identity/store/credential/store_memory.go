package credential

import (
	"context"
	"strings"
	"sync"

	"storefront/internal/identity/models"
	id "storefront/pkg/domain"
	"storefront/pkg/platform/sentinel"
)

// InMemoryStore keeps credentials indexed by user ID with lower-cased
// e-mail and provider subject lookups.
type InMemoryStore struct {
	mu        sync.RWMutex
	byUser    map[id.UserID]*models.Credential
	byEmail   map[string]id.UserID
	bySubject map[string]id.UserID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		byUser:    make(map[id.UserID]*models.Credential),
		byEmail:   make(map[string]id.UserID),
		bySubject: make(map[string]id.UserID),
	}
}

func subjectKey(provider models.Provider, subject string) string {
	return string(provider) + ":" + subject
}

func (s *InMemoryStore) Create(_ context.Context, c *models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(c.Email)
	if _, ok := s.byUser[c.UserID]; ok {
		return sentinel.ErrConflict
	}
	if _, ok := s.byEmail[email]; ok {
		return sentinel.ErrConflict
	}
	if c.Subject != "" {
		if _, ok := s.bySubject[subjectKey(c.Provider, c.Subject)]; ok {
			return sentinel.ErrConflict
		}
		s.bySubject[subjectKey(c.Provider, c.Subject)] = c.UserID
	}
	cp := *c
	s.byUser[c.UserID] = &cp
	s.byEmail[email] = c.UserID
	return nil
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uid, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.byUser[uid]
	return &cp, nil
}

func (s *InMemoryStore) FindBySubject(_ context.Context, provider models.Provider, subject string) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uid, ok := s.bySubject[subjectKey(provider, subject)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.byUser[uid]
	return &cp, nil
}

func (s *InMemoryStore) FindByUserID(_ context.Context, userID id.UserID) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byUser[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *InMemoryStore) Delete(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byUser[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byUser, userID)
	delete(s.byEmail, strings.ToLower(c.Email))
	if c.Subject != "" {
		delete(s.bySubject, subjectKey(c.Provider, c.Subject))
	}
	return nil
}
