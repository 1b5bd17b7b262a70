package credential

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"storefront/internal/identity/models"
	id "storefront/pkg/domain"
	"storefront/pkg/platform/sentinel"
)

type CredentialStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestCredentialStoreSuite(t *testing.T) {
	suite.Run(t, new(CredentialStoreSuite))
}

func (s *CredentialStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func newCredential(email string) *models.Credential {
	return &models.Credential{
		UserID:       id.UserID(uuid.New()),
		Email:        email,
		PasswordHash: "hash",
		Provider:     models.ProviderPassword,
		CreatedAt:    time.Now(),
	}
}

func (s *CredentialStoreSuite) TestCreateAndLookup() {
	c := newCredential("Asha@Example.com")
	s.Require().NoError(s.store.Create(s.ctx, c))

	s.Run("email lookup ignores case", func() {
		found, err := s.store.FindByEmail(s.ctx, "asha@example.com")
		s.Require().NoError(err)
		s.Equal(c.UserID, found.UserID)
	})

	s.Run("duplicate email conflicts", func() {
		err := s.store.Create(s.ctx, newCredential("ASHA@example.com"))
		s.ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("unknown email is not found", func() {
		_, err := s.store.FindByEmail(s.ctx, "nobody@example.com")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *CredentialStoreSuite) TestSubjectLookup() {
	c := newCredential("fed@example.com")
	c.Provider = models.ProviderFederated
	c.Subject = "sub-123"
	c.PasswordHash = ""
	s.Require().NoError(s.store.Create(s.ctx, c))

	found, err := s.store.FindBySubject(s.ctx, models.ProviderFederated, "sub-123")
	s.Require().NoError(err)
	s.Equal(c.UserID, found.UserID)

	_, err = s.store.FindBySubject(s.ctx, models.ProviderPassword, "sub-123")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *CredentialStoreSuite) TestDelete() {
	c := newCredential("gone@example.com")
	s.Require().NoError(s.store.Create(s.ctx, c))

	s.Require().NoError(s.store.Delete(s.ctx, c.UserID))
	_, err := s.store.FindByUserID(s.ctx, c.UserID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.ErrorIs(s.store.Delete(s.ctx, c.UserID), sentinel.ErrNotFound)
	s.NoError(s.store.Create(s.ctx, newCredential("gone@example.com")), "email is free again")
}
