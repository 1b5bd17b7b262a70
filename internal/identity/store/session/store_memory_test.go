package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"storefront/internal/identity/models"
	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/platform/sentinel"
)

type SessionStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestSessionStoreSuite(t *testing.T) {
	suite.Run(t, new(SessionStoreSuite))
}

func (s *SessionStoreSuite) SetupTest() {
	s.store = New()
	s.ctx = context.Background()
}

func newSession(userID id.UserID) *models.Session {
	return &models.Session{
		ID:        id.SessionID(uuid.New()),
		UserID:    userID,
		Status:    models.SessionStatusActive,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func (s *SessionStoreSuite) TestSessionLookup() {
	s.Run("returns stored session when found", func() {
		sess := newSession(id.UserID(uuid.New()))
		s.Require().NoError(s.store.Create(s.ctx, sess))

		found, err := s.store.FindByID(s.ctx, sess.ID)
		s.Require().NoError(err)
		s.Equal(sess, found)
	})

	s.Run("returns ErrNotFound when session does not exist", func() {
		_, err := s.store.FindByID(s.ctx, id.SessionID(uuid.New()))
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *SessionStoreSuite) TestExecute() {
	sess := newSession(id.UserID(uuid.New()))
	s.Require().NoError(s.store.Create(s.ctx, sess))

	s.Run("mutation is persisted", func() {
		now := time.Now()
		out, err := s.store.Execute(s.ctx, sess.ID,
			func(*models.Session) error { return nil },
			func(m *models.Session) { m.End(now) })
		s.Require().NoError(err)
		s.Equal(models.SessionStatusEnded, out.Status)

		found, err := s.store.FindByID(s.ctx, sess.ID)
		s.Require().NoError(err)
		s.Equal(models.SessionStatusEnded, found.Status)
	})

	s.Run("validation error skips mutation", func() {
		rejected := dErrors.New(dErrors.CodeForbidden, "forbidden")
		_, err := s.store.Execute(s.ctx, sess.ID,
			func(*models.Session) error { return rejected },
			func(m *models.Session) { m.DeviceDisplayName = "changed" })
		s.ErrorIs(err, rejected)

		found, err := s.store.FindByID(s.ctx, sess.ID)
		s.Require().NoError(err)
		s.Empty(found.DeviceDisplayName)
	})
}

func (s *SessionStoreSuite) TestDeleteByUser() {
	userID := id.UserID(uuid.New())
	other := newSession(id.UserID(uuid.New()))
	s.Require().NoError(s.store.Create(s.ctx, newSession(userID)))
	s.Require().NoError(s.store.Create(s.ctx, newSession(userID)))
	s.Require().NoError(s.store.Create(s.ctx, other))

	s.Require().NoError(s.store.DeleteByUser(s.ctx, userID))

	list, err := s.store.ListByUser(s.ctx, userID)
	s.Require().NoError(err)
	s.Empty(list)
	s.ErrorIs(s.store.DeleteByUser(s.ctx, userID), sentinel.ErrNotFound)

	_, err = s.store.FindByID(s.ctx, other.ID)
	s.NoError(err, "other users keep their sessions")
}
