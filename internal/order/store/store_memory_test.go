package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"storefront/internal/order/models"
	id "storefront/pkg/domain"
	"storefront/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func newOrder(userID id.UserID, status models.Status, total id.Amount, created time.Time) *models.Order {
	return &models.Order{
		ID:     id.OrderID(uuid.New()),
		UserID: userID,
		Items: []models.LineItem{
			{ProductID: id.ProductID(uuid.New()), Name: "Serum", Price: total, Quantity: 1},
		},
		Subtotal:  total,
		Total:     total,
		Status:    status,
		CreatedAt: created,
	}
}

func (s *InMemoryStoreSuite) TestCreateAndFind() {
	o := newOrder(id.UserID(uuid.New()), models.StatusPending, 500, time.Now())
	s.Require().NoError(s.store.Create(s.ctx, o))
	s.ErrorIs(s.store.Create(s.ctx, o), sentinel.ErrConflict)

	found, err := s.store.FindByID(s.ctx, o.ID)
	s.Require().NoError(err)
	s.Equal(o, found)

	found.Items[0].Name = "changed"
	again, err := s.store.FindByID(s.ctx, o.ID)
	s.Require().NoError(err)
	s.Equal("Serum", again.Items[0].Name, "returned orders are copies")

	_, err = s.store.FindByID(s.ctx, id.OrderID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestListing() {
	asha, ravi := id.UserID(uuid.New()), id.UserID(uuid.New())
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	oldest := newOrder(asha, models.StatusDelivered, 100, base)
	middle := newOrder(ravi, models.StatusPending, 200, base.Add(time.Hour))
	newest := newOrder(asha, models.StatusShipped, 300, base.Add(2*time.Hour))
	for _, o := range []*models.Order{middle, oldest, newest} {
		s.Require().NoError(s.store.Create(s.ctx, o))
	}

	mine, err := s.store.ListByUser(s.ctx, asha)
	s.Require().NoError(err)
	s.Require().Len(mine, 2)
	s.Equal(newest.ID, mine[0].ID)
	s.Equal(oldest.ID, mine[1].ID)

	all, err := s.store.List(s.ctx, nil)
	s.Require().NoError(err)
	s.Len(all, 3)
	s.Equal(newest.ID, all[0].ID)

	filtered, err := s.store.List(s.ctx, []models.Status{models.StatusPending, models.StatusDelivered})
	s.Require().NoError(err)
	s.Require().Len(filtered, 2)
	s.Equal(middle.ID, filtered[0].ID)

	n, revenue, err := s.store.Totals(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, n)
	s.Equal(id.Amount(600), revenue)
}

func (s *InMemoryStoreSuite) TestExecute() {
	o := newOrder(id.UserID(uuid.New()), models.StatusPending, 500, time.Now())
	s.Require().NoError(s.store.Create(s.ctx, o))

	updated, err := s.store.Execute(s.ctx, o.ID,
		func(*models.Order) error { return nil },
		func(o *models.Order) { o.Status = models.StatusProcessing })
	s.Require().NoError(err)
	s.Equal(models.StatusProcessing, updated.Status)

	rejected := errors.New("rejected")
	_, err = s.store.Execute(s.ctx, o.ID,
		func(*models.Order) error { return rejected },
		func(o *models.Order) { o.Status = models.StatusShipped })
	s.ErrorIs(err, rejected)

	found, err := s.store.FindByID(s.ctx, o.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusProcessing, found.Status)

	_, err = s.store.Execute(s.ctx, id.OrderID(uuid.New()),
		func(*models.Order) error { return nil },
		func(*models.Order) {})
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestDelete() {
	o := newOrder(id.UserID(uuid.New()), models.StatusPending, 500, time.Now())
	s.Require().NoError(s.store.Create(s.ctx, o))
	s.Require().NoError(s.store.Delete(s.ctx, o.ID))
	s.ErrorIs(s.store.Delete(s.ctx, o.ID), sentinel.ErrNotFound)

	n, _, err := s.store.Totals(s.ctx)
	s.Require().NoError(err)
	s.Zero(n)
}
