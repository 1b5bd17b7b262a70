package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,Profiles,Cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"storefront/internal/cart"
	orderMetrics "storefront/internal/order/metrics"
	"storefront/internal/order/models"
	"storefront/internal/order/service/mocks"
	"storefront/internal/order/store"
	userModels "storefront/internal/user/models"
	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	audit "storefront/pkg/platform/audit"
	"storefront/pkg/platform/audit/publisher"
	auditmemory "storefront/pkg/platform/audit/store/memory"
	"storefront/pkg/platform/sentinel"
	"storefront/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	orders   *store.InMemoryStore
	profiles *mocks.MockProfiles
	audit    *auditmemory.InMemoryStore
	metrics  *orderMetrics.Metrics
	service  *Service
	ctx      context.Context
	now      time.Time
	userID   id.UserID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.orders = store.NewInMemory()
	s.profiles = mocks.NewMockProfiles(s.ctrl)
	s.audit = auditmemory.NewInMemoryStore()
	s.metrics = orderMetrics.NewWithRegisterer(prometheus.NewRegistry())
	s.service = New(s.orders, s.profiles,
		WithAuditPublisher(publisher.NewPublisher(s.audit)),
		WithMetrics(s.metrics),
	)
	s.now = time.Date(2026, 6, 2, 10, 30, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.userID = id.UserID(uuid.New())
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func validForm() models.CheckoutForm {
	return models.CheckoutForm{
		Email:    "asha@example.com",
		Phone:    "9876543210",
		FullName: "Asha Rao",
		Address:  "12 MG Road",
		City:     "Bengaluru",
		Pincode:  "560001",
	}
}

func product(name string, price id.Amount) cart.Product {
	return cart.Product{ID: id.ProductID(uuid.New()), Name: name, Price: price, Image: "/img/" + name + ".jpg"}
}

func (s *ServiceSuite) TestSubmit() {
	s.Run("prices and stores a pending order then clears the cart", func() {
		ledger := cart.NewLedger()
		serum := product("serum", 1000)
		ledger.Add(serum, 1)
		ledger.Add(serum, 1)
		ledger.Add(product("mask", 500), 1)

		orderID, err := s.service.Submit(s.ctx, s.userID, ledger, validForm())
		s.Require().NoError(err)
		s.Zero(ledger.Len())

		o, err := s.orders.FindByID(s.ctx, orderID)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, o.Status)
		s.Equal(s.now, o.CreatedAt)
		s.Equal(id.Amount(2500), o.Subtotal)
		s.Equal(id.Amount(0), o.Shipping)
		s.Equal(id.Amount(450), o.Tax)
		s.Equal(id.Amount(2950), o.Total)
		s.Equal(models.DefaultPaymentMethod, o.PaymentMethod)
		s.Equal("Asha Rao", o.CustomerName)
		s.Equal(models.ShippingAddress{Address: "12 MG Road", City: "Bengaluru", Pincode: "560001"}, o.ShippingAddress)
		s.Require().Len(o.Items, 2)
		s.Equal(serum.ID, o.Items[0].ProductID)
		s.Equal(2, o.Items[0].Quantity)

		s.Equal(1.0, testutil.ToFloat64(s.metrics.OrdersPlaced))
		s.Equal(2950.0, testutil.ToFloat64(s.metrics.Revenue))

		events, err := s.audit.ListByAction(s.ctx, audit.EventOrderPlaced)
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(orderID.String(), events[0].Subject)
		s.Equal("2950", events[0].Attrs["total"])
	})

	s.Run("small order pays flat shipping", func() {
		ledger := cart.NewLedger()
		ledger.Add(product("lip balm", 200), 1)

		orderID, err := s.service.Submit(s.ctx, s.userID, ledger, validForm())
		s.Require().NoError(err)
		o, err := s.orders.FindByID(s.ctx, orderID)
		s.Require().NoError(err)
		s.Equal(id.Amount(80), o.Shipping)
		s.Equal(id.Amount(36), o.Tax)
		s.Equal(id.Amount(316), o.Total)
	})

	s.Run("stored items do not follow the reused cart", func() {
		ledger := cart.NewLedger()
		toner := product("toner", 700)
		ledger.Add(toner, 1)
		orderID, err := s.service.Submit(s.ctx, s.userID, ledger, validForm())
		s.Require().NoError(err)

		toner.Price = 900
		toner.Name = "toner v2"
		ledger.Add(toner, 3)

		o, err := s.orders.FindByID(s.ctx, orderID)
		s.Require().NoError(err)
		s.Equal(id.Amount(700), o.Items[0].Price)
		s.Equal("toner", o.Items[0].Name)
		s.Equal(1, o.Items[0].Quantity)
	})
}

func (s *ServiceSuite) TestSubmitKeepsItemsAddedDuringTheWrite() {
	orders := mocks.NewMockStore(s.ctrl)
	svc := New(orders, s.profiles)

	ledger := cart.NewLedger()
	toner := product("toner", 700)
	serum := product("serum", 1000)
	ledger.Add(toner, 1)

	orders.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, *models.Order) error {
		ledger.Add(serum, 1)
		ledger.Add(toner, 1)
		return nil
	})

	_, err := svc.Submit(s.ctx, s.userID, ledger, validForm())
	s.Require().NoError(err)

	lines := ledger.Lines()
	s.Require().Len(lines, 2)
	s.Equal(toner.ID, lines[0].ProductID)
	s.Equal(1, lines[0].Quantity, "only the ordered unit is taken out")
	s.Equal(serum.ID, lines[1].ProductID)
	s.Equal(1, lines[1].Quantity)
}

func (s *ServiceSuite) TestSubmitRejections() {
	orders := mocks.NewMockStore(s.ctrl)
	svc := New(orders, s.profiles, WithMetrics(s.metrics))

	s.Run("empty cart writes nothing", func() {
		orders.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
		_, err := svc.Submit(s.ctx, s.userID, cart.NewLedger(), validForm())
		s.ErrorIs(err, dErrors.New(dErrors.CodeBadRequest, "cannot submit empty order"))
		s.Equal(1.0, testutil.ToFloat64(s.metrics.SubmitFailures.WithLabelValues("empty")))
	})

	s.Run("unauthenticated", func() {
		ledger := cart.NewLedger()
		ledger.Add(product("serum", 1000), 1)
		_, err := svc.Submit(s.ctx, id.UserID{}, ledger, validForm())
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.Equal(1, ledger.Len())
	})

	s.Run("invalid form leaves the cart", func() {
		ledger := cart.NewLedger()
		ledger.Add(product("serum", 1000), 1)
		form := validForm()
		form.Pincode = "  "
		_, err := svc.Submit(s.ctx, s.userID, ledger, form)
		s.ErrorIs(err, dErrors.New(dErrors.CodeValidation, "pincode is required"))
		s.Equal(1, ledger.Len())
	})

	s.Run("store failure leaves the cart", func() {
		c := mocks.NewMockCart(s.ctrl)
		c.EXPECT().Lines().Return([]cart.Line{{ProductID: id.ProductID(uuid.New()), Name: "serum", Price: 1000, Quantity: 1}})
		c.EXPECT().RemoveLines(gomock.Any()).Times(0)
		orders.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))

		_, err := svc.Submit(s.ctx, s.userID, c, validForm())
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		s.Equal(1.0, testutil.ToFloat64(s.metrics.SubmitFailures.WithLabelValues("store")))
	})
}

func (s *ServiceSuite) TestPrefill() {
	s.Run("copies profile fields", func() {
		s.profiles.EXPECT().Get(gomock.Any(), s.userID).Return(&userModels.Profile{
			ID:          s.userID,
			Email:       "asha@example.com",
			DisplayName: "Asha Rao",
			Phone:       "9876543210",
			Address:     "12 MG Road",
			City:        "Bengaluru",
			Pincode:     "560001",
		}, nil)
		form, err := s.service.Prefill(s.ctx, s.userID)
		s.Require().NoError(err)
		want := validForm()
		want.PaymentMethod = models.DefaultPaymentMethod
		s.Equal(want, form)
	})

	s.Run("missing profile gives an empty form", func() {
		s.profiles.EXPECT().Get(gomock.Any(), s.userID).Return(nil, dErrors.New(dErrors.CodeNotFound, "user not found"))
		form, err := s.service.Prefill(s.ctx, s.userID)
		s.Require().NoError(err)
		s.Equal(models.CheckoutForm{PaymentMethod: models.DefaultPaymentMethod}, form)
	})

	s.Run("other failures surface", func() {
		s.profiles.EXPECT().Get(gomock.Any(), s.userID).Return(nil, errors.New("boom"))
		_, err := s.service.Prefill(s.ctx, s.userID)
		s.Error(err)
	})
}

func (s *ServiceSuite) submit(price id.Amount) id.OrderID {
	ledger := cart.NewLedger()
	ledger.Add(product("item", price), 1)
	orderID, err := s.service.Submit(s.ctx, s.userID, ledger, validForm())
	s.Require().NoError(err)
	return orderID
}

func (s *ServiceSuite) TestUpdateStatus() {
	orderID := s.submit(1000)

	s.Run("any label can be set directly", func() {
		o, err := s.service.UpdateStatus(s.ctx, orderID, models.StatusDelivered)
		s.Require().NoError(err)
		s.Equal(models.StatusDelivered, o.Status)

		o, err = s.service.UpdateStatus(s.ctx, orderID, models.StatusPending)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, o.Status)

		events, err := s.audit.ListByAction(s.ctx, audit.EventOrderStatusSet)
		s.Require().NoError(err)
		s.Require().Len(events, 2)
		s.Equal("pending", events[0].Attrs["from"])
		s.Equal("delivered", events[0].Attrs["to"])
	})

	s.Run("setting the same label succeeds", func() {
		_, err := s.service.UpdateStatus(s.ctx, orderID, models.StatusPending)
		s.Require().NoError(err)
	})

	s.Run("unknown label is rejected before any write", func() {
		_, err := s.service.UpdateStatus(s.ctx, orderID, models.Status("lost"))
		s.ErrorIs(err, dErrors.New(dErrors.CodeBadRequest, "unknown order status"))
		o, err := s.orders.FindByID(s.ctx, orderID)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, o.Status)
	})

	s.Run("missing order", func() {
		_, err := s.service.UpdateStatus(s.ctx, id.OrderID(uuid.New()), models.StatusShipped)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestListsAndDelete() {
	first := s.submit(100)
	second := s.submit(200)
	_, err := s.service.UpdateStatus(s.ctx, second, models.StatusShipped)
	s.Require().NoError(err)

	mine, err := s.service.ListForUser(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Len(mine, 2)

	shipped, err := s.service.ListAll(s.ctx, []models.Status{models.StatusShipped})
	s.Require().NoError(err)
	s.Require().Len(shipped, 1)
	s.Equal(second, shipped[0].ID)

	n, revenue, err := s.service.Totals(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, n)
	s.Equal(id.Amount(100+80+18+200+80+36), revenue)

	s.Require().NoError(s.service.Delete(s.ctx, first))
	_, err = s.orders.FindByID(s.ctx, first)
	s.ErrorIs(err, sentinel.ErrNotFound)

	err = s.service.Delete(s.ctx, first)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
