package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"storefront/internal/cart"
	catalogModels "storefront/internal/catalog/models"
	catalogService "storefront/internal/catalog/service"
	catalogStore "storefront/internal/catalog/store"
	"storefront/internal/pricing"
	id "storefront/pkg/domain"
	"storefront/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	products  *catalogStore.InMemoryStore
	carts     *cart.Registry
	router    chi.Router
	userID    id.UserID
	sessionID id.SessionID
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.products = catalogStore.NewInMemory()
	s.carts = cart.NewRegistry()
	h := New(s.carts, catalogService.New(s.products), pricing.New(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.router = chi.NewRouter()
	h.Register(s.router)
	s.userID = id.UserID(uuid.New())
	s.sessionID = id.SessionID(uuid.New())
}

func (s *HandlerSuite) seed(name string, price id.Amount) catalogModels.Product {
	p := catalogModels.Product{ID: id.ProductID(uuid.New()), Name: name, Category: "Skincare", Price: price, Stock: 10}
	s.Require().NoError(s.products.Create(context.Background(), &p))
	return p
}

func (s *HandlerSuite) do(method, path string, body any) CartResponse {
	req := testutil.WithIDs(testutil.NewJSONRequest(s.T(), method, path, body), s.userID, s.sessionID)
	rr := testutil.Do(s.router, req)
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	return testutil.Decode[CartResponse](s.T(), rr)
}

func (s *HandlerSuite) TestAddAdjustRemove() {
	toner := s.seed("Rose Toner", 700)
	balm := s.seed("Sleep Balm", 300)

	view := s.do(http.MethodPost, "/cart/items", map[string]any{"productId": toner.ID.String()})
	s.Equal(1, view.Count)
	s.True(view.Open)

	view = s.do(http.MethodPost, "/cart/items", map[string]any{"productId": toner.ID.String()})
	s.Require().Len(view.Lines, 1)
	s.Equal(2, view.Lines[0].Quantity)
	s.Equal(id.Amount(1400), view.Lines[0].LineTotal)

	view = s.do(http.MethodPost, "/cart/items", map[string]any{"productId": balm.ID.String()})
	s.Equal(id.Amount(1700), view.Subtotal)
	s.Equal(pricing.Quote{Subtotal: 1700, Shipping: 80, Tax: 306, Total: 2086}, view.Quote)

	view = s.do(http.MethodPatch, "/cart/items/"+balm.ID.String(), map[string]any{"delta": -5})
	s.Equal(1, view.Lines[1].Quantity, "quantity floors at one")

	view = s.do(http.MethodDelete, "/cart/items/"+toner.ID.String(), nil)
	s.Require().Len(view.Lines, 1)
	s.Equal(balm.ID, view.Lines[0].ProductID)

	view = s.do(http.MethodPost, "/cart/close", nil)
	s.False(view.Open)
	s.Len(view.Lines, 1)
}

func (s *HandlerSuite) TestCartsAreSessionScoped() {
	p := s.seed("Rose Toner", 700)
	s.do(http.MethodPost, "/cart/items", map[string]any{"productId": p.ID.String()})

	other := testutil.WithIDs(testutil.NewJSONRequest(s.T(), http.MethodGet, "/cart", nil), s.userID, id.SessionID(uuid.New()))
	rr := testutil.Do(s.router, other)
	s.Require().Equal(http.StatusOK, rr.Code)
	s.Empty(testutil.Decode[CartResponse](s.T(), rr).Lines)
}

func (s *HandlerSuite) TestErrors() {
	s.Run("unknown product", func() {
		req := testutil.WithIDs(testutil.NewJSONRequest(s.T(), http.MethodPost, "/cart/items",
			map[string]any{"productId": uuid.NewString()}), s.userID, s.sessionID)
		testutil.AssertError(s.T(), testutil.Do(s.router, req), http.StatusNotFound, "not_found")
	})

	s.Run("malformed product id", func() {
		req := testutil.WithIDs(testutil.NewJSONRequest(s.T(), http.MethodPost, "/cart/items",
			map[string]any{"productId": "abc"}), s.userID, s.sessionID)
		testutil.AssertError(s.T(), testutil.Do(s.router, req), http.StatusBadRequest, "invalid_input")
	})

	s.Run("adjusting a missing line", func() {
		req := testutil.WithIDs(testutil.NewJSONRequest(s.T(), http.MethodPatch, "/cart/items/"+uuid.NewString(),
			map[string]any{"delta": 1}), s.userID, s.sessionID)
		testutil.AssertError(s.T(), testutil.Do(s.router, req), http.StatusNotFound, "not_found")
	})
}
