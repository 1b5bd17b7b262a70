package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"storefront/internal/catalog/models"
	"storefront/internal/catalog/service"
	"storefront/internal/catalog/store"
	id "storefront/pkg/domain"
	"storefront/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	store  *store.InMemoryStore
	router chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.store = store.NewInMemory()
	h := New(service.New(s.store), slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.router = chi.NewRouter()
	h.Register(s.router)
	h.RegisterAdmin(s.router)
}

func (s *HandlerSuite) seed(name, category string, price id.Amount, bestseller bool) models.Product {
	p := models.Product{ID: id.ProductID(uuid.New()), Name: name, Category: category, Price: price, Stock: 8, Bestseller: bestseller}
	s.Require().NoError(s.store.Create(context.Background(), &p))
	return p
}

func (s *HandlerSuite) TestList() {
	s.seed("Rose Toner", "Skincare", 700, true)
	s.seed("Sleep Balm", "Wellness", 300, false)
	s.seed("Clay Mask", "Skincare", 500, false)

	s.Run("search and sort", func() {
		rr := testutil.Do(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/products?search=skin&sort=price_asc", nil))
		s.Equal(http.StatusOK, rr.Code)
		got := testutil.Decode[[]ProductResponse](s.T(), rr)
		s.Require().Len(got, 2)
		s.Equal("Clay Mask", got[0].Name)
		s.Equal(models.GenericImage, got[0].Image)
	})

	s.Run("bestseller filter", func() {
		rr := testutil.Do(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/products?bestseller=true", nil))
		got := testutil.Decode[[]ProductResponse](s.T(), rr)
		s.Require().Len(got, 1)
		s.Equal("Rose Toner", got[0].Name)
	})

	s.Run("bad sort", func() {
		rr := testutil.Do(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/products?sort=newest", nil))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("bad bestseller flag", func() {
		rr := testutil.Do(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/products?bestseller=maybe", nil))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

func (s *HandlerSuite) TestGet() {
	p := s.seed("Rose Toner", "Skincare", 700, true)

	rr := testutil.Do(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/products/"+p.ID.String(), nil))
	s.Equal(http.StatusOK, rr.Code)
	s.Equal(p.ID.String(), testutil.Decode[ProductResponse](s.T(), rr).ID)

	rr = testutil.Do(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/products/"+uuid.NewString(), nil))
	testutil.AssertError(s.T(), rr, http.StatusNotFound, "not_found")

	rr = testutil.Do(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/products/not-a-uuid", nil))
	testutil.AssertError(s.T(), rr, http.StatusBadRequest, "invalid_input")
}

func (s *HandlerSuite) TestFeaturedAndCategories() {
	s.seed("Rose Toner", "Skincare", 700, true)
	s.seed("Sleep Balm", "Wellness", 300, false)

	rr := testutil.Do(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/products/featured", nil))
	s.Equal(http.StatusOK, rr.Code)
	s.Len(testutil.Decode[[]ProductResponse](s.T(), rr), 2)

	rr = testutil.Do(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/categories", nil))
	s.Equal(http.StatusOK, rr.Code)
	s.Len(testutil.Decode[[]models.Category](s.T(), rr), 2)
}

func (s *HandlerSuite) TestAdminLifecycle() {
	rr := testutil.Do(s.router, testutil.NewRawRequest(http.MethodPost, "/admin/products",
		`{"name":"Argan Oil","retailPrice":"₹1,250","category":"Hair Care"}`))
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())
	created := testutil.Decode[ProductResponse](s.T(), rr)
	s.Equal(id.Amount(1250), created.Price)
	s.Equal(service.DefaultStock, created.Stock)

	base := "/admin/products/" + created.ID

	rr = testutil.Do(s.router, testutil.NewJSONRequest(s.T(), http.MethodPut, base+"/stock", map[string]int{"stock": 3}))
	s.Equal(http.StatusOK, rr.Code)
	s.Equal(3, testutil.Decode[ProductResponse](s.T(), rr).Stock)

	rr = testutil.Do(s.router, testutil.NewJSONRequest(s.T(), http.MethodPut, base+"/stock", map[string]string{}))
	testutil.AssertError(s.T(), rr, http.StatusBadRequest, "validation_error")

	rr = testutil.Do(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, base+"/bestseller", nil))
	s.Equal(http.StatusOK, rr.Code)
	s.True(testutil.Decode[ProductResponse](s.T(), rr).Bestseller)

	rr = testutil.Do(s.router, testutil.NewRawRequest(http.MethodPut, base, `{"name":"Argan Oil","price":1400}`))
	s.Equal(http.StatusOK, rr.Code)
	s.Equal(id.Amount(1400), testutil.Decode[ProductResponse](s.T(), rr).Price)

	rr = testutil.Do(s.router, testutil.NewJSONRequest(s.T(), http.MethodDelete, base, nil))
	s.Equal(http.StatusNoContent, rr.Code)

	rr = testutil.Do(s.router, testutil.NewJSONRequest(s.T(), http.MethodDelete, base, nil))
	testutil.AssertError(s.T(), rr, http.StatusNotFound, "not_found")
}

func TestCreateRejectsMalformedBody(t *testing.T) {
	h := New(service.New(store.NewInMemory()), slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.RegisterAdmin(r)

	rr := testutil.Do(r, testutil.NewRawRequest(http.MethodPost, "/admin/products", `{"name":`))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid request body")
}
