package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/content/models"
	"storefront/internal/content/service"
	"storefront/internal/content/store"
	id "storefront/pkg/domain"
	"storefront/pkg/testutil"
)

func newRouter(t *testing.T) (chi.Router, *store.MessagesInMemory) {
	t.Helper()
	messages := store.NewMessagesInMemory()
	svc := service.New(store.NewHeroInMemory(), messages, store.NewContactsInMemory())
	h := New(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.Register(r)
	h.RegisterAdmin(r)
	return r, messages
}

func TestHeroRoutes(t *testing.T) {
	r, _ := newRouter(t)

	rr := testutil.Do(r, testutil.NewJSONRequest(t, http.MethodGet, "/hero", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, models.Hero{}, testutil.Decode[models.Hero](t, rr))

	rr = testutil.Do(r, testutil.NewJSONRequest(t, http.MethodPut, "/admin/hero", map[string]string{
		"bg_image": "/img/summer.jpg", "title": "Summer glow", "button_label": "Shop now", "button_href": "/products",
	}))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = testutil.Do(r, testutil.NewJSONRequest(t, http.MethodGet, "/hero", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	got := testutil.Decode[models.Hero](t, rr)
	assert.Equal(t, "/img/summer.jpg", got.BackgroundImage)
	assert.Equal(t, "Shop now", got.ButtonLabel)

	rr = testutil.Do(r, testutil.NewRawRequest(http.MethodPut, "/admin/hero", "{"))
	testutil.AssertError(t, rr, http.StatusBadRequest, "bad_request")
}

func TestContactRoutes(t *testing.T) {
	r, _ := newRouter(t)

	rr := testutil.Do(r, testutil.NewJSONRequest(t, http.MethodPost, "/contacts", map[string]string{
		"first_name": "Asha", "email": "asha@example.com", "message": "Do you ship to Pune?",
	}))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = testutil.Do(r, testutil.NewJSONRequest(t, http.MethodPost, "/contacts", map[string]string{"email": "nope"}))
	testutil.AssertError(t, rr, http.StatusBadRequest, "validation_error")

	rr = testutil.Do(r, testutil.NewJSONRequest(t, http.MethodGet, "/admin/contacts", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, testutil.Decode[[]models.Contact](t, rr), 1)
}

func TestMessageRoutes(t *testing.T) {
	r, messages := newRouter(t)
	m := &models.Message{ID: id.MessageID(uuid.New()), Email: "a@example.com", Message: "hi", CreatedAt: time.Now()}
	require.NoError(t, messages.Create(context.Background(), m))

	rr := testutil.Do(r, testutil.NewJSONRequest(t, http.MethodGet, "/admin/messages", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, testutil.Decode[[]models.Message](t, rr), 1)

	rr = testutil.Do(r, testutil.NewJSONRequest(t, http.MethodDelete, "/admin/messages/"+m.ID.String(), nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = testutil.Do(r, testutil.NewJSONRequest(t, http.MethodDelete, "/admin/messages/"+m.ID.String(), nil))
	testutil.AssertError(t, rr, http.StatusNotFound, "not_found")
}
