package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "storefront/pkg/domain"
	authmw "storefront/pkg/platform/middleware/auth"
	"storefront/pkg/requestcontext"
	"storefront/pkg/testutil"
)

var (
	customerID = uuid.NewString()
	adminID    = uuid.NewString()
)

type stubTokens struct{}

func (stubTokens) ValidateToken(token string) (*authmw.JWTClaims, error) {
	switch token {
	case "customer":
		return &authmw.JWTClaims{UserID: customerID, SessionID: uuid.NewString()}, nil
	case "admin":
		return &authmw.JWTClaims{UserID: adminID, SessionID: uuid.NewString()}, nil
	}
	return nil, errors.New("bad token")
}

type stubSessions struct{}

func (stubSessions) IsSessionActive(context.Context, id.SessionID) (bool, error) { return true, nil }

type stubRoles struct{}

func (stubRoles) IsAdmin(_ context.Context, userID id.UserID) (bool, error) {
	return userID.String() == adminID, nil
}

type routes struct{}

func (routes) Register(r chi.Router) {
	r.Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, requestcontext.UserID(r.Context()).String())
	})
}

func (routes) RegisterAdmin(r chi.Router) {
	r.Get("/admin/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func newTestRouter(health map[string]HealthChecker) http.Handler {
	return NewRouter(Deps{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tokens:   stubTokens{},
		Sessions: stubSessions{},
		Roles:    stubRoles{},
		Health:   health,
	}, Routes{
		Public: []Registrar{RegistrarFunc(func(r chi.Router) {
			r.Get("/open", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
		})},
		Authenticated: []Registrar{routes{}},
		Admin:         []AdminRegistrar{routes{}},
	})
}

func withToken(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestRouterGuards(t *testing.T) {
	h := newTestRouter(nil)

	rr := testutil.Do(h, testutil.NewJSONRequest(t, http.MethodGet, "/open", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	rr = testutil.Do(h, testutil.NewJSONRequest(t, http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = testutil.Do(h, withToken(testutil.NewJSONRequest(t, http.MethodGet, "/whoami", nil), "customer"))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, customerID, rr.Body.String())

	rr = testutil.Do(h, withToken(testutil.NewJSONRequest(t, http.MethodGet, "/admin/ping", nil), "customer"))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = testutil.Do(h, withToken(testutil.NewJSONRequest(t, http.MethodGet, "/admin/ping", nil), "admin"))
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestHealth(t *testing.T) {
	t.Run("no backing services", func(t *testing.T) {
		rr := testutil.Do(newTestRouter(nil), testutil.NewJSONRequest(t, http.MethodGet, "/healthz", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "ok", testutil.Decode[healthResponse](t, rr).Status)
	})

	t.Run("one service down", func(t *testing.T) {
		h := newTestRouter(map[string]HealthChecker{
			"postgres": HealthFunc(func(context.Context) error { return nil }),
			"redis":    HealthFunc(func(context.Context) error { return errors.New("dial tcp: refused") }),
		})
		rr := testutil.Do(h, testutil.NewJSONRequest(t, http.MethodGet, "/healthz", nil))
		require.Equal(t, http.StatusServiceUnavailable, rr.Code)
		got := testutil.Decode[healthResponse](t, rr)
		assert.Equal(t, "degraded", got.Status)
		assert.Equal(t, map[string]string{"postgres": "ok", "redis": "unavailable"}, got.Services)
	})
}
