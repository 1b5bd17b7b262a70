// Package httpapi assembles the storefront route tree. Feature packages own
// their handlers; this package only decides which middleware guards which
// group.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront/pkg/platform/httputil"
	adminmw "storefront/pkg/platform/middleware/admin"
	authmw "storefront/pkg/platform/middleware/auth"
	"storefront/pkg/platform/middleware/metadata"
	"storefront/pkg/platform/middleware/request"
	"storefront/pkg/platform/middleware/requesttime"
)

// Registrar mounts public or authenticated routes.
type Registrar interface {
	Register(r chi.Router)
}

// RegistrarFunc adapts a mount function such as a handler's
// RegisterAuthenticated method.
type RegistrarFunc func(r chi.Router)

func (f RegistrarFunc) Register(r chi.Router) { f(r) }

// AdminRegistrar mounts routes that require the admin role.
type AdminRegistrar interface {
	RegisterAdmin(r chi.Router)
}

// HealthChecker is an optional backing service probed by /healthz.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type HealthFunc func(ctx context.Context) error

func (f HealthFunc) Health(ctx context.Context) error { return f(ctx) }

type Deps struct {
	Logger   *slog.Logger
	Latency  request.LatencyObserver
	Tokens   authmw.JWTValidator
	Sessions authmw.SessionChecker
	Roles    adminmw.RoleChecker
	Health   map[string]HealthChecker
	// Throttle runs after client metadata is resolved; nil disables it.
	Throttle func(http.Handler) http.Handler
}

// Routes groups handlers by the guard they run behind.
type Routes struct {
	Public        []Registrar
	Authenticated []Registrar
	// Callables see the caller when a token is sent but also receive
	// anonymous requests so they can answer them in their own error format.
	Callables []Registrar
	Admin     []AdminRegistrar
}

func NewRouter(deps Deps, routes Routes) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(deps.Logger))
	r.Use(request.Logger(deps.Logger, deps.Latency))
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	if deps.Throttle != nil {
		r.Use(deps.Throttle)
	}

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", healthHandler(deps.Health))

	for _, reg := range routes.Public {
		reg.Register(r)
	}

	r.Group(func(r chi.Router) {
		r.Use(authmw.OptionalAuth(deps.Tokens, deps.Sessions, deps.Logger))
		for _, reg := range routes.Callables {
			reg.Register(r)
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(deps.Tokens, deps.Sessions, deps.Logger))
		for _, reg := range routes.Authenticated {
			reg.Register(r)
		}

		r.Group(func(r chi.Router) {
			r.Use(adminmw.RequireAdmin(deps.Roles, deps.Logger))
			for _, reg := range routes.Admin {
				reg.RegisterAdmin(r)
			}
		})
	})

	return r
}

type healthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services,omitempty"`
}

func healthHandler(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(checks) > 0 {
			resp.Services = make(map[string]string, len(checks))
		}
		for name, c := range checks {
			if err := c.Health(ctx); err != nil {
				resp.Services[name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Services[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
