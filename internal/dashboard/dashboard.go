// Package dashboard aggregates the admin overview figures.
package dashboard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	id "storefront/pkg/domain"
	"storefront/pkg/platform/httputil"
)

type Orders interface {
	Totals(ctx context.Context) (int, id.Amount, error)
}

type Customers interface {
	CountCustomers(ctx context.Context) (int, error)
}

type Inventory interface {
	LowStockCount(ctx context.Context) (int, error)
}

type Stats struct {
	Revenue   id.Amount `json:"revenue"`
	Orders    int       `json:"orders"`
	Customers int       `json:"customers"`
	LowStock  int       `json:"low_stock"`
}

type Service struct {
	orders    Orders
	customers Customers
	inventory Inventory
}

func New(orders Orders, customers Customers, inventory Inventory) *Service {
	return &Service{orders: orders, customers: customers, inventory: inventory}
}

// Stats reads the three sources in parallel. The first failure cancels the
// others and is returned as is.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var out Stats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, revenue, err := s.orders.Totals(gctx)
		out.Orders, out.Revenue = n, revenue
		return err
	})
	g.Go(func() error {
		n, err := s.customers.CountCustomers(gctx)
		out.Customers = n
		return err
	})
	g.Go(func() error {
		n, err := s.inventory.LowStockCount(gctx)
		out.LowStock = n
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	return out, nil
}

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/dashboard", h.handleStats)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := h.service.Stats(ctx)
	if err != nil {
		httputil.LogAndWriteError(ctx, h.logger, w, "failed to load dashboard", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}
