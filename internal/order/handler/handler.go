package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"storefront/internal/cart"
	"storefront/internal/order/models"
	"storefront/internal/order/service"
	id "storefront/pkg/domain"
	"storefront/pkg/platform/httputil"
	"storefront/pkg/requestcontext"
)

type Service interface {
	Submit(ctx context.Context, userID id.UserID, c service.Cart, form models.CheckoutForm) (id.OrderID, error)
	Prefill(ctx context.Context, userID id.UserID) (models.CheckoutForm, error)
	ListForUser(ctx context.Context, userID id.UserID) ([]models.Order, error)
	ListAll(ctx context.Context, statuses []models.Status) ([]models.Order, error)
	UpdateStatus(ctx context.Context, orderID id.OrderID, status models.Status) (*models.Order, error)
	Delete(ctx context.Context, orderID id.OrderID) error
}

type Handler struct {
	service Service
	carts   *cart.Registry
	logger  *slog.Logger
}

func New(service Service, carts *cart.Registry, logger *slog.Logger) *Handler {
	return &Handler{service: service, carts: carts, logger: logger}
}

// Register mounts checkout and order history; r must already require auth.
func (h *Handler) Register(r chi.Router) {
	r.Get("/checkout/prefill", h.handlePrefill)
	r.Post("/checkout", h.handleCheckout)
	r.Get("/me/orders", h.handleListMine)
}

func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/orders", h.handleListAll)
	r.Put("/admin/orders/{id}/status", h.handleSetStatus)
	r.Delete("/admin/orders/{id}", h.handleDelete)
}

func (h *Handler) handlePrefill(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	form, err := h.service.Prefill(ctx, requestcontext.UserID(ctx))
	if err != nil {
		httputil.LogAndWriteError(ctx, h.logger, w, "failed to prefill checkout", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, form)
}

type CheckoutResponse struct {
	OrderID id.OrderID `json:"order_id"`
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	form, err := httputil.DecodeJSON[models.CheckoutForm](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	ledger := h.carts.For(requestcontext.SessionID(ctx))
	orderID, err := h.service.Submit(ctx, requestcontext.UserID(ctx), ledger, *form)
	if err != nil {
		httputil.LogAndWriteError(ctx, h.logger, w, "failed to submit order", err)
		return
	}
	h.logger.InfoContext(ctx, "order placed",
		"order_id", orderID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	httputil.WriteJSON(w, http.StatusCreated, CheckoutResponse{OrderID: orderID})
}

func (h *Handler) handleListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.service.ListForUser(ctx, requestcontext.UserID(ctx))
	if err != nil {
		httputil.LogAndWriteError(ctx, h.logger, w, "failed to list orders", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

// handleListAll accepts ?status=pending,shipped or repeated status params.
func (h *Handler) handleListAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var statuses []models.Status
	for _, raw := range r.URL.Query()["status"] {
		for _, part := range strings.Split(raw, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			st, err := models.ParseStatus(part)
			if err != nil {
				httputil.WriteError(w, err)
				return
			}
			statuses = append(statuses, st)
		}
	}
	list, err := h.service.ListAll(ctx, statuses)
	if err != nil {
		httputil.LogAndWriteError(ctx, h.logger, w, "failed to list orders", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID, err := id.ParseOrderID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.DecodeJSON[statusRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	o, err := h.service.UpdateStatus(ctx, orderID, models.Status(req.Status))
	if err != nil {
		httputil.LogAndWriteError(ctx, h.logger, w, "failed to update order status", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID, err := id.ParseOrderID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Delete(ctx, orderID); err != nil {
		httputil.LogAndWriteError(ctx, h.logger, w, "failed to delete order", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
