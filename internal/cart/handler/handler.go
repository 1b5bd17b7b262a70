package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/cart"
	catalogModels "storefront/internal/catalog/models"
	"storefront/internal/pricing"
	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/platform/httputil"
	"storefront/pkg/requestcontext"
)

// Catalog resolves the product snapshot copied into a new cart line.
type Catalog interface {
	Get(ctx context.Context, productID id.ProductID) (*catalogModels.Product, error)
}

type Pricer interface {
	Quote(subtotal id.Amount) pricing.Quote
}

type Handler struct {
	carts   *cart.Registry
	catalog Catalog
	pricer  Pricer
	logger  *slog.Logger
}

func New(carts *cart.Registry, catalog Catalog, pricer Pricer, logger *slog.Logger) *Handler {
	return &Handler{carts: carts, catalog: catalog, pricer: pricer, logger: logger}
}

// Register mounts the cart routes; r must already require auth so the
// session ID is on the context.
func (h *Handler) Register(r chi.Router) {
	r.Get("/cart", h.handleGet)
	r.Post("/cart/items", h.handleAdd)
	r.Patch("/cart/items/{productID}", h.handleAdjust)
	r.Delete("/cart/items/{productID}", h.handleRemove)
	r.Post("/cart/close", h.handleClose)
}

type LineResponse struct {
	cart.Line
	LineTotal id.Amount `json:"line_total"`
}

type CartResponse struct {
	Lines    []LineResponse `json:"items"`
	Count    int            `json:"count"`
	Subtotal id.Amount      `json:"subtotal"`
	Quote    pricing.Quote  `json:"quote"`
	Open     bool           `json:"open"`
}

func (h *Handler) ledger(ctx context.Context) *cart.Ledger {
	return h.carts.For(requestcontext.SessionID(ctx))
}

func (h *Handler) view(l *cart.Ledger) CartResponse {
	lines := l.Lines()
	resp := CartResponse{
		Lines: make([]LineResponse, 0, len(lines)),
		Count: l.Count(),
		Open:  l.IsOpen(),
	}
	for _, line := range lines {
		resp.Lines = append(resp.Lines, LineResponse{Line: line, LineTotal: line.LineTotal()})
	}
	resp.Subtotal = l.Subtotal()
	resp.Quote = h.pricer.Quote(resp.Subtotal)
	return resp
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.view(h.ledger(r.Context())))
}

type addRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := httputil.DecodeJSON[addRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	productID, err := id.ParseProductID(req.ProductID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.catalog.Get(ctx, productID)
	if err != nil {
		httputil.LogAndWriteError(ctx, h.logger, w, "failed to load product for cart", err)
		return
	}

	l := h.ledger(ctx)
	l.Add(cart.Product{
		ID:    p.ID,
		Name:  p.Name,
		Image: p.DisplayImage(),
		Price: p.Price,
	}, req.Quantity)
	httputil.WriteJSON(w, http.StatusOK, h.view(l))
}

type adjustRequest struct {
	Delta int `json:"delta"`
}

func (h *Handler) handleAdjust(w http.ResponseWriter, r *http.Request) {
	productID, err := id.ParseProductID(chi.URLParam(r, "productID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.DecodeJSON[adjustRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	l := h.ledger(r.Context())
	if _, ok := l.AdjustQuantity(productID, req.Delta); !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "product is not in the cart"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.view(l))
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	productID, err := id.ParseProductID(chi.URLParam(r, "productID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	l := h.ledger(r.Context())
	l.Remove(productID)
	httputil.WriteJSON(w, http.StatusOK, h.view(l))
}

// handleClose clears the open flag the storefront uses to show the cart
// drawer. Lines are kept.
func (h *Handler) handleClose(w http.ResponseWriter, r *http.Request) {
	l := h.ledger(r.Context())
	l.SetOpen(false)
	httputil.WriteJSON(w, http.StatusOK, h.view(l))
}
