package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"storefront/internal/catalog/models"
	"storefront/internal/catalog/query"
	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/platform/httputil"
)

type Service interface {
	List(ctx context.Context, params query.Params) ([]models.Product, error)
	Get(ctx context.Context, productID id.ProductID) (*models.Product, error)
	Featured(ctx context.Context) ([]models.Product, error)
	Categories(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, doc models.ProductDocument) (*models.Product, error)
	Update(ctx context.Context, productID id.ProductID, doc models.ProductDocument) (*models.Product, error)
	Delete(ctx context.Context, productID id.ProductID) error
	SetStock(ctx context.Context, productID id.ProductID, stock int) (*models.Product, error)
	ToggleBestseller(ctx context.Context, productID id.ProductID) (*models.Product, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the public catalog routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/products", h.handleList)
	r.Get("/products/featured", h.handleFeatured)
	r.Get("/products/{id}", h.handleGet)
	r.Get("/categories", h.handleCategories)
}

// RegisterAdmin mounts product management routes; callers wrap r with the
// admin guard.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/admin/products", h.handleCreate)
	r.Put("/admin/products/{id}", h.handleUpdate)
	r.Delete("/admin/products/{id}", h.handleDelete)
	r.Put("/admin/products/{id}/stock", h.handleSetStock)
	r.Post("/admin/products/{id}/bestseller", h.handleToggleBestseller)
}

type ProductResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       id.Amount `json:"price"`
	Image       string    `json:"image"`
	Stock       int       `json:"stock"`
	Bestseller  bool      `json:"bestseller"`
	CreatedAt   time.Time `json:"created_at"`
}

func toResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		Image:       p.DisplayImage(),
		Stock:       p.Stock,
		Bestseller:  p.Bestseller,
		CreatedAt:   p.CreatedAt,
	}
}

func toResponses(products []models.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, toResponse(&products[i]))
	}
	return out
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	sort, err := query.ParseDirection(q.Get("sort"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	params := query.Params{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Sort:     sort,
	}
	if raw := q.Get("bestseller"); raw != "" {
		params.Bestsellers, err = strconv.ParseBool(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "bestseller must be true or false"))
			return
		}
	}

	products, err := h.service.List(ctx, params)
	if err != nil {
		h.fail(ctx, w, "failed to list products", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponses(products))
}

func (h *Handler) handleFeatured(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.Featured(r.Context())
	if err != nil {
		h.fail(r.Context(), w, "failed to load featured products", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponses(products))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}
	p, err := h.service.Get(r.Context(), productID)
	if err != nil {
		h.fail(r.Context(), w, "failed to load product", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(p))
}

func (h *Handler) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		h.fail(r.Context(), w, "failed to list categories", err)
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	httputil.WriteJSON(w, http.StatusOK, categories)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	doc, err := httputil.DecodeJSON[models.ProductDocument](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.service.Create(r.Context(), *doc)
	if err != nil {
		h.fail(r.Context(), w, "failed to create product", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(p))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}
	doc, err := httputil.DecodeJSON[models.ProductDocument](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.service.Update(r.Context(), productID, *doc)
	if err != nil {
		h.fail(r.Context(), w, "failed to update product", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(p))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), productID); err != nil {
		h.fail(r.Context(), w, "failed to delete product", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type stockRequest struct {
	Stock *int `json:"stock"`
}

func (h *Handler) handleSetStock(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}
	req, err := httputil.DecodeJSON[stockRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.Stock == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "stock is required"))
		return
	}
	p, err := h.service.SetStock(r.Context(), productID, *req.Stock)
	if err != nil {
		h.fail(r.Context(), w, "failed to update stock", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(p))
}

func (h *Handler) handleToggleBestseller(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}
	p, err := h.service.ToggleBestseller(r.Context(), productID)
	if err != nil {
		h.fail(r.Context(), w, "failed to update bestseller flag", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(p))
}

func parseProductID(w http.ResponseWriter, r *http.Request) (id.ProductID, bool) {
	productID, err := id.ParseProductID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.ProductID{}, false
	}
	return productID, true
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	httputil.LogAndWriteError(ctx, h.logger, w, msg, err)
}
