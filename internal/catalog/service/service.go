package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"storefront/internal/catalog/models"
	"storefront/internal/catalog/query"
	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	audit "storefront/pkg/platform/audit"
	"storefront/pkg/platform/sentinel"
	"storefront/pkg/requestcontext"
)

const (
	DefaultStock             = 10
	DefaultLowStockThreshold = 5

	featuredLimit     = 4
	featuredFillLimit = 8
)

type Store interface {
	List(ctx context.Context) ([]models.Product, error)
	FindByID(ctx context.Context, productID id.ProductID) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Execute(ctx context.Context, productID id.ProductID, validate func(*models.Product) error, mutate func(*models.Product)) (*models.Product, error)
	Delete(ctx context.Context, productID id.ProductID) error
	CountLowStock(ctx context.Context, threshold int) (int, error)
}

// Service serves the storefront catalog and the admin product screens.
type Service struct {
	products          Store
	logger            *slog.Logger
	auditor           audit.Emitter
	defaultStock      int
	lowStockThreshold int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(e audit.Emitter) Option {
	return func(s *Service) { s.auditor = e }
}

// WithDefaultStock sets the stock given to products created without one.
func WithDefaultStock(n int) Option {
	return func(s *Service) { s.defaultStock = n }
}

func WithLowStockThreshold(n int) Option {
	return func(s *Service) { s.lowStockThreshold = n }
}

func New(products Store, opts ...Option) *Service {
	s := &Service{
		products:          products,
		logger:            slog.Default(),
		defaultStock:      DefaultStock,
		lowStockThreshold: DefaultLowStockThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List fetches the whole catalog and filters it in process.
func (s *Service) List(ctx context.Context, params query.Params) ([]models.Product, error) {
	all, err := s.products.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list products")
	}
	return query.Apply(all, params), nil
}

func (s *Service) Get(ctx context.Context, productID id.ProductID) (*models.Product, error) {
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, wrapProductErr(err, "failed to load product")
	}
	return p, nil
}

// Featured returns up to four products for the home page: bestsellers first,
// then other products from the head of the catalog when there are too few.
func (s *Service) Featured(ctx context.Context) ([]models.Product, error) {
	all, err := s.products.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list products")
	}
	featured := query.FilterBestsellers(all)
	if len(featured) > featuredLimit {
		featured = featured[:featuredLimit]
	}
	if len(featured) < featuredLimit {
		seen := make(map[id.ProductID]bool, len(featured))
		for _, p := range featured {
			seen[p.ID] = true
		}
		for _, p := range all[:min(len(all), featuredFillLimit)] {
			if !seen[p.ID] {
				featured = append(featured, p)
			}
		}
	}
	return featured[:min(len(featured), featuredLimit)], nil
}

// Categories groups products by category label in first-seen order.
// Products without a category are skipped.
func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	all, err := s.products.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list products")
	}
	index := make(map[string]int)
	var out []models.Category
	for _, p := range all {
		if p.Category == "" {
			continue
		}
		if i, ok := index[p.Category]; ok {
			out[i].Count++
			continue
		}
		index[p.Category] = len(out)
		out = append(out, models.Category{Name: p.Category, Count: 1, Image: models.CategoryImage(p)})
	}
	return out, nil
}

// Create adds a product. Missing stock defaults to the configured value and
// a missing image to the category's stock artwork.
func (s *Service) Create(ctx context.Context, doc models.ProductDocument) (*models.Product, error) {
	doc.ID = ""
	p, err := doc.Normalize()
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	p.ID = id.ProductID(uuid.New())
	p.CreatedAt = now
	p.UpdatedAt = now
	if !doc.HasStock() {
		p.Stock = s.defaultStock
	}
	if strings.TrimSpace(p.ImageURL) == "" {
		p.ImageURL = models.DefaultImageFor(p.Category)
	}

	if err := s.products.Create(ctx, &p); err != nil {
		return nil, wrapProductErr(err, "failed to create product")
	}
	s.logAudit(ctx, audit.EventProductCreated, p.ID)
	return &p, nil
}

// Update overwrites the editable fields. ID and creation time are preserved;
// price and stock are kept when the document omits them.
func (s *Service) Update(ctx context.Context, productID id.ProductID, doc models.ProductDocument) (*models.Product, error) {
	doc.ID = ""
	next, err := doc.Normalize()
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	p, err := s.products.Execute(ctx, productID,
		func(*models.Product) error { return nil },
		func(p *models.Product) {
			p.Name = next.Name
			p.Description = next.Description
			p.Category = next.Category
			if doc.HasPrice() {
				p.Price = next.Price
			}
			p.Bestseller = next.Bestseller
			p.ImageURL = next.ImageURL
			if strings.TrimSpace(p.ImageURL) == "" {
				p.ImageURL = models.DefaultImageFor(p.Category)
			}
			if doc.HasStock() {
				p.Stock = next.Stock
			}
			p.UpdatedAt = now
		})
	if err != nil {
		return nil, wrapProductErr(err, "failed to update product")
	}
	s.logAudit(ctx, audit.EventProductUpdated, productID)
	return p, nil
}

func (s *Service) Delete(ctx context.Context, productID id.ProductID) error {
	if err := s.products.Delete(ctx, productID); err != nil {
		return wrapProductErr(err, "failed to delete product")
	}
	s.logAudit(ctx, audit.EventProductDeleted, productID)
	return nil
}

func (s *Service) SetStock(ctx context.Context, productID id.ProductID, stock int) (*models.Product, error) {
	if stock < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "stock must not be negative")
	}
	now := requestcontext.Now(ctx)
	p, err := s.products.Execute(ctx, productID,
		func(*models.Product) error { return nil },
		func(p *models.Product) {
			p.Stock = stock
			p.UpdatedAt = now
		})
	if err != nil {
		return nil, wrapProductErr(err, "failed to update stock")
	}
	s.logAudit(ctx, audit.EventProductUpdated, productID)
	return p, nil
}

// ToggleBestseller flips the bestseller flag and returns the new state.
func (s *Service) ToggleBestseller(ctx context.Context, productID id.ProductID) (*models.Product, error) {
	now := requestcontext.Now(ctx)
	p, err := s.products.Execute(ctx, productID,
		func(*models.Product) error { return nil },
		func(p *models.Product) {
			p.Bestseller = !p.Bestseller
			p.UpdatedAt = now
		})
	if err != nil {
		return nil, wrapProductErr(err, "failed to update bestseller flag")
	}
	s.logAudit(ctx, audit.EventProductUpdated, productID)
	return p, nil
}

// LowStockCount counts products below the low-stock threshold.
func (s *Service) LowStockCount(ctx context.Context) (int, error) {
	n, err := s.products.CountLowStock(ctx, s.lowStockThreshold)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count low stock products")
	}
	return n, nil
}

func wrapProductErr(err error, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "product not found")
	}
	if errors.Is(err, sentinel.ErrConflict) {
		return dErrors.New(dErrors.CodeConflict, "product already exists")
	}
	if _, ok := dErrors.From(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, productID id.ProductID) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Event{
		Action:    string(event),
		UserID:    requestcontext.UserID(ctx),
		Subject:   productID.String(),
		RequestID: requestcontext.RequestID(ctx),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", string(event),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}
