package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"storefront/internal/cart"
	orderMetrics "storefront/internal/order/metrics"
	"storefront/internal/order/models"
	"storefront/internal/pricing"
	userModels "storefront/internal/user/models"
	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	audit "storefront/pkg/platform/audit"
	"storefront/pkg/platform/sentinel"
	"storefront/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, orderID id.OrderID) (*models.Order, error)
	ListByUser(ctx context.Context, userID id.UserID) ([]models.Order, error)
	List(ctx context.Context, statuses []models.Status) ([]models.Order, error)
	Execute(ctx context.Context, orderID id.OrderID, validate func(*models.Order) error, mutate func(*models.Order)) (*models.Order, error)
	Delete(ctx context.Context, orderID id.OrderID) error
	Totals(ctx context.Context) (int, id.Amount, error)
}

// Profiles supplies the checkout prefill.
type Profiles interface {
	Get(ctx context.Context, userID id.UserID) (*userModels.Profile, error)
}

// Cart is the part of a session ledger that submission reads and clears.
type Cart interface {
	Lines() []cart.Line
	RemoveLines(ordered []cart.Line)
}

type Service struct {
	orders   Store
	profiles Profiles
	pricer   *pricing.Calculator
	logger   *slog.Logger
	auditor  audit.Emitter
	metrics  *orderMetrics.Metrics
	tracer   trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(e audit.Emitter) Option {
	return func(s *Service) { s.auditor = e }
}

func WithMetrics(m *orderMetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithPricing(c *pricing.Calculator) Option {
	return func(s *Service) { s.pricer = c }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

func New(orders Store, profiles Profiles, opts ...Option) *Service {
	s := &Service{
		orders:   orders,
		profiles: profiles,
		pricer:   pricing.New(),
		logger:   slog.Default(),
		tracer:   otel.Tracer("storefront/order"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit turns the cart into a pending order and returns its ID. Totals are
// priced once here and never recomputed. The cart is cleared only after the
// order is stored, and only of what was ordered; a failed write leaves it
// untouched.
func (s *Service) Submit(ctx context.Context, userID id.UserID, c Cart, form models.CheckoutForm) (id.OrderID, error) {
	ctx, span := s.tracer.Start(ctx, "order.Submit")
	defer span.End()
	start := time.Now()

	if userID.IsNil() {
		return id.OrderID{}, dErrors.New(dErrors.CodeUnauthorized, "user ID required")
	}
	lines := c.Lines()
	if len(lines) == 0 {
		s.metrics.IncrementSubmitFailure("empty")
		return id.OrderID{}, dErrors.New(dErrors.CodeBadRequest, "cannot submit empty order")
	}
	form.Normalize()
	if err := form.Validate(); err != nil {
		s.metrics.IncrementSubmitFailure("validation")
		return id.OrderID{}, err
	}

	items := make([]models.LineItem, 0, len(lines))
	var subtotal id.Amount
	for _, line := range lines {
		items = append(items, models.LineItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     line.Price,
			Quantity:  line.Quantity,
			Image:     line.Image,
		})
		subtotal += line.LineTotal()
	}
	quote := s.pricer.Quote(subtotal)

	order := &models.Order{
		ID:            id.OrderID(uuid.New()),
		UserID:        userID,
		CustomerName:  form.FullName,
		Email:         form.Email,
		Phone:         form.Phone,
		PaymentMethod: form.PaymentMethod,
		ShippingAddress: models.ShippingAddress{
			Address: form.Address,
			City:    form.City,
			Pincode: form.Pincode,
		},
		Items:     items,
		Subtotal:  quote.Subtotal,
		Shipping:  quote.Shipping,
		Tax:       quote.Tax,
		Total:     quote.Total,
		Status:    models.StatusPending,
		CreatedAt: requestcontext.Now(ctx),
	}
	span.SetAttributes(
		attribute.String("order.id", order.ID.String()),
		attribute.Int("order.items", len(items)),
		attribute.Int64("order.total", int64(order.Total)),
	)

	if err := s.orders.Create(ctx, order); err != nil {
		s.metrics.IncrementSubmitFailure("store")
		span.RecordError(err)
		span.SetStatus(codes.Error, "store write failed")
		s.logger.ErrorContext(ctx, "failed to persist order",
			"error", err,
			"user_id", userID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
		return id.OrderID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to place order")
	}

	c.RemoveLines(lines)

	s.metrics.ObservePlaced(order.Total, time.Since(start))
	s.logAudit(ctx, audit.EventOrderPlaced, userID, order.ID, map[string]string{
		"total": strconv.FormatInt(int64(order.Total), 10),
		"items": strconv.Itoa(len(items)),
	})
	return order.ID, nil
}

// Prefill returns a checkout form seeded from the caller's profile. A user
// without a profile gets an empty form with the default payment method.
func (s *Service) Prefill(ctx context.Context, userID id.UserID) (models.CheckoutForm, error) {
	form := models.CheckoutForm{PaymentMethod: models.DefaultPaymentMethod}
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return form, nil
		}
		return form, err
	}
	form.Email = p.Email
	form.Phone = p.Phone
	form.FullName = p.DisplayName
	form.Address = p.Address
	form.City = p.City
	form.Pincode = p.Pincode
	return form, nil
}

func (s *Service) ListForUser(ctx context.Context, userID id.UserID) ([]models.Order, error) {
	list, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list orders")
	}
	return list, nil
}

func (s *Service) ListAll(ctx context.Context, statuses []models.Status) ([]models.Order, error) {
	list, err := s.orders.List(ctx, statuses)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list orders")
	}
	return list, nil
}

// UpdateStatus writes the new lifecycle label. Setting the current label
// again still succeeds.
func (s *Service) UpdateStatus(ctx context.Context, orderID id.OrderID, status models.Status) (*models.Order, error) {
	status, err := models.ParseStatus(string(status))
	if err != nil {
		return nil, err
	}
	var previous models.Status
	o, err := s.orders.Execute(ctx, orderID,
		func(*models.Order) error { return nil },
		func(o *models.Order) {
			previous = o.Status
			o.Status = status
		})
	if err != nil {
		return nil, wrapOrderErr(err, "failed to update order status")
	}
	s.metrics.IncrementStatusChange(string(status))
	s.logAudit(ctx, audit.EventOrderStatusSet, o.UserID, o.ID, map[string]string{
		"from": string(previous),
		"to":   string(status),
	})
	return o, nil
}

func (s *Service) Delete(ctx context.Context, orderID id.OrderID) error {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return wrapOrderErr(err, "failed to load order")
	}
	if err := s.orders.Delete(ctx, orderID); err != nil {
		return wrapOrderErr(err, "failed to delete order")
	}
	s.logAudit(ctx, audit.EventOrderDeleted, o.UserID, o.ID, nil)
	return nil
}

// Totals returns the order count and revenue for the dashboard.
func (s *Service) Totals(ctx context.Context) (int, id.Amount, error) {
	n, revenue, err := s.orders.Totals(ctx)
	if err != nil {
		return 0, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to total orders")
	}
	return n, revenue, nil
}

func wrapOrderErr(err error, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "order not found")
	}
	if _, ok := dErrors.From(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, owner id.UserID, orderID id.OrderID, attrs map[string]string) {
	if s.auditor == nil {
		return
	}
	ev := audit.Event{
		Action:    string(event),
		UserID:    owner,
		Subject:   orderID.String(),
		RequestID: requestcontext.RequestID(ctx),
		Attrs:     attrs,
	}
	if actor := requestcontext.UserID(ctx); !actor.IsNil() && actor != owner {
		ev.ActorID = actor.String()
	}
	if err := s.auditor.Emit(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", string(event),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}
