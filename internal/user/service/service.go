package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"storefront/internal/platform/metrics"
	"storefront/internal/user/models"
	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/email"
	audit "storefront/pkg/platform/audit"
	"storefront/pkg/platform/sentinel"
	"storefront/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, p *models.Profile) error
	FindByID(ctx context.Context, userID id.UserID) (*models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	Execute(ctx context.Context, userID id.UserID, validate func(*models.Profile) error, mutate func(*models.Profile)) (*models.Profile, error)
	Delete(ctx context.Context, userID id.UserID) error
	CountByRole(ctx context.Context, role models.Role) (int, error)
}

// Service manages user profile documents.
type Service struct {
	profiles        Store
	logger          *slog.Logger
	auditor         audit.Emitter
	metrics         *metrics.Metrics
	bootstrapAdmins map[string]bool
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(e audit.Emitter) Option {
	return func(s *Service) { s.auditor = e }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithBootstrapAdmins grants the admin role to profiles created for these
// e-mail addresses, so a fresh deployment has someone who can sign in to
// the back office.
func WithBootstrapAdmins(emails []string) Option {
	return func(s *Service) {
		for _, e := range email.NormalizeAll(emails) {
			s.bootstrapAdmins[e] = true
		}
	}
}

func New(profiles Store, opts ...Option) *Service {
	s := &Service{
		profiles:        profiles,
		logger:          slog.Default(),
		bootstrapAdmins: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewProfile is the data captured at sign-up.
type NewProfile struct {
	UserID      id.UserID
	Email       string
	DisplayName string
	Phone       string
}

// CreateProfile writes the profile document for a new identity with the
// customer role.
func (s *Service) CreateProfile(ctx context.Context, in NewProfile) (*models.Profile, error) {
	now := requestcontext.Now(ctx)
	p := &models.Profile{
		ID:          in.UserID,
		Email:       email.Normalize(in.Email),
		DisplayName: strings.TrimSpace(in.DisplayName),
		Phone:       strings.TrimSpace(in.Phone),
		Role:        s.initialRole(in.Email),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.profiles.Create(ctx, p); err != nil {
		return nil, wrapProfileErr(err, "failed to create profile")
	}
	s.logAudit(ctx, audit.EventUserCreated, p.ID, nil)
	if s.metrics != nil {
		s.metrics.IncrementUsersCreated()
	}
	return p, nil
}

// MergeFederated creates the profile on first federated sign-in. Later
// sign-ins refresh the name and e-mail and keep the stored role.
func (s *Service) MergeFederated(ctx context.Context, in NewProfile) (*models.Profile, error) {
	now := requestcontext.Now(ctx)
	p, err := s.profiles.Execute(ctx, in.UserID,
		func(*models.Profile) error { return nil },
		func(p *models.Profile) {
			if name := strings.TrimSpace(in.DisplayName); name != "" {
				p.DisplayName = name
			}
			if addr := email.Normalize(in.Email); addr != "" {
				p.Email = addr
			}
			p.UpdatedAt = now
		})
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, wrapProfileErr(err, "failed to merge profile")
	}
	p, err = s.CreateProfile(ctx, in)
	if dErrors.HasCode(err, dErrors.CodeConflict) {
		// Lost a race with a concurrent first sign-in.
		return s.Get(ctx, in.UserID)
	}
	return p, err
}

func (s *Service) Get(ctx context.Context, userID id.UserID) (*models.Profile, error) {
	p, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		return nil, wrapProfileErr(err, "failed to load profile")
	}
	return p, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID id.UserID, update models.ProfileUpdate) (*models.Profile, error) {
	now := requestcontext.Now(ctx)
	p, err := s.profiles.Execute(ctx, userID,
		func(*models.Profile) error { return nil },
		func(p *models.Profile) { update.Apply(p, now) })
	if err != nil {
		return nil, wrapProfileErr(err, "failed to update profile")
	}
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]models.Profile, error) {
	list, err := s.profiles.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	return list, nil
}

// SetRole changes another user's role. A nil role toggles between customer
// and admin. Administrators cannot change their own role.
func (s *Service) SetRole(ctx context.Context, actor, target id.UserID, role *models.Role) (*models.Profile, error) {
	if actor == target {
		return nil, dErrors.New(dErrors.CodePreconditionFailed, "cannot change your own role")
	}
	now := requestcontext.Now(ctx)
	var previous models.Role
	p, err := s.profiles.Execute(ctx, target,
		func(*models.Profile) error { return nil },
		func(p *models.Profile) {
			previous = p.Role
			if role != nil {
				p.Role = *role
			} else {
				p.Role = p.Role.Toggled()
			}
			p.UpdatedAt = now
		})
	if err != nil {
		return nil, wrapProfileErr(err, "failed to update role")
	}
	s.logAudit(ctx, audit.EventUserRoleChanged, target, map[string]string{
		"from": string(previous),
		"to":   string(p.Role),
	})
	return p, nil
}

// Delete removes the profile document. A missing document is not an error.
func (s *Service) Delete(ctx context.Context, userID id.UserID) error {
	err := s.profiles.Delete(ctx, userID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete profile")
	}
	return nil
}

// IsAdmin reads the caller's stored role. Users without a profile are not admins.
func (s *Service) IsAdmin(ctx context.Context, userID id.UserID) (bool, error) {
	p, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read role")
	}
	return p.IsAdmin(), nil
}

func (s *Service) CountCustomers(ctx context.Context) (int, error) {
	n, err := s.profiles.CountByRole(ctx, models.RoleCustomer)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count customers")
	}
	return n, nil
}

func (s *Service) initialRole(address string) models.Role {
	if s.bootstrapAdmins[email.Normalize(address)] {
		return models.RoleAdmin
	}
	return models.RoleCustomer
}

func wrapProfileErr(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "profile already exists")
	}
	if _, ok := dErrors.From(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, subject id.UserID, attrs map[string]string) {
	if s.auditor == nil {
		return
	}
	ev := audit.Event{
		Action:    string(event),
		UserID:    subject,
		RequestID: requestcontext.RequestID(ctx),
		Attrs:     attrs,
	}
	if actor := requestcontext.UserID(ctx); !actor.IsNil() && actor != subject {
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
