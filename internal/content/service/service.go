package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"storefront/internal/content/models"
	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	audit "storefront/pkg/platform/audit"
	"storefront/pkg/platform/sentinel"
	"storefront/pkg/requestcontext"
)

type HeroStore interface {
	Get(ctx context.Context) (*models.Hero, error)
	Put(ctx context.Context, h *models.Hero) error
}

type MessageStore interface {
	Create(ctx context.Context, m *models.Message) error
	List(ctx context.Context) ([]models.Message, error)
	Delete(ctx context.Context, messageID id.MessageID) error
}

type ContactStore interface {
	Create(ctx context.Context, c *models.Contact) error
	List(ctx context.Context) ([]models.Contact, error)
}

// Service manages the hero banner, the admin inbox and contact-form
// submissions.
type Service struct {
	hero     HeroStore
	messages MessageStore
	contacts ContactStore
	logger   *slog.Logger
	auditor  audit.Emitter
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(e audit.Emitter) Option {
	return func(s *Service) { s.auditor = e }
}

func New(hero HeroStore, messages MessageStore, contacts ContactStore, opts ...Option) *Service {
	s := &Service{
		hero:     hero,
		messages: messages,
		contacts: contacts,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hero returns the current banner, or an empty one if none was ever saved.
func (s *Service) Hero(ctx context.Context) (models.Hero, error) {
	h, err := s.hero.Get(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Hero{}, nil
		}
		return models.Hero{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load hero")
	}
	return *h, nil
}

func (s *Service) PutHero(ctx context.Context, h models.Hero) (models.Hero, error) {
	h.Normalize()
	h.UpdatedAt = requestcontext.Now(ctx)
	if err := s.hero.Put(ctx, &h); err != nil {
		return models.Hero{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save hero")
	}
	s.logAudit(ctx, audit.EventHeroUpdated, models.HeroKey)
	return h, nil
}

func (s *Service) ListMessages(ctx context.Context) ([]models.Message, error) {
	list, err := s.messages.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list messages")
	}
	return list, nil
}

func (s *Service) DeleteMessage(ctx context.Context, messageID id.MessageID) error {
	if err := s.messages.Delete(ctx, messageID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "message not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete message")
	}
	s.logAudit(ctx, audit.EventMessageDeleted, messageID.String())
	return nil
}

func (s *Service) SubmitContact(ctx context.Context, form models.ContactForm) (*models.Contact, error) {
	form.Normalize()
	if err := form.Validate(); err != nil {
		return nil, err
	}
	c := &models.Contact{
		ID:        id.ContactID(uuid.New()),
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
		Message:   form.Message,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.contacts.Create(ctx, c); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save contact")
	}
	s.logAudit(ctx, audit.EventContactSubmitted, c.ID.String())
	return c, nil
}

func (s *Service) ListContacts(ctx context.Context) ([]models.Contact, error) {
	list, err := s.contacts.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list contacts")
	}
	return list, nil
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, subject string) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, audit.Event{
		Action:    string(event),
		UserID:    requestcontext.UserID(ctx),
		Subject:   subject,
		RequestID: requestcontext.RequestID(ctx),
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", string(event),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}
