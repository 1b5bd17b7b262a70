// Package accounts deletes a user's identity and profile on behalf of an
// administrator.
package accounts

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"storefront/internal/platform/metrics"
	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	audit "storefront/pkg/platform/audit"
	"storefront/pkg/requestcontext"
)

// Identities removes the sign-in record and every session of a user.
type Identities interface {
	DeleteIdentity(ctx context.Context, userID id.UserID) error
}

// Profiles reads the caller's stored role and removes the target's profile.
type Profiles interface {
	IsAdmin(ctx context.Context, userID id.UserID) (bool, error)
	Delete(ctx context.Context, userID id.UserID) error
}

type Service struct {
	identities Identities
	profiles   Profiles
	logger     *slog.Logger
	auditor    audit.Emitter
	metrics    *metrics.Metrics
	tracer     trace.Tracer
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

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

func New(identities Identities, profiles Profiles, opts ...Option) *Service {
	s := &Service{
		identities: identities,
		profiles:   profiles,
		logger:     slog.Default(),
		tracer:     otel.Tracer("storefront/accounts"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DeleteUserAccount removes the target's identity and then its profile.
//
// The checks run in a fixed order and each one stops the call:
//  1. the caller must be authenticated
//  2. rawTarget must be a well-formed user ID
//  3. the caller may not target themselves, whatever their role; nothing
//     has been read at this point
//  4. the caller's stored role must be admin
//
// A missing identity is tolerated. Any other identity failure returns
// CodeInternal and leaves the profile in place.
func (s *Service) DeleteUserAccount(ctx context.Context, caller id.UserID, rawTarget string) (id.UserID, error) {
	ctx, span := s.tracer.Start(ctx, "accounts.DeleteUserAccount")
	defer span.End()

	if caller.IsNil() {
		return id.UserID{}, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	target, err := id.ParseUserID(rawTarget)
	if err != nil {
		return id.UserID{}, dErrors.New(dErrors.CodeInvalidInput, "uid must be a valid user ID")
	}
	span.SetAttributes(
		attribute.String("account.caller", caller.String()),
		attribute.String("account.target", target.String()),
	)
	if caller == target {
		return id.UserID{}, dErrors.New(dErrors.CodePreconditionFailed, "cannot delete your own account")
	}

	admin, err := s.profiles.IsAdmin(ctx, caller)
	if err != nil {
		return id.UserID{}, s.fail(ctx, span, err, "failed to read caller role")
	}
	if !admin {
		s.logger.WarnContext(ctx, "account deletion denied",
			"user_id", caller.String(),
			"target", target.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
		return id.UserID{}, dErrors.New(dErrors.CodeForbidden, "admin role required")
	}

	if err := s.identities.DeleteIdentity(ctx, target); err != nil && !dErrors.HasCode(err, dErrors.CodeNotFound) {
		return id.UserID{}, s.fail(ctx, span, err, "failed to delete identity")
	}
	if err := s.profiles.Delete(ctx, target); err != nil {
		return id.UserID{}, s.fail(ctx, span, err, "failed to delete profile")
	}

	if s.metrics != nil {
		s.metrics.IncrementUsersDeleted()
	}
	s.logger.InfoContext(ctx, "user account deleted",
		"user_id", caller.String(),
		"target", target.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.auditor != nil {
		if err := s.auditor.Emit(ctx, audit.Event{
			Action:    string(audit.EventUserDeleted),
			UserID:    target,
			ActorID:   caller.String(),
			Subject:   target.String(),
			RequestID: requestcontext.RequestID(ctx),
		}); err != nil {
			s.logger.WarnContext(ctx, "failed to emit audit event",
				"action", string(audit.EventUserDeleted),
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
	}
	return target, nil
}

func (s *Service) fail(ctx context.Context, span trace.Span, err error, msg string) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	s.logger.ErrorContext(ctx, msg,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
