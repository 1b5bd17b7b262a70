package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/identity/device"
	"storefront/internal/identity/federated"
	"storefront/internal/identity/models"
	"storefront/internal/identity/session"
	jwttoken "storefront/internal/jwt_token"
	userModels "storefront/internal/user/models"
	userService "storefront/internal/user/service"
	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/email"
	audit "storefront/pkg/platform/audit"
	"storefront/pkg/platform/sentinel"
	"storefront/pkg/requestcontext"
)

const (
	DefaultTokenTTL   = time.Hour
	DefaultSessionTTL = 7 * 24 * time.Hour
	minPasswordLength = 6
)

type CredentialStore interface {
	Create(ctx context.Context, c *models.Credential) error
	FindByEmail(ctx context.Context, email string) (*models.Credential, error)
	FindBySubject(ctx context.Context, provider models.Provider, subject string) (*models.Credential, error)
	FindByUserID(ctx context.Context, userID id.UserID) (*models.Credential, error)
	Delete(ctx context.Context, userID id.UserID) error
}

type SessionStore interface {
	Create(ctx context.Context, sess *models.Session) error
	FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error)
	Execute(ctx context.Context, sessionID id.SessionID, validate func(*models.Session) error, mutate func(*models.Session)) (*models.Session, error)
	ListByUser(ctx context.Context, userID id.UserID) ([]models.Session, error)
	DeleteByUser(ctx context.Context, userID id.UserID) error
}

// Profiles writes the profile document that shares the identity's user ID.
type Profiles interface {
	CreateProfile(ctx context.Context, in userService.NewProfile) (*userModels.Profile, error)
	MergeFederated(ctx context.Context, in userService.NewProfile) (*userModels.Profile, error)
}

type TokenIssuer interface {
	GenerateAccessToken(userID id.UserID, sessionID id.SessionID, expiresIn time.Duration) (jwttoken.IssuedToken, error)
}

type AssertionVerifier interface {
	Verify(token string) (federated.Assertion, error)
}

// Service is the in-process identity provider: credentials, sessions and
// access tokens.
type Service struct {
	credentials CredentialStore
	sessions    SessionStore
	profiles    Profiles
	tokens      TokenIssuer
	notifier    *session.Notifier
	verifier    AssertionVerifier
	logger      *slog.Logger
	auditor     audit.Emitter
	tokenTTL    time.Duration
	sessionTTL  time.Duration
	bcryptCost  int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(e audit.Emitter) Option {
	return func(s *Service) { s.auditor = e }
}

func WithNotifier(n *session.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithFederatedVerifier(v AssertionVerifier) Option {
	return func(s *Service) { s.verifier = v }
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithBcryptCost is mostly for tests, which use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

func New(credentials CredentialStore, sessions SessionStore, profiles Profiles, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{
		credentials: credentials,
		sessions:    sessions,
		profiles:    profiles,
		tokens:      tokens,
		notifier:    session.NewNotifier(),
		logger:      slog.Default(),
		tokenTTL:    DefaultTokenTTL,
		sessionTTL:  DefaultSessionTTL,
		bcryptCost:  bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Notifier is the session observation channel other modules subscribe to.
func (s *Service) Notifier() *session.Notifier { return s.notifier }

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

func (r *SignUpRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = strings.TrimSpace(r.Phone)
}

func (r *SignUpRequest) Validate() error {
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if !govalidator.IsEmail(r.Email) {
		return dErrors.New(dErrors.CodeValidation, "email must be a valid address")
	}
	if len(r.Password) < minPasswordLength {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 6 characters")
	}
	return nil
}

// SignUp registers a password credential, writes the customer profile and
// signs the new user in.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (*models.Identity, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	cred := &models.Credential{
		UserID:       id.UserID(uuid.New()),
		Email:        req.Email,
		PasswordHash: string(hash),
		Provider:     models.ProviderPassword,
		CreatedAt:    requestcontext.Now(ctx),
	}
	if err := s.credentials.Create(ctx, cred); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create credential")
	}

	name := req.Name
	if name == "" {
		name = email.DisplayName(req.Email)
	}
	if _, err := s.profiles.CreateProfile(ctx, userService.NewProfile{
		UserID:      cred.UserID,
		Email:       req.Email,
		DisplayName: name,
		Phone:       req.Phone,
	}); err != nil {
		if delErr := s.credentials.Delete(ctx, cred.UserID); delErr != nil {
			s.logger.ErrorContext(ctx, "failed to roll back credential after profile error",
				"error", delErr,
				"user_id", cred.UserID.String(),
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		return nil, err
	}

	return s.startSession(ctx, cred.UserID, cred.Email)
}

var errInvalidCredentials = dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")

func (s *Service) SignIn(ctx context.Context, emailAddr, password string) (*models.Identity, error) {
	cred, err := s.credentials.FindByEmail(ctx, strings.TrimSpace(emailAddr))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load credential")
	}
	if cred.PasswordHash == "" {
		return nil, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		s.logger.WarnContext(ctx, "sign-in rejected",
			"user_id", cred.UserID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, errInvalidCredentials
	}
	return s.startSession(ctx, cred.UserID, cred.Email)
}

// SignInFederated accepts a provider assertion. The first sign-in creates the
// credential and profile; an existing account with the same e-mail is reused.
func (s *Service) SignInFederated(ctx context.Context, assertionToken string) (*models.Identity, error) {
	if s.verifier == nil {
		return nil, dErrors.New(dErrors.CodePreconditionFailed, "federated sign-in is not configured")
	}
	a, err := s.verifier.Verify(assertionToken)
	if err != nil {
		return nil, err
	}

	cred, err := s.resolveFederated(ctx, a)
	if err != nil {
		return nil, err
	}
	if _, err := s.profiles.MergeFederated(ctx, userService.NewProfile{
		UserID:      cred.UserID,
		Email:       a.Email,
		DisplayName: a.Name,
	}); err != nil {
		return nil, err
	}
	return s.startSession(ctx, cred.UserID, a.Email)
}

func (s *Service) resolveFederated(ctx context.Context, a federated.Assertion) (*models.Credential, error) {
	cred, err := s.credentials.FindBySubject(ctx, models.ProviderFederated, a.Subject)
	if err == nil {
		return cred, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load credential")
	}

	cred, err = s.credentials.FindByEmail(ctx, a.Email)
	if err == nil {
		return cred, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load credential")
	}

	cred = &models.Credential{
		UserID:    id.UserID(uuid.New()),
		Email:     strings.ToLower(a.Email),
		Provider:  models.ProviderFederated,
		Subject:   a.Subject,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.credentials.Create(ctx, cred); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "account already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create credential")
	}
	return cred, nil
}

func (s *Service) startSession(ctx context.Context, userID id.UserID, emailAddr string) (*models.Identity, error) {
	now := requestcontext.Now(ctx)
	sessionID := id.SessionID(uuid.New())
	ttl := min(s.tokenTTL, s.sessionTTL)

	issued, err := s.tokens.GenerateAccessToken(userID, sessionID, ttl)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue access token")
	}
	sess := &models.Session{
		ID:                 sessionID,
		UserID:             userID,
		Status:             models.SessionStatusActive,
		DeviceDisplayName:  device.ParseUserAgent(requestcontext.UserAgent(ctx)),
		LastAccessTokenJTI: issued.JTI,
		CreatedAt:          now,
		ExpiresAt:          now.Add(s.sessionTTL),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create session")
	}

	s.notifier.Started(sessionID, userID)
	s.logAudit(ctx, audit.EventSessionCreated, userID, map[string]string{
		"session_id": sessionID.String(),
		"device":     sess.DeviceDisplayName,
	})
	return &models.Identity{
		UserID:    userID,
		SessionID: sessionID,
		Email:     emailAddr,
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt,
	}, nil
}

// SignOut ends the caller's session. Signing out twice is not an error.
func (s *Service) SignOut(ctx context.Context, userID id.UserID, sessionID id.SessionID) error {
	if userID.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "user ID required")
	}
	if sessionID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "session ID required")
	}

	now := requestcontext.Now(ctx)
	var alreadyEnded bool
	_, err := s.sessions.Execute(ctx, sessionID,
		func(sess *models.Session) error {
			if sess.UserID != userID {
				return dErrors.New(dErrors.CodeForbidden, "forbidden")
			}
			alreadyEnded = sess.Status == models.SessionStatusEnded
			return nil
		},
		func(sess *models.Session) { sess.End(now) },
	)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeForbidden) {
			return err
		}
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to end session")
	}
	if alreadyEnded {
		return nil
	}

	s.notifier.Ended(sessionID, userID)
	s.logAudit(ctx, audit.EventSessionEnded, userID, map[string]string{"session_id": sessionID.String()})
	return nil
}

func (s *Service) IsSessionActive(ctx context.Context, sessionID id.SessionID) (bool, error) {
	sess, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return sess.IsActive(requestcontext.Now(ctx)), nil
}

// DeleteIdentity revokes every session of the user and removes the
// credential. A user without a credential yields CodeNotFound after the
// sessions are gone.
func (s *Service) DeleteIdentity(ctx context.Context, userID id.UserID) error {
	if userID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "user ID required")
	}

	sessions, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list user sessions")
	}
	if err := s.sessions.DeleteByUser(ctx, userID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete user sessions")
	}
	for _, sess := range sessions {
		s.notifier.Ended(sess.ID, userID)
	}

	if err := s.credentials.Delete(ctx, userID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "identity not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete credential")
	}
	s.logger.InfoContext(ctx, "identity deleted",
		"user_id", userID.String(),
		"sessions_revoked", len(sessions),
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, userID id.UserID, attrs map[string]string) {
	if s.auditor == nil {
		return
	}
	ev := audit.Event{
		Action:    string(event),
		UserID:    userID,
		RequestID: requestcontext.RequestID(ctx),
		Attrs:     attrs,
	}
	if actor := requestcontext.UserID(ctx); !actor.IsNil() && actor != userID {
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
