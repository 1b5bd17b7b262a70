package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"storefront/internal/identity/models"
	"storefront/internal/identity/service"
	id "storefront/pkg/domain"
	"storefront/pkg/platform/httputil"
	"storefront/pkg/requestcontext"
)

type Service interface {
	SignUp(ctx context.Context, req service.SignUpRequest) (*models.Identity, error)
	SignIn(ctx context.Context, email, password string) (*models.Identity, error)
	SignInFederated(ctx context.Context, assertion string) (*models.Identity, error)
	SignOut(ctx context.Context, userID id.UserID, sessionID id.SessionID) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/signup", h.handleSignUp)
	r.Post("/auth/signin", h.handleSignIn)
	r.Post("/auth/federated", h.handleFederated)
}

// RegisterAuthenticated mounts routes that need a signed-in caller.
func (h *Handler) RegisterAuthenticated(r chi.Router) {
	r.Post("/auth/signout", h.handleSignOut)
}

type SessionResponse struct {
	UserID      string    `json:"uid"`
	SessionID   string    `json:"session_id"`
	Email       string    `json:"email"`
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func toResponse(ident *models.Identity) SessionResponse {
	return SessionResponse{
		UserID:      ident.UserID.String(),
		SessionID:   ident.SessionID.String(),
		Email:       ident.Email,
		AccessToken: ident.Token,
		TokenType:   "Bearer",
		ExpiresAt:   ident.ExpiresAt,
	}
}

func (h *Handler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := httputil.DecodeJSON[service.SignUpRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	ident, err := h.service.SignUp(ctx, *req)
	if err != nil {
		httputil.LogAndWriteError(ctx, h.logger, w, "sign-up failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(ident))
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := httputil.DecodeJSON[signInRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	ident, err := h.service.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		httputil.LogAndWriteError(ctx, h.logger, w, "sign-in failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(ident))
}

type federatedRequest struct {
	IDToken string `json:"id_token"`
}

func (h *Handler) handleFederated(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := httputil.DecodeJSON[federatedRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	ident, err := h.service.SignInFederated(ctx, req.IDToken)
	if err != nil {
		httputil.LogAndWriteError(ctx, h.logger, w, "federated sign-in failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(ident))
}

func (h *Handler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	err := h.service.SignOut(ctx, requestcontext.UserID(ctx), requestcontext.SessionID(ctx))
	if err != nil {
		httputil.LogAndWriteError(ctx, h.logger, w, "sign-out failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
