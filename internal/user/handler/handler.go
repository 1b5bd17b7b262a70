package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/user/models"
	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/platform/httputil"
	"storefront/pkg/requestcontext"
)

type Service interface {
	Get(ctx context.Context, userID id.UserID) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID id.UserID, update models.ProfileUpdate) (*models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	SetRole(ctx context.Context, actor, target id.UserID, role *models.Role) (*models.Profile, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the self-service routes; r must already require auth.
func (h *Handler) Register(r chi.Router) {
	r.Get("/me", h.handleGetMe)
	r.Put("/me", h.handleUpdateMe)
}

func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/users", h.handleList)
	r.Post("/admin/users/{id}/role", h.handleSetRole)
}

func (h *Handler) handleGetMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := h.service.Get(ctx, requestcontext.UserID(ctx))
	if err != nil {
		httputil.LogAndWriteError(ctx, h.logger, w, "failed to load profile", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	update, err := httputil.DecodeJSON[models.ProfileUpdate](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.service.UpdateProfile(ctx, requestcontext.UserID(ctx), *update)
	if err != nil {
		httputil.LogAndWriteError(ctx, h.logger, w, "failed to update profile", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.service.List(ctx)
	if err != nil {
		httputil.LogAndWriteError(ctx, h.logger, w, "failed to list users", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

type roleRequest struct {
	Role string `json:"role"`
}

// handleSetRole sets the role named in the body, or toggles it when the body
// is empty.
func (h *Handler) handleSetRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	target, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var role *models.Role
	var req roleRequest
	if err := decodeOptional(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.Role != "" {
		parsed, err := models.ParseRole(req.Role)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		role = &parsed
	}

	p, err := h.service.SetRole(ctx, requestcontext.UserID(ctx), target, role)
	if err != nil {
		httputil.LogAndWriteError(ctx, h.logger, w, "failed to set role", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func decodeOptional(r *http.Request, dst *roleRequest) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}
