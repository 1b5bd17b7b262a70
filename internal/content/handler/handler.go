package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/content/models"
	id "storefront/pkg/domain"
	"storefront/pkg/platform/httputil"
)

type Service interface {
	Hero(ctx context.Context) (models.Hero, error)
	PutHero(ctx context.Context, h models.Hero) (models.Hero, error)
	ListMessages(ctx context.Context) ([]models.Message, error)
	DeleteMessage(ctx context.Context, messageID id.MessageID) error
	SubmitContact(ctx context.Context, form models.ContactForm) (*models.Contact, error)
	ListContacts(ctx context.Context) ([]models.Contact, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/hero", h.handleGetHero)
	r.Post("/contacts", h.handleSubmitContact)
}

func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Put("/admin/hero", h.handlePutHero)
	r.Get("/admin/messages", h.handleListMessages)
	r.Delete("/admin/messages/{id}", h.handleDeleteMessage)
	r.Get("/admin/contacts", h.handleListContacts)
}

func (h *Handler) handleGetHero(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hero, err := h.service.Hero(ctx)
	if err != nil {
		httputil.LogAndWriteError(ctx, h.logger, w, "failed to load hero", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, hero)
}

func (h *Handler) handlePutHero(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := httputil.DecodeJSON[models.Hero](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	hero, err := h.service.PutHero(ctx, *req)
	if err != nil {
		httputil.LogAndWriteError(ctx, h.logger, w, "failed to save hero", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, hero)
}

func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.service.ListMessages(ctx)
	if err != nil {
		httputil.LogAndWriteError(ctx, h.logger, w, "failed to list messages", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	messageID, err := id.ParseMessageID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.DeleteMessage(ctx, messageID); err != nil {
		httputil.LogAndWriteError(ctx, h.logger, w, "failed to delete message", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSubmitContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	form, err := httputil.DecodeJSON[models.ContactForm](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.service.SubmitContact(ctx, *form)
	if err != nil {
		httputil.LogAndWriteError(ctx, h.logger, w, "failed to submit contact form", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) handleListContacts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.service.ListContacts(ctx)
	if err != nil {
		httputil.LogAndWriteError(ctx, h.logger, w, "failed to list contacts", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}
