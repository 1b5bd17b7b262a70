package accounts

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/admin"
	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/platform/httputil"
	"storefront/pkg/requestcontext"
)

type Deleter interface {
	DeleteUserAccount(ctx context.Context, caller id.UserID, rawTarget string) (id.UserID, error)
}

type Handler struct {
	service Deleter
	logger  *slog.Logger
}

func NewHandler(service Deleter, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the callable. r must attach the caller when a token is
// present but must not reject anonymous calls; the callable answers those
// with "unauthenticated" itself.
func (h *Handler) Register(r chi.Router) {
	r.Post("/functions/deleteUserAccount", h.handleDeleteUserAccount)
}

var callableStatus = map[dErrors.Code]string{
	dErrors.CodeUnauthorized:       "unauthenticated",
	dErrors.CodeInvalidInput:       "invalid_argument",
	dErrors.CodeBadRequest:         "invalid_argument",
	dErrors.CodePreconditionFailed: "failed_precondition",
	dErrors.CodeForbidden:          "permission_denied",
	dErrors.CodeNotFound:           "not_found",
}

func writeCallableError(ctx context.Context, logger *slog.Logger, w http.ResponseWriter, err error) {
	status := httputil.StatusFor(err)
	body := admin.CallableError{Status: "internal"}
	if de, ok := dErrors.From(err); ok {
		if name, known := callableStatus[de.Code]; known {
			body = admin.CallableError{Status: name, Message: de.Message}
		}
	}
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, "deleteUserAccount failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	httputil.WriteJSON(w, status, body)
}

func (h *Handler) handleDeleteUserAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := requestcontext.UserID(ctx)
	if caller.IsNil() {
		writeCallableError(ctx, h.logger, w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	req, err := httputil.DecodeJSON[admin.DeleteAccountRequest](r)
	if err != nil {
		writeCallableError(ctx, h.logger, w, dErrors.New(dErrors.CodeInvalidInput, "uid is required"))
		return
	}
	target, err := h.service.DeleteUserAccount(ctx, caller, req.UID)
	if err != nil {
		writeCallableError(ctx, h.logger, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, admin.DeleteAccountResponse{Success: true, UID: target.String()})
}
