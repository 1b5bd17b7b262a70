// Package httputil writes JSON responses and maps domain error codes to
// HTTP statuses.
package httputil

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/requestcontext"
)

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

var statusByCode = map[dErrors.Code]int{
	dErrors.CodeBadRequest:         http.StatusBadRequest,
	dErrors.CodeValidation:         http.StatusBadRequest,
	dErrors.CodeInvalidInput:       http.StatusBadRequest,
	dErrors.CodeNotFound:           http.StatusNotFound,
	dErrors.CodeConflict:           http.StatusConflict,
	dErrors.CodeUnauthorized:       http.StatusUnauthorized,
	dErrors.CodeForbidden:          http.StatusForbidden,
	dErrors.CodePreconditionFailed: http.StatusPreconditionFailed,
	dErrors.CodeInvariantViolation: http.StatusUnprocessableEntity,
	dErrors.CodeTimeout:            http.StatusGatewayTimeout,
	dErrors.CodeInternal:           http.StatusInternalServerError,
}

// StatusFor returns the HTTP status for a domain error; uncoded errors are 500.
func StatusFor(err error) int {
	de, ok := dErrors.From(err)
	if !ok {
		return http.StatusInternalServerError
	}
	if status, ok := statusByCode[de.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WriteError renders err as {"error": code, "error_description": msg}.
// Internal errors never expose their message.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	resp := errorResponse{Error: string(dErrors.CodeInternal)}
	if de, ok := dErrors.From(err); ok && status != http.StatusInternalServerError {
		resp.Error = string(de.Code)
		resp.ErrorDescription = de.Message
	}
	WriteJSON(w, status, resp)
}

// LogAndWriteError logs server-side failures at error level and client
// mistakes at warn, then writes the error response.
func LogAndWriteError(ctx context.Context, logger *slog.Logger, w http.ResponseWriter, msg string, err error) {
	status := StatusFor(err)
	attrs := []any{"error", err, "status", status, "request_id", requestcontext.RequestID(ctx)}
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, msg, attrs...)
	} else {
		logger.WarnContext(ctx, msg, attrs...)
	}
	WriteError(w, err)
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeJSON decodes the request body into T, returning a bad-request
// domain error on malformed input.
func DecodeJSON[T any](r *http.Request) (*T, error) {
	var v T
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&v); err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	return &v, nil
}
