package admin

import (
	"context"
	"log/slog"
	"net/http"

	id "storefront/pkg/domain"
	"storefront/pkg/requestcontext"
)

// RoleChecker resolves whether a user's stored profile carries the admin role.
type RoleChecker interface {
	IsAdmin(ctx context.Context, userID id.UserID) (bool, error)
}

// RequireAdmin must run after auth.RequireAuth. The role is read from the
// profile store on every request so demotions take effect immediately.
func RequireAdmin(roles RoleChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			userID := requestcontext.UserID(ctx)
			if userID.IsNil() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"authentication required"}`))
				return
			}

			ok, err := roles.IsAdmin(ctx, userID)
			if err != nil {
				logger.ErrorContext(ctx, "failed to resolve caller role",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"internal_error"}`))
				return
			}
			if !ok {
				logger.WarnContext(ctx, "admin route denied",
					"user_id", userID.String(),
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden","error_description":"admin role required"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
