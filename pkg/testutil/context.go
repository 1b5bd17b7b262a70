package testutil

import (
	"net/http"

	id "storefront/pkg/domain"
	"storefront/pkg/requestcontext"
)

// WithAuth places the user and session IDs on the request context the way
// the auth middleware does. IDs that do not parse are skipped.
func WithAuth(req *http.Request, userID, sessionID string) *http.Request {
	ctx := req.Context()
	if uid, err := id.ParseUserID(userID); err == nil {
		ctx = requestcontext.WithUserID(ctx, uid)
	}
	if sid, err := id.ParseSessionID(sessionID); err == nil {
		ctx = requestcontext.WithSessionID(ctx, sid)
	}
	return req.WithContext(ctx)
}

// WithIDs is WithAuth for callers that already hold typed IDs.
func WithIDs(req *http.Request, userID id.UserID, sessionID id.SessionID) *http.Request {
	ctx := requestcontext.WithUserID(req.Context(), userID)
	ctx = requestcontext.WithSessionID(ctx, sessionID)
	return req.WithContext(ctx)
}
