package audit

import (
	"context"
	"time"

	id "storefront/pkg/domain"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out. ActorID is set when an
// administrator acts on another user's data.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	Action    string            `json:"action"`
	UserID    id.UserID         `json:"user_id"`
	Subject   string            `json:"subject,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	ActorID   string            `json:"actor_id,omitempty"`
	Attrs     map[string]string `json:"attrs,omitempty"`
}

type AuditEvent string

const (
	EventUserCreated      AuditEvent = "user_created"
	EventUserDeleted      AuditEvent = "user_deleted"
	EventUserRoleChanged  AuditEvent = "user_role_changed"
	EventSessionCreated   AuditEvent = "session_created"
	EventSessionEnded     AuditEvent = "session_ended"
	EventOrderPlaced      AuditEvent = "order_placed"
	EventOrderStatusSet   AuditEvent = "order_status_changed"
	EventOrderDeleted     AuditEvent = "order_deleted"
	EventProductCreated   AuditEvent = "product_created"
	EventProductUpdated   AuditEvent = "product_updated"
	EventProductDeleted   AuditEvent = "product_deleted"
	EventHeroUpdated      AuditEvent = "hero_updated"
	EventMessageDeleted   AuditEvent = "message_deleted"
	EventContactSubmitted AuditEvent = "contact_submitted"
)

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Emitter is what services depend on; a nil Emitter disables auditing.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}
