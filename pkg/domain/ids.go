// Package domain holds the typed identifiers and value types shared by every
// storefront module. IDs are distinct named types over uuid.UUID so a product
// ID can never be passed where an order ID is expected.
package domain

import (
	"fmt"

	"github.com/google/uuid"

	dErrors "storefront/pkg/domain-errors"
)

type (
	UserID    uuid.UUID
	SessionID uuid.UUID
	ProductID uuid.UUID
	OrderID   uuid.UUID
	MessageID uuid.UUID
	ContactID uuid.UUID
)

func parseUUID(kind, raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("%s is required", kind))
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("invalid %s", kind))
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("%s cannot be nil", kind))
	}
	return parsed, nil
}

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID("user ID", s)
	return UserID(u), err
}

func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID("session ID", s)
	return SessionID(u), err
}

func ParseProductID(s string) (ProductID, error) {
	u, err := parseUUID("product ID", s)
	return ProductID(u), err
}

func ParseOrderID(s string) (OrderID, error) {
	u, err := parseUUID("order ID", s)
	return OrderID(u), err
}

func ParseMessageID(s string) (MessageID, error) {
	u, err := parseUUID("message ID", s)
	return MessageID(u), err
}

func ParseContactID(s string) (ContactID, error) {
	u, err := parseUUID("contact ID", s)
	return ContactID(u), err
}

func (id UserID) String() string    { return uuid.UUID(id).String() }
func (id SessionID) String() string { return uuid.UUID(id).String() }
func (id ProductID) String() string { return uuid.UUID(id).String() }
func (id OrderID) String() string   { return uuid.UUID(id).String() }
func (id MessageID) String() string { return uuid.UUID(id).String() }
func (id ContactID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ProductID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id OrderID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id MessageID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ContactID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// Text marshalling keeps IDs as canonical UUID strings in JSON documents
// instead of 16-element byte arrays.

func (id UserID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }
func (id SessionID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id ProductID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id OrderID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }
func (id MessageID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id ContactID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error    { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *SessionID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *ProductID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *OrderID) UnmarshalText(b []byte) error   { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *MessageID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *ContactID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
