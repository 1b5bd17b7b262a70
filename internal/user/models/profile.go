package models

import (
	"strings"
	"time"

	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// ParseRole accepts the two known roles; an empty string is a customer.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case "", RoleCustomer:
		return RoleCustomer, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", dErrors.New(dErrors.CodeBadRequest, "role must be customer or admin")
	}
}

// Toggled returns the other role.
func (r Role) Toggled() Role {
	if r == RoleAdmin {
		return RoleCustomer
	}
	return RoleAdmin
}

// Profile is the user document. Its ID is shared with the identity record.
type Profile struct {
	ID          id.UserID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"name"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	Pincode     string    `json:"pincode"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// ProfileUpdate holds the self-service fields. Nil fields are left alone;
// the role cannot be changed this way.
type ProfileUpdate struct {
	DisplayName *string `json:"name"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	Pincode     *string `json:"pincode"`
}

func (u ProfileUpdate) Apply(p *Profile, now time.Time) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&p.DisplayName, u.DisplayName)
	set(&p.Phone, u.Phone)
	set(&p.Address, u.Address)
	set(&p.City, u.City)
	set(&p.Pincode, u.Pincode)
	p.UpdatedAt = now
}
