package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole("")
	require.NoError(t, err)
	assert.Equal(t, RoleCustomer, r)

	r, err = ParseRole(" Admin ")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	_, err = ParseRole("owner")
	assert.Error(t, err)
}

func TestRoleToggled(t *testing.T) {
	assert.Equal(t, RoleAdmin, RoleCustomer.Toggled())
	assert.Equal(t, RoleCustomer, RoleAdmin.Toggled())
}

func TestProfileUpdateApply(t *testing.T) {
	name, city := "  Asha Rao ", "Pune"
	p := Profile{DisplayName: "old", Phone: "111", Role: RoleCustomer}
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	ProfileUpdate{DisplayName: &name, City: &city}.Apply(&p, now)

	assert.Equal(t, "Asha Rao", p.DisplayName)
	assert.Equal(t, "Pune", p.City)
	assert.Equal(t, "111", p.Phone, "nil fields are untouched")
	assert.Equal(t, RoleCustomer, p.Role)
	assert.Equal(t, now, p.UpdatedAt)
}
