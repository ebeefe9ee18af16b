package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleDashboard(t *testing.T) {
	assert.Equal(t, "/admin", RoleAdmin.Dashboard())
	assert.Equal(t, "/eltern", RoleParent.Dashboard())
	assert.Equal(t, "/mitarbeiter", RoleEmployee.Dashboard())
	assert.Equal(t, "/eltern", UserRole("").Dashboard())
	assert.Equal(t, "/", UserRole("janitor").Dashboard())
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleEmployee.Valid())
	assert.False(t, UserRole("ADMIN").Valid())
	assert.False(t, UserRole("").Valid())
}

func TestSessionRoleDefaultsToParent(t *testing.T) {
	var missing *Session
	assert.Equal(t, UserRole(""), missing.Role())
	assert.Equal(t, RoleParent, (&Session{User: &User{}}).Role())
	assert.Equal(t, RoleAdmin, (&Session{User: &User{Role: RoleAdmin}}).Role())
}

func TestRelationKindValid(t *testing.T) {
	assert.True(t, RelationGuardian.Valid())
	assert.False(t, RelationKind("mutter").Valid())
}
