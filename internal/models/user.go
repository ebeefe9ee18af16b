package models

import (
	"strings"
	"time"
)

// UserRole represents the roles a Kita account can hold.
type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleParent   UserRole = "parent"
	RoleEmployee UserRole = "employee"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleParent, RoleEmployee:
		return true
	}
	return false
}

// Effective treats a missing role as parent, the default assigned at sign-up.
func (r UserRole) Effective() UserRole {
	if strings.TrimSpace(string(r)) == "" {
		return RoleParent
	}
	return r
}

// Dashboard returns the landing path of the role's area.
func (r UserRole) Dashboard() string {
	switch r.Effective() {
	case RoleAdmin:
		return "/admin"
	case RoleParent:
		return "/eltern"
	case RoleEmployee:
		return "/mitarbeiter"
	default:
		return "/"
	}
}

// User represents an application account stored in the users table.
type User struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Email         string    `db:"email" json:"email"`
	EmailVerified bool      `db:"email_verified" json:"emailVerified"`
	Image         *string   `db:"image" json:"image,omitempty"`
	Role          UserRole  `db:"role" json:"role"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role     *UserRole
	Search   string
	Page     int
	PageSize int
}

// UserWithProfiles pairs a user with the role profiles that exist for it.
// Profiles of a previous role are kept, so both may be present.
type UserWithProfiles struct {
	User
	Parent   *ParentProfile   `json:"eltern,omitempty"`
	Employee *EmployeeProfile `json:"mitarbeiter,omitempty"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
