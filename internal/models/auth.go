package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CredentialProvider identifies email/password accounts.
const CredentialProvider = "credential"

// Account stores the credentials of a user for one provider.
type Account struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"userId"`
	AccountID    string    `db:"account_id" json:"accountId"`
	ProviderID   string    `db:"provider_id" json:"providerId"`
	PasswordHash *string   `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Session is a persisted login. The resolved user is attached per request and never cached.
type Session struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	ExpiresAt time.Time `db:"expires_at" json:"expiresAt"`
	IPAddress string    `db:"ip_address" json:"-"`
	UserAgent string    `db:"user_agent" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
	User      *User     `db:"-" json:"user,omitempty"`
}

// Role returns the effective role of the session user.
func (s *Session) Role() UserRole {
	if s == nil || s.User == nil {
		return ""
	}
	return s.User.Role.Effective()
}

// SessionClaims is the payload of the signed session cookie. The token ID is the session row ID.
type SessionClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// SignUpRequest registers a new email/password account.
type SignUpRequest struct {
	Name      string `form:"name" json:"name" validate:"required,max=200"`
	Email     string `form:"email" json:"email" validate:"required,email"`
	Password  string `form:"password" json:"password" validate:"required,min=8,max=128"`
	IP        string `form:"-" json:"-"`
	UserAgent string `form:"-" json:"-"`
}

// SignInRequest holds credentials for authenticating a user.
type SignInRequest struct {
	Email     string `form:"email" json:"email" validate:"required,email"`
	Password  string `form:"password" json:"password" validate:"required"`
	IP        string `form:"-" json:"-"`
	UserAgent string `form:"-" json:"-"`
}

// SignInResult carries the issued session and its signed token.
type SignInResult struct {
	Token   string   `json:"-"`
	Session *Session `json:"session"`
	// Redirect is the dashboard of the signed in user's role.
	Redirect string `json:"redirect"`
}
