package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionSignIn     = "SIGN_IN"
	AuditActionSignOut    = "SIGN_OUT"
	AuditActionRoleChange = "ROLE_CHANGE"
	AuditActionUserDelete = "USER_DELETE"
	AuditActionCreate     = "CREATE"
	AuditActionUpdate     = "UPDATE"
	AuditActionDelete     = "DELETE"
	AuditActionLink       = "LINK"
	AuditActionUnlink     = "UNLINK"
)

// AuditLog represents an audit trail record. Values hold JSON documents.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"userId,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resourceId,omitempty"`
	OldValues  *string   `db:"old_values" json:"oldValues,omitempty"`
	NewValues  *string   `db:"new_values" json:"newValues,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ipAddress"`
	UserAgent  string    `db:"user_agent" json:"userAgent"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// Actor identifies who triggered a change, for the audit trail.
type Actor struct {
	UserID    string
	IPAddress string
	UserAgent string
}
