package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kita-portal/kita-api/internal/models"
)

// AuditWriter persists audit records.
type AuditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// Audit records successful admin form actions on resource. The action is derived from the last
// path segment (create, edit, delete); other actions are left to the services that audit them.
func Audit(writer AuditWriter, resource string, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method != http.MethodPost || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		action := auditAction(c.FullPath())
		if action == "" {
			return
		}

		entry := &models.AuditLog{
			Action:    action,
			Resource:  resource,
			IPAddress: c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
		}
		if session := SessionFrom(c); session != nil {
			entry.UserID = &session.User.ID
		}
		if id := c.GetString(contextResourceIDKey); id != "" {
			entry.ResourceID = &id
		}

		body, _ := json.Marshal(map[string]interface{}{
			"path":   c.FullPath(),
			"status": c.Writer.Status(),
		})
		values := string(body)
		entry.NewValues = &values

		if err := writer.CreateAuditLog(c.Request.Context(), entry); err != nil {
			log.Warn("failed to record audit log", zap.String("resource", resource), zap.Error(err))
		}
	}
}

const contextResourceIDKey = "audit_resource_id"

// SetResourceID exposes the id of the touched row to the audit middleware.
func SetResourceID(c *gin.Context, id string) {
	c.Set(contextResourceIDKey, id)
}

func auditAction(path string) string {
	switch path[strings.LastIndex(path, "/")+1:] {
	case "create":
		return models.AuditActionCreate
	case "edit":
		return models.AuditActionUpdate
	case "delete":
		return models.AuditActionDelete
	}
	return ""
}
