package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kita-portal/kita-api/internal/models"
	"github.com/kita-portal/kita-api/pkg/response"
)

type roleByEmailSetter interface {
	SetRoleByEmail(ctx context.Context, actor models.Actor, email string, role models.UserRole) (*models.User, error)
}

// TestRoleHandler lets end-to-end suites promote accounts. It is only registered outside production.
type TestRoleHandler struct {
	lifecycle roleByEmailSetter
}

// NewTestRoleHandler constructs a TestRoleHandler.
func NewTestRoleHandler(lifecycle roleByEmailSetter) *TestRoleHandler {
	return &TestRoleHandler{lifecycle: lifecycle}
}

type setRoleRequest struct {
	Email string          `form:"email" json:"email"`
	Role  models.UserRole `form:"role" json:"role"`
}

// SetRole godoc
// @Summary Set a user's role by email (test environments only)
// @Tags Testing
// @Accept json
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/test/set-role [post]
func (h *TestRoleHandler) SetRole(c *gin.Context) {
	var req setRoleRequest
	if !bindPayload(c, &req, "role") {
		return
	}
	user, err := h.lifecycle.SetRoleByEmail(c.Request.Context(), actorFromContext(c), req.Email, req.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"success": true, "user": user}, nil)
}
