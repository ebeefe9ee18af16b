package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kita-portal/kita-api/internal/dto"
	"github.com/kita-portal/kita-api/internal/models"
	"github.com/kita-portal/kita-api/pkg/response"
)

type userDirectory interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.UserWithProfiles, *models.Pagination, error)
	ParentOverview(ctx context.Context) (*dto.ParentOverview, error)
	EmployeeOverview(ctx context.Context) (*dto.EmployeeOverview, error)
}

type roleManager interface {
	SetRole(ctx context.Context, actor models.Actor, userID string, role models.UserRole) (*models.User, error)
	DeleteUser(ctx context.Context, actor models.Actor, userID string) error
}

// UserHandler serves /admin/benutzer.
type UserHandler struct {
	users     userDirectory
	lifecycle roleManager
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(users userDirectory, lifecycle roleManager) *UserHandler {
	return &UserHandler{users: users, lifecycle: lifecycle}
}

type updateRoleRequest struct {
	UserID string          `form:"userId" json:"userId"`
	Role   models.UserRole `form:"role" json:"role"`
}

type userIDRequest struct {
	UserID string `form:"userId" json:"userId"`
}

// List godoc
// @Summary List users with their profiles
// @Tags Users
// @Produce json
// @Param role query string false "Filter by role"
// @Param search query string false "Name or email fragment"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/benutzer [get]
func (h *UserHandler) List(c *gin.Context) {
	filter := models.UserFilter{Search: strings.TrimSpace(c.Query("search"))}
	if role := strings.TrimSpace(c.Query("role")); role != "" {
		r := models.UserRole(role)
		filter.Role = &r
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("pageSize", "50")); err == nil {
		filter.PageSize = size
	}

	users, pagination, err := h.users.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, pagination)
}

// UpdateRole godoc
// @Summary Change a user's role
// @Description Creates the matching profile; profiles of the previous role are kept.
// @Tags Users
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/benutzer/updateRole [post]
func (h *UserHandler) UpdateRole(c *gin.Context) {
	var req updateRoleRequest
	if !bindPayload(c, &req, "role") || !requireID(c, req.UserID) {
		return
	}
	user, err := h.lifecycle.SetRole(c.Request.Context(), actorFromContext(c), req.UserID, req.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	success(c, http.StatusOK, user.ID, user)
}

// Delete godoc
// @Summary Delete a user with profiles, links and sessions
// @Tags Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/benutzer/delete [post]
func (h *UserHandler) Delete(c *gin.Context) {
	var req userIDRequest
	if !bindPayload(c, &req, "user") || !requireID(c, req.UserID) {
		return
	}
	if err := h.lifecycle.DeleteUser(c.Request.Context(), actorFromContext(c), req.UserID); err != nil {
		response.Error(c, err)
		return
	}
	success(c, http.StatusOK, req.UserID, gin.H{"userId": req.UserID})
}
