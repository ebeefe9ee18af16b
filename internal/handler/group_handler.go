package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kita-portal/kita-api/internal/models"
	"github.com/kita-portal/kita-api/internal/service"
	"github.com/kita-portal/kita-api/pkg/response"
)

type groupService interface {
	List(ctx context.Context) ([]models.Group, error)
	Create(ctx context.Context, req service.GroupRequest) (*models.Group, error)
	Update(ctx context.Context, id string, req service.GroupRequest) (*models.Group, error)
}

type groupDeleter interface {
	DeleteGroup(ctx context.Context, groupID string) error
}

// GroupHandler serves /admin/gruppen.
type GroupHandler struct {
	groups    groupService
	lifecycle groupDeleter
}

// NewGroupHandler constructs a GroupHandler.
func NewGroupHandler(groups groupService, lifecycle groupDeleter) *GroupHandler {
	return &GroupHandler{groups: groups, lifecycle: lifecycle}
}

type groupEditRequest struct {
	idRequest
	service.GroupRequest
}

// List godoc
// @Summary List groups
// @Tags Groups
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/gruppen [get]
func (h *GroupHandler) List(c *gin.Context) {
	groups, err := h.groups.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, nil)
}

// Create godoc
// @Summary Create group
// @Tags Groups
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param payload body service.GroupRequest true "Group payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/gruppen/create [post]
func (h *GroupHandler) Create(c *gin.Context) {
	var req service.GroupRequest
	if !bindPayload(c, &req, "group") {
		return
	}
	group, err := h.groups.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	success(c, http.StatusCreated, group.ID, group)
}

// Edit godoc
// @Summary Update group
// @Tags Groups
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/gruppen/edit [post]
func (h *GroupHandler) Edit(c *gin.Context) {
	var req groupEditRequest
	if !bindPayload(c, &req, "group") || !requireID(c, req.ID) {
		return
	}
	group, err := h.groups.Update(c.Request.Context(), req.ID, req.GroupRequest)
	if err != nil {
		response.Error(c, err)
		return
	}
	success(c, http.StatusOK, group.ID, group)
}

// Delete godoc
// @Summary Delete group
// @Description Fails with GROUP_HAS_CHILDREN while children are assigned.
// @Tags Groups
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/gruppen/delete [post]
func (h *GroupHandler) Delete(c *gin.Context) {
	var req idRequest
	if !bindPayload(c, &req, "group") || !requireID(c, req.ID) {
		return
	}
	if err := h.lifecycle.DeleteGroup(c.Request.Context(), req.ID); err != nil {
		response.Error(c, err)
		return
	}
	success(c, http.StatusOK, req.ID, gin.H{"id": req.ID})
}
