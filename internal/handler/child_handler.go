package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kita-portal/kita-api/internal/models"
	"github.com/kita-portal/kita-api/internal/service"
	"github.com/kita-portal/kita-api/pkg/response"
)

type childService interface {
	List(ctx context.Context) ([]models.ChildWithGroup, error)
	Create(ctx context.Context, req service.ChildRequest) (*models.Child, error)
	Update(ctx context.Context, id string, req service.ChildRequest) (*models.Child, error)
	Delete(ctx context.Context, id string) error
}

type groupLister interface {
	List(ctx context.Context) ([]models.Group, error)
}

// ChildHandler serves /admin/kinder.
type ChildHandler struct {
	children childService
	groups   groupLister
}

// NewChildHandler constructs a ChildHandler.
func NewChildHandler(children childService, groups groupLister) *ChildHandler {
	return &ChildHandler{children: children, groups: groups}
}

type childEditRequest struct {
	idRequest
	service.ChildRequest
}

// List godoc
// @Summary List children with their group and all groups
// @Tags Children
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/kinder [get]
func (h *ChildHandler) List(c *gin.Context) {
	children, err := h.children.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	groups, err := h.groups.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"kinder": children, "gruppen": groups}, nil)
}

// Create godoc
// @Summary Enroll child
// @Tags Children
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param payload body service.ChildRequest true "Child payload"
// @Success 201 {object} response.Envelope
// @Router /admin/kinder/create [post]
func (h *ChildHandler) Create(c *gin.Context) {
	var req service.ChildRequest
	if !bindPayload(c, &req, "child") {
		return
	}
	child, err := h.children.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	success(c, http.StatusCreated, child.ID, child)
}

// Edit godoc
// @Summary Update child
// @Tags Children
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/kinder/edit [post]
func (h *ChildHandler) Edit(c *gin.Context) {
	var req childEditRequest
	if !bindPayload(c, &req, "child") || !requireID(c, req.ID) {
		return
	}
	child, err := h.children.Update(c.Request.Context(), req.ID, req.ChildRequest)
	if err != nil {
		response.Error(c, err)
		return
	}
	success(c, http.StatusOK, child.ID, child)
}

// Delete godoc
// @Summary Delete child and its parent links
// @Tags Children
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/kinder/delete [post]
func (h *ChildHandler) Delete(c *gin.Context) {
	var req idRequest
	if !bindPayload(c, &req, "child") || !requireID(c, req.ID) {
		return
	}
	if err := h.children.Delete(c.Request.Context(), req.ID); err != nil {
		response.Error(c, err)
		return
	}
	success(c, http.StatusOK, req.ID, gin.H{"id": req.ID})
}
