package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kita-portal/kita-api/internal/models"
	"github.com/kita-portal/kita-api/internal/service"
	"github.com/kita-portal/kita-api/pkg/response"
)

type announcementService interface {
	List(ctx context.Context) ([]models.Announcement, error)
	Create(ctx context.Context, req service.AnnouncementRequest) (*models.Announcement, error)
	Update(ctx context.Context, id string, req service.AnnouncementRequest) (*models.Announcement, error)
	Delete(ctx context.Context, id string) error
}

// AnnouncementHandler serves /admin/ankuendigungen.
type AnnouncementHandler struct {
	announcements announcementService
}

// NewAnnouncementHandler constructs an AnnouncementHandler.
func NewAnnouncementHandler(announcements announcementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcements: announcements}
}

type announcementEditRequest struct {
	idRequest
	service.AnnouncementRequest
}

// List godoc
// @Summary List announcements
// @Tags Announcements
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/ankuendigungen [get]
func (h *AnnouncementHandler) List(c *gin.Context) {
	items, err := h.announcements.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Create godoc
// @Summary Publish announcement
// @Tags Announcements
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param payload body service.AnnouncementRequest true "Announcement payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/ankuendigungen/create [post]
func (h *AnnouncementHandler) Create(c *gin.Context) {
	var req service.AnnouncementRequest
	if !bindPayload(c, &req, "announcement") {
		return
	}
	item, err := h.announcements.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	success(c, http.StatusCreated, item.ID, item)
}

// Edit godoc
// @Summary Update announcement
// @Tags Announcements
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/ankuendigungen/edit [post]
func (h *AnnouncementHandler) Edit(c *gin.Context) {
	var req announcementEditRequest
	if !bindPayload(c, &req, "announcement") || !requireID(c, req.ID) {
		return
	}
	item, err := h.announcements.Update(c.Request.Context(), req.ID, req.AnnouncementRequest)
	if err != nil {
		response.Error(c, err)
		return
	}
	success(c, http.StatusOK, item.ID, item)
}

// Delete godoc
// @Summary Delete announcement
// @Tags Announcements
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/ankuendigungen/delete [post]
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	var req idRequest
	if !bindPayload(c, &req, "announcement") || !requireID(c, req.ID) {
		return
	}
	if err := h.announcements.Delete(c.Request.Context(), req.ID); err != nil {
		response.Error(c, err)
		return
	}
	success(c, http.StatusOK, req.ID, gin.H{"id": req.ID})
}
