package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kita-portal/kita-api/internal/dto"
	"github.com/kita-portal/kita-api/internal/middleware"
	"github.com/kita-portal/kita-api/pkg/response"
)

type dashboardService interface {
	Overview(ctx context.Context) (*dto.DailyOverview, bool, error)
	Summary(ctx context.Context) (*dto.AdminSummary, error)
	KioskRefreshSeconds() int
}

// DashboardHandler serves the public day overview, the kiosk and the admin shell.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs a dashboard handler.
func NewDashboardHandler(svc dashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Public godoc
// @Summary Day overview
// @Description Birthdays, teachers on duty, meals and active announcements of today.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router / [get]
func (h *DashboardHandler) Public(c *gin.Context) {
	overview, hit, err := h.service.Overview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, overview, nil, middleware.ExtractMeta(c))
}

// Kiosk godoc
// @Summary Kiosk display
// @Description Same projections as the day overview plus the display refresh interval.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /kinder-ansicht [get]
func (h *DashboardHandler) Kiosk(c *gin.Context) {
	overview, hit, err := h.service.Overview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	middleware.SetMeta(c, "refresh_seconds", h.service.KioskRefreshSeconds())
	response.JSON(c, http.StatusOK, overview, nil, middleware.ExtractMeta(c))
}

// Admin godoc
// @Summary Admin dashboard counts
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin [get]
func (h *DashboardHandler) Admin(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
