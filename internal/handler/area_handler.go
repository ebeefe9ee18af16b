package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kita-portal/kita-api/internal/dto"
	"github.com/kita-portal/kita-api/internal/middleware"
	"github.com/kita-portal/kita-api/internal/models"
	appErrors "github.com/kita-portal/kita-api/pkg/errors"
	"github.com/kita-portal/kita-api/pkg/response"
)

type areaProvider interface {
	ParentArea(ctx context.Context, user *models.User) (*dto.ParentArea, error)
	EmployeeArea(ctx context.Context, user *models.User) (*dto.EmployeeArea, error)
}

// AreaHandler serves the landing pages of parents and employees.
type AreaHandler struct {
	areas areaProvider
}

// NewAreaHandler constructs an AreaHandler.
func NewAreaHandler(areas areaProvider) *AreaHandler {
	return &AreaHandler{areas: areas}
}

// Parent godoc
// @Summary Parent area
// @Description Own profile and linked children of the signed in parent.
// @Tags Areas
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /eltern [get]
func (h *AreaHandler) Parent(c *gin.Context) {
	session := middleware.SessionFrom(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	area, err := h.areas.ParentArea(c.Request.Context(), session.User)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, area, nil)
}

// Employee godoc
// @Summary Employee area
// @Description Own profile, linked teacher and this week's shifts.
// @Tags Areas
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /mitarbeiter [get]
func (h *AreaHandler) Employee(c *gin.Context) {
	session := middleware.SessionFrom(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	area, err := h.areas.EmployeeArea(c.Request.Context(), session.User)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, area, nil)
}
