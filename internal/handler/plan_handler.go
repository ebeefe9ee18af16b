package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kita-portal/kita-api/internal/dto"
	"github.com/kita-portal/kita-api/internal/models"
	"github.com/kita-portal/kita-api/internal/service"
	"github.com/kita-portal/kita-api/pkg/response"
)

type scheduleService interface {
	Week(ctx context.Context, weekParam string) (*dto.ScheduleWeek, error)
	Create(ctx context.Context, req service.CreateScheduleRequest) (*models.ScheduleEntry, error)
	UpdateTimes(ctx context.Context, id string, req service.UpdateScheduleRequest) (*models.ScheduleEntry, error)
	Delete(ctx context.Context, id string) error
}

type mealService interface {
	Week(ctx context.Context, weekParam string) (*dto.MealWeek, error)
	Create(ctx context.Context, req service.CreateMealRequest) (*models.Meal, error)
	UpdateDescription(ctx context.Context, id string, req service.UpdateMealRequest) (*models.Meal, error)
	Delete(ctx context.Context, id string) error
}

type planExporter interface {
	Schedule(ctx context.Context, weekParam string, format service.ExportFormat) (*service.ExportFile, error)
	Meals(ctx context.Context, weekParam string, format service.ExportFormat) (*service.ExportFile, error)
}

// ScheduleHandler serves the Dienstplan under /admin/dienstplan.
type ScheduleHandler struct {
	schedules scheduleService
	exports   planExporter
}

// NewScheduleHandler constructs a ScheduleHandler.
func NewScheduleHandler(schedules scheduleService, exports planExporter) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, exports: exports}
}

type scheduleEditRequest struct {
	idRequest
	service.UpdateScheduleRequest
}

// Week godoc
// @Summary Weekly Dienstplan
// @Description Monday to Sunday window containing the week date, defaults to the current week.
// @Tags Schedules
// @Produce json
// @Param week query string false "Any date of the week (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/dienstplan [get]
func (h *ScheduleHandler) Week(c *gin.Context) {
	week, err := h.schedules.Week(c.Request.Context(), c.Query("week"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, week, nil)
}

// Create godoc
// @Summary Create shift
// @Tags Schedules
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param payload body service.CreateScheduleRequest true "Shift payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/dienstplan/create [post]
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req service.CreateScheduleRequest
	if !bindPayload(c, &req, "schedule") {
		return
	}
	entry, err := h.schedules.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	success(c, http.StatusCreated, entry.ID, entry)
}

// Edit godoc
// @Summary Change shift times
// @Tags Schedules
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/dienstplan/edit [post]
func (h *ScheduleHandler) Edit(c *gin.Context) {
	var req scheduleEditRequest
	if !bindPayload(c, &req, "schedule") || !requireID(c, req.ID) {
		return
	}
	entry, err := h.schedules.UpdateTimes(c.Request.Context(), req.ID, req.UpdateScheduleRequest)
	if err != nil {
		response.Error(c, err)
		return
	}
	success(c, http.StatusOK, entry.ID, entry)
}

// Delete godoc
// @Summary Delete shift
// @Tags Schedules
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/dienstplan/delete [post]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	var req idRequest
	if !bindPayload(c, &req, "schedule") || !requireID(c, req.ID) {
		return
	}
	if err := h.schedules.Delete(c.Request.Context(), req.ID); err != nil {
		response.Error(c, err)
		return
	}
	success(c, http.StatusOK, req.ID, gin.H{"id": req.ID})
}

// Export godoc
// @Summary Export weekly Dienstplan
// @Tags Schedules
// @Produce text/csv,application/pdf
// @Param week query string false "Any date of the week (YYYY-MM-DD)"
// @Success 200 {file} file
// @Router /admin/dienstplan/export.csv [get]
// @Router /admin/dienstplan/export.pdf [get]
func (h *ScheduleHandler) Export(format service.ExportFormat) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := h.exports.Schedule(c.Request.Context(), c.Query("week"), format)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Attachment(c, file.Filename, file.ContentType, file.Payload)
	}
}

// MealHandler serves the Speiseplan under /admin/speiseplan.
type MealHandler struct {
	meals   mealService
	exports planExporter
}

// NewMealHandler constructs a MealHandler.
func NewMealHandler(meals mealService, exports planExporter) *MealHandler {
	return &MealHandler{meals: meals, exports: exports}
}

type mealEditRequest struct {
	idRequest
	service.UpdateMealRequest
}

// Week godoc
// @Summary Weekly Speiseplan
// @Description Monday to Friday window containing the week date, defaults to the current week.
// @Tags Meals
// @Produce json
// @Param week query string false "Any date of the week (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /admin/speiseplan [get]
func (h *MealHandler) Week(c *gin.Context) {
	week, err := h.meals.Week(c.Request.Context(), c.Query("week"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, week, nil)
}

// Create godoc
// @Summary Plan meal
// @Tags Meals
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param payload body service.CreateMealRequest true "Meal payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/speiseplan/create [post]
func (h *MealHandler) Create(c *gin.Context) {
	var req service.CreateMealRequest
	if !bindPayload(c, &req, "meal") {
		return
	}
	meal, err := h.meals.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	success(c, http.StatusCreated, meal.ID, meal)
}

// Edit godoc
// @Summary Change meal description
// @Tags Meals
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/speiseplan/edit [post]
func (h *MealHandler) Edit(c *gin.Context) {
	var req mealEditRequest
	if !bindPayload(c, &req, "meal") || !requireID(c, req.ID) {
		return
	}
	meal, err := h.meals.UpdateDescription(c.Request.Context(), req.ID, req.UpdateMealRequest)
	if err != nil {
		response.Error(c, err)
		return
	}
	success(c, http.StatusOK, meal.ID, meal)
}

// Delete godoc
// @Summary Delete meal
// @Tags Meals
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/speiseplan/delete [post]
func (h *MealHandler) Delete(c *gin.Context) {
	var req idRequest
	if !bindPayload(c, &req, "meal") || !requireID(c, req.ID) {
		return
	}
	if err := h.meals.Delete(c.Request.Context(), req.ID); err != nil {
		response.Error(c, err)
		return
	}
	success(c, http.StatusOK, req.ID, gin.H{"id": req.ID})
}

// Export godoc
// @Summary Export weekly Speiseplan
// @Tags Meals
// @Produce text/csv,application/pdf
// @Param week query string false "Any date of the week (YYYY-MM-DD)"
// @Success 200 {file} file
// @Router /admin/speiseplan/export.csv [get]
// @Router /admin/speiseplan/export.pdf [get]
func (h *MealHandler) Export(format service.ExportFormat) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := h.exports.Meals(c.Request.Context(), c.Query("week"), format)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Attachment(c, file.Filename, file.ContentType, file.Payload)
	}
}
