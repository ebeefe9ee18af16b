package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kita-portal/kita-api/internal/models"
	"github.com/kita-portal/kita-api/internal/service"
	"github.com/kita-portal/kita-api/pkg/response"
)

type teacherService interface {
	List(ctx context.Context) ([]models.Teacher, error)
	Create(ctx context.Context, req service.TeacherRequest) (*models.Teacher, error)
	Update(ctx context.Context, id string, req service.TeacherRequest) (*models.Teacher, error)
}

type teacherDeleter interface {
	DeleteTeacher(ctx context.Context, teacherID string) error
}

// TeacherHandler serves /admin/erzieher.
type TeacherHandler struct {
	teachers  teacherService
	lifecycle teacherDeleter
}

// NewTeacherHandler constructs a new TeacherHandler.
func NewTeacherHandler(teachers teacherService, lifecycle teacherDeleter) *TeacherHandler {
	return &TeacherHandler{teachers: teachers, lifecycle: lifecycle}
}

type teacherEditRequest struct {
	idRequest
	service.TeacherRequest
}

// List godoc
// @Summary List teachers
// @Tags Teachers
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/erzieher [get]
func (h *TeacherHandler) List(c *gin.Context) {
	teachers, err := h.teachers.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, nil)
}

// Create godoc
// @Summary Create teacher
// @Tags Teachers
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param payload body service.TeacherRequest true "Teacher payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/erzieher/create [post]
func (h *TeacherHandler) Create(c *gin.Context) {
	var req service.TeacherRequest
	if !bindPayload(c, &req, "teacher") {
		return
	}
	teacher, err := h.teachers.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	success(c, http.StatusCreated, teacher.ID, teacher)
}

// Edit godoc
// @Summary Update teacher
// @Tags Teachers
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/erzieher/edit [post]
func (h *TeacherHandler) Edit(c *gin.Context) {
	var req teacherEditRequest
	if !bindPayload(c, &req, "teacher") || !requireID(c, req.ID) {
		return
	}
	teacher, err := h.teachers.Update(c.Request.Context(), req.ID, req.TeacherRequest)
	if err != nil {
		response.Error(c, err)
		return
	}
	success(c, http.StatusOK, teacher.ID, teacher)
}

// Delete godoc
// @Summary Delete teacher
// @Description Fails with TEACHER_HAS_SCHEDULE while shifts exist; clears employee links.
// @Tags Teachers
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/erzieher/delete [post]
func (h *TeacherHandler) Delete(c *gin.Context) {
	var req idRequest
	if !bindPayload(c, &req, "teacher") || !requireID(c, req.ID) {
		return
	}
	if err := h.lifecycle.DeleteTeacher(c.Request.Context(), req.ID); err != nil {
		response.Error(c, err)
		return
	}
	success(c, http.StatusOK, req.ID, gin.H{"id": req.ID})
}
