package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kita-portal/kita-api/internal/models"
	"github.com/kita-portal/kita-api/internal/service"
	"github.com/kita-portal/kita-api/pkg/response"
)

type parentLinker interface {
	UpdateParentProfile(ctx context.Context, userID string, req service.ParentProfileRequest) (*models.ParentProfile, error)
	LinkChildToParent(ctx context.Context, userID, childID string, kind models.RelationKind) (*models.ChildLink, error)
	UpdateLink(ctx context.Context, linkID string, kind models.RelationKind) (*models.ChildLink, error)
	UnlinkChild(ctx context.Context, linkID string) error
}

type employeeLinker interface {
	UpdateEmployeeProfile(ctx context.Context, userID string, req service.EmployeeProfileRequest) (*models.EmployeeProfile, error)
	LinkTeacherToEmployee(ctx context.Context, userID, teacherID string) (*models.EmployeeProfile, error)
	UnlinkTeacher(ctx context.Context, userID string) error
}

// ParentHandler serves /admin/eltern.
type ParentHandler struct {
	users     userDirectory
	lifecycle parentLinker
}

// NewParentHandler constructs a ParentHandler.
func NewParentHandler(users userDirectory, lifecycle parentLinker) *ParentHandler {
	return &ParentHandler{users: users, lifecycle: lifecycle}
}

type parentProfileRequest struct {
	userIDRequest
	service.ParentProfileRequest
}

type linkChildRequest struct {
	UserID  string              `form:"userId" json:"userId"`
	ChildID string              `form:"kindId" json:"kindId"`
	Kind    models.RelationKind `form:"beziehung" json:"beziehung"`
}

type linkRequest struct {
	LinkID string              `form:"linkId" json:"linkId"`
	Kind   models.RelationKind `form:"beziehung" json:"beziehung"`
}

// List godoc
// @Summary Parents with profiles and linked children
// @Tags Parents
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/eltern [get]
func (h *ParentHandler) List(c *gin.Context) {
	overview, err := h.users.ParentOverview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, nil)
}

// UpdateProfile godoc
// @Summary Update parent contact data
// @Tags Parents
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/eltern/updateProfile [post]
func (h *ParentHandler) UpdateProfile(c *gin.Context) {
	var req parentProfileRequest
	if !bindPayload(c, &req, "parent profile") || !requireID(c, req.UserID) {
		return
	}
	profile, err := h.lifecycle.UpdateParentProfile(c.Request.Context(), req.UserID, req.ParentProfileRequest)
	if err != nil {
		response.Error(c, err)
		return
	}
	success(c, http.StatusOK, profile.ID, profile)
}

// LinkChild godoc
// @Summary Link a child to a parent
// @Description Fails with DUPLICATE_LINK when the pair is already linked.
// @Tags Parents
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/eltern/linkChild [post]
func (h *ParentHandler) LinkChild(c *gin.Context) {
	var req linkChildRequest
	if !bindPayload(c, &req, "link") || !requireID(c, req.UserID) {
		return
	}
	link, err := h.lifecycle.LinkChildToParent(c.Request.Context(), req.UserID, req.ChildID, req.Kind)
	if err != nil {
		response.Error(c, err)
		return
	}
	success(c, http.StatusCreated, link.ID, link)
}

// UpdateLink godoc
// @Summary Change the relationship of a link
// @Tags Parents
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/eltern/updateLink [post]
func (h *ParentHandler) UpdateLink(c *gin.Context) {
	var req linkRequest
	if !bindPayload(c, &req, "link") || !requireID(c, req.LinkID) {
		return
	}
	link, err := h.lifecycle.UpdateLink(c.Request.Context(), req.LinkID, req.Kind)
	if err != nil {
		response.Error(c, err)
		return
	}
	success(c, http.StatusOK, link.ID, link)
}

// UnlinkChild godoc
// @Summary Remove a parent-child link
// @Tags Parents
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/eltern/unlinkChild [post]
func (h *ParentHandler) UnlinkChild(c *gin.Context) {
	var req linkRequest
	if !bindPayload(c, &req, "link") || !requireID(c, req.LinkID) {
		return
	}
	if err := h.lifecycle.UnlinkChild(c.Request.Context(), req.LinkID); err != nil {
		response.Error(c, err)
		return
	}
	success(c, http.StatusOK, req.LinkID, gin.H{"linkId": req.LinkID})
}

// EmployeeHandler serves /admin/mitarbeiter.
type EmployeeHandler struct {
	users     userDirectory
	lifecycle employeeLinker
}

// NewEmployeeHandler constructs an EmployeeHandler.
func NewEmployeeHandler(users userDirectory, lifecycle employeeLinker) *EmployeeHandler {
	return &EmployeeHandler{users: users, lifecycle: lifecycle}
}

type employeeProfileRequest struct {
	userIDRequest
	service.EmployeeProfileRequest
}

type linkTeacherRequest struct {
	UserID    string `form:"userId" json:"userId"`
	TeacherID string `form:"erzieherId" json:"erzieherId"`
}

// List godoc
// @Summary Employees with profiles and linked teachers
// @Tags Employees
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/mitarbeiter [get]
func (h *EmployeeHandler) List(c *gin.Context) {
	overview, err := h.users.EmployeeOverview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, nil)
}

// UpdateProfile godoc
// @Summary Update employee position
// @Tags Employees
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/mitarbeiter/updateProfile [post]
func (h *EmployeeHandler) UpdateProfile(c *gin.Context) {
	var req employeeProfileRequest
	if !bindPayload(c, &req, "employee profile") || !requireID(c, req.UserID) {
		return
	}
	profile, err := h.lifecycle.UpdateEmployeeProfile(c.Request.Context(), req.UserID, req.EmployeeProfileRequest)
	if err != nil {
		response.Error(c, err)
		return
	}
	success(c, http.StatusOK, profile.ID, profile)
}

// LinkTeacher godoc
// @Summary Link a teacher record to an employee
// @Description Fails with TEACHER_ALREADY_LINKED when another employee holds the teacher.
// @Tags Employees
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/mitarbeiter/linkErzieher [post]
func (h *EmployeeHandler) LinkTeacher(c *gin.Context) {
	var req linkTeacherRequest
	if !bindPayload(c, &req, "link") || !requireID(c, req.UserID) {
		return
	}
	profile, err := h.lifecycle.LinkTeacherToEmployee(c.Request.Context(), req.UserID, req.TeacherID)
	if err != nil {
		response.Error(c, err)
		return
	}
	success(c, http.StatusOK, profile.ID, profile)
}

// UnlinkTeacher godoc
// @Summary Clear an employee's teacher link
// @Tags Employees
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/mitarbeiter/unlinkErzieher [post]
func (h *EmployeeHandler) UnlinkTeacher(c *gin.Context) {
	var req userIDRequest
	if !bindPayload(c, &req, "link") || !requireID(c, req.UserID) {
		return
	}
	if err := h.lifecycle.UnlinkTeacher(c.Request.Context(), req.UserID); err != nil {
		response.Error(c, err)
		return
	}
	success(c, http.StatusOK, req.UserID, gin.H{"userId": req.UserID})
}
