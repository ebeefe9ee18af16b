package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kita-portal/kita-api/internal/dto"
	"github.com/kita-portal/kita-api/internal/models"
	"github.com/kita-portal/kita-api/pkg/calendar"
	"github.com/kita-portal/kita-api/pkg/database"
	appErrors "github.com/kita-portal/kita-api/pkg/errors"
	"github.com/kita-portal/kita-api/pkg/validation"
)

type scheduleRepository interface {
	ListRange(ctx context.Context, from, to, teacherID string) ([]models.ScheduleWithTeacher, error)
	FindByID(ctx context.Context, id string) (*models.ScheduleEntry, error)
	TeacherExists(ctx context.Context, teacherID string) (bool, error)
	Create(ctx context.Context, entry *models.ScheduleEntry) error
	UpdateTimes(ctx context.Context, entry *models.ScheduleEntry) error
	Delete(ctx context.Context, id string) error
}

type teacherLister interface {
	List(ctx context.Context) ([]models.Teacher, error)
}

// CreateScheduleRequest is the payload of the Dienstplan create action.
type CreateScheduleRequest struct {
	TeacherID string `form:"erzieherId" json:"erzieherId" validate:"required"`
	Date      string `form:"datum" json:"datum" validate:"required,isodate"`
	StartTime string `form:"startZeit" json:"startZeit" validate:"required,hhmm"`
	EndTime   string `form:"endZeit" json:"endZeit" validate:"required,hhmm"`
}

// UpdateScheduleRequest changes the times of a shift.
type UpdateScheduleRequest struct {
	StartTime string `form:"startZeit" json:"startZeit" validate:"required,hhmm"`
	EndTime   string `form:"endZeit" json:"endZeit" validate:"required,hhmm"`
}

// ScheduleService manages the Dienstplan.
type ScheduleService struct {
	repo      scheduleRepository
	teachers  teacherLister
	validator *validator.Validate
	logger    *zap.Logger
	loc       *time.Location
	clock     calendar.Clock
}

// NewScheduleService constructs a ScheduleService.
func NewScheduleService(repo scheduleRepository, teachers teacherLister, validate *validator.Validate, logger *zap.Logger, loc *time.Location) *ScheduleService {
	if validate == nil {
		validate = validation.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ScheduleService{repo: repo, teachers: teachers, validator: validate, logger: logger, loc: loc, clock: time.Now}
}

// Week returns the Monday to Sunday plan containing the week parameter (empty means the current week).
func (s *ScheduleService) Week(ctx context.Context, weekParam string) (*dto.ScheduleWeek, error) {
	week, err := calendar.ParseWeek(weekParam, s.clock(), s.loc, 7)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid week").
			WithDetails(map[string]string{"week": "week muss ein Datum im Format JJJJ-MM-TT sein"})
	}
	teachers, err := s.teachers.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list teachers")
	}
	entries, err := s.repo.ListRange(ctx, week.From(), week.To(), "")
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list schedules")
	}
	return &dto.ScheduleWeek{Week: dto.NewWeekRange(week), Teachers: teachers, Entries: entries}, nil
}

// Create adds a shift for an existing teacher.
func (s *ScheduleService) Create(ctx context.Context, req CreateScheduleRequest) (*models.ScheduleEntry, error) {
	req.TeacherID = strings.TrimSpace(req.TeacherID)
	req.Date = strings.TrimSpace(req.Date)
	req.StartTime = strings.TrimSpace(req.StartTime)
	req.EndTime = strings.TrimSpace(req.EndTime)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "schedule")
	}
	if err := checkTimeRange(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	exists, err := s.repo.TeacherExists(ctx, req.TeacherID)
	if err != nil && database.IsInvalidTextRepresentation(err) {
		exists, err = false, nil
	}
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check teacher")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrTeacherNotFound, "")
	}

	entry := &models.ScheduleEntry{TeacherID: req.TeacherID, Date: req.Date, StartTime: req.StartTime, EndTime: req.EndTime}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, writeError(err, "schedule", "create", nil)
	}
	return entry, nil
}

// UpdateTimes changes start and end of an existing shift.
func (s *ScheduleService) UpdateTimes(ctx context.Context, id string, req UpdateScheduleRequest) (*models.ScheduleEntry, error) {
	req.StartTime = strings.TrimSpace(req.StartTime)
	req.EndTime = strings.TrimSpace(req.EndTime)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "schedule")
	}
	if err := checkTimeRange(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "schedule")
	}
	entry.StartTime = req.StartTime
	entry.EndTime = req.EndTime
	if err := s.repo.UpdateTimes(ctx, entry); err != nil {
		return nil, writeError(err, "schedule", "update", nil)
	}
	return entry, nil
}

// Delete removes a shift.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError(err, "schedule", "delete", nil)
	}
	return nil
}

// ShiftsForTeacher lists one teacher's shifts in the current week.
func (s *ScheduleService) ShiftsForTeacher(ctx context.Context, teacherID string) (dto.WeekRange, []models.ScheduleWithTeacher, error) {
	week := calendar.WeekOf(s.clock().In(s.loc), 7)
	entries, err := s.repo.ListRange(ctx, week.From(), week.To(), teacherID)
	if err != nil {
		return dto.WeekRange{}, nil, appErrors.Internal(err, "failed to list shifts")
	}
	return dto.NewWeekRange(week), entries, nil
}

// checkTimeRange requires start strictly before end; zero padded HH:MM values compare lexically.
func checkTimeRange(start, end string) error {
	if start >= end {
		return appErrors.Clone(appErrors.ErrInvalidTimeRange, "")
	}
	return nil
}
