package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kita-portal/kita-api/internal/models"
	appErrors "github.com/kita-portal/kita-api/pkg/errors"
	"github.com/kita-portal/kita-api/pkg/validation"
)

type teacherRepository interface {
	List(ctx context.Context) ([]models.Teacher, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
}

// TeacherRequest represents the payload for creating and editing teachers.
type TeacherRequest struct {
	FirstName string  `form:"vorname" json:"vorname" validate:"required,max=100"`
	LastName  string  `form:"nachname" json:"nachname" validate:"required,max=100"`
	Email     string  `form:"email" json:"email" validate:"required,email"`
	PhotoPath *string `form:"fotoPath" json:"fotoPath" validate:"omitempty,max=500"`
}

// TeacherService orchestrates teacher operations.
type TeacherService struct {
	repo      teacherRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs a TeacherService.
func NewTeacherService(repo teacherRepository, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validation.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, validator: validate, logger: logger}
}

// List returns teachers ordered by last and first name.
func (s *TeacherService) List(ctx context.Context) ([]models.Teacher, error) {
	teachers, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list teachers")
	}
	return teachers, nil
}

// Create registers a new teacher record.
func (s *TeacherService) Create(ctx context.Context, req TeacherRequest) (*models.Teacher, error) {
	req.normalize()
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "teacher")
	}
	if err := s.ensureUniqueEmail(ctx, req.Email, ""); err != nil {
		return nil, err
	}

	teacher := &models.Teacher{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		PhotoPath: req.PhotoPath,
	}
	if err := s.repo.Create(ctx, teacher); err != nil {
		return nil, writeError(err, "teacher", "create", appErrors.ErrDuplicateEmail)
	}
	return teacher, nil
}

// Update modifies an existing teacher.
func (s *TeacherService) Update(ctx context.Context, id string, req TeacherRequest) (*models.Teacher, error) {
	req.normalize()
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "teacher")
	}

	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "teacher")
	}
	if err := s.ensureUniqueEmail(ctx, req.Email, id); err != nil {
		return nil, err
	}

	teacher.FirstName = req.FirstName
	teacher.LastName = req.LastName
	teacher.Email = req.Email
	teacher.PhotoPath = req.PhotoPath

	if err := s.repo.Update(ctx, teacher); err != nil {
		return nil, writeError(err, "teacher", "update", appErrors.ErrDuplicateEmail)
	}
	return teacher, nil
}

func (s *TeacherService) ensureUniqueEmail(ctx context.Context, email, excludeID string) error {
	exists, err := s.repo.ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return appErrors.Internal(err, "failed to check email")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrDuplicateEmail, "email already used by another teacher")
	}
	return nil
}

func (r *TeacherRequest) normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.PhotoPath = normalizeOptional(r.PhotoPath)
}
