package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kita-portal/kita-api/internal/models"
	"github.com/kita-portal/kita-api/pkg/database"
	appErrors "github.com/kita-portal/kita-api/pkg/errors"
	"github.com/kita-portal/kita-api/pkg/validation"
)

type childRepository interface {
	List(ctx context.Context) ([]models.ChildWithGroup, error)
	FindByID(ctx context.Context, id string) (*models.Child, error)
	GroupExists(ctx context.Context, groupID string) (bool, error)
	Create(ctx context.Context, child *models.Child) error
	Update(ctx context.Context, child *models.Child) error
	Delete(ctx context.Context, id string) error
}

// ChildRequest is the payload of the child create and edit actions.
type ChildRequest struct {
	FirstName string  `form:"vorname" json:"vorname" validate:"required,max=100"`
	LastName  string  `form:"nachname" json:"nachname" validate:"required,max=100"`
	BirthDate string  `form:"geburtstag" json:"geburtstag" validate:"required,isodate"`
	GroupID   *string `form:"gruppeId" json:"gruppeId"`
	PhotoPath *string `form:"fotoPath" json:"fotoPath" validate:"omitempty,max=500"`
}

// ChildService manages enrolled children.
type ChildService struct {
	repo      childRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewChildService constructs a ChildService.
func NewChildService(repo childRepository, validate *validator.Validate, logger *zap.Logger) *ChildService {
	if validate == nil {
		validate = validation.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChildService{repo: repo, validator: validate, logger: logger}
}

// List returns all children with their group.
func (s *ChildService) List(ctx context.Context) ([]models.ChildWithGroup, error) {
	children, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list children")
	}
	return children, nil
}

// Create enrolls a new child.
func (s *ChildService) Create(ctx context.Context, req ChildRequest) (*models.Child, error) {
	child, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, child); err != nil {
		return nil, writeError(err, "child", "create", nil)
	}
	return child, nil
}

// Update replaces the fields of a child.
func (s *ChildService) Update(ctx context.Context, id string, req ChildRequest) (*models.Child, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "child")
	}
	child, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	child.ID = current.ID
	child.CreatedAt = current.CreatedAt
	if err := s.repo.Update(ctx, child); err != nil {
		return nil, writeError(err, "child", "update", nil)
	}
	return child, nil
}

// Delete removes a child and its parent links.
func (s *ChildService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError(err, "child", "delete", nil)
	}
	return nil
}

func (s *ChildService) prepare(ctx context.Context, req ChildRequest) (*models.Child, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.BirthDate = strings.TrimSpace(req.BirthDate)
	req.GroupID = normalizeOptional(req.GroupID)
	req.PhotoPath = normalizeOptional(req.PhotoPath)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "child")
	}

	if req.GroupID != nil {
		exists, err := s.repo.GroupExists(ctx, *req.GroupID)
		if err != nil && database.IsInvalidTextRepresentation(err) {
			exists, err = false, nil
		}
		if err != nil {
			return nil, appErrors.Internal(err, "failed to check group")
		}
		if !exists {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
	}

	return &models.Child{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		BirthDate: req.BirthDate,
		GroupID:   req.GroupID,
		PhotoPath: req.PhotoPath,
	}, nil
}
