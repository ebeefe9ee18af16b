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

type groupRepository interface {
	List(ctx context.Context) ([]models.Group, error)
	Create(ctx context.Context, group *models.Group) error
	Update(ctx context.Context, group *models.Group) error
}

// GroupRequest is the payload of the group create and edit actions.
type GroupRequest struct {
	Name  string `form:"name" json:"name" validate:"required,max=100"`
	Color string `form:"farbe" json:"farbe" validate:"required,hexcolor"`
}

// GroupService manages care groups. Deletion is guarded by the lifecycle service.
type GroupService struct {
	repo      groupRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGroupService constructs a GroupService.
func NewGroupService(repo groupRepository, validate *validator.Validate, logger *zap.Logger) *GroupService {
	if validate == nil {
		validate = validation.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GroupService{repo: repo, validator: validate, logger: logger}
}

// List returns all groups ordered by name.
func (s *GroupService) List(ctx context.Context) ([]models.Group, error) {
	groups, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list groups")
	}
	return groups, nil
}

// Create stores a new group.
func (s *GroupService) Create(ctx context.Context, req GroupRequest) (*models.Group, error) {
	req.normalize()
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "group")
	}
	group := &models.Group{Name: req.Name, Color: req.Color}
	if err := s.repo.Create(ctx, group); err != nil {
		return nil, writeError(err, "group", "create", nil)
	}
	return group, nil
}

// Update replaces name and colour of a group.
func (s *GroupService) Update(ctx context.Context, id string, req GroupRequest) (*models.Group, error) {
	req.normalize()
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "group")
	}
	group := &models.Group{ID: id, Name: req.Name, Color: req.Color}
	if err := s.repo.Update(ctx, group); err != nil {
		return nil, writeError(err, "group", "update", nil)
	}
	return group, nil
}

func (r *GroupRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Color = strings.TrimSpace(r.Color)
}
