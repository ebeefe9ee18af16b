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

type announcementRepository interface {
	List(ctx context.Context) ([]models.Announcement, error)
	FindByID(ctx context.Context, id string) (*models.Announcement, error)
	Create(ctx context.Context, item *models.Announcement) error
	Update(ctx context.Context, item *models.Announcement) error
	Delete(ctx context.Context, id string) error
}

// AnnouncementRequest is the payload of the announcement create and edit actions.
type AnnouncementRequest struct {
	Title     string          `form:"titel" json:"titel" validate:"required,max=200"`
	Message   string          `form:"nachricht" json:"nachricht" validate:"required"`
	ValidFrom string          `form:"gueltigVon" json:"gueltigVon" validate:"required,isodate"`
	ValidTo   string          `form:"gueltigBis" json:"gueltigBis" validate:"required,isodate"`
	Priority  models.Priority `form:"prioritaet" json:"prioritaet" validate:"oneof=normal important"`
}

// AnnouncementService manages announcements.
type AnnouncementService struct {
	repo      announcementRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAnnouncementService constructs an AnnouncementService.
func NewAnnouncementService(repo announcementRepository, validate *validator.Validate, logger *zap.Logger) *AnnouncementService {
	if validate == nil {
		validate = validation.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnnouncementService{repo: repo, validator: validate, logger: logger}
}

// List returns all announcements, latest validity start first.
func (s *AnnouncementService) List(ctx context.Context) ([]models.Announcement, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list announcements")
	}
	return items, nil
}

// Create publishes a new announcement.
func (s *AnnouncementService) Create(ctx context.Context, req AnnouncementRequest) (*models.Announcement, error) {
	if err := s.check(&req); err != nil {
		return nil, err
	}
	item := &models.Announcement{
		Title:     req.Title,
		Message:   req.Message,
		ValidFrom: req.ValidFrom,
		ValidTo:   req.ValidTo,
		Priority:  req.Priority,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, writeError(err, "announcement", "create", nil)
	}
	return item, nil
}

// Update replaces all fields of an announcement.
func (s *AnnouncementService) Update(ctx context.Context, id string, req AnnouncementRequest) (*models.Announcement, error) {
	if err := s.check(&req); err != nil {
		return nil, err
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "announcement")
	}
	item.Title = req.Title
	item.Message = req.Message
	item.ValidFrom = req.ValidFrom
	item.ValidTo = req.ValidTo
	item.Priority = req.Priority
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, writeError(err, "announcement", "update", nil)
	}
	return item, nil
}

// Delete removes an announcement.
func (s *AnnouncementService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError(err, "announcement", "delete", nil)
	}
	return nil
}

func (s *AnnouncementService) check(req *AnnouncementRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	req.Message = strings.TrimSpace(req.Message)
	req.ValidFrom = strings.TrimSpace(req.ValidFrom)
	req.ValidTo = strings.TrimSpace(req.ValidTo)
	req.Priority = models.Priority(strings.TrimSpace(string(req.Priority)))
	if req.Priority == "" {
		req.Priority = models.PriorityNormal
	}
	if err := s.validator.Struct(req); err != nil {
		return invalidPayload(err, "announcement")
	}
	// ISO dates order lexically
	if req.ValidFrom > req.ValidTo {
		return appErrors.Clone(appErrors.ErrInvalidDateRange, "")
	}
	return nil
}
