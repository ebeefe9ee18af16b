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
	appErrors "github.com/kita-portal/kita-api/pkg/errors"
	"github.com/kita-portal/kita-api/pkg/validation"
)

type mealRepository interface {
	ListRange(ctx context.Context, from, to string) ([]models.Meal, error)
	FindByID(ctx context.Context, id string) (*models.Meal, error)
	ExistsForSlot(ctx context.Context, date string, mealType models.MealType) (bool, error)
	Create(ctx context.Context, meal *models.Meal) error
	UpdateDescription(ctx context.Context, meal *models.Meal) error
	Delete(ctx context.Context, id string) error
}

// CreateMealRequest is the payload of the Speiseplan create action.
type CreateMealRequest struct {
	Date        string          `form:"datum" json:"datum" validate:"required,isodate"`
	Type        models.MealType `form:"typ" json:"typ" validate:"required,oneof=breakfast lunch snack"`
	Description string          `form:"beschreibung" json:"beschreibung" validate:"required,max=500"`
}

// UpdateMealRequest changes the dish of a planned meal.
type UpdateMealRequest struct {
	Description string `form:"beschreibung" json:"beschreibung" validate:"required,max=500"`
}

// MealService manages the Speiseplan.
type MealService struct {
	repo      mealRepository
	validator *validator.Validate
	logger    *zap.Logger
	loc       *time.Location
	clock     calendar.Clock
}

// NewMealService constructs a MealService.
func NewMealService(repo mealRepository, validate *validator.Validate, logger *zap.Logger, loc *time.Location) *MealService {
	if validate == nil {
		validate = validation.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &MealService{repo: repo, validator: validate, logger: logger, loc: loc, clock: time.Now}
}

// Week returns the Monday to Friday plan containing the week parameter (empty means the current week).
func (s *MealService) Week(ctx context.Context, weekParam string) (*dto.MealWeek, error) {
	week, err := calendar.ParseWeek(weekParam, s.clock(), s.loc, 5)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid week").
			WithDetails(map[string]string{"week": "week muss ein Datum im Format JJJJ-MM-TT sein"})
	}
	meals, err := s.repo.ListRange(ctx, week.From(), week.To())
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list meals")
	}
	return &dto.MealWeek{Week: dto.NewWeekRange(week), Meals: meals}, nil
}

// Create plans a meal for a free (date, type) slot.
func (s *MealService) Create(ctx context.Context, req CreateMealRequest) (*models.Meal, error) {
	req.Date = strings.TrimSpace(req.Date)
	req.Type = models.MealType(strings.TrimSpace(string(req.Type)))
	req.Description = strings.TrimSpace(req.Description)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "meal")
	}

	taken, err := s.repo.ExistsForSlot(ctx, req.Date, req.Type)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check meal slot")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrDuplicateMealSlot, "")
	}

	meal := &models.Meal{Date: req.Date, Type: req.Type, Description: req.Description}
	if err := s.repo.Create(ctx, meal); err != nil {
		return nil, writeError(err, "meal", "create", appErrors.ErrDuplicateMealSlot)
	}
	return meal, nil
}

// UpdateDescription changes the dish; the slot stays fixed.
func (s *MealService) UpdateDescription(ctx context.Context, id string, req UpdateMealRequest) (*models.Meal, error) {
	req.Description = strings.TrimSpace(req.Description)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "meal")
	}
	meal, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "meal")
	}
	meal.Description = req.Description
	if err := s.repo.UpdateDescription(ctx, meal); err != nil {
		return nil, writeError(err, "meal", "update", nil)
	}
	return meal, nil
}

// Delete removes a meal.
func (s *MealService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError(err, "meal", "delete", nil)
	}
	return nil
}
