package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kita-portal/kita-api/internal/models"
	appErrors "github.com/kita-portal/kita-api/pkg/errors"
)

type fakeMealRepo struct {
	meals     []*models.Meal
	from, to  string
	createErr error
}

func (f *fakeMealRepo) ListRange(ctx context.Context, from, to string) ([]models.Meal, error) {
	f.from, f.to = from, to
	var out []models.Meal
	for _, m := range f.meals {
		if m.Date >= from && m.Date <= to {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMealRepo) FindByID(ctx context.Context, id string) (*models.Meal, error) {
	if err := parseID(id); err != nil {
		return nil, err
	}
	for _, m := range f.meals {
		if m.ID == id {
			copied := *m
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeMealRepo) ExistsForSlot(ctx context.Context, date string, mealType models.MealType) (bool, error) {
	for _, m := range f.meals {
		if m.Date == date && m.Type == mealType {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMealRepo) Create(ctx context.Context, meal *models.Meal) error {
	if f.createErr != nil {
		return f.createErr
	}
	meal.ID = "m-new"
	copied := *meal
	f.meals = append(f.meals, &copied)
	return nil
}

func (f *fakeMealRepo) UpdateDescription(ctx context.Context, meal *models.Meal) error {
	for _, m := range f.meals {
		if m.ID == meal.ID {
			m.Description = meal.Description
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeMealRepo) Delete(ctx context.Context, id string) error {
	if err := parseID(id); err != nil {
		return err
	}
	for i, m := range f.meals {
		if m.ID == id {
			f.meals = append(f.meals[:i], f.meals[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func TestMealCreateRejectsTakenSlot(t *testing.T) {
	repo := &fakeMealRepo{}
	svc := NewMealService(repo, nil, zap.NewNop(), time.UTC)

	meal, err := svc.Create(context.Background(), CreateMealRequest{Date: "2024-03-12", Type: models.MealLunch, Description: "  Nudeln  "})
	require.NoError(t, err)
	assert.Equal(t, "Nudeln", meal.Description)

	_, err = svc.Create(context.Background(), CreateMealRequest{Date: "2024-03-12", Type: models.MealLunch, Description: "Reis"})
	requireCode(t, err, appErrors.ErrDuplicateMealSlot)

	_, err = svc.Create(context.Background(), CreateMealRequest{Date: "2024-03-12", Type: models.MealSnack, Description: "Apfel"})
	require.NoError(t, err)
}

func TestMealCreateLateUniqueViolation(t *testing.T) {
	repo := &fakeMealRepo{createErr: &pq.Error{Code: "23505", Constraint: "meals_date_meal_type_key"}}
	svc := NewMealService(repo, nil, zap.NewNop(), time.UTC)

	_, err := svc.Create(context.Background(), CreateMealRequest{Date: "2024-03-12", Type: models.MealLunch, Description: "Reis"})
	requireCode(t, err, appErrors.ErrDuplicateMealSlot)
}

func TestMealCreateValidation(t *testing.T) {
	svc := NewMealService(&fakeMealRepo{}, nil, zap.NewNop(), time.UTC)

	_, err := svc.Create(context.Background(), CreateMealRequest{Date: "12.03.2024", Type: "dinner", Description: "   "})
	requireCode(t, err, appErrors.ErrValidation)
}

func TestMealUpdateKeepsSlot(t *testing.T) {
	repo := &fakeMealRepo{meals: []*models.Meal{{ID: "m1", Date: "2024-03-12", Type: models.MealLunch, Description: "Nudeln"}}}
	svc := NewMealService(repo, nil, zap.NewNop(), time.UTC)

	meal, err := svc.UpdateDescription(context.Background(), "m1", UpdateMealRequest{Description: "Linsen"})
	require.NoError(t, err)
	assert.Equal(t, models.MealLunch, meal.Type)
	assert.Equal(t, "2024-03-12", meal.Date)
	assert.Equal(t, "Linsen", repo.meals[0].Description)

	_, err = svc.UpdateDescription(context.Background(), "missing", UpdateMealRequest{Description: "Linsen"})
	requireCode(t, err, appErrors.ErrNotFound)
	requireCode(t, svc.Delete(context.Background(), "missing"), appErrors.ErrNotFound)
	require.NoError(t, svc.Delete(context.Background(), "m1"))
}

func TestMealWeekIsMondayToFriday(t *testing.T) {
	repo := &fakeMealRepo{}
	svc := NewMealService(repo, nil, zap.NewNop(), time.UTC)

	week, err := svc.Week(context.Background(), "2024-03-14")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-11", repo.from)
	assert.Equal(t, "2024-03-15", repo.to)
	assert.Len(t, week.Week.Dates, 5)
	assert.Equal(t, "2024-03-04", week.Week.Previous)

	_, err = svc.Week(context.Background(), "next tuesday")
	requireCode(t, err, appErrors.ErrValidation)
}

func TestMealMalformedIDs(t *testing.T) {
	svc := NewMealService(&fakeMealRepo{}, nil, zap.NewNop(), time.UTC)

	_, err := svc.UpdateDescription(context.Background(), malformedID, UpdateMealRequest{Description: "Suppe"})
	requireCode(t, err, appErrors.ErrNotFound)
	requireCode(t, svc.Delete(context.Background(), malformedID), appErrors.ErrNotFound)
}
