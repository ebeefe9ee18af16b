package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kita-portal/kita-api/internal/models"
)

const (
	mealColumns = `id, date, meal_type, description, created_at, updated_at`
	// breakfast, lunch, snack in the order of the day
	mealSlotOrder = `CASE meal_type WHEN 'breakfast' THEN 0 WHEN 'lunch' THEN 1 ELSE 2 END`
)

// MealRepository manages persistence for the Speiseplan.
type MealRepository struct {
	db *sqlx.DB
}

// NewMealRepository constructs a MealRepository.
func NewMealRepository(db *sqlx.DB) *MealRepository {
	return &MealRepository{db: db}
}

// ListRange returns meals between from and to (inclusive) ordered by date and slot.
func (r *MealRepository) ListRange(ctx context.Context, from, to string) ([]models.Meal, error) {
	query := `SELECT ` + mealColumns + ` FROM meals WHERE date >= $1 AND date <= $2 ORDER BY date ASC, ` + mealSlotOrder
	meals := []models.Meal{}
	if err := r.db.SelectContext(ctx, &meals, query, from, to); err != nil {
		return nil, fmt.Errorf("list meals: %w", err)
	}
	return meals, nil
}

// FindByID fetches a meal by ID.
func (r *MealRepository) FindByID(ctx context.Context, id string) (*models.Meal, error) {
	query := `SELECT ` + mealColumns + ` FROM meals WHERE id = $1`
	var meal models.Meal
	if err := r.db.GetContext(ctx, &meal, query, id); err != nil {
		return nil, err
	}
	return &meal, nil
}

// ExistsForSlot checks whether a meal is already planned for date and type.
func (r *MealRepository) ExistsForSlot(ctx context.Context, date string, mealType models.MealType) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM meals WHERE date = $1 AND meal_type = $2 LIMIT 1`, date, mealType); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check meal slot: %w", err)
	}
	return true, nil
}

// Create inserts a new meal.
func (r *MealRepository) Create(ctx context.Context, meal *models.Meal) error {
	if meal.ID == "" {
		meal.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	meal.CreatedAt = now
	meal.UpdatedAt = now

	const query = `INSERT INTO meals (id, date, meal_type, description, created_at, updated_at)
		VALUES (:id, :date, :meal_type, :description, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, meal); err != nil {
		return fmt.Errorf("create meal: %w", err)
	}
	return nil
}

// UpdateDescription changes the dish of a planned meal.
func (r *MealRepository) UpdateDescription(ctx context.Context, meal *models.Meal) error {
	meal.UpdatedAt = time.Now().UTC()
	const query = `UPDATE meals SET description = :description, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, meal)
	if err != nil {
		return fmt.Errorf("update meal: %w", err)
	}
	return affectedOne(res, "update meal")
}

// Delete removes a meal.
func (r *MealRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM meals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete meal: %w", err)
	}
	return affectedOne(res, "delete meal")
}
