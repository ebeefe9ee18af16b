package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kita-portal/kita-api/internal/models"
)

func TestMealExistsForSlot(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMealRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM meals WHERE date = $1 AND meal_type = $2 LIMIT 1")).
		WithArgs("2024-06-10", models.MealLunch).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM meals WHERE date = $1 AND meal_type = $2 LIMIT 1")).
		WithArgs("2024-06-10", models.MealSnack).
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.ExistsForSlot(context.Background(), "2024-06-10", models.MealLunch)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsForSlot(context.Background(), "2024-06-10", models.MealSnack)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMealListRangeOrdersBySlot(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMealRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY date ASC, CASE meal_type WHEN 'breakfast' THEN 0 WHEN 'lunch' THEN 1 ELSE 2 END")).
		WithArgs("2024-06-10", "2024-06-14").
		WillReturnRows(sqlmock.NewRows([]string{"id", "date", "meal_type", "description", "created_at", "updated_at"}))

	meals, err := repo.ListRange(context.Background(), "2024-06-10", "2024-06-14")
	require.NoError(t, err)
	assert.Empty(t, meals)
	assert.NoError(t, mock.ExpectationsWereMet())
}
