package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kita-portal/kita-api/internal/models"
)

func TestBirthdaysComparesMonthDayOnly(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDashboardRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE SUBSTRING(c.birth_date FROM 6 FOR 5) = $1")).
		WithArgs("06-15").
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "birth_date", "group_id", "photo_path", "created_at", "updated_at", "group_name", "group_color"}).
			AddRow("c1", "Lina", "Adler", "2020-06-15", nil, nil, now, now, nil, nil))

	children, err := repo.BirthdaysOn(context.Background(), "06-15")
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "2020-06-15", children[0].BirthDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOnDutyUsesInclusiveWindow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDashboardRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.date = $1 AND s.start_time <= $2 AND s.end_time >= $2")).
		WithArgs("2024-06-10", "09:30").
		WillReturnRows(sqlmock.NewRows([]string{"id", "teacher_id", "date", "start_time", "end_time", "created_at", "updated_at", "teacher_first_name", "teacher_last_name", "teacher_photo_path"}))

	entries, err := repo.OnDuty(context.Background(), "2024-06-10", "09:30")
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActiveAnnouncementsRankImportantFirst(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDashboardRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY CASE priority WHEN 'important' THEN 1 ELSE 0 END DESC, created_at DESC")).
		WithArgs("2024-06-10").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "message", "valid_from", "valid_to", "priority", "created_at", "updated_at"}).
			AddRow("a2", "Fest", "Sommerfest", "2024-06-01", "2024-06-30", string(models.PriorityImportant), now, now).
			AddRow("a1", "Info", "Elternabend", "2024-06-01", "2024-06-30", string(models.PriorityNormal), now, now))

	items, err := repo.ActiveAnnouncements(context.Background(), "2024-06-10")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, models.PriorityImportant, items[0].Priority)
	assert.NoError(t, mock.ExpectationsWereMet())
}
