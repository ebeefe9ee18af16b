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

const scheduleWithTeacherColumns = `s.id, s.teacher_id, s.date, s.start_time, s.end_time, s.created_at, s.updated_at,
	t.first_name AS teacher_first_name, t.last_name AS teacher_last_name, t.photo_path AS teacher_photo_path`

// ScheduleRepository manages persistence for Dienstplan entries.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs a ScheduleRepository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// ListRange returns shifts between from and to (inclusive) ordered by date and start time.
// A non-empty teacherID restricts the result to that teacher.
func (r *ScheduleRepository) ListRange(ctx context.Context, from, to, teacherID string) ([]models.ScheduleWithTeacher, error) {
	query := `SELECT ` + scheduleWithTeacherColumns + ` FROM schedules s JOIN teachers t ON t.id = s.teacher_id WHERE s.date >= $1 AND s.date <= $2`
	args := []interface{}{from, to}
	if teacherID != "" {
		query += " AND s.teacher_id = $3"
		args = append(args, teacherID)
	}
	query += " ORDER BY s.date ASC, s.start_time ASC"

	entries := []models.ScheduleWithTeacher{}
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return entries, nil
}

// FindByID fetches a shift by ID.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*models.ScheduleEntry, error) {
	const query = `SELECT id, teacher_id, date, start_time, end_time, created_at, updated_at FROM schedules WHERE id = $1`
	var entry models.ScheduleEntry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// TeacherExists checks whether the referenced teacher exists.
func (r *ScheduleRepository) TeacherExists(ctx context.Context, teacherID string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM teachers WHERE id = $1`, teacherID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check teacher: %w", err)
	}
	return true, nil
}

// Create inserts a new shift.
func (r *ScheduleRepository) Create(ctx context.Context, entry *models.ScheduleEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	const query = `INSERT INTO schedules (id, teacher_id, date, start_time, end_time, created_at, updated_at)
		VALUES (:id, :teacher_id, :date, :start_time, :end_time, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

// UpdateTimes changes start and end of a shift.
func (r *ScheduleRepository) UpdateTimes(ctx context.Context, entry *models.ScheduleEntry) error {
	entry.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schedules SET start_time = :start_time, end_time = :end_time, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, entry)
	if err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	return affectedOne(res, "update schedule")
}

// Delete removes a shift.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	return affectedOne(res, "delete schedule")
}
