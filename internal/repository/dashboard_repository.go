package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/kita-portal/kita-api/internal/models"
)

// DashboardRepository answers the read-only projections of the public dashboard.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository constructs a DashboardRepository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// BirthdaysOn returns children whose birth date falls on monthDay (MM-DD), regardless of year.
func (r *DashboardRepository) BirthdaysOn(ctx context.Context, monthDay string) ([]models.ChildWithGroup, error) {
	query := `SELECT ` + childWithGroupColumns + ` FROM children c LEFT JOIN care_groups g ON g.id = c.group_id
		WHERE SUBSTRING(c.birth_date FROM 6 FOR 5) = $1 ORDER BY c.first_name ASC, c.last_name ASC`
	children := []models.ChildWithGroup{}
	if err := r.db.SelectContext(ctx, &children, query, monthDay); err != nil {
		return nil, fmt.Errorf("list birthdays: %w", err)
	}
	return children, nil
}

// OnDuty returns shifts on date that cover clock (HH:MM), ordered by start time.
func (r *DashboardRepository) OnDuty(ctx context.Context, date, clock string) ([]models.ScheduleWithTeacher, error) {
	query := `SELECT ` + scheduleWithTeacherColumns + ` FROM schedules s JOIN teachers t ON t.id = s.teacher_id
		WHERE s.date = $1 AND s.start_time <= $2 AND s.end_time >= $2 ORDER BY s.start_time ASC, t.last_name ASC`
	entries := []models.ScheduleWithTeacher{}
	if err := r.db.SelectContext(ctx, &entries, query, date, clock); err != nil {
		return nil, fmt.Errorf("list on duty: %w", err)
	}
	return entries, nil
}

// MealsOn returns the meals planned for date in slot order.
func (r *DashboardRepository) MealsOn(ctx context.Context, date string) ([]models.Meal, error) {
	query := `SELECT ` + mealColumns + ` FROM meals WHERE date = $1 ORDER BY ` + mealSlotOrder
	meals := []models.Meal{}
	if err := r.db.SelectContext(ctx, &meals, query, date); err != nil {
		return nil, fmt.Errorf("list meals of day: %w", err)
	}
	return meals, nil
}

// ActiveAnnouncements returns announcements valid on date, important first, then newest.
func (r *DashboardRepository) ActiveAnnouncements(ctx context.Context, date string) ([]models.Announcement, error) {
	query := `SELECT ` + announcementColumns + ` FROM announcements WHERE valid_from <= $1 AND valid_to >= $1 ORDER BY ` + priorityRank + ` DESC, created_at DESC`
	items := []models.Announcement{}
	if err := r.db.SelectContext(ctx, &items, query, date); err != nil {
		return nil, fmt.Errorf("list active announcements: %w", err)
	}
	return items, nil
}
