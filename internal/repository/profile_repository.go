package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/kita-portal/kita-api/internal/models"
)

const (
	parentColumns   = `id, user_id, phone, address, created_at, updated_at`
	employeeColumns = `id, user_id, teacher_id, position, created_at, updated_at`
	linkColumns     = `id, parent_id, child_id, relationship, created_at`
)

// ProfileRepository reads parent and employee profiles for listings and role areas.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository constructs a ProfileRepository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// FindParentByUser returns the parent profile of a user or sql.ErrNoRows.
func (r *ProfileRepository) FindParentByUser(ctx context.Context, userID string) (*models.ParentProfile, error) {
	var profile models.ParentProfile
	if err := r.db.GetContext(ctx, &profile, `SELECT `+parentColumns+` FROM parents WHERE user_id = $1`, userID); err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindEmployeeByUser returns the employee profile of a user or sql.ErrNoRows.
func (r *ProfileRepository) FindEmployeeByUser(ctx context.Context, userID string) (*models.EmployeeProfile, error) {
	var profile models.EmployeeProfile
	if err := r.db.GetContext(ctx, &profile, `SELECT `+employeeColumns+` FROM employees WHERE user_id = $1`, userID); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ListParentsByUsers returns the parent profiles belonging to userIDs.
func (r *ProfileRepository) ListParentsByUsers(ctx context.Context, userIDs []string) ([]models.ParentProfile, error) {
	profiles := []models.ParentProfile{}
	if len(userIDs) == 0 {
		return profiles, nil
	}
	query := `SELECT ` + parentColumns + ` FROM parents WHERE user_id = ANY($1)`
	if err := r.db.SelectContext(ctx, &profiles, query, pq.Array(userIDs)); err != nil {
		return nil, fmt.Errorf("list parent profiles: %w", err)
	}
	return profiles, nil
}

// ListEmployeesByUsers returns the employee profiles belonging to userIDs.
func (r *ProfileRepository) ListEmployeesByUsers(ctx context.Context, userIDs []string) ([]models.EmployeeProfile, error) {
	profiles := []models.EmployeeProfile{}
	if len(userIDs) == 0 {
		return profiles, nil
	}
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE user_id = ANY($1)`
	if err := r.db.SelectContext(ctx, &profiles, query, pq.Array(userIDs)); err != nil {
		return nil, fmt.Errorf("list employee profiles: %w", err)
	}
	return profiles, nil
}

// ListLinkedChildren returns the children linked to the given parent profiles with their group.
func (r *ProfileRepository) ListLinkedChildren(ctx context.Context, parentIDs []string) ([]models.LinkedChild, error) {
	children := []models.LinkedChild{}
	if len(parentIDs) == 0 {
		return children, nil
	}
	query := `SELECT l.id AS link_id, l.parent_id, l.relationship, ` + childWithGroupColumns + `
		FROM child_links l
		JOIN children c ON c.id = l.child_id
		LEFT JOIN care_groups g ON g.id = c.group_id
		WHERE l.parent_id = ANY($1)
		ORDER BY c.last_name ASC, c.first_name ASC`
	if err := r.db.SelectContext(ctx, &children, query, pq.Array(parentIDs)); err != nil {
		return nil, fmt.Errorf("list linked children: %w", err)
	}
	return children, nil
}

// ListLinkedTeacherIDs returns every teacher currently referenced by an employee profile.
func (r *ProfileRepository) ListLinkedTeacherIDs(ctx context.Context) ([]string, error) {
	ids := []string{}
	if err := r.db.SelectContext(ctx, &ids, `SELECT teacher_id FROM employees WHERE teacher_id IS NOT NULL ORDER BY teacher_id`); err != nil {
		return nil, fmt.Errorf("list linked teachers: %w", err)
	}
	return ids, nil
}
