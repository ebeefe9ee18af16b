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

const childWithGroupColumns = `c.id, c.first_name, c.last_name, c.birth_date, c.group_id, c.photo_path, c.created_at, c.updated_at, g.name AS group_name, g.color AS group_color`

// ChildRepository manages persistence for children.
type ChildRepository struct {
	db *sqlx.DB
}

// NewChildRepository constructs a ChildRepository.
func NewChildRepository(db *sqlx.DB) *ChildRepository {
	return &ChildRepository{db: db}
}

// List returns all children with their group ordered by last and first name.
func (r *ChildRepository) List(ctx context.Context) ([]models.ChildWithGroup, error) {
	query := `SELECT ` + childWithGroupColumns + ` FROM children c LEFT JOIN care_groups g ON g.id = c.group_id ORDER BY c.last_name ASC, c.first_name ASC`
	children := []models.ChildWithGroup{}
	if err := r.db.SelectContext(ctx, &children, query); err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	return children, nil
}

// FindByID fetches a child by ID.
func (r *ChildRepository) FindByID(ctx context.Context, id string) (*models.Child, error) {
	const query = `SELECT id, first_name, last_name, birth_date, group_id, photo_path, created_at, updated_at FROM children WHERE id = $1`
	var child models.Child
	if err := r.db.GetContext(ctx, &child, query, id); err != nil {
		return nil, err
	}
	return &child, nil
}

// GroupExists checks whether the referenced group exists.
func (r *ChildRepository) GroupExists(ctx context.Context, groupID string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM care_groups WHERE id = $1`, groupID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check group: %w", err)
	}
	return true, nil
}

// Count returns the number of children.
func (r *ChildRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM children`); err != nil {
		return 0, fmt.Errorf("count children: %w", err)
	}
	return total, nil
}

// Create inserts a new child.
func (r *ChildRepository) Create(ctx context.Context, child *models.Child) error {
	if child.ID == "" {
		child.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	child.CreatedAt = now
	child.UpdatedAt = now

	const query = `INSERT INTO children (id, first_name, last_name, birth_date, group_id, photo_path, created_at, updated_at)
		VALUES (:id, :first_name, :last_name, :birth_date, :group_id, :photo_path, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, child); err != nil {
		return fmt.Errorf("create child: %w", err)
	}
	return nil
}

// Update modifies an existing child.
func (r *ChildRepository) Update(ctx context.Context, child *models.Child) error {
	child.UpdatedAt = time.Now().UTC()
	const query = `UPDATE children SET first_name = :first_name, last_name = :last_name, birth_date = :birth_date, group_id = :group_id, photo_path = :photo_path, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, child)
	if err != nil {
		return fmt.Errorf("update child: %w", err)
	}
	return affectedOne(res, "update child")
}

// Delete removes a child together with its parent links in one transaction.
func (r *ChildRepository) Delete(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin child delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM child_links WHERE child_id = $1`, id); err != nil {
		return fmt.Errorf("delete child links: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM children WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete child: %w", err)
	}
	if err = affectedOne(res, "delete child"); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit child delete: %w", err)
	}
	return nil
}
