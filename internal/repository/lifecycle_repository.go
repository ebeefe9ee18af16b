package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kita-portal/kita-api/internal/models"
)

// LifecycleStore exposes the guarded reads and writes of the role-profile lifecycle.
// Lock* methods take row locks that are held until the surrounding transaction ends.
type LifecycleStore interface {
	LockUser(ctx context.Context, id string) (*models.User, error)
	LockUserByEmail(ctx context.Context, email string) (*models.User, error)
	LockAdminIDs(ctx context.Context) ([]string, error)
	UpdateUserRole(ctx context.Context, id string, role models.UserRole) error
	DeleteUserCascade(ctx context.Context, id string) error

	EnsureParentProfile(ctx context.Context, userID string) (*models.ParentProfile, error)
	EnsureEmployeeProfile(ctx context.Context, userID string) (*models.EmployeeProfile, error)
	FindEmployeeProfile(ctx context.Context, userID string) (*models.EmployeeProfile, error)
	UpdateParentProfile(ctx context.Context, profile *models.ParentProfile) error
	UpdateEmployeeProfile(ctx context.Context, profile *models.EmployeeProfile) error

	LockGroup(ctx context.Context, id string) error
	CountChildrenInGroup(ctx context.Context, groupID string) (int, error)
	DeleteGroup(ctx context.Context, id string) error

	LockTeacher(ctx context.Context, id string) (*models.Teacher, error)
	CountSchedulesForTeacher(ctx context.Context, teacherID string) (int, error)
	LockEmployeeByTeacher(ctx context.Context, teacherID string) (*models.EmployeeProfile, error)
	ClearTeacherLinks(ctx context.Context, teacherID string) error
	DeleteTeacher(ctx context.Context, id string) error

	LockChild(ctx context.Context, id string) error
	FindLink(ctx context.Context, parentID, childID string) (*models.ChildLink, error)
	LockLink(ctx context.Context, id string) (*models.ChildLink, error)
	CreateLink(ctx context.Context, link *models.ChildLink) error
	UpdateLinkRelationship(ctx context.Context, id string, kind models.RelationKind) error
	DeleteLink(ctx context.Context, id string) error
}

// LifecycleRepository runs lifecycle operations inside a database transaction.
type LifecycleRepository struct {
	db *sqlx.DB
}

// NewLifecycleRepository constructs a LifecycleRepository.
func NewLifecycleRepository(db *sqlx.DB) *LifecycleRepository {
	return &LifecycleRepository{db: db}
}

// WithTx runs fn in a transaction that is committed when fn returns nil and rolled back otherwise.
func (r *LifecycleRepository) WithTx(ctx context.Context, fn func(LifecycleStore) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin lifecycle tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(&txStore{tx: tx}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit lifecycle tx: %w", err)
	}
	return nil
}

type txStore struct {
	tx *sqlx.Tx
}

func (s *txStore) LockUser(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`
	var user models.User
	if err := s.tx.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *txStore) LockUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1) FOR UPDATE`
	var user models.User
	if err := s.tx.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

// LockAdminIDs locks every admin row; FOR UPDATE cannot be combined with COUNT.
func (s *txStore) LockAdminIDs(ctx context.Context) ([]string, error) {
	ids := []string{}
	if err := s.tx.SelectContext(ctx, &ids, `SELECT id FROM users WHERE role = $1 ORDER BY id FOR UPDATE`, models.RoleAdmin); err != nil {
		return nil, fmt.Errorf("lock admins: %w", err)
	}
	return ids, nil
}

func (s *txStore) UpdateUserRole(ctx context.Context, id string, role models.UserRole) error {
	res, err := s.tx.ExecContext(ctx, `UPDATE users SET role = $2, updated_at = $3 WHERE id = $1`, id, role, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update user role: %w", err)
	}
	return affectedOne(res, "update user role")
}

func (s *txStore) DeleteUserCascade(ctx context.Context, id string) error {
	steps := []struct {
		name  string
		query string
	}{
		{"child links", `DELETE FROM child_links WHERE parent_id IN (SELECT id FROM parents WHERE user_id = $1)`},
		{"parent profile", `DELETE FROM parents WHERE user_id = $1`},
		{"employee profile", `DELETE FROM employees WHERE user_id = $1`},
		{"sessions", `DELETE FROM sessions WHERE user_id = $1`},
		{"accounts", `DELETE FROM accounts WHERE user_id = $1`},
	}
	for _, step := range steps {
		if _, err := s.tx.ExecContext(ctx, step.query, id); err != nil {
			return fmt.Errorf("delete %s: %w", step.name, err)
		}
	}
	res, err := s.tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return affectedOne(res, "delete user")
}

// EnsureParentProfile creates the parent profile if absent and returns it.
func (s *txStore) EnsureParentProfile(ctx context.Context, userID string) (*models.ParentProfile, error) {
	now := time.Now().UTC()
	const insert = `INSERT INTO parents (id, user_id, created_at, updated_at) VALUES ($1, $2, $3, $3) ON CONFLICT (user_id) DO NOTHING`
	if _, err := s.tx.ExecContext(ctx, insert, uuid.NewString(), userID, now); err != nil {
		return nil, fmt.Errorf("ensure parent profile: %w", err)
	}
	var profile models.ParentProfile
	if err := s.tx.GetContext(ctx, &profile, `SELECT `+parentColumns+` FROM parents WHERE user_id = $1 FOR UPDATE`, userID); err != nil {
		return nil, fmt.Errorf("load parent profile: %w", err)
	}
	return &profile, nil
}

// EnsureEmployeeProfile creates the employee profile if absent and returns it.
func (s *txStore) EnsureEmployeeProfile(ctx context.Context, userID string) (*models.EmployeeProfile, error) {
	now := time.Now().UTC()
	const insert = `INSERT INTO employees (id, user_id, created_at, updated_at) VALUES ($1, $2, $3, $3) ON CONFLICT (user_id) DO NOTHING`
	if _, err := s.tx.ExecContext(ctx, insert, uuid.NewString(), userID, now); err != nil {
		return nil, fmt.Errorf("ensure employee profile: %w", err)
	}
	var profile models.EmployeeProfile
	if err := s.tx.GetContext(ctx, &profile, `SELECT `+employeeColumns+` FROM employees WHERE user_id = $1 FOR UPDATE`, userID); err != nil {
		return nil, fmt.Errorf("load employee profile: %w", err)
	}
	return &profile, nil
}

func (s *txStore) FindEmployeeProfile(ctx context.Context, userID string) (*models.EmployeeProfile, error) {
	var profile models.EmployeeProfile
	if err := s.tx.GetContext(ctx, &profile, `SELECT `+employeeColumns+` FROM employees WHERE user_id = $1 FOR UPDATE`, userID); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *txStore) UpdateParentProfile(ctx context.Context, profile *models.ParentProfile) error {
	profile.UpdatedAt = time.Now().UTC()
	res, err := s.tx.NamedExecContext(ctx, `UPDATE parents SET phone = :phone, address = :address, updated_at = :updated_at WHERE id = :id`, profile)
	if err != nil {
		return fmt.Errorf("update parent profile: %w", err)
	}
	return affectedOne(res, "update parent profile")
}

func (s *txStore) UpdateEmployeeProfile(ctx context.Context, profile *models.EmployeeProfile) error {
	profile.UpdatedAt = time.Now().UTC()
	res, err := s.tx.NamedExecContext(ctx, `UPDATE employees SET teacher_id = :teacher_id, position = :position, updated_at = :updated_at WHERE id = :id`, profile)
	if err != nil {
		return fmt.Errorf("update employee profile: %w", err)
	}
	return affectedOne(res, "update employee profile")
}

func (s *txStore) LockGroup(ctx context.Context, id string) error {
	var found string
	return s.tx.GetContext(ctx, &found, `SELECT id FROM care_groups WHERE id = $1 FOR UPDATE`, id)
}

func (s *txStore) CountChildrenInGroup(ctx context.Context, groupID string) (int, error) {
	var total int
	if err := s.tx.GetContext(ctx, &total, `SELECT COUNT(*) FROM children WHERE group_id = $1`, groupID); err != nil {
		return 0, fmt.Errorf("count group children: %w", err)
	}
	return total, nil
}

func (s *txStore) DeleteGroup(ctx context.Context, id string) error {
	res, err := s.tx.ExecContext(ctx, `DELETE FROM care_groups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	return affectedOne(res, "delete group")
}

func (s *txStore) LockTeacher(ctx context.Context, id string) (*models.Teacher, error) {
	var teacher models.Teacher
	if err := s.tx.GetContext(ctx, &teacher, `SELECT `+teacherColumns+` FROM teachers WHERE id = $1 FOR UPDATE`, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (s *txStore) CountSchedulesForTeacher(ctx context.Context, teacherID string) (int, error) {
	var total int
	if err := s.tx.GetContext(ctx, &total, `SELECT COUNT(*) FROM schedules WHERE teacher_id = $1`, teacherID); err != nil {
		return 0, fmt.Errorf("count teacher schedules: %w", err)
	}
	return total, nil
}

func (s *txStore) LockEmployeeByTeacher(ctx context.Context, teacherID string) (*models.EmployeeProfile, error) {
	var profile models.EmployeeProfile
	if err := s.tx.GetContext(ctx, &profile, `SELECT `+employeeColumns+` FROM employees WHERE teacher_id = $1 FOR UPDATE`, teacherID); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *txStore) ClearTeacherLinks(ctx context.Context, teacherID string) error {
	if _, err := s.tx.ExecContext(ctx, `UPDATE employees SET teacher_id = NULL, updated_at = $2 WHERE teacher_id = $1`, teacherID, time.Now().UTC()); err != nil {
		return fmt.Errorf("clear teacher links: %w", err)
	}
	return nil
}

func (s *txStore) DeleteTeacher(ctx context.Context, id string) error {
	res, err := s.tx.ExecContext(ctx, `DELETE FROM teachers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete teacher: %w", err)
	}
	return affectedOne(res, "delete teacher")
}

func (s *txStore) LockChild(ctx context.Context, id string) error {
	var found string
	return s.tx.GetContext(ctx, &found, `SELECT id FROM children WHERE id = $1 FOR UPDATE`, id)
}

// FindLink returns sql.ErrNoRows when the parent is not linked to the child.
func (s *txStore) FindLink(ctx context.Context, parentID, childID string) (*models.ChildLink, error) {
	var link models.ChildLink
	if err := s.tx.GetContext(ctx, &link, `SELECT `+linkColumns+` FROM child_links WHERE parent_id = $1 AND child_id = $2`, parentID, childID); err != nil {
		return nil, err
	}
	return &link, nil
}

func (s *txStore) LockLink(ctx context.Context, id string) (*models.ChildLink, error) {
	var link models.ChildLink
	if err := s.tx.GetContext(ctx, &link, `SELECT `+linkColumns+` FROM child_links WHERE id = $1 FOR UPDATE`, id); err != nil {
		return nil, err
	}
	return &link, nil
}

func (s *txStore) CreateLink(ctx context.Context, link *models.ChildLink) error {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	link.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO child_links (id, parent_id, child_id, relationship, created_at) VALUES (:id, :parent_id, :child_id, :relationship, :created_at)`
	if _, err := s.tx.NamedExecContext(ctx, query, link); err != nil {
		return fmt.Errorf("create child link: %w", err)
	}
	return nil
}

func (s *txStore) UpdateLinkRelationship(ctx context.Context, id string, kind models.RelationKind) error {
	res, err := s.tx.ExecContext(ctx, `UPDATE child_links SET relationship = $2 WHERE id = $1`, id, kind)
	if err != nil {
		return fmt.Errorf("update child link: %w", err)
	}
	return affectedOne(res, "update child link")
}

func (s *txStore) DeleteLink(ctx context.Context, id string) error {
	res, err := s.tx.ExecContext(ctx, `DELETE FROM child_links WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete child link: %w", err)
	}
	return affectedOne(res, "delete child link")
}

var _ LifecycleStore = (*txStore)(nil)
