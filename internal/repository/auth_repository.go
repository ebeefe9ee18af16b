package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kita-portal/kita-api/internal/models"
)

// AuthRepository stores credential accounts and sessions.
type AuthRepository struct {
	db *sqlx.DB
}

// NewAuthRepository constructs an AuthRepository.
func NewAuthRepository(db *sqlx.DB) *AuthRepository {
	return &AuthRepository{db: db}
}

// CreateUserWithCredentials inserts the user, its credential account and the profile
// matching its role in one transaction.
func (r *AuthRepository) CreateUserWithCredentials(ctx context.Context, user *models.User, passwordHash string) (err error) {
	now := time.Now().UTC()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Role = user.Role.Effective()
	user.CreatedAt = now
	user.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin sign up: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const userQuery = `INSERT INTO users (id, name, email, email_verified, image, role, created_at, updated_at)
		VALUES (:id, :name, :email, :email_verified, :image, :role, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, userQuery, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	account := models.Account{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		AccountID:    user.ID,
		ProviderID:   models.CredentialProvider,
		PasswordHash: &passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	const accountQuery = `INSERT INTO accounts (id, user_id, account_id, provider_id, password_hash, created_at, updated_at)
		VALUES (:id, :user_id, :account_id, :provider_id, :password_hash, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, accountQuery, account); err != nil {
		return fmt.Errorf("create account: %w", err)
	}

	store := &txStore{tx: tx}
	switch user.Role {
	case models.RoleParent:
		_, err = store.EnsureParentProfile(ctx, user.ID)
	case models.RoleEmployee:
		_, err = store.EnsureEmployeeProfile(ctx, user.ID)
	}
	if err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit sign up: %w", err)
	}
	return nil
}

// FindCredentialAccount returns the credential account of a user.
func (r *AuthRepository) FindCredentialAccount(ctx context.Context, userID string) (*models.Account, error) {
	const query = `SELECT id, user_id, account_id, provider_id, password_hash, created_at, updated_at FROM accounts WHERE user_id = $1 AND provider_id = $2 LIMIT 1`
	var account models.Account
	if err := r.db.GetContext(ctx, &account, query, userID, models.CredentialProvider); err != nil {
		return nil, err
	}
	return &account, nil
}

// CreateSession persists a session row.
func (r *AuthRepository) CreateSession(ctx context.Context, session *models.Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	const query = `INSERT INTO sessions (id, user_id, expires_at, ip_address, user_agent, created_at, updated_at)
		VALUES (:id, :user_id, :expires_at, :ip_address, :user_agent, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// FindSession returns an unexpired session by ID.
func (r *AuthRepository) FindSession(ctx context.Context, id string, now time.Time) (*models.Session, error) {
	const query = `SELECT id, user_id, expires_at, ip_address, user_agent, created_at, updated_at FROM sessions WHERE id = $1 AND expires_at > $2`
	var session models.Session
	if err := r.db.GetContext(ctx, &session, query, id, now); err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteSession removes a session row. Deleting a missing session is not an error.
func (r *AuthRepository) DeleteSession(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions purges sessions that expired before now.
func (r *AuthRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}
