package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/kita-portal/kita-api/internal/models"
	"github.com/kita-portal/kita-api/pkg/database"
	appErrors "github.com/kita-portal/kita-api/pkg/errors"
	"github.com/kita-portal/kita-api/pkg/validation"
)

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type authRepository interface {
	CreateUserWithCredentials(ctx context.Context, user *models.User, passwordHash string) error
	FindCredentialAccount(ctx context.Context, userID string) (*models.Account, error)
	CreateSession(ctx context.Context, session *models.Session) error
	FindSession(ctx context.Context, id string, now time.Time) (*models.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// AuthConfig defines configuration for the session flows.
type AuthConfig struct {
	Secret     string
	SessionTTL time.Duration
	Issuer     string
}

// AuthService signs users up and in and resolves session cookies.
type AuthService struct {
	users     authUserRepository
	repo      authRepository
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	clock     func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users authUserRepository, repo authRepository, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.Default()
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = 7 * 24 * time.Hour
	}
	if config.Issuer == "" {
		config.Issuer = "kita-api"
	}
	return &AuthService{users: users, repo: repo, metrics: metrics, validator: validate, logger: logger, config: config, clock: time.Now}
}

// SignUp registers a parent account with email and password.
func (s *AuthService) SignUp(ctx context.Context, req models.SignUpRequest) (*models.User, error) {
	return s.CreateAccount(ctx, req, models.RoleParent)
}

// CreateAccount registers an account with the given role and its role profile.
func (s *AuthService) CreateAccount(ctx context.Context, req models.SignUpRequest, role models.UserRole) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "sign up")
	}
	if !role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrInvalidRole, "")
	}

	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrDuplicateEmail, "")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Internal(err, "failed to check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to hash password")
	}

	user := &models.User{Name: req.Name, Email: req.Email, Role: role}
	if err := s.repo.CreateUserWithCredentials(ctx, user, string(hash)); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Wrap(err, appErrors.ErrDuplicateEmail.Code, appErrors.ErrDuplicateEmail.Status, appErrors.ErrDuplicateEmail.Message)
		}
		return nil, appErrors.Internal(err, "failed to create account")
	}
	s.logger.Info("account created", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// SignIn verifies credentials, persists a session and returns its signed token.
func (s *AuthService) SignIn(ctx context.Context, req models.SignInRequest) (*models.SignInResult, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "sign in")
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordSignIn("invalid")
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, appErrors.Internal(err, "failed to fetch user")
	}

	account, err := s.repo.FindCredentialAccount(ctx, user.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordSignIn("invalid")
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, appErrors.Internal(err, "failed to fetch account")
	}
	if account.PasswordHash == nil || bcrypt.CompareHashAndPassword([]byte(*account.PasswordHash), []byte(req.Password)) != nil {
		s.metrics.RecordSignIn("invalid")
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	now := s.clock().UTC()
	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.config.SessionTTL),
		IPAddress: req.IP,
		UserAgent: req.UserAgent,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, appErrors.Internal(err, "failed to create session")
	}
	session.User = user

	token, err := s.sign(session, now)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to sign session")
	}

	if err := s.users.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &user.ID,
		Action:     models.AuditActionSignIn,
		Resource:   "auth",
		ResourceID: &session.ID,
		IPAddress:  req.IP,
		UserAgent:  req.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record sign in audit log", zap.Error(err))
	}
	s.metrics.RecordSignIn("ok")

	return &models.SignInResult{Token: token, Session: session, Redirect: user.Role.Dashboard()}, nil
}

// Resolve turns a session token into the live session with the current user attached.
// The role is always read fresh from the users table.
func (s *AuthService) Resolve(ctx context.Context, token string) (*models.Session, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}

	session, err := s.repo.FindSession(ctx, claims.ID, s.clock().UTC())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session expired")
		}
		return nil, appErrors.Internal(err, "failed to load session")
	}
	if session.UserID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session mismatch")
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "user no longer exists")
		}
		return nil, appErrors.Internal(err, "failed to load user")
	}
	session.User = user
	return session, nil
}

// SignOut deletes the session behind token. Unknown or invalid tokens are ignored.
func (s *AuthService) SignOut(ctx context.Context, token string, actor models.Actor) error {
	claims, err := s.parse(token)
	if err != nil {
		return nil
	}
	if err := s.repo.DeleteSession(ctx, claims.ID); err != nil {
		return appErrors.Internal(err, "failed to delete session")
	}
	if err := s.users.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &claims.UserID,
		Action:     models.AuditActionSignOut,
		Resource:   "auth",
		ResourceID: &claims.ID,
		IPAddress:  actor.IPAddress,
		UserAgent:  actor.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record sign out audit log", zap.Error(err))
	}
	return nil
}

// SessionTTL reports how long issued sessions stay valid.
func (s *AuthService) SessionTTL() time.Duration {
	return s.config.SessionTTL
}

func (s *AuthService) sign(session *models.Session, issuedAt time.Time) (string, error) {
	claims := &models.SessionClaims{
		UserID: session.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Issuer:    s.config.Issuer,
			Subject:   session.UserID,
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Secret))
}

func (s *AuthService) parse(tokenString string) (*models.SessionClaims, error) {
	if tokenString == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing session")
	}
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithIssuer(s.config.Issuer), jwt.WithTimeFunc(s.clock))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid session")
	}
	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid session claims")
	}
	return claims, nil
}
