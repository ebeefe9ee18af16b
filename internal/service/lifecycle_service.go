package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kita-portal/kita-api/internal/models"
	"github.com/kita-portal/kita-api/internal/repository"
	appErrors "github.com/kita-portal/kita-api/pkg/errors"
	"github.com/kita-portal/kita-api/pkg/validation"
)

type lifecycleRepository interface {
	WithTx(ctx context.Context, fn func(repository.LifecycleStore) error) error
}

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// ParentProfileRequest updates the contact data of a parent.
type ParentProfileRequest struct {
	Phone   *string `form:"telefon" json:"telefon" validate:"omitempty,max=50"`
	Address *string `form:"adresse" json:"adresse" validate:"omitempty,max=500"`
}

// EmployeeProfileRequest updates the position of an employee.
type EmployeeProfileRequest struct {
	Position *string `form:"position" json:"position" validate:"omitempty,max=200"`
}

// LifecycleService keeps role profiles consistent with user roles and guards deletions.
// Every operation runs in one transaction with the guarded rows locked.
type LifecycleService struct {
	repo      lifecycleRepository
	audit     auditWriter
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLifecycleService constructs a LifecycleService.
func NewLifecycleService(repo lifecycleRepository, audit auditWriter, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *LifecycleService {
	if validate == nil {
		validate = validation.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LifecycleService{repo: repo, audit: audit, metrics: metrics, validator: validate, logger: logger}
}

// SetRole assigns role to the user and creates the matching profile when absent.
// Profiles of the previous role are retained.
func (s *LifecycleService) SetRole(ctx context.Context, actor models.Actor, userID string, role models.UserRole) (*models.User, error) {
	return s.setRole(ctx, actor, role, func(ctx context.Context, store repository.LifecycleStore) (*models.User, error) {
		return store.LockUser(ctx, userID)
	})
}

// SetRoleByEmail looks the user up by email and assigns role.
func (s *LifecycleService) SetRoleByEmail(ctx context.Context, actor models.Actor, email string, role models.UserRole) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "email is required").WithDetails(map[string]string{"email": "email ist ein Pflichtfeld"})
	}
	return s.setRole(ctx, actor, role, func(ctx context.Context, store repository.LifecycleStore) (*models.User, error) {
		return store.LockUserByEmail(ctx, email)
	})
}

func (s *LifecycleService) setRole(ctx context.Context, actor models.Actor, role models.UserRole, lock func(context.Context, repository.LifecycleStore) (*models.User, error)) (*models.User, error) {
	role = models.UserRole(strings.TrimSpace(string(role)))
	if !role.Valid() {
		return nil, s.done("set_role", appErrors.Clone(appErrors.ErrInvalidRole, ""))
	}

	var updated *models.User
	var previous models.UserRole
	err := s.repo.WithTx(ctx, func(store repository.LifecycleStore) error {
		user, err := lock(ctx, store)
		if err != nil {
			return lookupError(err, "user")
		}
		previous = user.Role
		if err := store.UpdateUserRole(ctx, user.ID, role); err != nil {
			return err
		}
		switch role {
		case models.RoleParent:
			_, err = store.EnsureParentProfile(ctx, user.ID)
		case models.RoleEmployee:
			_, err = store.EnsureEmployeeProfile(ctx, user.ID)
		}
		if err != nil {
			return err
		}
		user.Role = role
		updated = user
		return nil
	})
	if err != nil {
		return nil, s.done("set_role", err)
	}

	s.recordAudit(ctx, actor, models.AuditActionRoleChange, updated.ID, map[string]string{"role": string(previous)}, map[string]string{"role": string(role)})
	s.logger.Info("user role changed", zap.String("user_id", updated.ID), zap.String("from", string(previous)), zap.String("to", string(role)))
	s.done("set_role", nil)
	return updated, nil
}

// DeleteUser removes a user and every dependent row. The last admin cannot be deleted.
func (s *LifecycleService) DeleteUser(ctx context.Context, actor models.Actor, userID string) error {
	var deleted *models.User
	err := s.repo.WithTx(ctx, func(store repository.LifecycleStore) error {
		admins, err := store.LockAdminIDs(ctx)
		if err != nil {
			return err
		}
		user, err := store.LockUser(ctx, userID)
		if err != nil {
			return lookupError(err, "user")
		}
		if user.Role == models.RoleAdmin && len(admins) <= 1 {
			return appErrors.Clone(appErrors.ErrLastAdminProtected, "")
		}
		if err := store.DeleteUserCascade(ctx, user.ID); err != nil {
			return err
		}
		deleted = user
		return nil
	})
	if err != nil {
		return s.done("delete_user", err)
	}

	s.recordAudit(ctx, actor, models.AuditActionUserDelete, deleted.ID, map[string]string{"email": deleted.Email, "role": string(deleted.Role)}, nil)
	s.logger.Info("user deleted", zap.String("user_id", deleted.ID))
	return s.done("delete_user", nil)
}

// DeleteGroup removes a group that no child references.
func (s *LifecycleService) DeleteGroup(ctx context.Context, groupID string) error {
	err := s.repo.WithTx(ctx, func(store repository.LifecycleStore) error {
		if err := store.LockGroup(ctx, groupID); err != nil {
			return lookupError(err, "group")
		}
		count, err := store.CountChildrenInGroup(ctx, groupID)
		if err != nil {
			return err
		}
		if count > 0 {
			return appErrors.Clone(appErrors.ErrGroupHasChildren, "")
		}
		return store.DeleteGroup(ctx, groupID)
	})
	return s.done("delete_group", err)
}

// DeleteTeacher removes a teacher without shifts and clears any employee link to it.
func (s *LifecycleService) DeleteTeacher(ctx context.Context, teacherID string) error {
	err := s.repo.WithTx(ctx, func(store repository.LifecycleStore) error {
		if _, err := store.LockTeacher(ctx, teacherID); err != nil {
			return lookupError(err, "teacher")
		}
		count, err := store.CountSchedulesForTeacher(ctx, teacherID)
		if err != nil {
			return err
		}
		if count > 0 {
			return appErrors.Clone(appErrors.ErrTeacherHasSchedule, "")
		}
		if err := store.ClearTeacherLinks(ctx, teacherID); err != nil {
			return err
		}
		return store.DeleteTeacher(ctx, teacherID)
	})
	return s.done("delete_teacher", err)
}

// LinkChildToParent links a child to the parent profile of userID, creating the profile if absent.
// An empty kind defaults to guardian.
func (s *LifecycleService) LinkChildToParent(ctx context.Context, userID, childID string, kind models.RelationKind) (*models.ChildLink, error) {
	kind, err := normalizeRelation(kind)
	if err != nil {
		return nil, s.done("link_child", err)
	}

	var link *models.ChildLink
	err = s.repo.WithTx(ctx, func(store repository.LifecycleStore) error {
		if _, err := store.LockUser(ctx, userID); err != nil {
			return lookupError(err, "user")
		}
		if err := store.LockChild(ctx, childID); err != nil {
			return lookupError(err, "child")
		}
		profile, err := store.EnsureParentProfile(ctx, userID)
		if err != nil {
			return err
		}
		if _, err := store.FindLink(ctx, profile.ID, childID); err == nil {
			return appErrors.Clone(appErrors.ErrDuplicateLink, "")
		} else if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		link = &models.ChildLink{ParentID: profile.ID, ChildID: childID, Relationship: kind}
		if err := store.CreateLink(ctx, link); err != nil {
			return writeError(err, "child link", "create", appErrors.ErrDuplicateLink)
		}
		return nil
	})
	if err != nil {
		return nil, s.done("link_child", err)
	}
	s.done("link_child", nil)
	return link, nil
}

// UpdateLink changes the relationship kind of a link.
func (s *LifecycleService) UpdateLink(ctx context.Context, linkID string, kind models.RelationKind) (*models.ChildLink, error) {
	kind, err := normalizeRelation(kind)
	if err != nil {
		return nil, s.done("update_link", err)
	}

	var link *models.ChildLink
	err = s.repo.WithTx(ctx, func(store repository.LifecycleStore) error {
		current, err := store.LockLink(ctx, linkID)
		if err != nil {
			return lookupError(err, "child link")
		}
		if err := store.UpdateLinkRelationship(ctx, linkID, kind); err != nil {
			return err
		}
		current.Relationship = kind
		link = current
		return nil
	})
	if err != nil {
		return nil, s.done("update_link", err)
	}
	s.done("update_link", nil)
	return link, nil
}

// UnlinkChild removes a link between a parent and a child.
func (s *LifecycleService) UnlinkChild(ctx context.Context, linkID string) error {
	err := s.repo.WithTx(ctx, func(store repository.LifecycleStore) error {
		if _, err := store.LockLink(ctx, linkID); err != nil {
			return lookupError(err, "child link")
		}
		return store.DeleteLink(ctx, linkID)
	})
	return s.done("unlink_child", err)
}

// LinkTeacherToEmployee points the employee profile of userID at a teacher record.
// Re-linking the same pair is a no-op; a teacher linked to someone else is refused.
func (s *LifecycleService) LinkTeacherToEmployee(ctx context.Context, userID, teacherID string) (*models.EmployeeProfile, error) {
	teacherID = strings.TrimSpace(teacherID)
	if teacherID == "" {
		return nil, s.done("link_teacher", appErrors.Clone(appErrors.ErrValidation, "teacher is required").WithDetails(map[string]string{"erzieherId": "erzieherId ist ein Pflichtfeld"}))
	}

	var profile *models.EmployeeProfile
	err := s.repo.WithTx(ctx, func(store repository.LifecycleStore) error {
		if _, err := store.LockUser(ctx, userID); err != nil {
			return lookupError(err, "user")
		}
		if _, err := store.LockTeacher(ctx, teacherID); err != nil {
			if isMissing(err) {
				return appErrors.Clone(appErrors.ErrTeacherNotFound, "")
			}
			return err
		}
		holder, err := store.LockEmployeeByTeacher(ctx, teacherID)
		switch {
		case err == nil && holder.UserID != userID:
			return appErrors.Clone(appErrors.ErrTeacherAlreadyLinked, "")
		case err != nil && !errors.Is(err, sql.ErrNoRows):
			return err
		}

		current, err := store.EnsureEmployeeProfile(ctx, userID)
		if err != nil {
			return err
		}
		current.TeacherID = &teacherID
		if err := store.UpdateEmployeeProfile(ctx, current); err != nil {
			return writeError(err, "employee profile", "update", appErrors.ErrTeacherAlreadyLinked)
		}
		profile = current
		return nil
	})
	if err != nil {
		return nil, s.done("link_teacher", err)
	}
	s.done("link_teacher", nil)
	return profile, nil
}

// UnlinkTeacher clears the teacher reference of an employee profile.
func (s *LifecycleService) UnlinkTeacher(ctx context.Context, userID string) error {
	err := s.repo.WithTx(ctx, func(store repository.LifecycleStore) error {
		profile, err := store.FindEmployeeProfile(ctx, userID)
		if err != nil {
			return lookupError(err, "employee profile")
		}
		profile.TeacherID = nil
		return store.UpdateEmployeeProfile(ctx, profile)
	})
	return s.done("unlink_teacher", err)
}

// UpdateParentProfile stores phone and address, creating the profile if absent.
func (s *LifecycleService) UpdateParentProfile(ctx context.Context, userID string, req ParentProfileRequest) (*models.ParentProfile, error) {
	req.Phone = normalizeOptional(req.Phone)
	req.Address = normalizeOptional(req.Address)
	if err := s.validator.Struct(req); err != nil {
		return nil, s.done("update_parent_profile", invalidPayload(err, "parent profile"))
	}

	var profile *models.ParentProfile
	err := s.repo.WithTx(ctx, func(store repository.LifecycleStore) error {
		if _, err := store.LockUser(ctx, userID); err != nil {
			return lookupError(err, "user")
		}
		current, err := store.EnsureParentProfile(ctx, userID)
		if err != nil {
			return err
		}
		current.Phone = req.Phone
		current.Address = req.Address
		if err := store.UpdateParentProfile(ctx, current); err != nil {
			return err
		}
		profile = current
		return nil
	})
	if err != nil {
		return nil, s.done("update_parent_profile", err)
	}
	s.done("update_parent_profile", nil)
	return profile, nil
}

// UpdateEmployeeProfile stores the position, creating the profile if absent.
func (s *LifecycleService) UpdateEmployeeProfile(ctx context.Context, userID string, req EmployeeProfileRequest) (*models.EmployeeProfile, error) {
	req.Position = normalizeOptional(req.Position)
	if err := s.validator.Struct(req); err != nil {
		return nil, s.done("update_employee_profile", invalidPayload(err, "employee profile"))
	}

	var profile *models.EmployeeProfile
	err := s.repo.WithTx(ctx, func(store repository.LifecycleStore) error {
		if _, err := store.LockUser(ctx, userID); err != nil {
			return lookupError(err, "user")
		}
		current, err := store.EnsureEmployeeProfile(ctx, userID)
		if err != nil {
			return err
		}
		current.Position = req.Position
		if err := store.UpdateEmployeeProfile(ctx, current); err != nil {
			return err
		}
		profile = current
		return nil
	})
	if err != nil {
		return nil, s.done("update_employee_profile", err)
	}
	s.done("update_employee_profile", nil)
	return profile, nil
}

// done normalises err into a typed error and counts the outcome.
func (s *LifecycleService) done(operation string, err error) error {
	if err == nil {
		s.metrics.RecordLifecycle(operation, "ok")
		return nil
	}
	var appErr *appErrors.Error
	if !errors.As(err, &appErr) {
		appErr = appErrors.FromError(writeError(err, strings.ReplaceAll(operation, "_", " "), "complete", nil))
	}
	if appErr.Status >= 500 {
		s.logger.Error("lifecycle operation failed", zap.String("operation", operation), zap.Error(err))
	}
	s.metrics.RecordLifecycle(operation, appErr.Code)
	return appErr
}

func (s *LifecycleService) recordAudit(ctx context.Context, actor models.Actor, action, userID string, oldValues, newValues map[string]string) {
	if s.audit == nil {
		return
	}
	entry := &models.AuditLog{
		Action:     action,
		Resource:   "user",
		ResourceID: &userID,
		OldValues:  encodeAuditValues(oldValues),
		NewValues:  encodeAuditValues(newValues),
		IPAddress:  actor.IPAddress,
		UserAgent:  actor.UserAgent,
	}
	if actor.UserID != "" {
		id := actor.UserID
		entry.UserID = &id
	}
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to write audit log", zap.String("action", action), zap.String("user_id", userID), zap.Error(err))
	}
}

func encodeAuditValues(values map[string]string) *string {
	if len(values) == 0 {
		return nil
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return nil
	}
	encoded := string(raw)
	return &encoded
}

func normalizeRelation(kind models.RelationKind) (models.RelationKind, error) {
	kind = models.RelationKind(strings.TrimSpace(string(kind)))
	if kind == "" {
		return models.RelationGuardian, nil
	}
	if !kind.Valid() {
		return "", appErrors.Clone(appErrors.ErrInvalidRelationKind, "")
	}
	return kind, nil
}
