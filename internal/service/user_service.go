package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/kita-portal/kita-api/internal/dto"
	"github.com/kita-portal/kita-api/internal/models"
	appErrors "github.com/kita-portal/kita-api/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type profileRepository interface {
	FindParentByUser(ctx context.Context, userID string) (*models.ParentProfile, error)
	FindEmployeeByUser(ctx context.Context, userID string) (*models.EmployeeProfile, error)
	ListParentsByUsers(ctx context.Context, userIDs []string) ([]models.ParentProfile, error)
	ListEmployeesByUsers(ctx context.Context, userIDs []string) ([]models.EmployeeProfile, error)
	ListLinkedChildren(ctx context.Context, parentIDs []string) ([]models.LinkedChild, error)
	ListLinkedTeacherIDs(ctx context.Context) ([]string, error)
}

type childLister interface {
	List(ctx context.Context) ([]models.ChildWithGroup, error)
}

type teacherDirectory interface {
	List(ctx context.Context) ([]models.Teacher, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type shiftLister interface {
	ShiftsForTeacher(ctx context.Context, teacherID string) (dto.WeekRange, []models.ScheduleWithTeacher, error)
}

// UserService assembles the user administration pages and the parent and employee areas.
type UserService struct {
	users    userRepository
	profiles profileRepository
	children childLister
	teachers teacherDirectory
	shifts   shiftLister
	logger   *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(users userRepository, profiles profileRepository, children childLister, teachers teacherDirectory, shifts shiftLister, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, profiles: profiles, children: children, teachers: teachers, shifts: shifts, logger: logger}
}

// List returns users newest first together with every profile they own.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.UserWithProfiles, *models.Pagination, error) {
	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list users")
	}

	ids := userIDs(users)
	parents, err := s.profiles.ListParentsByUsers(ctx, ids)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list parent profiles")
	}
	employees, err := s.profiles.ListEmployeesByUsers(ctx, ids)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list employee profiles")
	}

	parentByUser := make(map[string]*models.ParentProfile, len(parents))
	for i := range parents {
		parentByUser[parents[i].UserID] = &parents[i]
	}
	employeeByUser := make(map[string]*models.EmployeeProfile, len(employees))
	for i := range employees {
		employeeByUser[employees[i].UserID] = &employees[i]
	}

	result := make([]models.UserWithProfiles, 0, len(users))
	for _, u := range users {
		result = append(result, models.UserWithProfiles{
			User:     u,
			Parent:   parentByUser[u.ID],
			Employee: employeeByUser[u.ID],
		})
	}

	page, size := filter.Page, filter.PageSize
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 200 {
		size = 50
	}
	return result, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// ParentOverview lists parent users with profile and linked children plus every child for linking.
func (s *UserService) ParentOverview(ctx context.Context) (*dto.ParentOverview, error) {
	users, err := s.users.ListByRole(ctx, models.RoleParent)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list parents")
	}
	profiles, err := s.profiles.ListParentsByUsers(ctx, userIDs(users))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list parent profiles")
	}

	profileByUser := make(map[string]*models.ParentProfile, len(profiles))
	parentIDs := make([]string, 0, len(profiles))
	for i := range profiles {
		profileByUser[profiles[i].UserID] = &profiles[i]
		parentIDs = append(parentIDs, profiles[i].ID)
	}

	links, err := s.profiles.ListLinkedChildren(ctx, parentIDs)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list linked children")
	}
	linksByParent := make(map[string][]models.LinkedChild)
	for _, link := range links {
		linksByParent[link.ParentID] = append(linksByParent[link.ParentID], link)
	}

	children, err := s.children.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list children")
	}

	overview := &dto.ParentOverview{Parents: make([]dto.ParentEntry, 0, len(users)), Children: children}
	for _, u := range users {
		entry := dto.ParentEntry{User: u, Profile: profileByUser[u.ID], Children: []models.LinkedChild{}}
		if entry.Profile != nil {
			if linked, ok := linksByParent[entry.Profile.ID]; ok {
				entry.Children = linked
			}
		}
		overview.Parents = append(overview.Parents, entry)
	}
	return overview, nil
}

// EmployeeOverview lists employee users with profile and linked teacher plus every teacher.
func (s *UserService) EmployeeOverview(ctx context.Context) (*dto.EmployeeOverview, error) {
	users, err := s.users.ListByRole(ctx, models.RoleEmployee)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list employees")
	}
	profiles, err := s.profiles.ListEmployeesByUsers(ctx, userIDs(users))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list employee profiles")
	}
	teachers, err := s.teachers.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list teachers")
	}
	linked, err := s.profiles.ListLinkedTeacherIDs(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list linked teachers")
	}

	profileByUser := make(map[string]*models.EmployeeProfile, len(profiles))
	for i := range profiles {
		profileByUser[profiles[i].UserID] = &profiles[i]
	}
	teacherByID := make(map[string]*models.Teacher, len(teachers))
	for i := range teachers {
		teacherByID[teachers[i].ID] = &teachers[i]
	}

	overview := &dto.EmployeeOverview{
		Employees:        make([]dto.EmployeeEntry, 0, len(users)),
		Teachers:         teachers,
		LinkedTeacherIDs: linked,
	}
	if overview.LinkedTeacherIDs == nil {
		overview.LinkedTeacherIDs = []string{}
	}
	for _, u := range users {
		entry := dto.EmployeeEntry{User: u, Profile: profileByUser[u.ID]}
		if entry.Profile != nil && entry.Profile.TeacherID != nil {
			entry.Teacher = teacherByID[*entry.Profile.TeacherID]
		}
		overview.Employees = append(overview.Employees, entry)
	}
	return overview, nil
}

// ParentArea returns the signed in parent's profile and linked children.
func (s *UserService) ParentArea(ctx context.Context, user *models.User) (*dto.ParentArea, error) {
	area := &dto.ParentArea{User: *user, Children: []models.LinkedChild{}}

	profile, err := s.profiles.FindParentByUser(ctx, user.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return area, nil
		}
		return nil, appErrors.Internal(err, "failed to load parent profile")
	}
	area.Profile = profile

	children, err := s.profiles.ListLinkedChildren(ctx, []string{profile.ID})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list linked children")
	}
	if children != nil {
		area.Children = children
	}
	return area, nil
}

// EmployeeArea returns the signed in employee's profile, linked teacher and that teacher's shifts this week.
func (s *UserService) EmployeeArea(ctx context.Context, user *models.User) (*dto.EmployeeArea, error) {
	area := &dto.EmployeeArea{User: *user, Shifts: []models.ScheduleWithTeacher{}}

	profile, err := s.profiles.FindEmployeeByUser(ctx, user.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return area, nil
		}
		return nil, appErrors.Internal(err, "failed to load employee profile")
	}
	area.Profile = profile
	if profile.TeacherID == nil {
		return area, nil
	}

	teacher, err := s.teachers.FindByID(ctx, *profile.TeacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("employee linked to missing teacher", zap.String("user_id", user.ID), zap.String("teacher_id", *profile.TeacherID))
			return area, nil
		}
		return nil, appErrors.Internal(err, "failed to load teacher")
	}
	area.Teacher = teacher

	week, shifts, err := s.shifts.ShiftsForTeacher(ctx, teacher.ID)
	if err != nil {
		return nil, err
	}
	area.Week = week
	if shifts != nil {
		area.Shifts = shifts
	}
	return area, nil
}

func userIDs(users []models.User) []string {
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}
