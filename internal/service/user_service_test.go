package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kita-portal/kita-api/internal/dto"
	"github.com/kita-portal/kita-api/internal/models"
)

type fakeUserDirectory struct {
	users     []models.User
	parents   []models.ParentProfile
	employees []models.EmployeeProfile
	links     []models.LinkedChild
	children  []models.ChildWithGroup
	teachers  []models.Teacher
	shifts    []models.ScheduleWithTeacher
	askedFor  string
}

func (f *fakeUserDirectory) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	return f.users, len(f.users), nil
}

func (f *fakeUserDirectory) ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserDirectory) FindByID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			copied := u
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserDirectory) FindParentByUser(ctx context.Context, userID string) (*models.ParentProfile, error) {
	for _, p := range f.parents {
		if p.UserID == userID {
			copied := p
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserDirectory) FindEmployeeByUser(ctx context.Context, userID string) (*models.EmployeeProfile, error) {
	for _, e := range f.employees {
		if e.UserID == userID {
			copied := e
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserDirectory) ListParentsByUsers(ctx context.Context, userIDs []string) ([]models.ParentProfile, error) {
	var out []models.ParentProfile
	for _, p := range f.parents {
		if contains(userIDs, p.UserID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeUserDirectory) ListEmployeesByUsers(ctx context.Context, userIDs []string) ([]models.EmployeeProfile, error) {
	var out []models.EmployeeProfile
	for _, e := range f.employees {
		if contains(userIDs, e.UserID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeUserDirectory) ListLinkedChildren(ctx context.Context, parentIDs []string) ([]models.LinkedChild, error) {
	var out []models.LinkedChild
	for _, l := range f.links {
		if contains(parentIDs, l.ParentID) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeUserDirectory) ListLinkedTeacherIDs(ctx context.Context) ([]string, error) {
	var out []string
	for _, e := range f.employees {
		if e.TeacherID != nil {
			out = append(out, *e.TeacherID)
		}
	}
	return out, nil
}

type fakeChildLister struct{ dir *fakeUserDirectory }

func (f fakeChildLister) List(ctx context.Context) ([]models.ChildWithGroup, error) {
	return f.dir.children, nil
}

type fakeTeacherDirectory struct{ dir *fakeUserDirectory }

func (f fakeTeacherDirectory) List(ctx context.Context) ([]models.Teacher, error) {
	return f.dir.teachers, nil
}

func (f fakeTeacherDirectory) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	for _, t := range f.dir.teachers {
		if t.ID == id {
			copied := t
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserDirectory) ShiftsForTeacher(ctx context.Context, teacherID string) (dto.WeekRange, []models.ScheduleWithTeacher, error) {
	f.askedFor = teacherID
	return dto.WeekRange{From: "2024-03-11", To: "2024-03-17"}, f.shifts, nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

func newUserFixture() (*UserService, *fakeUserDirectory) {
	teacherID := "t1"
	dir := &fakeUserDirectory{
		users: []models.User{
			{ID: "u1", Name: "Anna", Role: models.RoleParent},
			{ID: "u2", Name: "Erika", Role: models.RoleEmployee},
			{ID: "u3", Name: "Paul", Role: models.RoleAdmin},
			{ID: "u4", Name: "Zoe", Role: models.RoleEmployee},
		},
		parents:   []models.ParentProfile{{ID: "p1", UserID: "u1"}, {ID: "p2", UserID: "u2"}},
		employees: []models.EmployeeProfile{{ID: "e1", UserID: "u2", TeacherID: &teacherID}},
		links: []models.LinkedChild{
			{LinkID: "l1", ParentID: "p1", Relationship: models.RelationMother, ChildWithGroup: models.ChildWithGroup{Child: models.Child{ID: "c1", FirstName: "Mia"}}},
		},
		children: []models.ChildWithGroup{{Child: models.Child{ID: "c1"}}, {Child: models.Child{ID: "c2"}}},
		teachers: []models.Teacher{{ID: "t1", FirstName: "Erika"}, {ID: "t2", FirstName: "Max"}},
		shifts:   []models.ScheduleWithTeacher{{ScheduleEntry: models.ScheduleEntry{ID: "s1", TeacherID: "t1"}}},
	}
	svc := NewUserService(dir, dir, fakeChildLister{dir}, fakeTeacherDirectory{dir}, dir, zap.NewNop())
	return svc, dir
}

func TestUserListAttachesAllProfiles(t *testing.T) {
	svc, _ := newUserFixture()

	users, pagination, err := svc.List(context.Background(), models.UserFilter{})
	require.NoError(t, err)
	require.Len(t, users, 4)
	assert.Equal(t, 4, pagination.TotalCount)
	assert.Equal(t, 50, pagination.PageSize)

	// u2 switched from parent to employee and kept both profiles.
	assert.NotNil(t, users[1].Parent)
	assert.NotNil(t, users[1].Employee)
	assert.Nil(t, users[2].Parent)
	assert.Nil(t, users[2].Employee)
}

func TestParentOverview(t *testing.T) {
	svc, _ := newUserFixture()

	overview, err := svc.ParentOverview(context.Background())
	require.NoError(t, err)
	require.Len(t, overview.Parents, 1)
	assert.Equal(t, "p1", overview.Parents[0].Profile.ID)
	require.Len(t, overview.Parents[0].Children, 1)
	assert.Equal(t, models.RelationMother, overview.Parents[0].Children[0].Relationship)
	assert.Len(t, overview.Children, 2)
}

func TestEmployeeOverview(t *testing.T) {
	svc, _ := newUserFixture()

	overview, err := svc.EmployeeOverview(context.Background())
	require.NoError(t, err)
	require.Len(t, overview.Employees, 2)
	require.NotNil(t, overview.Employees[0].Teacher)
	assert.Equal(t, "t1", overview.Employees[0].Teacher.ID)
	assert.Nil(t, overview.Employees[1].Profile)
	assert.Equal(t, []string{"t1"}, overview.LinkedTeacherIDs)
	assert.Len(t, overview.Teachers, 2)
}

func TestParentAreaWithoutProfile(t *testing.T) {
	svc, _ := newUserFixture()

	area, err := svc.ParentArea(context.Background(), &models.User{ID: "u3"})
	require.NoError(t, err)
	assert.Nil(t, area.Profile)
	assert.Empty(t, area.Children)

	area, err = svc.ParentArea(context.Background(), &models.User{ID: "u1"})
	require.NoError(t, err)
	require.NotNil(t, area.Profile)
	assert.Len(t, area.Children, 1)
}

func TestEmployeeAreaShowsLinkedTeacherShifts(t *testing.T) {
	svc, dir := newUserFixture()

	area, err := svc.EmployeeArea(context.Background(), &models.User{ID: "u2"})
	require.NoError(t, err)
	require.NotNil(t, area.Teacher)
	assert.Equal(t, "t1", dir.askedFor)
	assert.Len(t, area.Shifts, 1)
	assert.Equal(t, "2024-03-11", area.Week.From)

	area, err = svc.EmployeeArea(context.Background(), &models.User{ID: "u4"})
	require.NoError(t, err)
	assert.Nil(t, area.Teacher)
	assert.Empty(t, area.Shifts)
}
