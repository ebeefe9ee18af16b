package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kita-portal/kita-api/internal/models"
	appErrors "github.com/kita-portal/kita-api/pkg/errors"
)

type fakeDashboardRepo struct {
	calls     int
	monthDay  string
	date      string
	clock     string
	failMeals bool
}

func (f *fakeDashboardRepo) BirthdaysOn(ctx context.Context, monthDay string) ([]models.ChildWithGroup, error) {
	f.calls++
	f.monthDay = monthDay
	return []models.ChildWithGroup{{Child: models.Child{ID: "c1", FirstName: "Mia", BirthDate: "2020-03-12"}}}, nil
}

func (f *fakeDashboardRepo) OnDuty(ctx context.Context, date, clock string) ([]models.ScheduleWithTeacher, error) {
	f.date, f.clock = date, clock
	return []models.ScheduleWithTeacher{{ScheduleEntry: models.ScheduleEntry{ID: "s1", StartTime: "07:00", EndTime: "15:00"}}}, nil
}

func (f *fakeDashboardRepo) MealsOn(ctx context.Context, date string) ([]models.Meal, error) {
	if f.failMeals {
		return nil, errors.New("db down")
	}
	return []models.Meal{{ID: "m1", Date: date, Type: models.MealLunch}}, nil
}

func (f *fakeDashboardRepo) ActiveAnnouncements(ctx context.Context, date string) ([]models.Announcement, error) {
	return []models.Announcement{{ID: "a1", Priority: models.PriorityImportant}}, nil
}

type fixedCount int

func (c fixedCount) Count(ctx context.Context) (int, error) { return int(c), nil }

func (c fixedCount) CountActive(ctx context.Context, date string) (int, error) { return int(c), nil }

func newDashboardFixture(cache *CacheService) (*DashboardService, *fakeDashboardRepo) {
	repo := &fakeDashboardRepo{}
	berlin, _ := time.LoadLocation("Europe/Berlin")
	svc := NewDashboardService(DashboardServiceParams{
		Repo:          repo,
		Groups:        fixedCount(2),
		Children:      fixedCount(14),
		Teachers:      fixedCount(4),
		Users:         fixedCount(9),
		Announcements: fixedCount(1),
		Cache:         cache,
		Logger:        zap.NewNop(),
		Config:        DashboardServiceConfig{KioskRefresh: 2 * time.Minute, Location: berlin},
	})
	// 23:30 UTC is already the next day in Berlin.
	svc.now = func() time.Time { return time.Date(2024, 3, 11, 23, 30, 0, 0, time.UTC) }
	return svc, repo
}

func TestDashboardOverviewUsesFacilityTimezone(t *testing.T) {
	svc, repo := newDashboardFixture(nil)

	overview, cacheHit, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.False(t, cacheHit)
	assert.Equal(t, "2024-03-12", overview.Date)
	assert.Equal(t, "00:30", overview.Time)
	assert.Equal(t, "03-12", repo.monthDay)
	assert.Equal(t, "00:30", repo.clock)
	assert.Len(t, overview.Birthdays, 1)
	assert.Len(t, overview.OnDuty, 1)
	assert.Len(t, overview.Meals, 1)
	assert.Len(t, overview.Announcements, 1)
	assert.Equal(t, 120, svc.KioskRefreshSeconds())
}

func TestDashboardOverviewCaches(t *testing.T) {
	cacheRepo := &stubCacheRepo{}
	svc, repo := newDashboardFixture(NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true))

	_, hit, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Contains(t, cacheRepo.store, "dash:2024-03-12:00:30")

	cached, hit, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, "c1", cached.Birthdays[0].ID)
}

func TestDashboardOverviewDegradesWithoutCache(t *testing.T) {
	broken := NewCacheService(&stubCacheRepo{err: errors.New("redis down")}, nil, time.Minute, zap.NewNop(), true)
	svc, repo := newDashboardFixture(broken)

	_, hit, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, repo.calls)
}

func TestDashboardOverviewQueryFailure(t *testing.T) {
	svc, repo := newDashboardFixture(nil)
	repo.failMeals = true

	_, _, err := svc.Overview(context.Background())
	requireCode(t, err, appErrors.ErrInternal)
}

func TestDashboardSummary(t *testing.T) {
	svc, _ := newDashboardFixture(nil)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Groups)
	assert.Equal(t, 14, summary.Children)
	assert.Equal(t, 4, summary.Teachers)
	assert.Equal(t, 9, summary.Users)
	assert.Equal(t, 1, summary.ActiveAnnouncements)
}
