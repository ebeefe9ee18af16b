package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kita-portal/kita-api/internal/dto"
	"github.com/kita-portal/kita-api/internal/models"
	"github.com/kita-portal/kita-api/pkg/calendar"
	appErrors "github.com/kita-portal/kita-api/pkg/errors"
)

type dashboardRepository interface {
	BirthdaysOn(ctx context.Context, monthDay string) ([]models.ChildWithGroup, error)
	OnDuty(ctx context.Context, date, clock string) ([]models.ScheduleWithTeacher, error)
	MealsOn(ctx context.Context, date string) ([]models.Meal, error)
	ActiveAnnouncements(ctx context.Context, date string) ([]models.Announcement, error)
}

type counter interface {
	Count(ctx context.Context) (int, error)
}

type activeAnnouncementCounter interface {
	CountActive(ctx context.Context, date string) (int, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL     time.Duration
	KioskRefresh time.Duration
	Location     *time.Location
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Repo          dashboardRepository
	Groups        counter
	Children      counter
	Teachers      counter
	Users         counter
	Announcements activeAnnouncementCounter
	Cache         *CacheService
	Logger        *zap.Logger
	Config        DashboardServiceConfig
}

// DashboardService composes the public daily overview and the admin summary.
type DashboardService struct {
	repo          dashboardRepository
	groups        counter
	children      counter
	teachers      counter
	users         counter
	announcements activeAnnouncementCounter
	cache         *CacheService
	logger        *zap.Logger
	now           calendar.Clock
	cfg           DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 || cfg.CacheTTL > time.Minute {
		cfg.CacheTTL = time.Minute
	}
	if cfg.KioskRefresh <= 0 {
		cfg.KioskRefresh = 5 * time.Minute
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		repo:          params.Repo,
		groups:        params.Groups,
		children:      params.Children,
		teachers:      params.Teachers,
		users:         params.Users,
		announcements: params.Announcements,
		cache:         params.Cache,
		logger:        logger,
		now:           time.Now,
		cfg:           cfg,
	}
}

// KioskRefreshSeconds is the reload interval of the kiosk display.
func (s *DashboardService) KioskRefreshSeconds() int {
	return int(s.cfg.KioskRefresh / time.Second)
}

// Overview returns today's birthdays, teachers on duty, meals and active announcements in the
// facility time zone. The bool reports a cache hit.
func (s *DashboardService) Overview(ctx context.Context) (*dto.DailyOverview, bool, error) {
	now := s.now()
	date := calendar.Today(now, s.cfg.Location)
	clock := calendar.Now(now, s.cfg.Location)

	cacheKey := fmt.Sprintf("%s%s:%s", DashboardCachePrefix, date, clock)
	var cached dto.DailyOverview
	if s.cache.Get(ctx, cacheKey, &cached) {
		return &cached, true, nil
	}

	overview, err := s.composeOverview(ctx, date, clock)
	if err != nil {
		return nil, false, err
	}

	s.cache.Set(ctx, cacheKey, overview, s.cfg.CacheTTL)
	return overview, false, nil
}

func (s *DashboardService) composeOverview(ctx context.Context, date, clock string) (*dto.DailyOverview, error) {
	birthdays, err := s.repo.BirthdaysOn(ctx, calendar.MonthDay(date))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load birthdays")
	}
	onDuty, err := s.repo.OnDuty(ctx, date, clock)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load teachers on duty")
	}
	meals, err := s.repo.MealsOn(ctx, date)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load meals")
	}
	announcements, err := s.repo.ActiveAnnouncements(ctx, date)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load announcements")
	}
	return &dto.DailyOverview{
		Date:          date,
		Time:          clock,
		Birthdays:     birthdays,
		OnDuty:        onDuty,
		Meals:         meals,
		Announcements: announcements,
	}, nil
}

// Summary returns the counts shown on the admin dashboard.
func (s *DashboardService) Summary(ctx context.Context) (*dto.AdminSummary, error) {
	today := calendar.Today(s.now(), s.cfg.Location)
	summary := &dto.AdminSummary{}

	counts := []struct {
		name   string
		source func(context.Context) (int, error)
		target *int
	}{
		{"groups", s.groups.Count, &summary.Groups},
		{"children", s.children.Count, &summary.Children},
		{"teachers", s.teachers.Count, &summary.Teachers},
		{"users", s.users.Count, &summary.Users},
		{"announcements", func(ctx context.Context) (int, error) { return s.announcements.CountActive(ctx, today) }, &summary.ActiveAnnouncements},
	}
	for _, c := range counts {
		n, err := c.source(ctx)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to count "+c.name)
		}
		*c.target = n
	}
	return summary, nil
}
