package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kita-portal/kita-api/internal/models"
	appErrors "github.com/kita-portal/kita-api/pkg/errors"
)

type fakeAnnouncementRepo struct {
	items map[string]*models.Announcement
}

func (f *fakeAnnouncementRepo) List(ctx context.Context) ([]models.Announcement, error) {
	var out []models.Announcement
	for _, item := range f.items {
		out = append(out, *item)
	}
	return out, nil
}

func (f *fakeAnnouncementRepo) FindByID(ctx context.Context, id string) (*models.Announcement, error) {
	if err := parseID(id); err != nil {
		return nil, err
	}
	item, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *item
	return &copied, nil
}

func (f *fakeAnnouncementRepo) Create(ctx context.Context, item *models.Announcement) error {
	item.ID = "a-new"
	copied := *item
	f.items[item.ID] = &copied
	return nil
}

func (f *fakeAnnouncementRepo) Update(ctx context.Context, item *models.Announcement) error {
	copied := *item
	f.items[item.ID] = &copied
	return nil
}

func (f *fakeAnnouncementRepo) Delete(ctx context.Context, id string) error {
	if err := parseID(id); err != nil {
		return err
	}
	if _, ok := f.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.items, id)
	return nil
}

func TestAnnouncementDefaultsToNormalPriority(t *testing.T) {
	repo := &fakeAnnouncementRepo{items: map[string]*models.Announcement{}}
	svc := NewAnnouncementService(repo, nil, zap.NewNop())

	item, err := svc.Create(context.Background(), AnnouncementRequest{Title: " Sommerfest ", Message: " Am Freitag ", ValidFrom: "2024-06-01", ValidTo: "2024-06-14"})
	require.NoError(t, err)
	assert.Equal(t, models.PriorityNormal, item.Priority)
	assert.Equal(t, "Sommerfest", item.Title)
	assert.Equal(t, "Am Freitag", item.Message)
}

func TestAnnouncementRejectsInvertedRange(t *testing.T) {
	repo := &fakeAnnouncementRepo{items: map[string]*models.Announcement{}}
	svc := NewAnnouncementService(repo, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), AnnouncementRequest{Title: "A", Message: "B", ValidFrom: "2024-06-15", ValidTo: "2024-06-14"})
	requireCode(t, err, appErrors.ErrInvalidDateRange)

	item, err := svc.Create(context.Background(), AnnouncementRequest{Title: "A", Message: "B", ValidFrom: "2024-06-14", ValidTo: "2024-06-14", Priority: models.PriorityImportant})
	require.NoError(t, err)
	assert.Equal(t, models.PriorityImportant, item.Priority)

	_, err = svc.Create(context.Background(), AnnouncementRequest{Title: "A", Message: "B", ValidFrom: "2024-06-14", ValidTo: "2024-06-14", Priority: "urgent"})
	requireCode(t, err, appErrors.ErrValidation)
}

func TestAnnouncementUpdateAndDeleteMissing(t *testing.T) {
	repo := &fakeAnnouncementRepo{items: map[string]*models.Announcement{"a1": {ID: "a1", Title: "Alt"}}}
	svc := NewAnnouncementService(repo, nil, zap.NewNop())

	item, err := svc.Update(context.Background(), "a1", AnnouncementRequest{Title: "Neu", Message: "Text", ValidFrom: "2024-06-01", ValidTo: "2024-06-02"})
	require.NoError(t, err)
	assert.Equal(t, "Neu", repo.items["a1"].Title)
	assert.Equal(t, "a1", item.ID)

	_, err = svc.Update(context.Background(), "missing", AnnouncementRequest{Title: "Neu", Message: "Text", ValidFrom: "2024-06-01", ValidTo: "2024-06-02"})
	requireCode(t, err, appErrors.ErrNotFound)
	requireCode(t, svc.Delete(context.Background(), "missing"), appErrors.ErrNotFound)
}

func TestAnnouncementMalformedIDs(t *testing.T) {
	svc := NewAnnouncementService(&fakeAnnouncementRepo{items: map[string]*models.Announcement{}}, nil, zap.NewNop())

	_, err := svc.Update(context.Background(), malformedID, AnnouncementRequest{Title: "Fest", Message: "Sommerfest", ValidFrom: "2024-06-01", ValidTo: "2024-06-10"})
	requireCode(t, err, appErrors.ErrNotFound)
	requireCode(t, svc.Delete(context.Background(), malformedID), appErrors.ErrNotFound)
}
