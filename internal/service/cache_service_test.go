package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/kita-portal/kita-api/pkg/errors"
)

type stubCacheRepo struct {
	store map[string][]byte
	err   error
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	if s.err != nil {
		return s.err
	}
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.err != nil {
		return s.err
	}
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) DeleteByPrefix(_ context.Context, prefix string) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	removed := 0
	for key := range s.store {
		if strings.HasPrefix(key, prefix) {
			delete(s.store, key)
			removed++
		}
	}
	return removed, nil
}

func TestCacheServiceRoundTrip(t *testing.T) {
	repo := &stubCacheRepo{}
	svc := NewCacheService(repo, NewMetricsService(), time.Minute, zap.NewNop(), true)

	var out map[string]int
	assert.False(t, svc.Get(context.Background(), "dash:2024-03-12:08:00", &out))

	svc.Set(context.Background(), "dash:2024-03-12:08:00", map[string]int{"kinder": 3}, 0)
	require.True(t, svc.Get(context.Background(), "dash:2024-03-12:08:00", &out))
	assert.Equal(t, 3, out["kinder"])
}

func TestCacheServiceInvalidateDashboards(t *testing.T) {
	repo := &stubCacheRepo{}
	svc := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)
	svc.Set(context.Background(), "dash:a", 1, 0)
	svc.Set(context.Background(), "dash:b", 2, 0)
	svc.Set(context.Background(), "other", 3, 0)

	svc.InvalidateDashboards(context.Background())
	assert.Len(t, repo.store, 1)
	assert.Contains(t, repo.store, "other")
}

func TestCacheServiceDisabledOrBroken(t *testing.T) {
	disabled := NewCacheService(&stubCacheRepo{}, nil, 0, nil, false)
	assert.False(t, disabled.Enabled())
	var out int
	assert.False(t, disabled.Get(context.Background(), "k", &out))

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
	nilSvc.Set(context.Background(), "k", 1, 0)
	nilSvc.InvalidateDashboards(context.Background())

	broken := NewCacheService(&stubCacheRepo{err: errors.New("connection refused")}, nil, time.Minute, zap.NewNop(), true)
	broken.Set(context.Background(), "k", 1, 0)
	assert.False(t, broken.Get(context.Background(), "k", &out))
	broken.InvalidateDashboards(context.Background())
}
