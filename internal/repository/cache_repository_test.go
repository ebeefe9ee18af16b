package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/kita-portal/kita-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	assert.False(t, repo.Enabled())
	require.NoError(t, repo.Set(ctx, "dash:2024-06-10:09:30", map[string]string{"a": "b"}, time.Minute))

	var dest map[string]string
	assert.ErrorIs(t, repo.Get(ctx, "dash:2024-06-10:09:30", &dest), appErrors.ErrCacheMiss)

	removed, err := repo.DeleteByPrefix(ctx, "dash:")
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.NoError(t, repo.Close())
}
