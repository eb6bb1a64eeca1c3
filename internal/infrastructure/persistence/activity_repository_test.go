package persistence

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tehraja/backend/internal/domain/activity"
)

func TestGormActivityRepository_RetainsNewest(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormActivityRepository(db.DB)
	ctx := context.Background()

	for i := 1; i <= 105; i++ {
		e, err := activity.NewEntry(activity.ActionSale, fmt.Sprintf("order %d", i), "kasir")
		require.NoError(t, err)
		require.NoError(t, repo.Append(ctx, e, activity.DefaultRetention))
	}

	entries, err := repo.FindRecent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 100)
	assert.Equal(t, "order 105", entries[0].Details)
	assert.Equal(t, "order 6", entries[99].Details)

	top, err := repo.FindRecent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, top, 3)
}

func TestGormActivityRepository_DeleteAll(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormActivityRepository(db.DB)
	ctx := context.Background()

	e, err := activity.NewEntry(activity.ActionLogin, "admin logged in", "admin")
	require.NoError(t, err)
	require.NoError(t, repo.Append(ctx, e, 10))

	n, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	entries, err := repo.FindRecent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
