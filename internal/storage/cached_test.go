package storage

// Test Plan for CachedStore:
// - repeated lookups are served from the cache, misses included
// - InsertClass purges cached misses so new classes become visible
// - ClearAll purges cached hits
// - a non-positive size falls back to DefaultLookupCacheSize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/slotscan/internal/extract"
)

func TestCachedStore_HitsAndMisses(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	base := NewTestStore(t)
	seedClasses(t, base, "A::B")

	c, err := NewCachedStore(base, 16)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		id, ok, err := c.FindClassIDByName(ctx, "A::B")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, int64(0), id)

		_, ok, err = c.FindClassIDByName(ctx, "A::Missing")
		require.NoError(t, err)
		assert.False(t, ok)
	}

	hits, misses := c.CacheStats()
	assert.Equal(t, int64(4), hits)
	assert.Equal(t, int64(2), misses)
}

func TestCachedStore_InsertPurges(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c, err := NewCachedStore(NewTestStore(t), 0)
	require.NoError(t, err)

	_, ok, err := c.FindClassIDByName(ctx, "A::Late")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.InsertClass(ctx, extract.ClassRecord{ID: 0, QualifiedName: "A::Late", SourceFile: "late.h"}))

	id, ok, err := c.FindClassIDByName(ctx, "A::Late")
	require.NoError(t, err)
	assert.True(t, ok, "insert must invalidate the cached miss")
	assert.Equal(t, int64(0), id)
}

func TestCachedStore_ClearPurges(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	base := NewTestStore(t)
	seedClasses(t, base, "A::B")
	c, err := NewCachedStore(base, 8)
	require.NoError(t, err)

	_, ok, err := c.FindClassIDByName(ctx, "A::B")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, c.ClearAll(ctx))

	_, ok, err = c.FindClassIDByName(ctx, "A::B")
	require.NoError(t, err)
	assert.False(t, ok)
}
