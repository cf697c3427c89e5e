package storage

import (
	"context"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mvp-joe/slotscan/internal/extract"
)

// DefaultLookupCacheSize is used when no size is configured.
const DefaultLookupCacheSize = 1024

type lookupResult struct {
	id    int64
	found bool
}

// CachedStore wraps a Store with an LRU cache of name to id lookups,
// including misses. Every class insert or clear purges the cache.
type CachedStore struct {
	*Store
	lookups *lru.Cache[string, lookupResult]

	hits   atomic.Int64
	misses atomic.Int64
}

var _ extract.Store = (*CachedStore)(nil)

// NewCachedStore creates a CachedStore holding up to size lookups.
func NewCachedStore(store *Store, size int) (*CachedStore, error) {
	if size <= 0 {
		size = DefaultLookupCacheSize
	}
	cache, err := lru.New[string, lookupResult](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create lookup cache: %w", err)
	}
	return &CachedStore{Store: store, lookups: cache}, nil
}

// FindClassIDByName serves lookups from the cache, falling back to the store.
// Store errors are not cached.
func (c *CachedStore) FindClassIDByName(ctx context.Context, qualifiedName string) (int64, bool, error) {
	if res, ok := c.lookups.Get(qualifiedName); ok {
		c.hits.Add(1)
		return res.id, res.found, nil
	}
	c.misses.Add(1)

	id, found, err := c.Store.FindClassIDByName(ctx, qualifiedName)
	if err != nil {
		return 0, false, err
	}
	c.lookups.Add(qualifiedName, lookupResult{id: id, found: found})
	return id, found, nil
}

// InsertClass writes through and purges the cache.
func (c *CachedStore) InsertClass(ctx context.Context, rec extract.ClassRecord) error {
	defer c.lookups.Purge()
	return c.Store.InsertClass(ctx, rec)
}

// ClearAll clears the tables and purges the cache.
func (c *CachedStore) ClearAll(ctx context.Context) error {
	defer c.lookups.Purge()
	return c.Store.ClearAll(ctx)
}

// CacheStats returns the number of lookups served from the cache and from the
// store since creation.
func (c *CachedStore) CacheStats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
