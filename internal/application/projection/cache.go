// Package projection holds the read-through listing cache in front of the submission store.
// The store stays authoritative; every mutating operation invalidates the cache.
package projection

import (
	"context"
	"sync"
	"time"

	"github.com/garyjia/tkdn-compliance/internal/application/port"
	"github.com/garyjia/tkdn-compliance/internal/domain/entity"
)

// Loader reads summaries from the authoritative store
type Loader = func(ctx context.Context, filter port.SubmissionFilter) ([]*entity.SubmissionSummary, error)

// listingKey separates the all-owners listing from any owner id, including "*"
type listingKey struct {
	all    bool
	owner  string
	status entity.SubmissionStatus
}

type entry struct {
	summaries []*entity.SubmissionSummary
	loadedAt  time.Time
}

// ListingCache caches submission listings per owner filter
type ListingCache struct {
	mu         sync.RWMutex
	entries    map[listingKey]entry
	generation uint64
	ttl        time.Duration
	now        func() time.Time
}

// NewListingCache creates a cache whose entries expire after ttl. A zero ttl disables caching.
func NewListingCache(ttl time.Duration) *ListingCache {
	return &ListingCache{
		entries: make(map[listingKey]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// List returns cached summaries for filter, loading them on a miss
func (c *ListingCache) List(ctx context.Context, filter port.SubmissionFilter, load Loader) ([]*entity.SubmissionSummary, error) {
	if c.ttl <= 0 {
		return load(ctx, filter)
	}

	key := cacheKey(filter)

	c.mu.RLock()
	cached, ok := c.entries[key]
	gen := c.generation
	c.mu.RUnlock()

	if ok && c.now().Sub(cached.loadedAt) < c.ttl {
		return cached.summaries, nil
	}

	summaries, err := load(ctx, filter)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	// A mutation during the load makes the result stale
	if c.generation == gen {
		c.entries[key] = entry{summaries: summaries, loadedAt: c.now()}
	}
	c.mu.Unlock()

	return summaries, nil
}

// Invalidate drops every cached listing
func (c *ListingCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.entries = make(map[listingKey]entry)
}

// Len returns the number of cached listings
func (c *ListingCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func cacheKey(filter port.SubmissionFilter) listingKey {
	return listingKey{
		all:    filter.OwnerID == "",
		owner:  filter.OwnerID,
		status: filter.Status,
	}
}
