// Package videocache caches shaped video lists keyed by normalized list
// criteria, deduplicating concurrent identical fetches and serving repeat
// queries without a store round-trip while fresh.
package videocache

import (
	"context"
	"time"

	"sync"

	"go.uber.org/zap"

	"github.com/aura-video/catalog-backend/internal/criteria"
	"github.com/aura-video/catalog-backend/internal/models"
)

// DefaultTTL is the freshness window for a cached result list.
const DefaultTTL = 5 * time.Minute

// Fetcher resolves normalized criteria against the store.
type Fetcher func(ctx context.Context, c criteria.ListCriteria) ([]models.Video, error)

type entry struct {
	videos    []models.Video
	fetchedAt time.Time
}

// call is one in-flight fetch shared by every concurrent caller of the
// same key.
type call struct {
	done   chan struct{}
	videos []models.Video
	err    error
}

// Cache is a process-local result cache for one browsing session.
type Cache struct {
	mu       sync.Mutex
	ttl      time.Duration
	fetch    Fetcher
	entries  map[string]entry
	inflight map[string]*call
	gen      uint64 // bumped by Invalidate; stale fetches don't repopulate
	logger   *zap.Logger

	now func() time.Time // injectable for tests
}

// New creates a cache over the given fetcher. A zero ttl means DefaultTTL.
func New(ttl time.Duration, fetch Fetcher, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		ttl:      ttl,
		fetch:    fetch,
		entries:  make(map[string]entry),
		inflight: make(map[string]*call),
		logger:   logger,
		now:      time.Now,
	}
}

// Get returns the video list for the criteria. A fresh cached entry is
// served without fetching; a fetch already in flight for the same key is
// joined; otherwise one fetch runs. Errors are surfaced and never cached,
// so the next Get retries cleanly.
func (c *Cache) Get(ctx context.Context, crit criteria.ListCriteria) ([]models.Video, error) {
	key := crit.CacheKey()

	c.mu.Lock()
	if e, ok := c.entries[key]; ok && c.now().Sub(e.fetchedAt) < c.ttl {
		c.mu.Unlock()
		return e.videos, nil
	}
	if cl, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		return c.await(ctx, cl)
	}
	cl := &call{done: make(chan struct{})}
	c.inflight[key] = cl
	gen := c.gen
	c.mu.Unlock()

	videos, err := c.fetch(ctx, crit)

	c.mu.Lock()
	delete(c.inflight, key)
	cl.videos, cl.err = videos, err
	if err == nil && gen == c.gen {
		c.entries[key] = entry{videos: videos, fetchedAt: c.now()}
	}
	c.mu.Unlock()
	close(cl.done)

	if err != nil {
		c.logger.Debug("list fetch failed", zap.String("key", key), zap.Error(err))
	}
	return videos, err
}

func (c *Cache) await(ctx context.Context, cl *call) ([]models.Video, error) {
	select {
	case <-cl.done:
		return cl.videos, cl.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Invalidate drops every cached entry. Coarse on purpose: a new record may
// affect any filter combination. Fetches in flight at this point complete
// for their waiters but do not repopulate the cache.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.gen++
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Len reports the number of cached entries (fresh or not).
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
