// Package browse is the client-side browsing session: filter form edits
// flow through the URL synchronizer, debounced search included, into
// criteria-keyed cached queries, and shaped results flow back to one
// consumer callback.
package browse

import (
	"context"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aura-video/catalog-backend/internal/criteria"
	"github.com/aura-video/catalog-backend/internal/filters"
	"github.com/aura-video/catalog-backend/internal/models"
	"github.com/aura-video/catalog-backend/internal/videocache"
)

// API is the slice of the catalog client a session needs.
type API interface {
	ListVideos(ctx context.Context, crit criteria.ListCriteria) ([]models.Video, error)
}

// Result is one delivered answer. Query is the URL state the result
// belongs to; consumers replace their current URL with it. Err is set when
// the underlying fetch failed (no automatic retry).
type Result struct {
	Criteria criteria.ListCriteria
	Query    url.Values
	Videos   []models.Video
	Err      error
}

// Options configure a session. Zero values pick the defaults.
type Options struct {
	InitialQuery url.Values    // state restored from the current URL
	Debounce     time.Duration // search quiet window; default 300ms
	CacheTTL     time.Duration // result freshness window; default 5m
	Logger       *zap.Logger
}

// Session drives catalog browsing for one UI surface.
type Session struct {
	sync   *filters.Synchronizer
	cache  *videocache.Cache
	logger *zap.Logger

	onResult func(Result)

	mu         sync.Mutex
	currentKey string // cache key of the newest committed criteria

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSession builds a session and runs the initial query for the state
// carried by the initial URL.
func NewSession(api API, onResult func(Result), opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	window := opts.Debounce
	if window <= 0 {
		window = filters.DefaultSearchDebounce
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		cache:    videocache.New(opts.CacheTTL, api.ListVideos, logger),
		logger:   logger,
		onResult: onResult,
		ctx:      ctx,
		cancel:   cancel,
	}
	s.sync = filters.NewSynchronizer(opts.InitialQuery, window, s.handleCommit)

	initial := filters.ValuesFromQuery(opts.InitialQuery)
	s.handleCommit(filters.Commit{Query: initial.Query(), Criteria: initial.Criteria()})
	return s
}

// SetSearch records a search keystroke (debounced).
func (s *Session) SetSearch(v string) { s.sync.SetSearch(v) }

// SetSort commits a sort change immediately.
func (s *Session) SetSort(v criteria.SortOrder) { s.sync.SetSort(v) }

// SetTags commits a tag-selection change immediately.
func (s *Session) SetTags(tags []string) { s.sync.SetTags(tags) }

// Reset restores the default view in one update.
func (s *Session) Reset() { s.sync.Reset() }

// Flush forces a pending search edit to commit now.
func (s *Session) Flush() { s.sync.Flush() }

// Values returns the current form snapshot.
func (s *Session) Values() filters.Values { return s.sync.Values() }

// Dirty reports whether filters differ from the session's initial state.
func (s *Session) Dirty() bool { return s.sync.Dirty() }

// Invalidate drops every cached result and re-runs the current query.
// Called after a successful creation (locally or via the invalidation
// feed), since a new record may affect any filter combination.
func (s *Session) Invalidate() {
	s.cache.Invalidate()
	s.Refresh()
}

// Refresh re-runs the current query through the cache.
func (s *Session) Refresh() {
	s.mu.Lock()
	key := s.currentKey
	s.mu.Unlock()
	if key == "" {
		return
	}
	v := s.sync.Values()
	s.handleCommit(filters.Commit{Query: v.Query(), Criteria: v.Criteria()})
}

// Close tears the session down; in-flight fetches are cancelled and no
// further results are delivered.
func (s *Session) Close() {
	s.sync.Close()
	s.cancel()
	s.wg.Wait()
}

func (s *Session) handleCommit(c filters.Commit) {
	key := c.Criteria.CacheKey()
	s.mu.Lock()
	s.currentKey = key
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		videos, err := s.cache.Get(s.ctx, c.Criteria)

		// A commit that happened while this fetch was in flight supersedes
		// it; its late result must not clobber the newer state.
		s.mu.Lock()
		stale := s.currentKey != key
		s.mu.Unlock()
		if stale || s.ctx.Err() != nil {
			s.logger.Debug("dropping superseded result", zap.String("key", key))
			return
		}
		s.onResult(Result{Criteria: c.Criteria, Query: c.Query, Videos: videos, Err: err})
	}()
}
