package videocache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-video/catalog-backend/internal/criteria"
	"github.com/aura-video/catalog-backend/internal/models"
)

func countingFetcher(calls *int64, videos []models.Video, err error) Fetcher {
	return func(ctx context.Context, c criteria.ListCriteria) ([]models.Video, error) {
		atomic.AddInt64(calls, 1)
		return videos, err
	}
}

func TestGetFreshHitSkipsFetch(t *testing.T) {
	var calls int64
	videos := []models.Video{{Title: "a"}}
	c := New(DefaultTTL, countingFetcher(&calls, videos, nil), nil)

	crit := criteria.ListCriteria{SearchQuery: "go"}
	got, err := c.Get(context.Background(), crit)
	require.NoError(t, err)
	assert.Equal(t, videos, got)

	// equivalent criteria (case/order differences) share the entry
	again, err := c.Get(context.Background(), criteria.ListCriteria{SearchQuery: " GO "})
	require.NoError(t, err)
	assert.Equal(t, videos, again)
	assert.EqualValues(t, 1, atomic.LoadInt64(&calls))
}

func TestGetRefetchesAfterExpiry(t *testing.T) {
	var calls int64
	c := New(time.Minute, countingFetcher(&calls, nil, nil), nil)

	current := time.Now()
	var mu sync.Mutex
	c.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	}

	crit := criteria.ListCriteria{}
	_, err := c.Get(context.Background(), crit)
	require.NoError(t, err)

	mu.Lock()
	current = current.Add(59 * time.Second)
	mu.Unlock()
	_, err = c.Get(context.Background(), crit)
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt64(&calls), "hit inside the freshness window")

	mu.Lock()
	current = current.Add(2 * time.Second)
	mu.Unlock()
	_, err = c.Get(context.Background(), crit)
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt64(&calls), "exactly one refetch after expiry")
}

func TestGetDedupesConcurrentIdenticalFetches(t *testing.T) {
	var calls int64
	release := make(chan struct{})
	fetch := func(ctx context.Context, c criteria.ListCriteria) ([]models.Video, error) {
		atomic.AddInt64(&calls, 1)
		<-release
		return []models.Video{{Title: "shared"}}, nil
	}
	c := New(DefaultTTL, fetch, nil)

	const n = 8
	var wg sync.WaitGroup
	results := make([][]models.Video, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := c.Get(context.Background(), criteria.ListCriteria{SearchQuery: "x"})
			assert.NoError(t, err)
			results[i] = got
		}(i)
	}

	// let every goroutine reach the cache before the fetch resolves
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt64(&calls), "concurrent identical gets collapse to one fetch")
	for _, r := range results {
		assert.Equal(t, "shared", r[0].Title)
	}
}

func TestGetDifferentKeysFetchIndependently(t *testing.T) {
	var calls int64
	c := New(DefaultTTL, countingFetcher(&calls, nil, nil), nil)

	_, _ = c.Get(context.Background(), criteria.ListCriteria{SearchQuery: "a"})
	_, _ = c.Get(context.Background(), criteria.ListCriteria{SearchQuery: "b"})
	assert.EqualValues(t, 2, atomic.LoadInt64(&calls))
}

func TestGetErrorNotCached(t *testing.T) {
	var calls int64
	boom := errors.New("store down")
	fetch := func(ctx context.Context, c criteria.ListCriteria) ([]models.Video, error) {
		if atomic.AddInt64(&calls, 1) == 1 {
			return nil, boom
		}
		return []models.Video{{Title: "ok"}}, nil
	}
	c := New(DefaultTTL, fetch, nil)

	_, err := c.Get(context.Background(), criteria.ListCriteria{})
	require.ErrorIs(t, err, boom)
	assert.Zero(t, c.Len(), "a failed fetch must not poison the cache")

	got, err := c.Get(context.Background(), criteria.ListCriteria{})
	require.NoError(t, err)
	assert.Equal(t, "ok", got[0].Title)
}

func TestInvalidateClearsEverything(t *testing.T) {
	var calls int64
	c := New(DefaultTTL, countingFetcher(&calls, nil, nil), nil)

	_, _ = c.Get(context.Background(), criteria.ListCriteria{SearchQuery: "a"})
	_, _ = c.Get(context.Background(), criteria.ListCriteria{SearchQuery: "b"})
	require.Equal(t, 2, c.Len())

	c.Invalidate()
	assert.Zero(t, c.Len())

	_, _ = c.Get(context.Background(), criteria.ListCriteria{SearchQuery: "a"})
	assert.EqualValues(t, 3, atomic.LoadInt64(&calls))
}

func TestInvalidateDuringFetchSkipsRepopulate(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	fetch := func(ctx context.Context, c criteria.ListCriteria) ([]models.Video, error) {
		close(started)
		<-release
		return []models.Video{{Title: "stale"}}, nil
	}
	c := New(DefaultTTL, fetch, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		got, err := c.Get(context.Background(), criteria.ListCriteria{})
		assert.NoError(t, err)
		if len(got) > 0 {
			assert.Equal(t, "stale", got[0].Title, "the waiter still gets its result")
		}
	}()

	<-started
	c.Invalidate()
	close(release)
	<-done

	assert.Zero(t, c.Len(), "a fetch begun before invalidation must not repopulate")
}

func TestGetContextCancelledWhileWaiting(t *testing.T) {
	release := make(chan struct{})
	fetch := func(ctx context.Context, c criteria.ListCriteria) ([]models.Video, error) {
		<-release
		return nil, nil
	}
	c := New(DefaultTTL, fetch, nil)

	go func() { _, _ = c.Get(context.Background(), criteria.ListCriteria{}) }()
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Get(ctx, criteria.ListCriteria{})
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
}
