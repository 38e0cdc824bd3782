package filters

import (
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-video/catalog-backend/internal/criteria"
)

type commitLog struct {
	mu      sync.Mutex
	commits []Commit
	done    chan struct{}
}

func newCommitLog() *commitLog {
	return &commitLog{done: make(chan struct{}, 16)}
}

func (l *commitLog) record(c Commit) {
	l.mu.Lock()
	l.commits = append(l.commits, c)
	l.mu.Unlock()
	l.done <- struct{}{}
}

func (l *commitLog) all() []Commit {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Commit(nil), l.commits...)
}

func (l *commitLog) wait(t *testing.T) {
	t.Helper()
	select {
	case <-l.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for commit")
	}
}

func TestSynchronizerDebouncesSearch(t *testing.T) {
	log := newCommitLog()
	s := NewSynchronizer(url.Values{}, 30*time.Millisecond, log.record)
	defer s.Close()

	// back-to-back edits within one window commit only once, with the
	// final value
	s.SetSearch("te")
	s.SetSearch("test")
	log.wait(t)

	commits := log.all()
	require.Len(t, commits, 1)
	assert.Equal(t, "test", commits[0].Query.Get(criteria.ParamSearch))
	assert.Equal(t, "test", commits[0].Criteria.SearchQuery)
}

func TestSynchronizerSortCommitsImmediately(t *testing.T) {
	log := newCommitLog()
	s := NewSynchronizer(url.Values{}, time.Hour, log.record)
	defer s.Close()

	s.SetSort(criteria.SortOldest)

	commits := log.all()
	require.Len(t, commits, 1)
	assert.Equal(t, "oldest", commits[0].Query.Get(criteria.ParamSort))
	assert.Equal(t, criteria.SortOldest, commits[0].Criteria.OrderBy)
}

func TestSynchronizerTagsCommitImmediately(t *testing.T) {
	log := newCommitLog()
	s := NewSynchronizer(url.Values{}, time.Hour, log.record)
	defer s.Close()

	s.SetTags([]string{"B", "a"})

	commits := log.all()
	require.Len(t, commits, 1)
	assert.Equal(t, "a,b", commits[0].Query.Get(criteria.ParamTags))
	assert.Equal(t, []string{"b", "a"}, commits[0].Criteria.Tags, "criteria keep selection order; only the URL is sorted")
}

func TestSynchronizerCommitUsesDebouncedSearchOnly(t *testing.T) {
	log := newCommitLog()
	s := NewSynchronizer(url.Values{}, time.Hour, log.record)
	defer s.Close()

	// in-flight keystrokes must not leak into a sort-change commit
	s.SetSearch("typing")
	s.SetSort(criteria.SortOldest)

	commits := log.all()
	require.Len(t, commits, 1)
	assert.Empty(t, commits[0].Query.Get(criteria.ParamSearch))
	assert.Empty(t, commits[0].Criteria.SearchQuery)
}

func TestSynchronizerResetIsAtomic(t *testing.T) {
	q, _ := url.ParseQuery("search=x&tags=a,b&sort=oldest")
	log := newCommitLog()
	s := NewSynchronizer(q, 20*time.Millisecond, log.record)
	defer s.Close()

	s.SetSearch("pending edit")
	s.Reset()

	commits := log.all()
	require.Len(t, commits, 1, "reset is a single commit")
	assert.Empty(t, commits[0].Query.Encode(), "reset restores the clean default URL")
	assert.Equal(t, criteria.ListCriteria{OrderBy: criteria.SortNewest, SearchQuery: "", Tags: []string{}}, commits[0].Criteria)

	// the pending debounced edit must not resurface after reset
	time.Sleep(60 * time.Millisecond)
	assert.Len(t, log.all(), 1)
}

func TestSynchronizerInitialStateFromURL(t *testing.T) {
	q, _ := url.ParseQuery("search=Cats&sort=oldest&tags=pets")
	s := NewSynchronizer(q, time.Hour, func(Commit) {})
	defer s.Close()

	v := s.Values()
	assert.Equal(t, "Cats", v.Search)
	assert.Equal(t, criteria.SortOldest, v.Sort)
	assert.Equal(t, []string{"pets"}, v.Tags)
	assert.False(t, s.Dirty())
}
