package filters

import (
	"net/url"
	"sync"
	"time"

	"github.com/aura-video/catalog-backend/internal/criteria"
)

// Commit is one consistent update of filter state: the query values to
// replace the current URL with, and the normalized criteria to query by.
type Commit struct {
	Query    url.Values
	Criteria criteria.ListCriteria
}

// Synchronizer mirrors filter form state into URL-shaped commits. Search
// edits pass through the debouncer; sort and tag selection commit
// immediately, as does Reset. Commits are replace-style: each carries the
// complete query, never a delta, so the consumer swaps the URL in place
// without stacking history entries.
type Synchronizer struct {
	mu       sync.Mutex
	form     *Form
	debounce *Debouncer
	onCommit func(Commit)

	// committedSearch is the last search value that cleared the debounce
	// window; commits use it, not the form's in-flight text.
	committedSearch string
}

// NewSynchronizer builds a synchronizer whose initial state is read from the
// given URL query values. The initial state is not committed; the first
// commit happens on the first change.
func NewSynchronizer(initial url.Values, window time.Duration, onCommit func(Commit)) *Synchronizer {
	s := &Synchronizer{
		form:     NewForm(initial),
		onCommit: onCommit,
	}
	s.committedSearch = s.form.Values().Search
	s.debounce = NewDebouncer(window, s.commitSearch)
	return s
}

// Values returns the current (pre-debounce) form snapshot.
func (s *Synchronizer) Values() Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.Values()
}

// Dirty reports whether the form differs from its initial state.
func (s *Synchronizer) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.Dirty()
}

// SetSearch records a keystroke. The commit fires only after the quiet
// window elapses without another edit.
func (s *Synchronizer) SetSearch(v string) {
	s.mu.Lock()
	s.form.SetSearch(v)
	s.mu.Unlock()
	s.debounce.Set(v)
}

// SetSort commits a new sort order immediately.
func (s *Synchronizer) SetSort(v criteria.SortOrder) {
	s.mu.Lock()
	s.form.SetSort(v)
	c := s.currentCommit()
	s.mu.Unlock()
	s.onCommit(c)
}

// SetTags commits a new tag selection immediately.
func (s *Synchronizer) SetTags(tags []string) {
	s.mu.Lock()
	s.form.SetTags(tags)
	c := s.currentCommit()
	s.mu.Unlock()
	s.onCommit(c)
}

// Reset restores all fields to defaults in one atomic commit. A pending
// debounced search is dropped so it cannot resurface after the reset.
func (s *Synchronizer) Reset() {
	s.debounce.Cancel()
	s.mu.Lock()
	s.form.Reset()
	s.committedSearch = ""
	c := s.currentCommit()
	s.mu.Unlock()
	s.onCommit(c)
}

// Flush forces a pending search edit to commit now.
func (s *Synchronizer) Flush() { s.debounce.Flush() }

// Close stops the debouncer; no further commits are delivered.
func (s *Synchronizer) Close() { s.debounce.Stop() }

func (s *Synchronizer) commitSearch(v string) {
	s.mu.Lock()
	s.committedSearch = v
	c := s.currentCommit()
	s.mu.Unlock()
	s.onCommit(c)
}

// currentCommit snapshots committed state. Caller holds s.mu.
func (s *Synchronizer) currentCommit() Commit {
	v := s.form.Values()
	v.Search = s.committedSearch
	return Commit{Query: v.Query(), Criteria: v.Criteria()}
}
