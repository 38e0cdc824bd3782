package filters

import (
	"sync"
	"time"
)

// DefaultSearchDebounce is the quiet window applied to search-text edits
// before they commit to the URL and trigger a query.
const DefaultSearchDebounce = 300 * time.Millisecond

// Debouncer delivers only the last value set within a quiet window.
// Intermediate values are discarded, never queued. Safe for concurrent use.
type Debouncer struct {
	mu      sync.Mutex
	window  time.Duration
	fn      func(string)
	timer   *time.Timer
	pending string
	has     bool
	stopped bool
}

// NewDebouncer creates a debouncer that calls fn with the settled value.
// A non-positive window delivers synchronously.
func NewDebouncer(window time.Duration, fn func(string)) *Debouncer {
	return &Debouncer{window: window, fn: fn}
}

// Set records a new value and restarts the quiet window.
func (d *Debouncer) Set(v string) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	if d.window <= 0 {
		d.mu.Unlock()
		d.fn(v)
		return
	}
	d.pending = v
	d.has = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
	d.mu.Unlock()
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.stopped || !d.has {
		d.mu.Unlock()
		return
	}
	v := d.pending
	d.has = false
	d.mu.Unlock()
	d.fn(v)
}

// Flush delivers any pending value immediately.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()
	d.fire()
}

// Cancel drops any pending value without delivering it.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.has = false
	d.mu.Unlock()
}

// Stop cancels pending delivery and rejects further sets.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.has = false
	d.mu.Unlock()
}
