package filters

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// collector records delivered values under a lock.
type collector struct {
	mu   sync.Mutex
	got  []string
	done chan struct{}
}

func newCollector() *collector {
	return &collector{done: make(chan struct{}, 16)}
}

func (c *collector) fn(v string) {
	c.mu.Lock()
	c.got = append(c.got, v)
	c.mu.Unlock()
	c.done <- struct{}{}
}

func (c *collector) values() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.got...)
}

func (c *collector) wait(t *testing.T) {
	t.Helper()
	select {
	case <-c.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for debounced delivery")
	}
}

func TestDebouncerLastValueWins(t *testing.T) {
	c := newCollector()
	d := NewDebouncer(30*time.Millisecond, c.fn)
	defer d.Stop()

	// two edits inside one quiet window: only the final value is delivered
	d.Set("te")
	d.Set("test")
	c.wait(t)

	assert.Equal(t, []string{"test"}, c.values())
}

func TestDebouncerSeparateWindows(t *testing.T) {
	c := newCollector()
	d := NewDebouncer(20*time.Millisecond, c.fn)
	defer d.Stop()

	d.Set("first")
	c.wait(t)
	d.Set("second")
	c.wait(t)

	assert.Equal(t, []string{"first", "second"}, c.values())
}

func TestDebouncerFlush(t *testing.T) {
	c := newCollector()
	d := NewDebouncer(time.Hour, c.fn)
	defer d.Stop()

	d.Set("pending")
	d.Flush()
	c.wait(t)

	assert.Equal(t, []string{"pending"}, c.values())
}

func TestDebouncerCancelDropsPending(t *testing.T) {
	c := newCollector()
	d := NewDebouncer(30*time.Millisecond, c.fn)
	defer d.Stop()

	d.Set("doomed")
	d.Cancel()
	time.Sleep(80 * time.Millisecond)

	assert.Empty(t, c.values())
}

func TestDebouncerStop(t *testing.T) {
	c := newCollector()
	d := NewDebouncer(10*time.Millisecond, c.fn)

	d.Set("a")
	d.Stop()
	d.Set("b")
	time.Sleep(50 * time.Millisecond)

	assert.Empty(t, c.values())
}

func TestDebouncerZeroWindowIsSynchronous(t *testing.T) {
	c := newCollector()
	d := NewDebouncer(0, c.fn)
	d.Set("now")
	assert.Equal(t, []string{"now"}, c.values())
}
