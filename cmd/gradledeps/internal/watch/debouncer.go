// Package watch re-parses Gradle scripts as they change on disk.
package watch

import (
	"maps"
	"slices"
	"sync"
	"time"
)

// MaxPending forces a flush once this many distinct scripts are waiting.
const MaxPending = 1000

// Debouncer groups change notifications that arrive within a quiet window,
// so that an editor saving a script several times causes one re-parse.
type Debouncer struct {
	window time.Duration
	flush  func(paths []string)

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	gen     uint64 // bumped by every Add; a timer only fires for its own generation
	stopped bool
}

// NewDebouncer returns a debouncer that calls flush with the sorted pending
// paths once window passes without a new Add.
func NewDebouncer(window time.Duration, flush func(paths []string)) *Debouncer {
	return &Debouncer{window: window, flush: flush, pending: map[string]struct{}{}}
}

// Add queues path and restarts the window. It is a no-op after Stop.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.pending[path] = struct{}{}
	d.gen++

	if len(d.pending) >= MaxPending {
		batch := d.drainLocked()
		d.mu.Unlock()
		d.deliver(batch)
		return
	}

	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() { d.expire(gen) })
	d.mu.Unlock()
}

func (d *Debouncer) expire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	batch := d.drainLocked()
	d.mu.Unlock()
	d.deliver(batch)
}

// FlushNow delivers pending paths without waiting for the window.
func (d *Debouncer) FlushNow() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	batch := d.drainLocked()
	d.mu.Unlock()
	d.deliver(batch)
}

// Stop delivers whatever is pending one last time and disables the debouncer.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	batch := d.drainLocked()
	d.mu.Unlock()
	d.deliver(batch)
}

// PendingCount returns how many distinct paths are waiting.
func (d *Debouncer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// drainLocked cancels the timer and empties the pending set. d.mu must be held.
func (d *Debouncer) drainLocked() []string {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	batch := slices.Sorted(maps.Keys(d.pending))
	clear(d.pending)
	return batch
}

// deliver runs the callback outside the lock so it may call Add.
func (d *Debouncer) deliver(batch []string) {
	if len(batch) > 0 && d.flush != nil {
		d.flush(batch)
	}
}
