// Package debounce provides the timer abstraction used for coalescing
// rapid triggers (such as keystrokes) into a single deferred action.
package debounce

import (
	"sync"
	"time"
)

// Debouncer groups rapid successive calls into a single call after a quiet period.
//
// Thread-safety: All methods are safe for concurrent use. The callback is
// never invoked concurrently with itself by the same Debouncer.
type Debouncer struct {
	mu       sync.Mutex
	run      sync.Mutex // serializes callback invocations
	delay    time.Duration
	timer    *time.Timer
	pending  bool
	seq      uint64 // sequence number to detect stale timers
	callback func()
}

// New creates a debouncer that invokes callback once no call has been made
// for at least delay.
func New(delay time.Duration, callback func()) *Debouncer {
	return &Debouncer{
		delay:    delay,
		callback: callback,
	}
}

// Call schedules the callback, restarting the quiet period.
func (d *Debouncer) Call() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = true
	d.seq++
	currentSeq := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if !d.pending || d.seq != currentSeq || d.callback == nil {
			d.mu.Unlock()
			return
		}
		d.pending = false
		d.timer = nil
		d.mu.Unlock()
		d.invoke()
	})
}

// Flush runs the callback immediately if a call is pending and cancels the
// scheduled one. It reports whether the callback ran.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	// Invalidate any timer callback already past Stop.
	d.seq++

	if !d.pending || d.callback == nil {
		d.mu.Unlock()
		return false
	}
	d.pending = false
	d.mu.Unlock()

	d.invoke()
	return true
}

// Cancel drops any pending call without running it.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	d.pending = false
}

// Pending returns true if a call is scheduled but has not run yet.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *Debouncer) invoke() {
	d.run.Lock()
	defer d.run.Unlock()
	d.callback()
}

// Group holds one Debouncer per key, all sharing the same delay and
// callback. It is used where each document needs its own quiet period.
type Group[K comparable] struct {
	mu       sync.Mutex
	delay    time.Duration
	callback func(K)
	items    map[K]*Debouncer
	stopped  bool
}

// NewGroup creates a keyed debouncer group.
func NewGroup[K comparable](delay time.Duration, callback func(K)) *Group[K] {
	return &Group[K]{
		delay:    delay,
		callback: callback,
		items:    make(map[K]*Debouncer),
	}
}

// Schedule restarts the quiet period for key.
func (g *Group[K]) Schedule(key K) {
	g.mu.Lock()
	if g.stopped {
		g.mu.Unlock()
		return
	}
	d, ok := g.items[key]
	if !ok {
		d = New(g.delay, func() { g.callback(key) })
		g.items[key] = d
	}
	g.mu.Unlock()

	d.Call()
}

// Flush runs the pending call for key, if any, on the caller's goroutine.
func (g *Group[K]) Flush(key K) bool {
	g.mu.Lock()
	d, ok := g.items[key]
	g.mu.Unlock()

	if !ok {
		return false
	}
	return d.Flush()
}

// FlushAll runs every pending call and returns how many ran.
func (g *Group[K]) FlushAll() int {
	g.mu.Lock()
	items := make([]*Debouncer, 0, len(g.items))
	for _, d := range g.items {
		items = append(items, d)
	}
	g.mu.Unlock()

	n := 0
	for _, d := range items {
		if d.Flush() {
			n++
		}
	}
	return n
}

// Cancel drops the pending call for key and forgets the key.
func (g *Group[K]) Cancel(key K) {
	g.mu.Lock()
	d, ok := g.items[key]
	delete(g.items, key)
	g.mu.Unlock()

	if ok {
		d.Cancel()
	}
}

// Pending reports whether key has a scheduled call.
func (g *Group[K]) Pending(key K) bool {
	g.mu.Lock()
	d, ok := g.items[key]
	g.mu.Unlock()
	return ok && d.Pending()
}

// Stop cancels every pending call. Later Schedule calls are ignored.
func (g *Group[K]) Stop() {
	g.mu.Lock()
	g.stopped = true
	items := g.items
	g.items = make(map[K]*Debouncer)
	g.mu.Unlock()

	for _, d := range items {
		d.Cancel()
	}
}
