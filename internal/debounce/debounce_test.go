package debounce

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_Basic(t *testing.T) {
	var callCount atomic.Int32

	d := New(50*time.Millisecond, func() {
		callCount.Add(1)
	})

	for i := 0; i < 10; i++ {
		d.Call()
	}

	time.Sleep(150 * time.Millisecond)

	if callCount.Load() != 1 {
		t.Errorf("callCount = %d, want 1", callCount.Load())
	}
}

func TestDebouncer_SpacedCalls(t *testing.T) {
	var callCount atomic.Int32

	d := New(30*time.Millisecond, func() {
		callCount.Add(1)
	})

	for i := 0; i < 3; i++ {
		d.Call()
		time.Sleep(100 * time.Millisecond)
	}

	if callCount.Load() != 3 {
		t.Errorf("callCount = %d, want 3", callCount.Load())
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	var callCount atomic.Int32

	d := New(50*time.Millisecond, func() {
		callCount.Add(1)
	})

	d.Call()
	d.Cancel()

	time.Sleep(100 * time.Millisecond)

	if callCount.Load() != 0 {
		t.Errorf("callCount = %d, want 0 (canceled)", callCount.Load())
	}
	if d.Pending() {
		t.Error("Pending() = true after Cancel")
	}
}

func TestDebouncer_Flush(t *testing.T) {
	var callCount atomic.Int32

	d := New(100*time.Millisecond, func() {
		callCount.Add(1)
	})

	d.Call()
	if !d.Flush() {
		t.Error("Flush() = false, want true with a pending call")
	}
	if callCount.Load() != 1 {
		t.Errorf("callCount after Flush = %d, want 1", callCount.Load())
	}

	time.Sleep(150 * time.Millisecond)
	if callCount.Load() != 1 {
		t.Errorf("callCount after delay = %d, want 1 (timer must not fire again)", callCount.Load())
	}

	if d.Flush() {
		t.Error("Flush() = true with nothing pending")
	}
}

func TestGroup_PerKeyCoalescing(t *testing.T) {
	var mu sync.Mutex
	calls := make(map[string]int)

	g := NewGroup(40*time.Millisecond, func(key string) {
		mu.Lock()
		calls[key]++
		mu.Unlock()
	})

	for i := 0; i < 5; i++ {
		g.Schedule("a")
		g.Schedule("b")
	}

	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if calls["a"] != 1 || calls["b"] != 1 {
		t.Errorf("calls = %v, want one call per key", calls)
	}
}

func TestGroup_FlushAllAndStop(t *testing.T) {
	var callCount atomic.Int32

	g := NewGroup(time.Hour, func(string) {
		callCount.Add(1)
	})

	g.Schedule("a")
	g.Schedule("b")
	g.Schedule("c")
	g.Cancel("c")

	if !g.Pending("a") {
		t.Error("Pending(a) = false, want true")
	}
	if n := g.FlushAll(); n != 2 {
		t.Errorf("FlushAll() = %d, want 2", n)
	}
	if callCount.Load() != 2 {
		t.Errorf("callCount = %d, want 2", callCount.Load())
	}

	g.Stop()
	g.Schedule("a")
	if g.Pending("a") {
		t.Error("Schedule after Stop should be ignored")
	}
}
