package compositor

import (
	"sync"
	"time"
)

// throttle runs fn once, interval after the first trigger of a burst.
// Further triggers inside the window are absorbed by the pending run.
type throttle struct {
	mu       sync.Mutex
	interval time.Duration
	timer    *time.Timer
	fn       func()
}

func newThrottle(interval time.Duration, fn func()) *throttle {
	return &throttle{interval: interval, fn: fn}
}

func (t *throttle) trigger() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		return
	}
	t.timer = time.AfterFunc(t.interval, t.fire)
}

func (t *throttle) fire() {
	t.mu.Lock()
	if t.timer == nil {
		t.mu.Unlock()
		return
	}
	t.timer = nil
	t.mu.Unlock()
	t.fn()
}

// cancel drops a pending run and reports whether one was pending.
func (t *throttle) cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer == nil {
		return false
	}
	t.timer.Stop()
	t.timer = nil
	return true
}
