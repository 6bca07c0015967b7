package view

import (
	"sync"
	"time"
)

// SearchDebounceDelay is the quiet period applied to search input before the
// typed query reaches the filter pipeline.
const SearchDebounceDelay = 300 * time.Millisecond

// Debouncer runs a function only after its trigger has been quiet for a fixed
// delay. Every Trigger restarts the timer, so a burst of keystrokes produces
// exactly one trailing invocation.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
}

// NewDebouncer creates a Debouncer with the given quiet period.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn after the quiet period, cancelling any previously
// scheduled invocation. fn runs on the timer's goroutine.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop cancels any pending invocation.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
