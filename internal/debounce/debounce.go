// Package debounce provides the trailing-edge debouncer behind
// search-as-you-type inputs: a burst of keystrokes inside the window
// collapses into one callback carrying the final value.
package debounce

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid Trigger calls into a single fn invocation with
// the last value, fired after the window elapses with no further calls.
type Debouncer struct {
	mu     sync.Mutex
	window time.Duration
	fn     func(value string)
	timer  *time.Timer
	last   string
}

// New creates a debouncer with the given window. fn runs on a timer
// goroutine; callers hand off to their own loop if they need one.
func New(window time.Duration, fn func(value string)) *Debouncer {
	return &Debouncer{window: window, fn: fn}
}

// Trigger records value and (re)arms the timer.
func (d *Debouncer) Trigger(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.last = value
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	value := d.last
	d.timer = nil
	d.mu.Unlock()
	d.fn(value)
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
