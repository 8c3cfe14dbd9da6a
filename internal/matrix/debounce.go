package matrix

import (
	"sync"
	"time"

	"github.com/AlexOwl/jtechdigital-ha/internal/clock"
)

// Debouncer coalesces bursts of requests into a single trailing call: every
// Request re-arms the timer, and fn runs once after a full quiet window with
// no further requests. Cancel-and-restart semantics; there is no leading
// edge.
type Debouncer struct {
	clk   clock.Clock
	quiet time.Duration
	fn    func()

	mu    sync.Mutex
	timer clock.Timer
}

// NewDebouncer creates a debouncer that calls fn after quiet elapses without
// another Request.
func NewDebouncer(clk clock.Clock, quiet time.Duration, fn func()) *Debouncer {
	return &Debouncer{clk: clk, quiet: quiet, fn: fn}
}

// Request schedules fn, restarting the quiet window if a call is already
// pending.
func (d *Debouncer) Request() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer == nil {
		d.timer = d.clk.AfterFunc(d.quiet, d.fire)
		return
	}
	d.timer.Reset(d.quiet)
}

// Cancel drops any pending call.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	d.timer = nil
	d.mu.Unlock()

	d.fn()
}
