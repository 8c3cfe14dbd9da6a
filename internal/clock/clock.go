// Package clock abstracts time so the polling loop and debouncer can be
// driven deterministically in tests. Use Real in production and Mock in tests.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Clock provides the time operations used by the coordinator.
type Clock interface {
	// Now returns the current time
	Now() time.Time

	// After returns a channel that receives the time once d has elapsed
	After(d time.Duration) <-chan time.Time

	// AfterFunc calls f in its own goroutine once d has elapsed.
	// The returned Timer cancels or re-arms the call.
	AfterFunc(d time.Duration, f func()) Timer

	// Since returns the time elapsed since t
	Since(t time.Time) time.Duration
}

// Timer is a single pending event.
type Timer interface {
	// Stop prevents the timer from firing. Returns false if it already
	// fired or was stopped.
	Stop() bool

	// Reset re-arms the timer to fire after d. Returns true if the timer
	// was still pending.
	Reset(d time.Duration) bool
}

// Real implements Clock with the standard time package.
type Real struct{}

// NewReal returns a Clock backed by wall time.
func NewReal() *Real {
	return &Real{}
}

func (Real) Now() time.Time                         { return time.Now() }
func (Real) After(d time.Duration) <-chan time.Time { return time.After(d) }
func (Real) Since(t time.Time) time.Duration        { return time.Since(t) }

func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return realTimer{time.AfterFunc(d, f)}
}

type realTimer struct {
	t *time.Timer
}

func (rt realTimer) Stop() bool                 { return rt.t.Stop() }
func (rt realTimer) Reset(d time.Duration) bool { return rt.t.Reset(d) }

// Mock implements Clock with manually advanced time.
type Mock struct {
	mu      sync.Mutex
	current time.Time
	pending []*mockTimer
}

type mockTimer struct {
	clock    *Mock
	deadline time.Time
	fn       func()
	armed    bool
}

// NewMock returns a Mock clock frozen at start.
func NewMock(start time.Time) *Mock {
	return &Mock{current: start}
}

func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *Mock) Since(t time.Time) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.Sub(t)
}

func (m *Mock) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	m.AfterFunc(d, func() {
		ch <- m.Now()
	})
	return ch
}

func (m *Mock) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := &mockTimer{
		clock:    m,
		deadline: m.current.Add(d),
		fn:       f,
		armed:    true,
	}
	m.pending = append(m.pending, t)
	return t
}

// Advance moves the mock clock forward by d, firing every timer whose
// deadline is reached, in deadline order. Callbacks run on the calling
// goroutine with no locks held.
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	m.current = m.current.Add(d)
	now := m.current

	var due []*mockTimer
	var rest []*mockTimer
	for _, t := range m.pending {
		if t.armed && !t.deadline.After(now) {
			t.armed = false
			due = append(due, t)
		} else if t.armed {
			rest = append(rest, t)
		}
	}
	m.pending = rest
	sort.Slice(due, func(i, j int) bool { return due[i].deadline.Before(due[j].deadline) })
	m.mu.Unlock()

	for _, t := range due {
		t.fn()
	}
}

// Set jumps the mock clock to t, firing any timers passed along the way.
func (m *Mock) Set(t time.Time) {
	m.mu.Lock()
	cur := m.current
	m.mu.Unlock()

	if t.After(cur) {
		m.Advance(t.Sub(cur))
		return
	}

	m.mu.Lock()
	m.current = t
	m.mu.Unlock()
}

func (t *mockTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	was := t.armed
	t.armed = false
	return was
}

func (t *mockTimer) Reset(d time.Duration) bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	was := t.armed
	t.deadline = t.clock.current.Add(d)
	if !t.armed {
		t.armed = true
		t.clock.pending = append(t.clock.pending, t)
	}
	return was
}
