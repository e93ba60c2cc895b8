// Package clock abstracts the time source so the accounting engine stays
// deterministic under test.
package clock

import (
	"sync"
	"time"
)

// Clock supplies the current instant. Periodic redraw cadence is the shell's
// concern, so the interface stays read-only.
type Clock interface {
	Now() time.Time
}

// System is the real-time clock used in production.
type System struct{}

func (System) Now() time.Time {
	return time.Now()
}

// Fake is a controllable clock for tests.
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake returns a fake clock pinned to the given instant.
func NewFake(now time.Time) *Fake {
	return &Fake{now: now}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.now
}

// Set pins the fake clock to the given instant.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

// Advance moves the clock forward.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}
