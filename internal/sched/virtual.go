package sched

import (
	"sync"
	"time"
)

// Virtual is a manually advanced clock. Timers fire only inside Advance, on
// the caller's goroutine, ordered by deadline and then by scheduling order.
type Virtual struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers []*virtualTimer
}

// NewVirtual creates a virtual clock starting at start.
func NewVirtual(start time.Time) *Virtual {
	return &Virtual{now: start}
}

// Now returns the virtual time.
func (v *Virtual) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

// AfterFunc schedules fn to run once the clock has advanced by d.
func (v *Virtual) AfterFunc(d time.Duration, fn func()) Timer {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.seq++
	t := &virtualTimer{
		clock: v,
		when:  v.now.Add(d),
		seq:   v.seq,
		fn:    fn,
	}
	v.timers = append(v.timers, t)
	return t
}

// Advance moves the clock forward by d, firing every timer that becomes due.
// Timers scheduled by a callback fire too if their deadline falls inside the
// advanced window.
func (v *Virtual) Advance(d time.Duration) {
	v.mu.Lock()
	target := v.now.Add(d)
	v.mu.Unlock()

	for {
		v.mu.Lock()
		next := v.popDue(target)
		if next == nil {
			v.now = target
			v.mu.Unlock()
			return
		}
		v.now = next.when
		v.mu.Unlock()

		next.fn()
	}
}

// Pending returns the number of timers that have neither fired nor been stopped.
func (v *Virtual) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.timers)
}

// popDue removes and returns the earliest timer due at or before target.
// Callers must hold v.mu.
func (v *Virtual) popDue(target time.Time) *virtualTimer {
	idx := -1
	for i, t := range v.timers {
		if t.when.After(target) {
			continue
		}
		if idx < 0 || t.before(v.timers[idx]) {
			idx = i
		}
	}
	if idx < 0 {
		return nil
	}
	t := v.timers[idx]
	v.timers = append(v.timers[:idx], v.timers[idx+1:]...)
	t.done = true
	return t
}

func (v *Virtual) remove(t *virtualTimer) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if t.done {
		return false
	}
	for i, other := range v.timers {
		if other == t {
			v.timers = append(v.timers[:i], v.timers[i+1:]...)
			break
		}
	}
	t.done = true
	return true
}

type virtualTimer struct {
	clock *Virtual
	when  time.Time
	seq   uint64
	fn    func()
	done  bool
}

func (t *virtualTimer) before(other *virtualTimer) bool {
	if t.when.Equal(other.when) {
		return t.seq < other.seq
	}
	return t.when.Before(other.when)
}

func (t *virtualTimer) Stop() bool {
	return t.clock.remove(t)
}
