package views

import (
	"sync"
	"time"

	"github.com/dshills/runebridge/internal/sched"
)

// expiring is an insertion-ordered list whose entries are evicted by per-entry
// timers. Each timer removes its own entry, so a TTL change only affects
// entries pushed after it.
type expiring[T any] struct {
	mu       sync.Mutex
	clock    sched.Scheduler
	ttl      time.Duration
	nextID   uint64
	items    []expiringItem[T]
	timers   map[uint64]sched.Timer
	onChange func()
	closed   bool
}

type expiringItem[T any] struct {
	id    uint64
	value T
}

func newExpiring[T any](clock sched.Scheduler, ttl time.Duration) *expiring[T] {
	return &expiring[T]{
		clock:  clock,
		ttl:    ttl,
		timers: make(map[uint64]sched.Timer),
	}
}

// push appends v and arms a timer that removes it after the current TTL.
func (e *expiring[T]) push(v T) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.nextID++
	id := e.nextID
	e.items = append(e.items, expiringItem[T]{id: id, value: v})
	e.timers[id] = e.clock.AfterFunc(e.ttl, func() {
		e.expire(id)
	})
	e.mu.Unlock()

	e.changed()
}

func (e *expiring[T]) expire(id uint64) {
	e.mu.Lock()
	delete(e.timers, id)
	removed := e.removeLocked(id)
	e.mu.Unlock()

	if removed {
		e.changed()
	}
}

// dismissAt removes the entry at index i now and cancels its timer.
func (e *expiring[T]) dismissAt(i int) bool {
	e.mu.Lock()
	if i < 0 || i >= len(e.items) {
		e.mu.Unlock()
		return false
	}
	id := e.items[i].id
	if t, ok := e.timers[id]; ok {
		t.Stop()
		delete(e.timers, id)
	}
	e.removeLocked(id)
	e.mu.Unlock()

	e.changed()
	return true
}

func (e *expiring[T]) removeLocked(id uint64) bool {
	for i, it := range e.items {
		if it.id == id {
			e.items = append(e.items[:i], e.items[i+1:]...)
			return true
		}
	}
	return false
}

func (e *expiring[T]) snapshot() []T {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]T, len(e.items))
	for i, it := range e.items {
		out[i] = it.value
	}
	return out
}

func (e *expiring[T]) len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.items)
}

func (e *expiring[T]) setTTL(ttl time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ttl = ttl
}

func (e *expiring[T]) setOnChange(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onChange = fn
}

// close cancels every pending timer. Entries stay visible; nothing fires
// against a torn-down view.
func (e *expiring[T]) close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for id, t := range e.timers {
		t.Stop()
		delete(e.timers, id)
	}
	e.closed = true
}

func (e *expiring[T]) changed() {
	e.mu.Lock()
	fn := e.onChange
	e.mu.Unlock()
	if fn != nil {
		fn()
	}
}
