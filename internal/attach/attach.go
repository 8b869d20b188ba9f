// Package attach buffers input listeners registered before the engine's render
// surface exists and binds them to the surface once it appears.
//
// Every listener is bound to the page target immediately so global shortcuts
// work from the start. A bounded poll on the bridge scheduler looks for the
// surface; the first tick that finds it binds every pending listener in
// registration order and the poll ends for good.
package attach

import (
	"errors"
	"sync"
	"time"

	"github.com/dshills/runebridge/internal/logging"
	"github.com/dshills/runebridge/internal/sched"
)

// Default poll settings. The surface only exists once an engine connects,
// and an engine may be started well after the UI, so the poll gives up after
// five minutes. Page bindings work regardless.
const (
	DefaultInterval    = 50 * time.Millisecond
	DefaultMaxAttempts = 6000
)

// ErrAlreadyStarted is returned when Start is called more than once.
var ErrAlreadyStarted = errors.New("attach: poll already started")

// Target receives listener bindings.
type Target[L any] interface {
	Bind(listener L)
}

// Locator reports the render surface once it exists.
type Locator[L any] func() (Target[L], bool)

// State is the lifecycle state of a Queue's poll.
type State int

const (
	// StateIdle means Start has not been called.
	StateIdle State = iota
	// StatePolling means a poll tick is armed.
	StatePolling
	// StateAttached means the surface was found and all listeners bound.
	StateAttached
	// StateExhausted means the surface never appeared within MaxAttempts.
	StateExhausted
	// StateStopped means Stop cancelled the poll.
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePolling:
		return "polling"
	case StateAttached:
		return "attached"
	case StateExhausted:
		return "exhausted"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further ticks will run in this state.
func (s State) Terminal() bool {
	return s == StateAttached || s == StateExhausted || s == StateStopped
}

// Options configures a Queue.
type Options struct {
	// Interval between poll ticks. Defaults to DefaultInterval.
	Interval time.Duration
	// MaxAttempts bounds the number of ticks. Defaults to DefaultMaxAttempts.
	MaxAttempts int
	// Logger receives attach diagnostics. Optional.
	Logger *logging.Logger
	// OnSettled is called once when the poll reaches a terminal state.
	OnSettled func(State)
}

// Queue is the deferred attachment queue.
type Queue[L any] struct {
	mu sync.Mutex

	scheduler sched.Scheduler
	page      Target[L]
	locate    Locator[L]
	opts      Options

	pending  []L
	surface  Target[L]
	state    State
	attempts int
	timer    sched.Timer
}

// New creates a queue bound to page that looks for the surface with locate.
func New[L any](s sched.Scheduler, page Target[L], locate Locator[L], opts Options) *Queue[L] {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	return &Queue[L]{
		scheduler: s,
		page:      page,
		locate:    locate,
		opts:      opts,
	}
}

// AddDeferred binds listener to the page target now. If the surface is
// already bound the listener is bound there too; otherwise it waits in the
// pending queue for the tick that finds the surface.
func (q *Queue[L]) AddDeferred(listener L) {
	q.mu.Lock()
	surface := q.surface
	if surface == nil && q.state != StateExhausted && q.state != StateStopped {
		q.pending = append(q.pending, listener)
	}
	q.mu.Unlock()

	if q.page != nil {
		q.page.Bind(listener)
	}
	if surface != nil {
		surface.Bind(listener)
	}
}

// Start arms the poll.
func (q *Queue[L]) Start() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.state != StateIdle {
		return ErrAlreadyStarted
	}
	q.state = StatePolling
	q.timer = q.scheduler.AfterFunc(q.opts.Interval, q.tick)
	return nil
}

// Stop cancels a pending poll. It is safe to call in any state.
func (q *Queue[L]) Stop() {
	q.mu.Lock()
	if q.state.Terminal() {
		q.mu.Unlock()
		return
	}
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	q.state = StateStopped
	q.pending = nil
	q.mu.Unlock()

	q.settled(StateStopped)
}

// State returns the poll state.
func (q *Queue[L]) State() State {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Attempts returns the number of ticks run so far.
func (q *Queue[L]) Attempts() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.attempts
}

// Pending returns the number of listeners waiting for the surface.
func (q *Queue[L]) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *Queue[L]) tick() {
	q.mu.Lock()
	if q.state != StatePolling {
		q.mu.Unlock()
		return
	}
	q.attempts++
	q.timer = nil

	surface, ok := q.locate()
	if ok && surface != nil {
		pending := q.pending
		q.pending = nil
		q.surface = surface
		q.state = StateAttached
		attempts := q.attempts
		q.mu.Unlock()

		for _, l := range pending {
			surface.Bind(l)
		}
		q.opts.Logger.Debug("surface attached after %d attempts, bound %d listeners", attempts, len(pending))
		q.settled(StateAttached)
		return
	}

	if q.attempts >= q.opts.MaxAttempts {
		q.state = StateExhausted
		q.pending = nil
		attempts := q.attempts
		q.mu.Unlock()

		q.opts.Logger.Warn("render surface not found after %d attempts", attempts)
		q.settled(StateExhausted)
		return
	}

	q.timer = q.scheduler.AfterFunc(q.opts.Interval, q.tick)
	q.mu.Unlock()
}

func (q *Queue[L]) settled(s State) {
	if q.opts.OnSettled != nil {
		q.opts.OnSettled(s)
	}
}
