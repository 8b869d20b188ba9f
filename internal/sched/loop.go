package sched

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrLoopClosed is returned by Run after Close has been called.
var ErrLoopClosed = errors.New("event loop closed")

// PanicHandler is called when a posted task panics.
type PanicHandler func(recovered any)

// Loop is a goroutine-backed event loop. Tasks posted from any goroutine run
// one at a time, in posting order, on the goroutine that called Run.
type Loop struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
	done  chan struct{}

	closed  atomic.Bool
	running atomic.Bool

	onPanic PanicHandler
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithPanicHandler sets the handler for tasks that panic.
// Without one, a panicking task is recovered and dropped.
func WithPanicHandler(h PanicHandler) LoopOption {
	return func(l *Loop) {
		l.onPanic = h
	}
}

// NewLoop creates an idle loop. Call Run to start executing tasks.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Post queues fn for execution on the loop. It never blocks, so it is safe to
// call from inside a running task. Returns false once the loop is closed.
func (l *Loop) Post(fn func()) bool {
	if fn == nil || l.closed.Load() {
		return false
	}

	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Run executes posted tasks until ctx is cancelled or Close is called.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return errors.New("event loop already running")
	}
	defer l.running.Store(false)

	for {
		l.drain()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return ErrLoopClosed
		case <-l.wake:
		}
	}
}

// Close stops the loop. Tasks still queued are discarded.
func (l *Loop) Close() {
	if l.closed.Swap(true) {
		return
	}
	close(l.done)
}

// Now returns the wall clock time.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// AfterFunc schedules fn to be posted to the loop after d.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.stopped.Load() {
				return
			}
			t.fired.Store(true)
			fn()
		})
	})
	return t
}

func (l *Loop) drain() {
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return
		}
		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		if l.closed.Load() {
			return
		}
		l.exec(fn)
	}
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil && l.onPanic != nil {
			l.onPanic(r)
		}
	}()
	fn()
}

type loopTimer struct {
	timer   *time.Timer
	stopped atomic.Bool
	fired   atomic.Bool
}

func (t *loopTimer) Stop() bool {
	if t.fired.Load() || t.stopped.Swap(true) {
		return false
	}
	t.timer.Stop()
	return true
}
