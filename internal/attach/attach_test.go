package attach

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/runebridge/internal/sched"
)

type recordingTarget struct {
	name  string
	bound []string
}

func (t *recordingTarget) Bind(l string) {
	t.bound = append(t.bound, l)
}

type fixture struct {
	clock   *sched.Virtual
	page    *recordingTarget
	surface *recordingTarget
	exists  bool
	lookups int
	settled []State
	queue   *Queue[string]
}

func newFixture(maxAttempts int) *fixture {
	f := &fixture{
		clock:   sched.NewVirtual(time.Unix(0, 0)),
		page:    &recordingTarget{name: "page"},
		surface: &recordingTarget{name: "surface"},
	}
	f.queue = New[string](f.clock, f.page, func() (Target[string], bool) {
		f.lookups++
		if !f.exists {
			return nil, false
		}
		return f.surface, true
	}, Options{
		MaxAttempts: maxAttempts,
		OnSettled:   func(s State) { f.settled = append(f.settled, s) },
	})
	return f
}

func TestQueue_BindsPageImmediately(t *testing.T) {
	f := newFixture(10)

	f.queue.AddDeferred("alt-enter")

	assert.Equal(t, []string{"alt-enter"}, f.page.bound)
	assert.Empty(t, f.surface.bound)
	assert.Equal(t, 1, f.queue.Pending())
}

func TestQueue_BindsAllPendingOnFirstTickWithSurface(t *testing.T) {
	f := newFixture(10)
	f.queue.AddDeferred("a")
	f.queue.AddDeferred("b")
	f.queue.AddDeferred("c")
	require.NoError(t, f.queue.Start())

	f.clock.Advance(3 * DefaultInterval)
	assert.Empty(t, f.surface.bound)
	assert.Equal(t, 3, f.lookups)
	assert.Equal(t, StatePolling, f.queue.State())

	f.exists = true
	f.clock.Advance(DefaultInterval)

	assert.Equal(t, []string{"a", "b", "c"}, f.surface.bound)
	assert.Equal(t, StateAttached, f.queue.State())
	assert.Equal(t, 4, f.queue.Attempts())
	assert.Equal(t, 0, f.queue.Pending())
	assert.Equal(t, []State{StateAttached}, f.settled)

	// No further work once attached.
	f.clock.Advance(time.Minute)
	assert.Equal(t, 4, f.lookups)
	assert.Equal(t, []string{"a", "b", "c"}, f.surface.bound)
	assert.Equal(t, 0, f.clock.Pending())
}

func TestQueue_AddAfterAttachBindsSurfaceDirectly(t *testing.T) {
	f := newFixture(10)
	f.exists = true
	require.NoError(t, f.queue.Start())
	f.clock.Advance(DefaultInterval)

	f.queue.AddDeferred("late")

	assert.Equal(t, []string{"late"}, f.page.bound)
	assert.Equal(t, []string{"late"}, f.surface.bound)
	assert.Equal(t, 0, f.queue.Pending())
}

func TestQueue_ExhaustsAfterMaxAttempts(t *testing.T) {
	f := newFixture(5)
	f.queue.AddDeferred("a")
	require.NoError(t, f.queue.Start())

	f.clock.Advance(time.Minute)

	assert.Equal(t, StateExhausted, f.queue.State())
	assert.Equal(t, 5, f.lookups)
	assert.Equal(t, 0, f.clock.Pending())
	assert.Equal(t, []State{StateExhausted}, f.settled)

	// A surface that shows up later is never bound.
	f.exists = true
	f.clock.Advance(time.Minute)
	assert.Empty(t, f.surface.bound)
}

func TestQueue_StopCancelsPoll(t *testing.T) {
	f := newFixture(10)
	f.queue.AddDeferred("a")
	require.NoError(t, f.queue.Start())
	f.clock.Advance(DefaultInterval)

	f.queue.Stop()
	f.queue.Stop()

	assert.Equal(t, StateStopped, f.queue.State())
	assert.Equal(t, 0, f.clock.Pending())
	assert.Equal(t, []State{StateStopped}, f.settled)

	f.exists = true
	f.clock.Advance(time.Minute)
	assert.Equal(t, 1, f.lookups)
	assert.Empty(t, f.surface.bound)
}

func TestQueue_StopBeforeStart(t *testing.T) {
	f := newFixture(10)
	f.queue.Stop()

	assert.Equal(t, StateStopped, f.queue.State())
	assert.ErrorIs(t, f.queue.Start(), ErrAlreadyStarted)
}

func TestQueue_StartTwice(t *testing.T) {
	f := newFixture(10)
	require.NoError(t, f.queue.Start())
	assert.ErrorIs(t, f.queue.Start(), ErrAlreadyStarted)
	assert.Equal(t, 1, f.clock.Pending())
}

func TestQueue_Defaults(t *testing.T) {
	q := New[string](sched.NewVirtual(time.Unix(0, 0)), nil, func() (Target[string], bool) { return nil, false }, Options{})

	assert.Equal(t, DefaultInterval, q.opts.Interval)
	assert.Equal(t, DefaultMaxAttempts, q.opts.MaxAttempts)
	assert.NotPanics(t, func() { q.AddDeferred("x") })
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "polling", StatePolling.String())
	assert.Equal(t, "attached", StateAttached.String())
	assert.Equal(t, "exhausted", StateExhausted.String())
	assert.Equal(t, "stopped", StateStopped.String())
	assert.Equal(t, "unknown", State(42).String())
	assert.False(t, StatePolling.Terminal())
	assert.True(t, StateExhausted.Terminal())
}
