package app

import (
	"runtime/debug"

	"github.com/dshills/runebridge/internal/sched"
)

// newLoop creates the event loop every bridge, view and UI call runs on.
// A panicking task is logged and counted; the loop keeps running.
func (app *Application) newLoop() *sched.Loop {
	return sched.NewLoop(sched.WithPanicHandler(func(r any) {
		app.metrics.RecordPanic()
		err := &RecoveredPanicError{Value: r, Stack: string(debug.Stack())}
		app.log.Error("loop task failed: %v", err)
	}))
}

// post runs fn on the loop. It reports false once the loop is closed.
func (app *Application) post(fn func()) bool {
	return app.loop.Post(fn)
}

// pumpInput forwards terminal events to the loop until the screen is
// finalized. PollEvent blocks, so this runs on its own goroutine.
func (app *Application) pumpInput() {
	app.ui.Pump(app.post)
}
