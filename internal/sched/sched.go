// Package sched provides the single timeline every piece of bridge code runs on.
//
// The UI side of the bridge is cooperative and single-threaded: engine pushes,
// terminal input and timer callbacks are all serialized onto one goroutine.
// Loop is the production implementation; Virtual is a manually advanced clock
// used by tests to make timer-driven behavior deterministic.
package sched

import "time"

// Timer is a pending callback that can be cancelled.
type Timer interface {
	// Stop prevents the callback from running. It returns true if the call
	// stopped the timer, false if it already fired or was already stopped.
	Stop() bool
}

// Scheduler runs delayed callbacks on the bridge timeline.
type Scheduler interface {
	// Now returns the scheduler's current time.
	Now() time.Time

	// AfterFunc runs fn on the timeline once d has elapsed.
	AfterFunc(d time.Duration, fn func()) Timer
}
