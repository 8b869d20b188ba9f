// Package views holds the aggregated read models the editor panels render:
// the loading task summary, the notification queue, the log feed, the boot
// status line and the camera readout.
//
// Views are owned by the bridge event loop. Timed eviction runs on a
// sched.Scheduler so tests can drive it with a virtual clock.
package views
