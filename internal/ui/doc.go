// Package ui is the terminal front end of the bridge.
//
// The screen is split the way the web editor lays out its page: a top bar
// with the scene name, the save button and the loading summary; the engine
// surface underneath it spanning the full width; and the hierarchy and
// inspector panels floating over the surface's left and right edges.
// Notifications stack in the bottom-right corner, the log feed sits in the
// top-left of the surface and the camera readout in the bottom-left.
//
// The surface only exists once an engine has attached. Key listeners that
// must also work while the surface has focus are registered through the
// deferred attachment queue, which binds them to the page at once and to
// the surface when it appears.
//
// Everything in this package runs on the bridge event loop. Pump is the only
// function that runs on its own goroutine, and it does nothing but post
// terminal events to the loop.
package ui
