// Package bridge mediates between the engine and the editor panels.
//
// Engine→UI calls arrive by name and are dispatched through a HandlerTable
// that is filled once at boot and sealed before the engine starts. Each
// handler decodes its payload into the scene model, updates the inspector and
// the aggregated views, and fans the result out on a listener registry.
// UI→engine calls go through a Port wrapping the Engine interface.
//
// A Bridge is not safe for concurrent use. Everything runs on the event loop:
// engine pushes, terminal input and view timers are all posted there.
package bridge
