// Package event provides the listener registry used to fan a single logical
// event out to many independent UI subscribers.
//
// A Registry carries one event stream, for example "selection changed".
// Panels subscribe on mount and cancel their Subscription on teardown; the
// handle returned by Subscribe is the only way to unsubscribe, so every
// subscriber owns its own cleanup.
//
// # Delivery
//
// Publish is synchronous. It snapshots the subscriber list and then calls each
// listener in subscription order with the same event value:
//
//	selected := event.NewRegistry[*scene.Entity]("selection")
//	sub, _ := selected.SubscribeFunc(func(e *scene.Entity) {
//	    inspector.Show(e)
//	})
//	defer sub.Cancel()
//
//	selected.Publish(entity)
//
// Subscribing or cancelling from inside a listener is safe. Changes take effect
// from the next Publish; the pass already in progress still reaches every
// listener that was subscribed when it started.
//
// # Faults
//
// A listener that returns an error or panics does not stop the pass. The fault
// is recovered, wrapped in a HandlerError or PanicError, handed to the
// registry's FaultHandler and returned in the PublishResult.
//
// # Thread Safety
//
// Registries are safe for concurrent use, although the bridge only publishes
// from its event loop.
package event
