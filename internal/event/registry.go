package event

import (
	"errors"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Listener receives one event. Returning an error reports a fault without
// affecting delivery to the other listeners.
type Listener[E any] func(evt E) error

// FaultHandler receives every HandlerError and PanicError raised during a
// publish pass.
type FaultHandler func(err error)

// Option configures a Registry.
type Option func(*registryConfig)

type registryConfig struct {
	onFault FaultHandler
}

// WithFaultHandler sets the handler for listener faults.
func WithFaultHandler(h FaultHandler) Option {
	return func(c *registryConfig) {
		c.onFault = h
	}
}

// Registry is an ordered list of listeners for one event stream.
// It is thread-safe for concurrent access.
type Registry[E any] struct {
	mu   sync.Mutex
	name string
	subs []*entry[E]

	config registryConfig

	// Stats
	published atomic.Uint64
	delivered atomic.Uint64
	failed    atomic.Uint64
	panicked  atomic.Uint64
}

type entry[E any] struct {
	sub      *Subscription
	listener Listener[E]
}

// NewRegistry creates an empty registry for the named stream.
func NewRegistry[E any](name string, opts ...Option) *Registry[E] {
	r := &Registry[E]{name: name}
	for _, opt := range opts {
		opt(&r.config)
	}
	return r
}

// Name returns the stream name.
func (r *Registry[E]) Name() string {
	return r.name
}

// SetFaultHandler replaces the fault handler.
func (r *Registry[E]) SetFaultHandler(h FaultHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.config.onFault = h
}

// Subscribe appends a listener. Subscribing the same function twice yields
// two independent subscriptions.
func (r *Registry[E]) Subscribe(listener Listener[E]) (*Subscription, error) {
	if listener == nil {
		return nil, ErrNilHandler
	}

	sub := &Subscription{
		id:     uuid.NewString(),
		stream: r.name,
		owner:  r,
		remove: r.remove,
	}
	sub.state.Store(int32(SubscriptionStateActive))

	r.mu.Lock()
	r.subs = append(r.subs, &entry[E]{sub: sub, listener: listener})
	r.mu.Unlock()

	return sub, nil
}

// SubscribeFunc subscribes a listener that cannot fail.
func (r *Registry[E]) SubscribeFunc(fn func(evt E)) (*Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return r.Subscribe(func(evt E) error {
		fn(evt)
		return nil
	})
}

// Unsubscribe cancels sub. It returns false if sub does not belong to this
// registry or was already removed.
func (r *Registry[E]) Unsubscribe(sub *Subscription) bool {
	if sub == nil || sub.owner != any(r) {
		return false
	}
	if !sub.IsActive() {
		return false
	}
	sub.Cancel()
	return true
}

// remove drops every entry holding sub. The slice is rebuilt rather than
// edited in place so snapshots taken by an in-flight Publish stay intact.
func (r *Registry[E]) remove(sub *Subscription) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := make([]*entry[E], 0, len(r.subs))
	removed := false
	for _, e := range r.subs {
		if e.sub == sub {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	r.subs = kept
	return removed
}

// Len returns the number of active subscriptions.
func (r *Registry[E]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// Clear cancels every subscription.
func (r *Registry[E]) Clear() {
	r.mu.Lock()
	subs := r.subs
	r.subs = nil
	r.mu.Unlock()

	for _, e := range subs {
		e.sub.state.Store(int32(SubscriptionStateCancelled))
	}
}

// PublishResult summarizes one publish pass.
type PublishResult struct {
	// Delivered is the number of listeners that returned without fault.
	Delivered int

	// Faults holds one HandlerError or PanicError per failed listener.
	Faults []error
}

// Err joins all faults, or returns nil if there were none.
func (p PublishResult) Err() error {
	return errors.Join(p.Faults...)
}

// Publish delivers evt to every listener subscribed at the time of the call,
// in subscription order.
func (r *Registry[E]) Publish(evt E) PublishResult {
	r.mu.Lock()
	snapshot := make([]*entry[E], len(r.subs))
	copy(snapshot, r.subs)
	onFault := r.config.onFault
	r.mu.Unlock()

	r.published.Add(1)

	var result PublishResult
	for _, e := range snapshot {
		err := r.invoke(e, evt)
		if err == nil {
			result.Delivered++
			r.delivered.Add(1)
			continue
		}

		result.Faults = append(result.Faults, err)
		if onFault != nil {
			r.reportFault(onFault, err)
		}
	}
	return result
}

func (r *Registry[E]) invoke(e *entry[E], evt E) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.panicked.Add(1)
			err = &PanicError{
				SubscriptionID: e.sub.id,
				Stream:         r.name,
				Value:          rec,
				Stack:          string(debug.Stack()),
			}
		}
	}()

	if lerr := e.listener(evt); lerr != nil {
		r.failed.Add(1)
		return &HandlerError{SubscriptionID: e.sub.id, Stream: r.name, Err: lerr}
	}
	return nil
}

// reportFault calls the fault handler, containing a panic in the handler itself.
func (r *Registry[E]) reportFault(h FaultHandler, err error) {
	defer func() { _ = recover() }()
	h(err)
}

// Stats contains delivery counters for a registry.
type Stats struct {
	Published uint64
	Delivered uint64
	Failed    uint64
	Panicked  uint64
}

// Stats returns delivery statistics.
func (r *Registry[E]) Stats() Stats {
	return Stats{
		Published: r.published.Load(),
		Delivered: r.delivered.Load(),
		Failed:    r.failed.Load(),
		Panicked:  r.panicked.Load(),
	}
}
