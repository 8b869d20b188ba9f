package event

import (
	"sync/atomic"
)

// SubscriptionState represents the state of a subscription.
type SubscriptionState int32

const (
	// SubscriptionStateActive means the subscription is receiving events.
	SubscriptionStateActive SubscriptionState = iota

	// SubscriptionStateCancelled means the subscription has been permanently cancelled.
	SubscriptionStateCancelled
)

// String returns a human-readable state name.
func (s SubscriptionState) String() string {
	switch s {
	case SubscriptionStateActive:
		return "active"
	case SubscriptionStateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Subscription is the handle returned by Subscribe. Its identity is what
// Unsubscribe removes.
type Subscription struct {
	id     string
	stream string
	state  atomic.Int32
	owner  any
	remove func(*Subscription) bool
}

// ID returns the unique subscription identifier.
func (s *Subscription) ID() string {
	return s.id
}

// Stream returns the name of the registry the subscription belongs to.
func (s *Subscription) Stream() string {
	return s.stream
}

// State returns the current subscription state.
func (s *Subscription) State() SubscriptionState {
	return SubscriptionState(s.state.Load())
}

// IsActive returns true if the subscription still receives events.
func (s *Subscription) IsActive() bool {
	return s.State() == SubscriptionStateActive
}

// Cancel removes the subscription from its registry. It is idempotent and
// safe to call from inside a listener.
func (s *Subscription) Cancel() {
	if s == nil {
		return
	}
	if !s.state.CompareAndSwap(int32(SubscriptionStateActive), int32(SubscriptionStateCancelled)) {
		return
	}
	if s.remove != nil {
		s.remove(s)
	}
}
