package event

import "errors"

// Sentinel errors for the listener registry.
var (
	// ErrNilHandler is returned when a nil listener is provided.
	ErrNilHandler = errors.New("listener cannot be nil")

	// ErrHandlerPanic is matched by every PanicError.
	ErrHandlerPanic = errors.New("listener panicked")
)

// HandlerError wraps an error returned by a listener.
type HandlerError struct {
	// SubscriptionID is the ID of the subscription whose listener failed.
	SubscriptionID string

	// Stream is the registry the listener was subscribed to.
	Stream string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return "listener error for subscription " + e.SubscriptionID + " on " + e.Stream + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// PanicError wraps a panic value recovered from a listener.
type PanicError struct {
	// SubscriptionID is the ID of the subscription whose listener panicked.
	SubscriptionID string

	// Stream is the registry the listener was subscribed to.
	Stream string

	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace at the time of the panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return "listener panic for subscription " + e.SubscriptionID + " on " + e.Stream
}

// Is allows errors.Is to match PanicError with ErrHandlerPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrHandlerPanic
}
