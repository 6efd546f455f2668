package bus

import "time"

// Dispatcher semantics, in short:
// - Channel-based fan-out: handlers subscribe by channel name.
// - Synchronous delivery: Emit calls handlers in the caller goroutine, in
//   registration order.
// - Middleware runs before delivery. Each middleware receives the event, the
//   dispatcher's bound scope and a continuation; a middleware that never
//   calls the continuation swallows the event for that emission. This is the
//   short-circuit mechanism, not an error.
// - Fail loud: the first handler error aborts the remaining delivery and is
//   returned to the Emit caller. Nothing is swallowed or aggregated.
// - All state is per-instance; two dispatchers never share channels or
//   middleware.

// Event is an immutable message carried through the dispatcher.
type Event interface {
	// Channel is the routing key used to select handlers.
	Channel() string
	// Timestamp is the event creation time.
	Timestamp() time.Time
	// Data is the opaque payload shared by every handler of one emission.
	Data() any
}

// Handler is a subscriber callback. A non-nil error aborts the remainder of
// the dispatch and propagates to the Emit caller.
type Handler func(event Event) error

// Middleware intercepts an event before it reaches handlers. scope is the
// value bound via Bind (the owning store). Calling next passes the event
// along the chain; not calling it drops the event silently.
type Middleware func(event Event, scope any, next func())

// Subscription represents a registered handler bound to a channel.
type Subscription interface {
	// ID is a unique identifier for this subscription.
	ID() string
	// Channel returns the channel this subscription listens on.
	Channel() string
	// IsActive reports whether this subscription is still registered.
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel()
}
