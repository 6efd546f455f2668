package bus

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// simpleEvent is a basic implementation of Event.
type simpleEvent struct {
	channel string
	ts      time.Time
	data    any
}

func (e simpleEvent) Channel() string      { return e.channel }
func (e simpleEvent) Timestamp() time.Time { return e.ts }
func (e simpleEvent) Data() any            { return e.data }

// NewEvent creates a simple Event implementation.
func NewEvent(channel string, data any) Event {
	return simpleEvent{channel: channel, ts: time.Now(), data: data}
}

// subscription implements Subscription.
type subscription struct {
	id      string
	channel string
	handler Handler
	active  bool
	cancel  func()
}

func (s *subscription) ID() string      { return s.id }
func (s *subscription) Channel() string { return s.channel }
func (s *subscription) IsActive() bool  { return s.active }
func (s *subscription) Cancel() {
	if s.cancel != nil {
		s.cancel()
	}
	s.active = false
}

// Dispatcher is an in-process publish/subscribe hub with an ordered
// middleware chain. See interfaces.go for the delivery contract.
type Dispatcher struct {
	mu sync.RWMutex
	// handlers: channel -> subscriptions in registration order
	handlers   map[string][]*subscription
	middleware []Middleware
	scope      any
}

// New creates an empty Dispatcher.
func New() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string][]*subscription),
	}
}

// Bind attaches a scope value handed to every middleware invocation.
// Typically the owning world; set once at construction time.
func (d *Dispatcher) Bind(scope any) {
	d.mu.Lock()
	d.scope = scope
	d.mu.Unlock()
}

// On registers a handler on a channel. Handlers on the same channel are
// invoked in registration order.
func (d *Dispatcher) On(channel string, handler Handler) Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := uuid.NewString()
	s := &subscription{id: id, channel: channel, handler: handler, active: true}
	s.cancel = func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		subs := d.handlers[channel]
		for i, sub := range subs {
			if sub.id == id {
				d.handlers[channel] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
		s.active = false
	}
	d.handlers[channel] = append(d.handlers[channel], s)
	return s
}

// Use appends a middleware to the chain. Chain order is registration order
// and is fixed for the dispatcher's lifetime.
func (d *Dispatcher) Use(mw Middleware) {
	d.mu.Lock()
	d.middleware = append(d.middleware, mw)
	d.mu.Unlock()
}

// Emit publishes a payload on a channel.
func (d *Dispatcher) Emit(channel string, data any) error {
	return d.EmitEvent(NewEvent(channel, data))
}

// EmitEvent runs the middleware chain and, if every middleware passed the
// event along, delivers it to the channel's handlers synchronously.
func (d *Dispatcher) EmitEvent(event Event) error {
	d.mu.RLock()
	mws := make([]Middleware, len(d.middleware))
	copy(mws, d.middleware)
	scope := d.scope
	d.mu.RUnlock()

	var err error
	var run func(i int)
	run = func(i int) {
		if i < len(mws) {
			mws[i](event, scope, func() { run(i + 1) })
			return
		}
		err = d.deliver(event)
	}
	run(0)
	return err
}

// Subscribers returns the number of active subscriptions on a channel.
func (d *Dispatcher) Subscribers(channel string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.handlers[channel])
}

func (d *Dispatcher) deliver(event Event) error {
	d.mu.RLock()
	registered := d.handlers[event.Channel()]
	subs := make([]*subscription, len(registered))
	copy(subs, registered)
	d.mu.RUnlock()

	for _, s := range subs {
		if !s.active {
			continue
		}
		if err := s.handler(event); err != nil {
			return err
		}
	}
	return nil
}
