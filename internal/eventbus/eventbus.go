// Package eventbus provides in-process publish/subscribe used to stream run
// progress to observers such as the CLI.
package eventbus

// Event represents an arbitrary event passed on the bus.
type Event interface{}

// EventBus implements a simple publish/subscribe event bus.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	Unsubscribe(<-chan Event)
	Close()
}

// Bus is the default untyped EventBus.
type Bus struct {
	*TypedBus[Event]
}

// New creates a new Bus.
func New(opts ...Option) *Bus { return &Bus{TypedBus: NewTyped[Event](opts...)} }

var _ EventBus = (*Bus)(nil)
