// Package outbox defines the in-process event contract between the
// storefront contexts: checkout publishes, the order worker subscribes.
package outbox

import "context"

// Event names itself; subscribers route on the name.
type Event interface {
	EventName() string
}

// Handler processes one delivered event. A returned error is logged by the
// bus and never redelivered.
type Handler func(ctx context.Context, e Event) error

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type Subscriber interface {
	Subscribe(eventName string, h Handler)
}

// PublisherFunc lets a plain function act as a Publisher.
type PublisherFunc func(ctx context.Context, e Event) error

func (f PublisherFunc) Publish(ctx context.Context, e Event) error { return f(ctx, e) }
