package shared

import "context"

// EventHandler reacts to committed writes: the realtime hub reloads
// snapshots, the low-stock handler raises alerts.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the events wanted; empty means all of them
	EventTypes() []string
}

// EventPublisher is what services use to announce changes after commit.
// A publish failure is logged by the caller and never undoes the write.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber registers handlers
type EventSubscriber interface {
	// Subscribe registers handler for eventTypes, or for every event when
	// none are given
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}

// EventBus is the in-process bus wired in cmd/server. It is stopped
// after the HTTP server, once no request can publish.
type EventBus interface {
	EventPublisher
	EventSubscriber
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
