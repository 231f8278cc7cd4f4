// Package pubsub carries change notifications between the field registry,
// the logger and the browser.
//
// Every event a broker publishes is numbered. A subscriber that remembers the
// last number it synchronized with can tell stale events from fresh ones, and
// a gap in the numbers it receives means its buffer overflowed.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	RegisteredEvent EventType = "registered"
	RemovedEvent    EventType = "removed"
	ReloadedEvent   EventType = "reloaded"
	LoggedEvent     EventType = "logged"
)

// Event is one published change. Seq is the broker's sequence number for it,
// starting at 1; zero marks an event that did not come from a broker.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Seq       uint64
	Timestamp time.Time
}

// Stale reports whether the event was published at or before version, the
// sequence number the subscriber last synchronized with. Unnumbered events
// are never stale.
func (e Event[T]) Stale(version uint64) bool {
	return e.Seq != 0 && e.Seq <= version
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher publishes events and reports the sequence number assigned.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T) uint64
}
