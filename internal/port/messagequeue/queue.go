// Package messagequeue defines the message queue port used to publish trip
// events to other services.
package messagequeue

import "context"

// Handler processes a message received from the queue.
// The context carries the publisher's request ID when one was sent.
type Handler func(ctx context.Context, subject string, data []byte) error

// Publisher sends messages.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// Queue is the port interface for publishing and subscribing to messages.
type Queue interface {
	Publisher

	// Subscribe registers a handler for messages on the given subject.
	// The returned function cancels the subscription.
	Subscribe(ctx context.Context, subject string, handler Handler) (cancel func(), err error)

	// Close shuts down the queue connection.
	Close() error

	// IsConnected reports whether the queue is currently connected.
	IsConnected() bool
}

// Subjects published by TripForge.
const (
	SubjectTripPlanned = "trips.planned"
	SubjectMemoryReset = "trips.memory.cleared"
)
