package history

import (
	"context"
	"time"
)

// EventType defines the kind of lifecycle event.
type EventType string

const (
	EventStart      EventType = "start"
	EventStop       EventType = "stop"
	EventStopFailed EventType = "stop_failed"
)

// Event is one append-only audit record of a supervisor operation.
// Events are keyed by worker name; Error is set only for failed operations.
type Event struct {
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Name       string    `json:"name"`
	PID        int       `json:"pid"`
	Error      string    `json:"error,omitempty"`
}

// Sink is a destination for history events (audit/statistics systems).
// Implementations must be safe for concurrent use. A Send failure never
// fails the lifecycle operation that produced the event.
type Sink interface {
	Send(ctx context.Context, e Event) error
	Close() error
}
