package history

import (
	"context"
	"time"
)

// EventType defines the kind of lifecycle event.
type EventType string

const (
	EventStart EventType = "start"
	EventStop  EventType = "stop"
)

// Event records one bot lifecycle transition for external analytics.
type Event struct {
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	BotID      string    `json:"bot_id"`
	BotName    string    `json:"bot_name"`
	PID        int       `json:"pid"`
	Error      string    `json:"error,omitempty"`
}

// Sink is a destination for lifecycle events. Implementations must be safe
// for concurrent use; the supervisor sends best-effort and never blocks on
// sink failures.
type Sink interface {
	Send(ctx context.Context, e Event) error
	Close() error
}
