package wakeup

import (
	"fmt"
	"log/slog"
	"time"
)

// EventKind classifies an Event.
type EventKind string

const (
	EventProbeStarted   EventKind = "probe_started"
	EventProbeHealthy   EventKind = "probe_healthy"
	EventProbeUnhealthy EventKind = "probe_unhealthy"
	EventProbeFailed    EventKind = "probe_failed"
	EventAttempt        EventKind = "attempt"
	EventSucceeded      EventKind = "succeeded"
	EventRetrying       EventKind = "retrying"
	EventExhausted      EventKind = "exhausted"
	EventRejected       EventKind = "rejected"
)

// Event reports progress of a probe or of one call attempt.
type Event struct {
	Kind        EventKind `json:"kind"`
	Operation   string    `json:"operation,omitempty"`
	Attempt     int       `json:"attempt,omitempty"`
	MaxAttempts int       `json:"max_attempts,omitempty"`
	WaitMS      int64     `json:"wait_ms,omitempty"`
	Error       string    `json:"error,omitempty"`
	Message     string    `json:"message"`
	At          time.Time `json:"at"`
}

// Wait is the backoff announced by a retrying event.
func (e Event) Wait() time.Duration {
	return time.Duration(e.WaitMS) * time.Millisecond
}

func describe(e Event) string {
	switch e.Kind {
	case EventProbeStarted:
		return "Backend Starting Up"
	case EventProbeHealthy:
		return "Backend is awake"
	case EventProbeUnhealthy, EventProbeFailed:
		return "Backend is waking up"
	case EventAttempt:
		return fmt.Sprintf("Attempt %d/%d", e.Attempt, e.MaxAttempts)
	case EventSucceeded:
		return "Connected"
	case EventRetrying:
		return fmt.Sprintf("Retrying... Attempt %d/%d - wait %ds", e.Attempt+1, e.MaxAttempts, e.WaitMS/1000)
	case EventExhausted:
		return "Backend Unavailable"
	case EventRejected:
		return "Request rejected"
	}
	return string(e.Kind)
}

// Observer receives every Event emitted by a Caller. OnEvent must not block.
type Observer interface {
	OnEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnEvent(e Event) {
	f(e)
}

// LogObserver writes events to logger: failures at warn, the rest at debug.
func LogObserver(logger *slog.Logger) Observer {
	return ObserverFunc(func(e Event) {
		attrs := []any{"kind", e.Kind, "operation", e.Operation}
		if e.MaxAttempts > 0 {
			attrs = append(attrs, "attempt", e.Attempt, "max_attempts", e.MaxAttempts)
		}
		if e.Error != "" {
			attrs = append(attrs, "error", e.Error)
		}

		switch e.Kind {
		case EventRetrying, EventExhausted, EventProbeUnhealthy, EventProbeFailed:
			logger.Warn(e.Message, attrs...)
		case EventProbeStarted, EventProbeHealthy:
			logger.Info(e.Message, attrs...)
		default:
			logger.Debug(e.Message, attrs...)
		}
	})
}
