package model

import (
	"context"
	"errors"
	"time"
)

// EventKind is the kind of an execution event.
type EventKind string

const (
	// EventKindOutput is a complete output line of the remote process.
	EventKindOutput EventKind = "output"
	// EventKindControl is an internal sentinel line, never published.
	EventKindControl EventKind = "control"
	// EventKindCompleted is the terminal event of a finished execution.
	EventKindCompleted EventKind = "completed"
	// EventKindFailed is the terminal event of an execution that could not finish.
	EventKindFailed EventKind = "failed"
)

// Channel is one of the output streams of the remote process.
type Channel string

const (
	ChannelStdout Channel = "stdout"
	ChannelStderr Channel = "stderr"
)

// Failure reasons for failed events.
const (
	ReasonWorkerNotFound  = "WorkerNotFound"
	ReasonConnectionError = "ConnectionError"
	ReasonCancelled       = "Cancelled"
)

// ControlSignal is a key/value smuggled through an output channel.
type ControlSignal struct {
	Kind  string
	Value string
}

// Event is an execution event. Kind selects which fields are meaningful:
//
//   - output: Channel, Line.
//   - control: Signal.
//   - completed: ExitCode.
//   - failed: Reason, Err.
type Event struct {
	Kind      EventKind
	Channel   Channel
	Line      string
	Signal    ControlSignal
	ExitCode  int
	Reason    string
	Err       error
	Timestamp time.Time
}

// IsTerminal returns true for completed and failed events.
func (e Event) IsTerminal() bool {
	return e.Kind == EventKindCompleted || e.Kind == EventKindFailed
}

// NewOutputEvent returns an output event.
func NewOutputEvent(ch Channel, line string, ts time.Time) Event {
	return Event{Kind: EventKindOutput, Channel: ch, Line: line, Timestamp: ts}
}

// NewControlEvent returns a control event.
func NewControlEvent(kind, value string, ts time.Time) Event {
	return Event{Kind: EventKindControl, Signal: ControlSignal{Kind: kind, Value: value}, Timestamp: ts}
}

// NewCompletedEvent returns a completed event.
func NewCompletedEvent(exitCode int, ts time.Time) Event {
	return Event{Kind: EventKindCompleted, ExitCode: exitCode, Timestamp: ts}
}

// NewFailedEvent returns a failed event with the reason derived from err.
func NewFailedEvent(err error, ts time.Time) Event {
	return Event{Kind: EventKindFailed, Reason: ReasonFromError(err), Err: err, Timestamp: ts}
}

// ReasonFromError maps an execution error to its failure reason.
func ReasonFromError(err error) string {
	switch {
	case errors.Is(err, ErrWorkerNotFound):
		return ReasonWorkerNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ReasonCancelled
	default:
		return ReasonConnectionError
	}
}
