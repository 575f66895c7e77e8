// Package api has the HTTP wire types shared by the server and its clients.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/slok/podexec/internal/model"
)

// Message levels.
const (
	LevelInfo  = "INFO"
	LevelError = "ERROR"
)

// StatusCompleted is the status of a completed execution.
const StatusCompleted = "completed"

// StatusHealthy is the status of a heartbeat tick.
const StatusHealthy = "healthy"

// Message is the JSON object carried by every stream frame.
type Message struct {
	// Timestamp is the unix time in seconds.
	Timestamp float64 `json:"timestamp"`
	Level     string  `json:"level"`
	Data      any     `json:"data"`
}

// OutputData is an output line, only one of Stdout or Stderr is set.
type OutputData struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode *int   `json:"exit_code"`
}

// CompletedData is the terminal data of a completed execution.
type CompletedData struct {
	Status   string `json:"status"`
	ExitCode int    `json:"exit_code"`
}

// FailedData is the terminal data of a failed execution.
type FailedData struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthData is a heartbeat tick.
type HealthData struct {
	CheckNumber int     `json:"check_number"`
	TotalChecks int     `json:"total_checks"`
	Status      string  `json:"status"`
	Interval    float64 `json:"interval"`
}

// Timestamp returns t as unix seconds.
func Timestamp(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// MessageFromEvent converts an execution event into its wire message. Control events
// are internal and have no message.
func MessageFromEvent(ev model.Event) (Message, bool) {
	msg := Message{Timestamp: Timestamp(ev.Timestamp), Level: LevelInfo}

	switch ev.Kind {
	case model.EventKindOutput:
		data := OutputData{}
		if ev.Channel == model.ChannelStderr {
			data.Stderr = ev.Line
		} else {
			data.Stdout = ev.Line
		}
		msg.Data = data
	case model.EventKindCompleted:
		msg.Data = CompletedData{Status: StatusCompleted, ExitCode: ev.ExitCode}
	case model.EventKindFailed:
		msg.Level = LevelError
		data := FailedData{Error: ev.Reason}
		if ev.Err != nil {
			data.Message = ev.Err.Error()
		}
		msg.Data = data
	default:
		return Message{}, false
	}

	return msg, true
}

// ExecuteRequest is the body of an execution request. Command and Prefix are the
// legacy names of Script and Selector, a prefix `p` is the selector `prefix=p`.
type ExecuteRequest struct {
	Script    string `json:"script,omitempty"`
	Command   string `json:"command,omitempty"`
	Namespace string `json:"namespace"`
	Selector  string `json:"selector,omitempty"`
	Prefix    string `json:"prefix,omitempty"`
}

// Target returns the execution target of the request, resolving legacy fields.
func (r ExecuteRequest) Target() (model.ExecutionTarget, error) {
	t := model.ExecutionTarget{
		Script:    r.Script,
		Namespace: r.Namespace,
		Selector:  r.Selector,
	}
	if strings.TrimSpace(t.Script) == "" {
		t.Script = r.Command
	}
	if strings.TrimSpace(t.Selector) == "" && strings.TrimSpace(r.Prefix) != "" {
		t.Selector = "prefix=" + strings.TrimSpace(r.Prefix)
	}

	if err := t.Validate(); err != nil {
		return model.ExecutionTarget{}, err
	}
	return t, nil
}

// Heartbeat limits.
const (
	MinHealthInterval = 0.1
	MaxHealthInterval = 10.0
	MinHealthChecks   = 1
	MaxHealthChecks   = 100
)

// HealthRequest is the body of a heartbeat request.
type HealthRequest struct {
	// Interval is the time between ticks in seconds.
	Interval  float64 `json:"interval"`
	MaxChecks int     `json:"max_checks"`
}

// DefaultHealthRequest returns the heartbeat used when fields are missing.
func DefaultHealthRequest() HealthRequest {
	return HealthRequest{Interval: 1.0, MaxChecks: 10}
}

// Validate validates the heartbeat request.
func (r HealthRequest) Validate() error {
	if r.Interval < MinHealthInterval || r.Interval > MaxHealthInterval {
		return fmt.Errorf("interval must be between %g and %g seconds: %w", MinHealthInterval, MaxHealthInterval, model.ErrNotValid)
	}
	if r.MaxChecks < MinHealthChecks || r.MaxChecks > MaxHealthChecks {
		return fmt.Errorf("max checks must be between %d and %d: %w", MinHealthChecks, MaxHealthChecks, model.ErrNotValid)
	}
	return nil
}

// IntervalDuration returns the interval as a duration.
func (r HealthRequest) IntervalDuration() time.Duration {
	return time.Duration(r.Interval * float64(time.Second))
}

// ErrorResponse is the body of non streamed errors.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ReceivedMessage is a decoded stream message. The data fields present depend on the
// message type, use the Is* methods to tell them apart.
type ReceivedMessage struct {
	Timestamp float64      `json:"timestamp"`
	Level     string       `json:"level"`
	Data      ReceivedData `json:"data"`
}

// ReceivedData is the union of all the message data.
type ReceivedData struct {
	Stdout      *string `json:"stdout"`
	Stderr      *string `json:"stderr"`
	ExitCode    *int    `json:"exit_code"`
	Status      string  `json:"status"`
	Error       string  `json:"error"`
	Message     string  `json:"message"`
	CheckNumber int     `json:"check_number"`
	TotalChecks int     `json:"total_checks"`
	Interval    float64 `json:"interval"`
}

// DecodeMessage decodes a frame payload.
func DecodeMessage(payload []byte) (ReceivedMessage, error) {
	var m ReceivedMessage
	if err := json.Unmarshal(payload, &m); err != nil {
		return ReceivedMessage{}, fmt.Errorf("could not decode message: %w", err)
	}
	return m, nil
}

// Time returns the message timestamp.
func (m ReceivedMessage) Time() time.Time {
	return time.Unix(0, int64(m.Timestamp*float64(time.Second))).UTC()
}

// IsFailed returns true for execution failures.
func (m ReceivedMessage) IsFailed() bool { return m.Level == LevelError }

// IsCompleted returns true for completed executions.
func (m ReceivedMessage) IsCompleted() bool {
	return m.Level == LevelInfo && m.Data.Status == StatusCompleted
}

// IsTerminal returns true for the last message of an execution.
func (m ReceivedMessage) IsTerminal() bool { return m.IsFailed() || m.IsCompleted() }

// IsOutput returns true for output lines.
func (m ReceivedMessage) IsOutput() bool {
	return !m.IsTerminal() && (m.Data.Stdout != nil || m.Data.Stderr != nil)
}

// Event converts the message back into an execution event. Heartbeat ticks are not
// events.
func (m ReceivedMessage) Event() (model.Event, bool) {
	ts := m.Time()

	switch {
	case m.IsFailed():
		ev := model.Event{Kind: model.EventKindFailed, Reason: m.Data.Error, Timestamp: ts}
		if m.Data.Message != "" {
			ev.Err = errors.New(m.Data.Message)
		}
		return ev, true
	case m.IsCompleted():
		code := 0
		if m.Data.ExitCode != nil {
			code = *m.Data.ExitCode
		}
		return model.NewCompletedEvent(code, ts), true
	case m.IsOutput():
		if m.Data.Stderr != nil && *m.Data.Stderr != "" {
			return model.NewOutputEvent(model.ChannelStderr, *m.Data.Stderr, ts), true
		}
		if m.Data.Stdout != nil {
			return model.NewOutputEvent(model.ChannelStdout, *m.Data.Stdout, ts), true
		}
	}

	return model.Event{}, false
}

// Health returns the heartbeat tick data of the message, false when the message is
// not a heartbeat tick.
func (m ReceivedMessage) Health() (HealthData, bool) {
	if m.Level != LevelInfo || m.Data.Status != StatusHealthy {
		return HealthData{}, false
	}

	return HealthData{
		CheckNumber: m.Data.CheckNumber,
		TotalChecks: m.Data.TotalChecks,
		Status:      m.Data.Status,
		Interval:    m.Data.Interval,
	}, true
}

// ExecutionInfo is a running execution as shown by the registry endpoints.
type ExecutionInfo struct {
	ID          string  `json:"id"`
	Namespace   string  `json:"namespace"`
	Selector    string  `json:"selector"`
	Worker      string  `json:"worker"`
	State       string  `json:"state"`
	StartedAt   float64 `json:"started_at"`
	OutputLines int     `json:"output_lines"`
}

// ExecutionInfoFromModel converts a model execution.
func ExecutionInfoFromModel(e model.Execution) ExecutionInfo {
	return ExecutionInfo{
		ID:          e.ID,
		Namespace:   e.Namespace,
		Selector:    e.Selector,
		Worker:      e.Worker,
		State:       string(e.State),
		StartedAt:   Timestamp(e.StartedAt),
		OutputLines: e.OutputLines,
	}
}

// Model converts the execution info back to the model.
func (e ExecutionInfo) Model() model.Execution {
	return model.Execution{
		ID:          e.ID,
		Namespace:   e.Namespace,
		Selector:    e.Selector,
		Worker:      e.Worker,
		State:       model.ExecutionState(e.State),
		StartedAt:   time.Unix(0, int64(e.StartedAt*float64(time.Second))).UTC(),
		OutputLines: e.OutputLines,
	}
}

// ListExecutionsResponse is the response of the executions listing.
type ListExecutionsResponse struct {
	Executions []ExecutionInfo `json:"executions"`
}
