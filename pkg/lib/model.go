package lib

import (
	"time"

	"github.com/slok/podexec/internal/model"
)

// BackendType identifies where the workers run.
type BackendType string

const (
	// BackendKubernetes runs scripts on pods using the exec subresource.
	BackendKubernetes BackendType = "kubernetes"

	// BackendDocker runs scripts on running containers using Docker exec. The
	// namespace is the value of a container label.
	BackendDocker BackendType = "docker"

	// BackendLocal runs scripts as local processes of configured workers.
	// Use this for testing without infrastructure dependencies.
	BackendLocal BackendType = "local"
)

// Target is the script to run and the worker it runs on.
type Target struct {
	// Selector is a label selector (e.g. "app=worker,tier=batch"). The first
	// matching worker is used.
	Selector string
	// Namespace scopes the selector.
	Namespace string
	// Script is the shell script body, run with /bin/sh -c.
	Script string
}

// Worker is a worker of the local backend.
type Worker struct {
	Name      string
	Namespace string
	Labels    map[string]string
}

// EventKind is the kind of an execution event.
type EventKind string

const (
	// EventOutput is a complete output line.
	EventOutput EventKind = "output"
	// EventCompleted is the last event of an execution whose script ended.
	EventCompleted EventKind = "completed"
	// EventFailed is the last event of an execution that could not finish.
	EventFailed EventKind = "failed"
)

// Channel is the output stream of an output line.
type Channel string

const (
	ChannelStdout Channel = "stdout"
	ChannelStderr Channel = "stderr"
)

// Failure reasons of [EventFailed] events.
const (
	ReasonWorkerNotFound  = model.ReasonWorkerNotFound
	ReasonConnectionError = model.ReasonConnectionError
	ReasonCancelled       = model.ReasonCancelled
)

// Event is an execution event.
type Event struct {
	Kind EventKind
	// Channel and Line are set on [EventOutput] events. Line has no terminator.
	Channel Channel
	Line    string
	// ExitCode is set on [EventCompleted] events. It is 1 when the script exit
	// status could not be observed.
	ExitCode int
	// Reason and Err are set on [EventFailed] events. Err matches [ErrWorkerNotFound]
	// or [ErrConnection] with [errors.Is], or is the context error on cancellation.
	Reason    string
	Err       error
	Timestamp time.Time
}

// RunResult is the result of a script that ended.
type RunResult struct {
	ExitCode int
}

// --- Doctor types ---

// CheckStatus represents the status of a preflight check.
type CheckStatus string

const (
	// CheckStatusOK indicates the check passed.
	CheckStatusOK CheckStatus = "ok"
	// CheckStatusWarning indicates the check passed with a warning.
	CheckStatusWarning CheckStatus = "warning"
	// CheckStatusError indicates the check failed.
	CheckStatusError CheckStatus = "error"
)

// CheckResult represents the result of a single preflight check.
type CheckResult struct {
	// ID is a unique identifier for the check (e.g. "kubernetes_api").
	ID string
	// Message is a human-readable description of the result.
	Message string
	// Status is the check status.
	Status CheckStatus
}

// --- Internal conversion helpers ---

func toInternalWorkers(ws []Worker) []model.Worker {
	out := make([]model.Worker, 0, len(ws))
	for _, w := range ws {
		out = append(out, model.Worker{
			Name:      w.Name,
			Namespace: w.Namespace,
			Labels:    w.Labels,
		})
	}
	return out
}

func fromInternalEvent(ev model.Event) Event {
	out := Event{
		Kind:      EventKind(ev.Kind),
		Channel:   Channel(ev.Channel),
		Line:      ev.Line,
		ExitCode:  ev.ExitCode,
		Reason:    ev.Reason,
		Timestamp: ev.Timestamp,
	}

	if ev.Kind == model.EventKindFailed {
		switch ev.Reason {
		case model.ReasonWorkerNotFound:
			out.Err = joinErrors(ev.Err, ErrWorkerNotFound)
		case model.ReasonConnectionError:
			out.Err = joinErrors(ev.Err, ErrConnection)
		default:
			out.Err = ev.Err
		}
	}

	return out
}

// --- Doctor conversion helpers ---

func fromInternalCheckResults(results []model.CheckResult) []CheckResult {
	out := make([]CheckResult, len(results))
	for i, r := range results {
		out[i] = CheckResult{
			ID:      r.ID,
			Message: r.Message,
			Status:  CheckStatus(r.Status),
		}
	}
	return out
}
