package model

import "time"

// ExecutionState is the state of a running execution.
type ExecutionState string

const (
	ExecutionStateResolving  ExecutionState = "resolving"
	ExecutionStateStreaming  ExecutionState = "streaming"
	ExecutionStateDraining   ExecutionState = "draining"
	ExecutionStateTerminated ExecutionState = "terminated"
)

// Execution is a script running on a worker. Only running executions are tracked,
// terminated ones are forgotten.
type Execution struct {
	ID        string
	Namespace string
	Selector  string
	// Worker is empty until the worker is resolved.
	Worker      string
	State       ExecutionState
	StartedAt   time.Time
	OutputLines int
}
