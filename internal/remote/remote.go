// Package remote defines the boundary between the execution engine and the backends
// that run scripts on remote workers.
package remote

import (
	"context"
	"time"

	"github.com/slok/podexec/internal/model"
)

// Channel is an open, multiplexed output stream of a process running on a worker.
//
// Reads are poll driven: Poll advances the transport and may make data readable on
// either sub channel. Once IsOpen returns false, all the data the process produced has
// been reported by HasStdout/HasStderr at least once.
type Channel interface {
	// IsOpen returns false when the process ended and all its data has been read.
	IsOpen() bool
	// Poll waits up to timeout for new data.
	Poll(ctx context.Context, timeout time.Duration) error
	HasStdout() bool
	ReadStdout() ([]byte, error)
	HasStderr() bool
	ReadStderr() ([]byte, error)
	// Err returns the transport error once the channel is closed, if any. A non-zero exit
	// status of the process is not a transport error.
	Err() error
	// Close stops the transport and releases the remote process I/O. It is safe to call
	// more than once.
	Close() error
}

// Connector resolves workers and opens channels to them. It is created once and
// shared by all executions.
type Connector interface {
	// Resolve returns the worker matching selector in namespace. Returns
	// model.ErrWorkerNotFound when none matches and model.ErrConnection on transport
	// errors.
	Resolve(ctx context.Context, selector, namespace string) (*model.Worker, error)
	// Open starts command on the worker. Returns model.ErrConnection on transport errors.
	Open(ctx context.Context, worker model.Worker, command []string) (Channel, error)
	// Check performs preflight checks of the backend.
	Check(ctx context.Context) []model.CheckResult
}

//go:generate mockery --case underscore --output remotemock --outpkg remotemock --name Connector --structname MockConnector --filename connector.go
//go:generate mockery --case underscore --output remotemock --outpkg remotemock --name Channel --structname MockChannel --filename channel.go
