package storage

import (
	"context"

	"github.com/slok/podexec/internal/model"
)

// ExecutionRepository is the interface for the running executions registry.
type ExecutionRepository interface {
	CreateExecution(ctx context.Context, e model.Execution) error
	GetExecution(ctx context.Context, id string) (*model.Execution, error)
	ListExecutions(ctx context.Context) ([]model.Execution, error)
	UpdateExecution(ctx context.Context, e model.Execution) error
	DeleteExecution(ctx context.Context, id string) error
}

//go:generate mockery --case underscore --output storagemock --outpkg storagemock --name ExecutionRepository --structname MockExecutionRepository --filename execution_repository.go
