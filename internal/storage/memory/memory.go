package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/slok/podexec/internal/log"
	"github.com/slok/podexec/internal/model"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.ExecutionRepository.
type Repository struct {
	executions map[string]model.Execution
	mu         sync.RWMutex
	logger     log.Logger
}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		executions: make(map[string]model.Execution),
		logger:     cfg.Logger,
	}, nil
}

// CreateExecution registers a new execution in the repository.
func (r *Repository) CreateExecution(ctx context.Context, e model.Execution) error {
	if e.ID == "" {
		return fmt.Errorf("execution id is required: %w", model.ErrNotValid)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.executions[e.ID]; ok {
		return fmt.Errorf("execution with id %s: %w", e.ID, model.ErrAlreadyExists)
	}

	r.executions[e.ID] = e
	r.logger.Debugf("Created execution in repository: %s", e.ID)

	return nil
}

// GetExecution retrieves an execution by ID.
func (r *Repository) GetExecution(ctx context.Context, id string) (*model.Execution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	execution, ok := r.executions[id]
	if !ok {
		return nil, fmt.Errorf("execution %s: %w", id, model.ErrNotFound)
	}

	// Return a copy
	executionCopy := execution
	return &executionCopy, nil
}

// ListExecutions returns all executions, oldest first.
func (r *Repository) ListExecutions(ctx context.Context) ([]model.Execution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	executions := make([]model.Execution, 0, len(r.executions))
	for _, execution := range r.executions {
		executions = append(executions, execution)
	}

	// Oldest first, IDs break ties.
	slices.SortFunc(executions, func(a, b model.Execution) int {
		if c := a.StartedAt.Compare(b.StartedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	return executions, nil
}

// UpdateExecution updates an existing execution.
func (r *Repository) UpdateExecution(ctx context.Context, e model.Execution) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.executions[e.ID]; !ok {
		return fmt.Errorf("execution %s: %w", e.ID, model.ErrNotFound)
	}

	r.executions[e.ID] = e

	return nil
}

// DeleteExecution deletes an execution.
func (r *Repository) DeleteExecution(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.executions[id]; !ok {
		return fmt.Errorf("execution %s: %w", id, model.ErrNotFound)
	}

	delete(r.executions, id)
	r.logger.Debugf("Deleted execution from repository: %s", id)

	return nil
}
