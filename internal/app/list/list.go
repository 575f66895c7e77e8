package list

import (
	"context"
	"fmt"

	"github.com/slok/podexec/internal/log"
	"github.com/slok/podexec/internal/model"
	"github.com/slok/podexec/internal/storage"
)

// ServiceConfig is the configuration for the list service.
type ServiceConfig struct {
	Repository storage.ExecutionRepository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.List"})

	return nil
}

// Service lists the running executions with optional filtering.
type Service struct {
	repo   storage.ExecutionRepository
	logger log.Logger
}

// NewService creates a new list service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the list request parameters.
type Request struct {
	// Namespace is an optional filter to only show executions of this namespace.
	Namespace string
	// StateFilter is an optional filter to only show executions in this state.
	StateFilter *model.ExecutionState
}

// Run lists the running executions, optionally filtered.
func (s *Service) Run(ctx context.Context, req Request) ([]model.Execution, error) {
	s.logger.Debugf("listing executions with namespace %q and state filter: %v", req.Namespace, req.StateFilter)

	executions, err := s.repo.ListExecutions(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list executions: %w", err)
	}

	filtered := make([]model.Execution, 0, len(executions))
	for _, e := range executions {
		if req.Namespace != "" && e.Namespace != req.Namespace {
			continue
		}
		if req.StateFilter != nil && e.State != *req.StateFilter {
			continue
		}
		filtered = append(filtered, e)
	}

	s.logger.Debugf("found %d executions", len(filtered))
	return filtered, nil
}
