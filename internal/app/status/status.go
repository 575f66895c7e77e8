package status

import (
	"context"
	"errors"
	"fmt"

	"github.com/slok/podexec/internal/log"
	"github.com/slok/podexec/internal/model"
	"github.com/slok/podexec/internal/storage"
)

// ServiceConfig is the configuration for the status service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Status"})

	return nil
}

// Service retrieves the status of a running execution.
type Service struct {
	repo   storage.ExecutionRepository
	logger log.Logger
}

// NewService creates a new status service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the status request parameters.
type Request struct {
	// ID is the execution ID.
	ID string
}

// Run retrieves a running execution by ID.
func (s *Service) Run(ctx context.Context, req Request) (*model.Execution, error) {
	s.logger.Debugf("getting status for execution: %s", req.ID)

	// IDs are ULIDs, anything else can't be in the registry.
	if !looksLikeULID(req.ID) {
		return nil, fmt.Errorf("execution ID %q is not valid: %w", req.ID, model.ErrNotValid)
	}

	e, err := s.repo.GetExecution(ctx, req.ID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("execution not running: %s: %w", req.ID, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not get execution status: %w", err)
	}

	return e, nil
}

// looksLikeULID checks if a string looks like a ULID (26 characters, alphanumeric uppercase).
func looksLikeULID(s string) bool {
	if len(s) != 26 {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}
