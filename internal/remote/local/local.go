package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"k8s.io/apimachinery/pkg/labels"

	"github.com/slok/podexec/internal/log"
	"github.com/slok/podexec/internal/model"
	"github.com/slok/podexec/internal/remote"
)

// ConnectorConfig is the configuration for the local connector.
type ConnectorConfig struct {
	// Workers are the workers the connector resolves, all of them run on this host.
	Workers []model.Worker
	// Dir is the working directory of the executed commands.
	Dir string
	// WaitDelay bounds the wait for the output pipes once the process ends or is killed.
	WaitDelay time.Duration
	Logger    log.Logger
}

func (c *ConnectorConfig) defaults() error {
	for _, w := range c.Workers {
		if w.Name == "" {
			return fmt.Errorf("worker name is required")
		}
		if w.Namespace == "" {
			return fmt.Errorf("worker %q namespace is required", w.Name)
		}
	}
	if c.WaitDelay <= 0 {
		c.WaitDelay = 500 * time.Millisecond
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "remote.Local"})
	return nil
}

// Connector runs commands as local processes. It is meant for development and tests,
// where a cluster is not available.
type Connector struct {
	workers   []model.Worker
	dir       string
	waitDelay time.Duration
	logger    log.Logger
}

// NewConnector creates a new local connector.
func NewConnector(cfg ConnectorConfig) (*Connector, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Connector{
		workers:   cfg.Workers,
		dir:       cfg.Dir,
		waitDelay: cfg.WaitDelay,
		logger:    cfg.Logger,
	}, nil
}

func (c *Connector) Resolve(ctx context.Context, selector, namespace string) (*model.Worker, error) {
	sel, err := labels.Parse(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, model.ErrNotValid)
	}

	for _, w := range c.workers {
		if w.Namespace == namespace && sel.Matches(labels.Set(w.Labels)) {
			worker := w
			return &worker, nil
		}
	}

	return nil, fmt.Errorf("no local worker for %q in namespace %q: %w", selector, namespace, model.ErrWorkerNotFound)
}

func (c *Connector) Open(ctx context.Context, worker model.Worker, command []string) (remote.Channel, error) {
	if len(command) == 0 {
		return nil, fmt.Errorf("command cannot be empty: %w", model.ErrNotValid)
	}

	c.logger.Debugf("Running command on local worker %s", worker)

	stream := func(ctx context.Context, stdout, stderr io.Writer) error {
		cmd := exec.CommandContext(ctx, command[0], command[1:]...)
		cmd.Dir = c.dir
		cmd.Env = append(os.Environ(),
			"PODEXEC_WORKER="+worker.Name,
			"PODEXEC_NAMESPACE="+worker.Namespace,
		)
		cmd.Stdout = stdout
		cmd.Stderr = stderr
		cmd.WaitDelay = c.waitDelay

		err := cmd.Run()
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		// The exit status travels on stderr, a non-zero exit is not a transport failure.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			c.logger.Debugf("Local command exited with code %d", exitErr.ExitCode())
			return nil
		}

		return fmt.Errorf("could not run local command: %w: %w", model.ErrConnection, err)
	}

	ch, err := remote.NewStreamChannel(ctx, remote.StreamChannelConfig{
		Stream: stream,
		Logger: c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create channel: %w", err)
	}

	return ch, nil
}

func (c *Connector) Check(ctx context.Context) []model.CheckResult {
	results := []model.CheckResult{}

	if _, err := exec.LookPath("/bin/sh"); err != nil {
		results = append(results, model.CheckResult{ID: "shell", Message: fmt.Sprintf("/bin/sh not available: %s", err), Status: model.CheckStatusError})
	} else {
		results = append(results, model.CheckResult{ID: "shell", Message: "/bin/sh available", Status: model.CheckStatusOK})
	}

	if len(c.workers) == 0 {
		results = append(results, model.CheckResult{ID: "workers", Message: "no local workers configured", Status: model.CheckStatusWarning})
	} else {
		results = append(results, model.CheckResult{ID: "workers", Message: fmt.Sprintf("%d local workers configured", len(c.workers)), Status: model.CheckStatusOK})
	}

	return results
}
