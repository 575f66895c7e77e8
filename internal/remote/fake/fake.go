package fake

import (
	"context"
	"fmt"
	"sync"
	"time"

	"k8s.io/apimachinery/pkg/labels"

	"github.com/slok/podexec/internal/log"
	"github.com/slok/podexec/internal/model"
	"github.com/slok/podexec/internal/remote"
)

// Step is what a single poll of a fake channel surfaces.
type Step struct {
	Stdout  []string
	Stderr  []string
	PollErr error
}

// Worker is a fake worker with the scripted output its channels will replay.
type Worker struct {
	model.Worker
	Steps []Step
	// Err is the transport error reported once the steps are consumed.
	Err error
	// OpenErr makes Open fail.
	OpenErr error
}

// ConnectorConfig is the configuration for the fake connector.
type ConnectorConfig struct {
	Workers []Worker
	// ResolveErr makes every Resolve fail.
	ResolveErr error
	Logger     log.Logger
}

func (c *ConnectorConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "remote.Fake"})
	return nil
}

// Connector is a fake implementation of the remote.Connector interface. It replays
// scripted output without running anything.
type Connector struct {
	workers    []Worker
	resolveErr error
	opened     []*Channel
	mu         sync.Mutex
	logger     log.Logger
}

// NewConnector creates a new fake connector.
func NewConnector(cfg ConnectorConfig) (*Connector, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Connector{
		workers:    cfg.Workers,
		resolveErr: cfg.ResolveErr,
		logger:     cfg.Logger,
	}, nil
}

func (c *Connector) Resolve(ctx context.Context, selector, namespace string) (*model.Worker, error) {
	if c.resolveErr != nil {
		return nil, c.resolveErr
	}

	sel, err := labels.Parse(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, model.ErrNotValid)
	}

	for _, w := range c.workers {
		if w.Namespace == namespace && sel.Matches(labels.Set(w.Labels)) {
			worker := w.Worker
			return &worker, nil
		}
	}

	return nil, fmt.Errorf("no worker for %q in namespace %q: %w", selector, namespace, model.ErrWorkerNotFound)
}

func (c *Connector) Open(ctx context.Context, worker model.Worker, command []string) (remote.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, w := range c.workers {
		if w.Name != worker.Name || w.Namespace != worker.Namespace {
			continue
		}
		if w.OpenErr != nil {
			return nil, w.OpenErr
		}

		ch := &Channel{
			Command: command,
			steps:   append([]Step(nil), w.Steps...),
			err:     w.Err,
		}
		c.opened = append(c.opened, ch)
		c.logger.Debugf("Opened fake channel on %s", worker)
		return ch, nil
	}

	return nil, fmt.Errorf("worker %s is gone: %w", worker, model.ErrConnection)
}

func (c *Connector) Check(ctx context.Context) []model.CheckResult {
	return []model.CheckResult{{ID: "fake", Message: "fake backend is always ready", Status: model.CheckStatusOK}}
}

// Opened returns the channels opened so far.
func (c *Connector) Opened() []*Channel {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]*Channel(nil), c.opened...)
}

// Channel is a fake remote.Channel replaying one step per poll.
type Channel struct {
	// Command is the command the channel was opened with.
	Command []string

	steps  []Step
	stdout [][]byte
	stderr [][]byte
	err    error
	polls  int
	closed bool
	mu     sync.Mutex
}

func (c *Channel) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return !c.closed && (len(c.steps) > 0 || len(c.stdout) > 0 || len(c.stderr) > 0)
}

func (c *Channel) Poll(ctx context.Context, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.polls++
	if len(c.steps) == 0 {
		return nil
	}

	step := c.steps[0]
	c.steps = c.steps[1:]
	if step.PollErr != nil {
		return step.PollErr
	}

	for _, s := range step.Stdout {
		c.stdout = append(c.stdout, []byte(s))
	}
	for _, s := range step.Stderr {
		c.stderr = append(c.stderr, []byte(s))
	}

	return nil
}

func (c *Channel) HasStdout() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.stdout) > 0
}

func (c *Channel) ReadStdout() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return pop(&c.stdout)
}

func (c *Channel) HasStderr() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.stderr) > 0
}

func (c *Channel) ReadStderr() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return pop(&c.stderr)
}

func (c *Channel) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.steps) > 0 {
		return nil
	}
	return c.err
}

func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.stdout, c.stderr = nil, nil
	return nil
}

// Closed returns true if the channel was closed.
func (c *Channel) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Polls returns the number of polls received.
func (c *Channel) Polls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.polls
}

func pop(chunks *[][]byte) ([]byte, error) {
	if len(*chunks) == 0 {
		return nil, fmt.Errorf("no data available")
	}

	b := (*chunks)[0]
	*chunks = (*chunks)[1:]
	return b, nil
}
