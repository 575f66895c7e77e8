package exec

import (
	"context"
	"crypto/rand"
	"fmt"
	"iter"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/podexec/internal/exitcode"
	"github.com/slok/podexec/internal/linebuf"
	"github.com/slok/podexec/internal/log"
	"github.com/slok/podexec/internal/model"
	"github.com/slok/podexec/internal/remote"
	"github.com/slok/podexec/internal/storage"
	"github.com/slok/podexec/internal/storage/memory"
)

// ServiceConfig is the configuration for the exec service.
type ServiceConfig struct {
	Connector remote.Connector
	// Repository registers the running executions. Defaults to a private in-memory one.
	Repository storage.ExecutionRepository
	// PollTimeout bounds every channel poll, it is also the cancellation latency.
	PollTimeout time.Duration
	TimeNow     func() time.Time
	Logger      log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Connector == nil {
		return fmt.Errorf("connector is required")
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = time.Second
	}
	if c.Repository == nil {
		repo, err := memory.NewRepository(memory.RepositoryConfig{Logger: c.Logger})
		if err != nil {
			return fmt.Errorf("could not create repository: %w", err)
		}
		c.Repository = repo
	}
	if c.TimeNow == nil {
		c.TimeNow = func() time.Time { return time.Now().UTC() }
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Exec"})
	return nil
}

// Service runs scripts on remote workers and streams their results.
type Service struct {
	connector   remote.Connector
	repo        storage.ExecutionRepository
	pollTimeout time.Duration
	timeNow     func() time.Time
	logger      log.Logger
}

// NewService creates a new exec service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		connector:   cfg.Connector,
		repo:        cfg.Repository,
		pollTimeout: cfg.PollTimeout,
		timeNow:     cfg.TimeNow,
		logger:      cfg.Logger,
	}, nil
}

// Request contains the parameters for executing a script.
type Request struct {
	Script    string
	Namespace string
	Selector  string
}

func (r Request) target() model.ExecutionTarget {
	return model.ExecutionTarget{
		Selector:  r.Selector,
		Namespace: r.Namespace,
		Script:    r.Script,
	}
}

// Run validates the request and returns the event sequence of the execution.
//
// Nothing runs until the sequence is ranged. The sequence can be ranged once, it ends
// with exactly one completed or failed event unless the consumer stops early, in which
// case the remote channel is closed and no terminal event is produced.
func (s *Service) Run(ctx context.Context, req Request) (iter.Seq[model.Event], error) {
	target := req.target()
	if err := target.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	id := ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
	logger := s.logger.WithValues(log.Kv{
		"execution-id": id,
		"namespace":    target.Namespace,
		"selector":     target.Selector,
	})

	var ranged atomic.Bool
	return func(yield func(model.Event) bool) {
		if !ranged.CompareAndSwap(false, true) {
			logger.Warningf("Execution events already consumed")
			return
		}

		e := &execution{
			id:          id,
			target:      target,
			connector:   s.connector,
			repo:        s.repo,
			pollTimeout: s.pollTimeout,
			now:         s.timeNow,
			logger:      logger,
			yield:       yield,
		}
		e.run(ctx)
	}, nil
}

// execution is the state of a single run. It is owned by the goroutine ranging the
// event sequence.
type execution struct {
	id          string
	target      model.ExecutionTarget
	connector   remote.Connector
	repo        storage.ExecutionRepository
	pollTimeout time.Duration
	now         func() time.Time
	logger      log.Logger
	yield       func(model.Event) bool

	record   model.Execution
	stdout   linebuf.Buffer
	stderr   linebuf.Buffer
	exitCode *int
	start    time.Time
}

func (e *execution) run(ctx context.Context) {
	e.start = time.Now()
	e.register(ctx)
	defer e.unregister(ctx)
	defer e.transition(ctx, model.ExecutionStateTerminated)

	worker, err := e.connector.Resolve(ctx, e.target.Selector, e.target.Namespace)
	if err != nil {
		e.fail(fmt.Errorf("could not resolve worker: %w", err))
		return
	}
	e.logger.Debugf("Worker resolved: %s", worker)
	e.record.Worker = worker.String()

	ch, err := e.connector.Open(ctx, *worker, exitcode.Command(e.target.Script))
	if err != nil {
		e.fail(fmt.Errorf("could not open channel on %s: %w", worker, err))
		return
	}
	defer func() {
		if err := ch.Close(); err != nil {
			e.logger.Warningf("Could not close channel: %s", err)
		}
	}()

	e.transition(ctx, model.ExecutionStateStreaming)
	for ch.IsOpen() {
		if err := ctx.Err(); err != nil {
			e.fail(fmt.Errorf("execution cancelled: %w", err))
			return
		}

		if err := ch.Poll(ctx, e.pollTimeout); err != nil {
			if ctx.Err() == nil {
				e.logger.Warningf("Poll failed, retrying: %s", err)
			}
			continue
		}

		if !e.drain(ch) {
			e.logger.Infof("Consumer stopped, closing channel")
			return
		}
		e.save(ctx)
	}
	if err := ctx.Err(); err != nil {
		e.fail(fmt.Errorf("execution cancelled: %w", err))
		return
	}

	e.transition(ctx, model.ExecutionStateDraining)
	if line, ok := e.stdout.Flush(); ok {
		if !e.emit(model.ChannelStdout, line) {
			return
		}
	}
	if line, ok := e.stderr.Flush(); ok {
		if !e.emit(model.ChannelStderr, line) {
			return
		}
	}

	if err := ch.Err(); err != nil {
		e.fail(fmt.Errorf("channel failed: %w", err))
		return
	}

	code := exitcode.CaptureFailedCode
	if e.exitCode != nil {
		code = *e.exitCode
	} else {
		e.logger.Warningf("Exit code not captured, reporting %d", code)
	}
	e.logger.Infof("Execution completed with exit code %d in %s", code, time.Since(e.start))
	e.yield(model.NewCompletedEvent(code, e.now()))
}

// drain reads everything the last poll surfaced. Returns false if the consumer stopped.
func (e *execution) drain(ch remote.Channel) bool {
	for ch.HasStdout() {
		b, err := ch.ReadStdout()
		if err != nil {
			e.logger.Warningf("Could not read stdout: %s", err)
			break
		}
		for _, line := range e.stdout.Append(b) {
			if !e.emit(model.ChannelStdout, line) {
				return false
			}
		}
	}

	for ch.HasStderr() {
		b, err := ch.ReadStderr()
		if err != nil {
			e.logger.Warningf("Could not read stderr: %s", err)
			break
		}
		for _, line := range e.stderr.Append(b) {
			if !e.emit(model.ChannelStderr, line) {
				return false
			}
		}
	}

	return true
}

// emit yields an output line, consuming the exit code sentinel of stderr.
func (e *execution) emit(channel model.Channel, line string) bool {
	if channel == model.ChannelStderr {
		if value, ok := exitcode.Parse(line); ok {
			e.control(model.NewControlEvent(exitcode.SignalKind, value, e.now()))
			return true
		}
	}

	e.record.OutputLines++
	return e.yield(model.NewOutputEvent(channel, line, e.now()))
}

// control handles the control signals, they are never yielded to the consumer.
func (e *execution) control(ev model.Event) {
	e.logger.Debugf("Control signal received: %s=%s", ev.Signal.Kind, ev.Signal.Value)

	switch ev.Signal.Kind {
	case exitcode.SignalKind:
		code, err := exitcode.Code(ev.Signal.Value)
		if err != nil {
			e.logger.Warningf("Exit code not captured: %s", err)
		}
		e.exitCode = &code
	default:
		e.logger.Warningf("Unknown control signal %q ignored", ev.Signal.Kind)
	}
}

func (e *execution) fail(err error) {
	ev := model.NewFailedEvent(err, e.now())
	if ev.Reason == model.ReasonWorkerNotFound {
		e.logger.Warningf("Execution failed (%s): %s", ev.Reason, err)
	} else {
		e.logger.Errorf("Execution failed (%s): %s", ev.Reason, err)
	}
	e.yield(ev)
}

func (e *execution) transition(ctx context.Context, to model.ExecutionState) {
	e.logger.Debugf("Execution state %q -> %q", e.record.State, to)
	e.record.State = to
	if to != model.ExecutionStateTerminated {
		e.save(ctx)
	}
}

// The registry is informative, its failures never fail the execution.

func (e *execution) register(ctx context.Context) {
	e.record = model.Execution{
		ID:        e.id,
		Namespace: e.target.Namespace,
		Selector:  e.target.Selector,
		State:     model.ExecutionStateResolving,
		StartedAt: e.now(),
	}
	if err := e.repo.CreateExecution(context.WithoutCancel(ctx), e.record); err != nil {
		e.logger.Warningf("Could not register execution: %s", err)
	}
}

func (e *execution) save(ctx context.Context) {
	if err := e.repo.UpdateExecution(context.WithoutCancel(ctx), e.record); err != nil {
		e.logger.Warningf("Could not update execution: %s", err)
	}
}

func (e *execution) unregister(ctx context.Context) {
	if err := e.repo.DeleteExecution(context.WithoutCancel(ctx), e.id); err != nil {
		e.logger.Warningf("Could not unregister execution: %s", err)
	}
}
