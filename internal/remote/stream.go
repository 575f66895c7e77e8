package remote

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/slok/podexec/internal/log"
)

// StreamFunc runs a blocking transport writing the process output into stdout and
// stderr. It returns when the process ends or ctx is cancelled.
type StreamFunc func(ctx context.Context, stdout, stderr io.Writer) error

// StreamChannelConfig is the configuration for the stream channel.
type StreamChannelConfig struct {
	// Stream is the transport.
	Stream StreamFunc
	// QueueSize is the number of chunks buffered per sub channel before the transport
	// is blocked.
	QueueSize int
	// CloseTimeout bounds the wait for the transport to end on Close.
	CloseTimeout time.Duration
	Logger       log.Logger
}

func (c *StreamChannelConfig) defaults() error {
	if c.Stream == nil {
		return fmt.Errorf("stream is required")
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 64
	}
	if c.CloseTimeout <= 0 {
		c.CloseTimeout = 5 * time.Second
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "remote.StreamChannel"})
	return nil
}

// StreamChannel adapts a blocking StreamFunc transport into a poll driven Channel.
//
// The transport writes into bounded queues, so it is blocked (and with it the remote
// process output) while the consumer is not reading.
type StreamChannel struct {
	stdoutQ chan []byte
	stderrQ chan []byte
	// Chunks already surfaced by Poll, only used by the consumer.
	stdout [][]byte
	stderr [][]byte

	done      chan struct{}
	err       error
	cancel    context.CancelFunc
	closeOnce sync.Once
	closeErr  error
	timeout   time.Duration
	logger    log.Logger
}

// NewStreamChannel starts the transport and returns the channel reading from it. The
// transport runs until it ends, ctx is cancelled or the channel is closed.
func NewStreamChannel(ctx context.Context, cfg StreamChannelConfig) (*StreamChannel, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	c := &StreamChannel{
		stdoutQ: make(chan []byte, cfg.QueueSize),
		stderrQ: make(chan []byte, cfg.QueueSize),
		done:    make(chan struct{}),
		cancel:  cancel,
		timeout: cfg.CloseTimeout,
		logger:  cfg.Logger,
	}

	go func() {
		defer close(c.done)
		c.err = cfg.Stream(ctx, &queueWriter{ctx: ctx, q: c.stdoutQ}, &queueWriter{ctx: ctx, q: c.stderrQ})
	}()

	return c, nil
}

func (c *StreamChannel) IsOpen() bool {
	select {
	case <-c.done:
	default:
		return true
	}

	// The transport ended, but the channel stays open until everything is read.
	return len(c.stdoutQ) > 0 || len(c.stderrQ) > 0 || len(c.stdout) > 0 || len(c.stderr) > 0
}

func (c *StreamChannel) Poll(ctx context.Context, timeout time.Duration) error {
	if len(c.stdout) > 0 || len(c.stderr) > 0 {
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case b := <-c.stdoutQ:
		c.stdout = append(c.stdout, b)
	case b := <-c.stderrQ:
		c.stderr = append(c.stderr, b)
	case <-c.done:
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}

	// Take what is already queued, without waiting for more.
	for range 2 * cap(c.stdoutQ) {
		select {
		case b := <-c.stdoutQ:
			c.stdout = append(c.stdout, b)
		case b := <-c.stderrQ:
			c.stderr = append(c.stderr, b)
		default:
			return nil
		}
	}

	return nil
}

func (c *StreamChannel) HasStdout() bool { return len(c.stdout) > 0 }

func (c *StreamChannel) ReadStdout() ([]byte, error) {
	return pop(&c.stdout)
}

func (c *StreamChannel) HasStderr() bool { return len(c.stderr) > 0 }

func (c *StreamChannel) ReadStderr() ([]byte, error) {
	return pop(&c.stderr)
}

func (c *StreamChannel) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

func (c *StreamChannel) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()
		c.stdout, c.stderr = nil, nil

		timer := time.NewTimer(c.timeout)
		defer timer.Stop()
		select {
		case <-c.done:
		case <-timer.C:
			c.closeErr = fmt.Errorf("transport did not stop after %s", c.timeout)
			c.logger.Warningf("Transport did not stop after %s", c.timeout)
		}

		// Discard what the transport queued and nobody will read.
		for _, q := range []chan []byte{c.stdoutQ, c.stderrQ} {
			for len(q) > 0 {
				<-q
			}
		}
	})

	return c.closeErr
}

func pop(chunks *[][]byte) ([]byte, error) {
	if len(*chunks) == 0 {
		return nil, io.EOF
	}

	b := (*chunks)[0]
	(*chunks)[0] = nil
	*chunks = (*chunks)[1:]
	return b, nil
}

// queueWriter sends a copy of every write to a queue, blocking while it is full.
type queueWriter struct {
	ctx context.Context
	q   chan<- []byte
}

func (w *queueWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	b := make([]byte, len(p))
	copy(b, p)

	select {
	case w.q <- b:
		return len(p), nil
	case <-w.ctx.Done():
		return 0, w.ctx.Err()
	}
}
