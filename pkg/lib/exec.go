package lib

import (
	"context"
	"fmt"
	"io"
	"iter"

	appexec "github.com/slok/podexec/internal/app/exec"
)

// Execute runs target and returns its events.
//
// Nothing happens until the sequence is ranged. The sequence can be ranged once, it
// yields the output lines in arrival order and ends with exactly one [EventCompleted]
// or [EventFailed] event. Breaking out of the range stops the remote execution.
// Cancelling ctx ends the sequence with an [EventFailed] event with
// [ReasonCancelled].
//
// Returns [ErrNotValid] if the target is not valid.
func (c *Client) Execute(ctx context.Context, target Target) (iter.Seq[Event], error) {
	events, err := c.svc.Run(ctx, appexec.Request{
		Script:    target.Script,
		Namespace: target.Namespace,
		Selector:  target.Selector,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return func(yield func(Event) bool) {
		for ev := range events {
			if !yield(fromInternalEvent(ev)) {
				return
			}
		}
	}, nil
}

// Run runs target writing its stdout and stderr lines to the given writers, nil
// writers discard the output.
//
// A script that ends returns its exit code in the result, even when it is not zero.
// An execution that could not finish returns an error: [ErrWorkerNotFound] when no
// worker matched, [ErrConnection] on transport failures and the context error on
// cancellation.
func (c *Client) Run(ctx context.Context, target Target, stdout, stderr io.Writer) (*RunResult, error) {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	events, err := c.Execute(ctx, target)
	if err != nil {
		return nil, err
	}

	for ev := range events {
		switch ev.Kind {
		case EventOutput:
			w := stdout
			if ev.Channel == ChannelStderr {
				w = stderr
			}
			if _, err := fmt.Fprintln(w, ev.Line); err != nil {
				return nil, fmt.Errorf("could not write output: %w", err)
			}
		case EventCompleted:
			return &RunResult{ExitCode: ev.ExitCode}, nil
		case EventFailed:
			return nil, ev.Err
		}
	}

	// Unreachable while the sequence is fully ranged.
	return nil, fmt.Errorf("execution ended without result: %w", ErrConnection)
}
