package model_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/slok/podexec/internal/model"
)

func TestReasonFromError(t *testing.T) {
	tests := map[string]struct {
		err       error
		expReason string
	}{
		"A wrapped worker not found error should map to worker not found.": {
			err:       fmt.Errorf("no pods: %w", model.ErrWorkerNotFound),
			expReason: model.ReasonWorkerNotFound,
		},

		"A connection error should map to connection error.": {
			err:       fmt.Errorf("dial: %w", model.ErrConnection),
			expReason: model.ReasonConnectionError,
		},

		"A context cancellation should map to cancelled.": {
			err:       context.Canceled,
			expReason: model.ReasonCancelled,
		},

		"An unknown error should map to connection error.": {
			err:       fmt.Errorf("something"),
			expReason: model.ReasonConnectionError,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expReason, model.ReasonFromError(test.err))
		})
	}
}

func TestEventIsTerminal(t *testing.T) {
	now := time.Now()

	assert.False(t, model.NewOutputEvent(model.ChannelStdout, "hi", now).IsTerminal())
	assert.False(t, model.NewControlEvent("EXIT_CODE", "0", now).IsTerminal())
	assert.True(t, model.NewCompletedEvent(0, now).IsTerminal())
	assert.True(t, model.NewFailedEvent(model.ErrWorkerNotFound, now).IsTerminal())
}
