package printer_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/podexec/internal/api"
	"github.com/slok/podexec/internal/model"
	"github.com/slok/podexec/internal/printer"
)

var testTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func TestTextPrinterPrintEvent(t *testing.T) {
	tests := map[string]struct {
		quiet     bool
		events    []model.Event
		expStdout string
		expStderr string
	}{
		"Output lines should go to their own writer.": {
			quiet: true,
			events: []model.Event{
				model.NewOutputEvent(model.ChannelStdout, "hello", testTime),
				model.NewOutputEvent(model.ChannelStderr, "warn", testTime),
				model.NewOutputEvent(model.ChannelStdout, "world", testTime),
				model.NewCompletedEvent(0, testTime),
			},
			expStdout: "hello\nworld\n",
			expStderr: "warn\n",
		},

		"Control events should not be printed.": {
			quiet: true,
			events: []model.Event{
				model.NewControlEvent("EXIT_CODE", "0", testTime),
			},
		},

		"A completed execution should print a summary.": {
			events: []model.Event{
				model.NewOutputEvent(model.ChannelStdout, "hello", testTime),
				model.NewCompletedEvent(3, testTime),
			},
			expStdout: "hello\n",
			expStderr: "Completed with exit code 3 (1 line, 6 B)\n",
		},

		"A failed execution should print the reason and the error.": {
			events: []model.Event{
				model.NewFailedEvent(model.ErrWorkerNotFound, testTime),
			},
			expStderr: "Failed: WorkerNotFound: worker not found (0 lines, 0 B)\n",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			var stdout, stderr bytes.Buffer
			p := printer.NewTextPrinter(&stdout, &stderr, test.quiet)
			for _, ev := range test.events {
				require.NoError(p.PrintEvent(ev))
			}

			assert.Equal(test.expStdout, stdout.String())
			assert.Equal(test.expStderr, stderr.String())
		})
	}
}

func TestTextPrinterPrintHealth(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewTextPrinter(&buf, &buf, false)

	err := p.PrintHealth(testTime, api.HealthData{CheckNumber: 2, TotalChecks: 10, Status: api.StatusHealthy, Interval: 0.5})
	require.NoError(t, err)
	assert.Equal(t, "2026-01-02 03:04:05 UTC  check 2/10  healthy  (every 0.5s)\n", buf.String())
}

func TestTextPrinterPrintMessage(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewTextPrinter(&buf, &buf, false)

	err := p.PrintMessage("ok")
	require.NoError(t, err)
	assert.Equal(t, "ok", strings.TrimSpace(buf.String()))
}

func TestJSONPrinterPrintEvent(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewJSONPrinter(&buf)

	events := []model.Event{
		model.NewOutputEvent(model.ChannelStdout, "hello", testTime),
		model.NewControlEvent("EXIT_CODE", "1", testTime),
		model.NewFailedEvent(errors.New("boom"), testTime),
	}
	for _, ev := range events {
		require.NoError(t, p.PrintEvent(ev))
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"timestamp":1767323045,"level":"INFO","data":{"stdout":"hello","stderr":"","exit_code":null}}`, lines[0])
	assert.JSONEq(t, `{"timestamp":1767323045,"level":"ERROR","data":{"error":"ConnectionError","message":"boom"}}`, lines[1])
}

func TestJSONPrinterPrintHealth(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewJSONPrinter(&buf)

	err := p.PrintHealth(testTime, api.HealthData{CheckNumber: 1, TotalChecks: 3, Status: api.StatusHealthy, Interval: 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"timestamp":1767323045,"level":"INFO","data":{"check_number":1,"total_checks":3,"status":"healthy","interval":1}}`, buf.String())
}

func TestJSONPrinterPrintMessage(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewJSONPrinter(&buf)

	err := p.PrintMessage("ok")
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"ok"}`, buf.String())
}

func TestTextPrinterPrintExecutions(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	started := time.Now().Add(-90 * time.Second)
	var stdout bytes.Buffer
	p := printer.NewTextPrinter(&stdout, io.Discard, false)

	err := p.PrintExecutions([]model.Execution{
		{ID: "01HQZX3Y7K8M9N0P1Q2R3S4T5V", Namespace: "default", Selector: "prefix=abc", Worker: "default/abc-0", State: model.ExecutionStateStreaming, StartedAt: started, OutputLines: 12},
		{ID: "01HQZX3Y7K8M9N0P1Q2R3S4T5W", Namespace: "jobs", Selector: "app=batch", State: model.ExecutionStateResolving, StartedAt: started},
	})
	require.NoError(err)

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(lines, 3)
	assert.Equal([]string{"ID", "NAMESPACE", "SELECTOR", "WORKER", "STATE", "LINES", "AGE"}, strings.Fields(lines[0]))
	assert.Equal([]string{"01HQZX3Y7K8M9N0P1Q2R3S4T5V", "default", "prefix=abc", "default/abc-0", "streaming", "12", "1m"}, strings.Fields(lines[1]))
	assert.Equal([]string{"01HQZX3Y7K8M9N0P1Q2R3S4T5W", "jobs", "app=batch", "<none>", "resolving", "0", "1m"}, strings.Fields(lines[2]))
}

func TestTextPrinterPrintExecutionsEmpty(t *testing.T) {
	var stdout bytes.Buffer
	p := printer.NewTextPrinter(&stdout, io.Discard, false)

	require.NoError(t, p.PrintExecutions(nil))
	assert.Empty(t, stdout.String())
}

func TestTextPrinterPrintExecution(t *testing.T) {
	assert := assert.New(t)

	var stdout bytes.Buffer
	p := printer.NewTextPrinter(&stdout, io.Discard, false)

	err := p.PrintExecution(model.Execution{ID: "01HQZX3Y7K8M9N0P1Q2R3S4T5V", Namespace: "default", Selector: "prefix=abc", Worker: "default/abc-0", State: model.ExecutionStateDraining, StartedAt: testTime, OutputLines: 3})
	assert.NoError(err)

	out := stdout.String()
	assert.Contains(out, "ID:         01HQZX3Y7K8M9N0P1Q2R3S4T5V\n")
	assert.Contains(out, "Worker:     default/abc-0\n")
	assert.Contains(out, "State:      draining\n")
	assert.Contains(out, "Lines:      3\n")
	assert.Contains(out, "Started:    2026-01-02 03:04:05 UTC (")
}

func TestJSONPrinterPrintExecutions(t *testing.T) {
	var stdout bytes.Buffer
	p := printer.NewJSONPrinter(&stdout)

	err := p.PrintExecutions([]model.Execution{
		{ID: "01HQZX3Y7K8M9N0P1Q2R3S4T5V", Namespace: "default", Selector: "prefix=abc", State: model.ExecutionStateResolving, StartedAt: testTime},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"executions":[{"id":"01HQZX3Y7K8M9N0P1Q2R3S4T5V","namespace":"default","selector":"prefix=abc","worker":"","state":"resolving","started_at":1767323045,"output_lines":0}]}`, stdout.String())
}

func TestJSONPrinterPrintExecutionsEmpty(t *testing.T) {
	var stdout bytes.Buffer
	p := printer.NewJSONPrinter(&stdout)

	require.NoError(t, p.PrintExecutions(nil))
	assert.JSONEq(t, `{"executions":[]}`, stdout.String())
}
