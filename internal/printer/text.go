package printer

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/slok/podexec/internal/api"
	"github.com/slok/podexec/internal/model"
)

// TextPrinter prints the remote output as is, stdout lines on the stdout writer and
// stderr lines on the stderr writer, so the terminal behaves like a local process.
// The execution summary goes to the stderr writer.
type TextPrinter struct {
	stdout io.Writer
	stderr io.Writer
	quiet  bool
	now    func() time.Time

	lines int
	bytes int64
}

// NewTextPrinter creates a new text printer. Quiet disables the execution summary.
func NewTextPrinter(stdout, stderr io.Writer, quiet bool) *TextPrinter {
	return &TextPrinter{
		stdout: stdout,
		stderr: stderr,
		quiet:  quiet,
		now:    time.Now,
	}
}

// PrintEvent prints an execution event.
func (t *TextPrinter) PrintEvent(ev model.Event) error {
	switch ev.Kind {
	case model.EventKindOutput:
		w := t.stdout
		if ev.Channel == model.ChannelStderr {
			w = t.stderr
		}
		n, err := fmt.Fprintln(w, ev.Line)
		t.lines++
		t.bytes += int64(n)
		return err

	case model.EventKindCompleted:
		if t.quiet {
			return nil
		}
		_, err := fmt.Fprintf(t.stderr, "Completed with exit code %d (%s)\n", ev.ExitCode, t.outputSummary())
		return err

	case model.EventKindFailed:
		if t.quiet {
			return nil
		}
		msg := ev.Reason
		if ev.Err != nil {
			msg = fmt.Sprintf("%s: %s", ev.Reason, ev.Err)
		}
		_, err := fmt.Fprintf(t.stderr, "Failed: %s (%s)\n", msg, t.outputSummary())
		return err
	}

	return nil
}

func (t *TextPrinter) outputSummary() string {
	return outputSummary(t.lines, t.bytes)
}

var sizeUnits = []string{"KiB", "MiB", "GiB", "TiB"}

// outputSummary describes the printed remote output, e.g. "1 line, 6 B" or
// "1200 lines, 48.3 KiB".
func outputSummary(lines int, size int64) string {
	noun := "lines"
	if lines == 1 {
		noun = "line"
	}

	if size < 1024 {
		return fmt.Sprintf("%d %s, %d B", lines, noun, max(size, 0))
	}

	v := float64(size) / 1024
	unit := 0
	for v >= 1024 && unit < len(sizeUnits)-1 {
		v /= 1024
		unit++
	}
	return fmt.Sprintf("%d %s, %.1f %s", lines, noun, v, sizeUnits[unit])
}

// PrintHealth prints a heartbeat tick.
func (t *TextPrinter) PrintHealth(ts time.Time, h api.HealthData) error {
	_, err := fmt.Fprintf(t.stdout, "%s  check %d/%d  %s  (every %s)\n",
		FormatTimestamp(ts), h.CheckNumber, h.TotalChecks, h.Status, FormatSeconds(h.Interval))
	return err
}

// PrintMessage prints a simple message.
func (t *TextPrinter) PrintMessage(msg string) error {
	_, err := fmt.Fprintln(t.stdout, msg)
	return err
}

// PrintExecutions prints the running executions in a table format.
func (t *TextPrinter) PrintExecutions(executions []model.Execution) error {
	if len(executions) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.stdout, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tNAMESPACE\tSELECTOR\tWORKER\tSTATE\tLINES\tAGE")
	now := t.now()
	for _, e := range executions {
		worker := e.Worker
		if worker == "" {
			worker = "<none>"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n", e.ID, e.Namespace, e.Selector, worker, e.State, e.OutputLines, FormatAge(e.StartedAt, now))
	}

	return nil
}

// PrintExecution prints the detailed status of a running execution.
func (t *TextPrinter) PrintExecution(e model.Execution) error {
	fmt.Fprintf(t.stdout, "ID:         %s\n", e.ID)
	fmt.Fprintf(t.stdout, "Namespace:  %s\n", e.Namespace)
	fmt.Fprintf(t.stdout, "Selector:   %s\n", e.Selector)
	if e.Worker != "" {
		fmt.Fprintf(t.stdout, "Worker:     %s\n", e.Worker)
	}
	fmt.Fprintf(t.stdout, "State:      %s\n", e.State)
	fmt.Fprintf(t.stdout, "Lines:      %d\n", e.OutputLines)
	_, err := fmt.Fprintf(t.stdout, "Started:    %s (%s ago)\n", FormatTimestamp(e.StartedAt), FormatAge(e.StartedAt, t.now()))
	return err
}
