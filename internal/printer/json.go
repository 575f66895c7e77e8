package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/slok/podexec/internal/api"
	"github.com/slok/podexec/internal/model"
)

// JSONPrinter prints one JSON object per line using the same messages the server
// streams, so the output can be piped to other tools.
type JSONPrinter struct {
	enc *json.Encoder
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{enc: json.NewEncoder(w)}
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintEvent prints an execution event, control events are skipped.
func (j *JSONPrinter) PrintEvent(ev model.Event) error {
	msg, ok := api.MessageFromEvent(ev)
	if !ok {
		return nil
	}
	return j.enc.Encode(msg)
}

// PrintHealth prints a heartbeat tick.
func (j *JSONPrinter) PrintHealth(ts time.Time, h api.HealthData) error {
	return j.enc.Encode(api.Message{
		Timestamp: api.Timestamp(ts),
		Level:     api.LevelInfo,
		Data:      h,
	})
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.enc.Encode(messageOutput{Message: msg})
}

// PrintExecutions prints the running executions as a single JSON object.
func (j *JSONPrinter) PrintExecutions(executions []model.Execution) error {
	resp := api.ListExecutionsResponse{Executions: make([]api.ExecutionInfo, 0, len(executions))}
	for _, e := range executions {
		resp.Executions = append(resp.Executions, api.ExecutionInfoFromModel(e))
	}
	return j.enc.Encode(resp)
}

// PrintExecution prints a running execution in JSON format.
func (j *JSONPrinter) PrintExecution(e model.Execution) error {
	return j.enc.Encode(api.ExecutionInfoFromModel(e))
}
