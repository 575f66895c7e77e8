package printer

import (
	"time"

	"github.com/slok/podexec/internal/api"
	"github.com/slok/podexec/internal/model"
)

// Printer knows how to print execution streams in different formats.
type Printer interface {
	PrintEvent(ev model.Event) error
	PrintHealth(ts time.Time, h api.HealthData) error
	PrintMessage(msg string) error
	PrintExecutions(executions []model.Execution) error
	PrintExecution(e model.Execution) error
}
