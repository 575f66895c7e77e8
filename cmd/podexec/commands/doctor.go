package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/podexec/internal/model"
	"github.com/slok/podexec/internal/remote/backend"
)

// DoctorCommand runs the preflight checks of a backend.
type DoctorCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	backend *backendFlags
}

// NewDoctorCommand returns the doctor command.
func NewDoctorCommand(rootCmd *RootCommand, app *kingpin.Application) *DoctorCommand {
	c := &DoctorCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("doctor", "Run preflight checks for the backend.")
	c.backend = registerBackendFlags(c.Cmd)

	return c
}

func (c DoctorCommand) Name() string { return c.Cmd.FullCommand() }

func (c DoctorCommand) Run(ctx context.Context) error {
	out := c.rootCmd.Stdout

	cfg, err := c.backend.serverConfig(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\nChecking %s backend...\n", cfg.Backend())

	var results []model.CheckResult
	conn, err := backend.NewConnector(cfg, c.rootCmd.Logger)
	if err != nil {
		results = []model.CheckResult{{ID: "backend_config", Status: model.CheckStatusError, Message: err.Error()}}
	} else {
		results = conn.Check(ctx)
	}

	for _, r := range results {
		fmt.Fprintf(out, "  %s %-20s %s\n", getStatusIcon(r.Status), r.ID, r.Message)
	}

	summary := model.SummarizeChecks(results)
	fmt.Fprintf(out, "\n%s\n", summary)
	if !summary.Ready() {
		return fmt.Errorf("preflight checks failed with %d error(s)", summary.Errors)
	}

	return nil
}

func getStatusIcon(status model.CheckStatus) string {
	switch status {
	case model.CheckStatusOK:
		return "OK"
	case model.CheckStatusWarning:
		return "!!"
	case model.CheckStatusError:
		return "XX"
	default:
		return "??"
	}
}
