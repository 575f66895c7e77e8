package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/podexec/internal/client"
)

// StatusCommand shows a running execution of a server.
type StatusCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	url    string
	id     string
	format string
}

// NewStatusCommand returns the status command.
func NewStatusCommand(rootCmd *RootCommand, app *kingpin.Application) *StatusCommand {
	c := &StatusCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("status", "Show the status of a running execution.")
	c.Cmd.Arg("id", "Execution ID.").Required().StringVar(&c.id)
	registerURLFlag(c.Cmd, &c.url)
	registerFormatFlag(c.Cmd, &c.format)

	return c
}

func (c StatusCommand) Name() string { return c.Cmd.FullCommand() }

func (c StatusCommand) Run(ctx context.Context) error {
	cli, err := client.NewClient(client.ClientConfig{
		BaseURL: c.url,
		Logger:  c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create client: %w", err)
	}

	e, err := cli.GetExecution(ctx, c.id)
	if err != nil {
		return fmt.Errorf("could not get execution status: %w", err)
	}

	p := newPrinter(c.rootCmd, c.format, false)
	if err := p.PrintExecution(*e); err != nil {
		return fmt.Errorf("could not print status: %w", err)
	}

	return nil
}
