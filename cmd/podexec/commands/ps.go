package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/podexec/internal/client"
	"github.com/slok/podexec/internal/model"
)

// PsCommand lists the executions running on a server.
type PsCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	url         string
	namespace   string
	stateFilter string
	format      string
}

// NewPsCommand returns the ps command.
func NewPsCommand(rootCmd *RootCommand, app *kingpin.Application) *PsCommand {
	c := &PsCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("ps", "List the executions running on a server.")
	registerURLFlag(c.Cmd, &c.url)
	c.Cmd.Flag("namespace", "Filter by namespace.").Short('n').StringVar(&c.namespace)
	c.Cmd.Flag("state", "Filter by state (resolving, streaming, draining).").StringVar(&c.stateFilter)
	registerFormatFlag(c.Cmd, &c.format)

	return c
}

func (c PsCommand) Name() string { return c.Cmd.FullCommand() }

func (c PsCommand) Run(ctx context.Context) error {
	state := strings.ToLower(c.stateFilter)
	switch model.ExecutionState(state) {
	case "", model.ExecutionStateResolving, model.ExecutionStateStreaming, model.ExecutionStateDraining:
	default:
		return fmt.Errorf("invalid state filter: %s (must be: resolving, streaming, draining): %w", c.stateFilter, model.ErrNotValid)
	}

	cli, err := client.NewClient(client.ClientConfig{
		BaseURL: c.url,
		Logger:  c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create client: %w", err)
	}

	executions, err := cli.ListExecutions(ctx, c.namespace, state)
	if err != nil {
		return fmt.Errorf("could not list executions: %w", err)
	}

	p := newPrinter(c.rootCmd, c.format, false)
	if err := p.PrintExecutions(executions); err != nil {
		return fmt.Errorf("could not print executions: %w", err)
	}

	return nil
}
