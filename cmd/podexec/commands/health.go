package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/podexec/internal/api"
	"github.com/slok/podexec/internal/client"
)

// HealthCommand streams the heartbeat of a podexec server.
type HealthCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	url       string
	interval  float64
	maxChecks int
	format    string
}

// NewHealthCommand returns the health command.
func NewHealthCommand(rootCmd *RootCommand, app *kingpin.Application) *HealthCommand {
	c := &HealthCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("health", "Stream the heartbeat of a server.")
	registerURLFlag(c.Cmd, &c.url)
	c.Cmd.Flag("interval", "Seconds between checks (0.1-10).").Default("1").Float64Var(&c.interval)
	c.Cmd.Flag("max-checks", "Number of checks (1-100).").Default("10").IntVar(&c.maxChecks)
	registerFormatFlag(c.Cmd, &c.format)

	return c
}

func (c HealthCommand) Name() string { return c.Cmd.FullCommand() }

func (c HealthCommand) Run(ctx context.Context) error {
	req := api.HealthRequest{Interval: c.interval, MaxChecks: c.maxChecks}
	if err := req.Validate(); err != nil {
		return err
	}

	cli, err := client.NewClient(client.ClientConfig{
		BaseURL: c.url,
		Logger:  c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create client: %w", err)
	}

	p := newPrinter(c.rootCmd, c.format, false)
	checks := 0
	err = cli.Health(ctx, req, func(msg api.ReceivedMessage) error {
		h, ok := msg.Health()
		if !ok {
			return nil
		}
		checks++
		return p.PrintHealth(msg.Time(), h)
	})
	if err != nil {
		return fmt.Errorf("health stream failed: %w", err)
	}
	if checks < req.MaxChecks {
		return fmt.Errorf("server sent %d of %d checks", checks, req.MaxChecks)
	}

	return nil
}
