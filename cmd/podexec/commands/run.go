package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/podexec/internal/app/exec"
	"github.com/slok/podexec/internal/model"
	"github.com/slok/podexec/internal/remote/backend"
)

// RunCommand runs a script on a worker connecting directly to the backend.
type RunCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	backend *backendFlags
	target  *targetFlags
	script  *scriptFlags
	format  string
	quiet   bool
}

// NewRunCommand returns the run command.
func NewRunCommand(rootCmd *RootCommand, app *kingpin.Application) *RunCommand {
	c := &RunCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("run", "Run a script on a worker and stream its output, exits with the script exit code.")
	c.backend = registerBackendFlags(c.Cmd)
	c.target = registerTargetFlags(c.Cmd)
	c.script = registerScriptFlags(c.Cmd)
	registerFormatFlag(c.Cmd, &c.format)
	c.Cmd.Flag("quiet", "Do not print the execution summary.").Short('q').BoolVar(&c.quiet)

	return c
}

func (c RunCommand) Name() string { return c.Cmd.FullCommand() }

func (c RunCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	script, err := c.script.load(c.rootCmd.Stdin)
	if err != nil {
		return err
	}

	cfg, err := c.backend.serverConfig(ctx)
	if err != nil {
		return err
	}

	conn, err := backend.NewConnector(cfg, logger)
	if err != nil {
		return fmt.Errorf("could not create %s connector: %w", cfg.Backend(), err)
	}

	svc, err := exec.NewService(exec.ServiceConfig{
		Connector:   conn,
		PollTimeout: cfg.PollTimeout,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	events, err := svc.Run(ctx, exec.Request{
		Script:    script,
		Namespace: c.target.namespace,
		Selector:  c.target.selector,
	})
	if err != nil {
		return fmt.Errorf("could not run script: %w", err)
	}

	p := newPrinter(c.rootCmd, c.format, c.quiet)
	var last model.Event
	for ev := range events {
		if err := p.PrintEvent(ev); err != nil {
			return fmt.Errorf("could not print output: %w", err)
		}
		last = ev
	}

	return terminalError(last, ctx.Err())
}
