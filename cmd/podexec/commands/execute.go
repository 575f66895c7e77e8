package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/podexec/internal/api"
	"github.com/slok/podexec/internal/client"
	"github.com/slok/podexec/internal/model"
)

// ExecuteCommand runs a script on a worker through a podexec server.
type ExecuteCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	url    string
	target *targetFlags
	script *scriptFlags
	format string
	quiet  bool
}

// NewExecuteCommand returns the execute command.
func NewExecuteCommand(rootCmd *RootCommand, app *kingpin.Application) *ExecuteCommand {
	c := &ExecuteCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("execute", "Run a script on a worker through a server, exits with the script exit code.")
	registerURLFlag(c.Cmd, &c.url)
	c.target = registerTargetFlags(c.Cmd)
	c.script = registerScriptFlags(c.Cmd)
	registerFormatFlag(c.Cmd, &c.format)
	c.Cmd.Flag("quiet", "Do not print the execution summary.").Short('q').BoolVar(&c.quiet)

	return c
}

func registerURLFlag(cmd *kingpin.CmdClause, url *string) {
	cmd.Flag("url", "Server base URL.").Envar("PODEXEC_URL").Default("http://localhost:8000").StringVar(url)
}

func (c ExecuteCommand) Name() string { return c.Cmd.FullCommand() }

func (c ExecuteCommand) Run(ctx context.Context) error {
	script, err := c.script.load(c.rootCmd.Stdin)
	if err != nil {
		return err
	}

	cli, err := client.NewClient(client.ClientConfig{
		BaseURL: c.url,
		Logger:  c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create client: %w", err)
	}

	p := newPrinter(c.rootCmd, c.format, c.quiet)
	var last model.Event
	err = cli.Execute(ctx, api.ExecuteRequest{
		Script:    script,
		Namespace: c.target.namespace,
		Selector:  c.target.selector,
	}, func(msg api.ReceivedMessage) error {
		ev, ok := msg.Event()
		if !ok {
			return nil
		}
		last = ev
		return p.PrintEvent(ev)
	})

	return terminalError(last, err)
}
