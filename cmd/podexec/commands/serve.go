package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/podexec/internal/app/exec"
	"github.com/slok/podexec/internal/app/list"
	"github.com/slok/podexec/internal/app/status"
	"github.com/slok/podexec/internal/log"
	"github.com/slok/podexec/internal/remote/backend"
	"github.com/slok/podexec/internal/server"
	"github.com/slok/podexec/internal/storage/memory"
)

// ServeCommand runs the server that publishes executions as event streams.
type ServeCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	backend         *backendFlags
	listenAddr      string
	shutdownTimeout time.Duration
}

// NewServeCommand returns the serve command.
func NewServeCommand(rootCmd *RootCommand, app *kingpin.Application) *ServeCommand {
	c := &ServeCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("serve", "Run the execution server.")
	c.backend = registerBackendFlags(c.Cmd)
	c.Cmd.Flag("listen", "HTTP listen address, overrides the config file (default :8000).").StringVar(&c.listenAddr)
	c.Cmd.Flag("shutdown-timeout", "Max wait for the running streams on shutdown.").Default("5s").DurationVar(&c.shutdownTimeout)

	return c
}

func (c ServeCommand) Name() string { return c.Cmd.FullCommand() }

func (c ServeCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	cfg, err := c.backend.serverConfig(ctx)
	if err != nil {
		return err
	}
	if c.listenAddr != "" {
		cfg.ListenAddr = c.listenAddr
	}

	conn, err := backend.NewConnector(cfg, logger)
	if err != nil {
		return fmt.Errorf("could not create %s connector: %w", cfg.Backend(), err)
	}

	// Running executions registry shared by the execution and the query services.
	repo, err := memory.NewRepository(memory.RepositoryConfig{Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}

	svc, err := exec.NewService(exec.ServiceConfig{
		Connector:   conn,
		Repository:  repo,
		PollTimeout: cfg.PollTimeout,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	listSvc, err := list.NewService(list.ServiceConfig{Repository: repo, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create list service: %w", err)
	}

	statusSvc, err := status.NewService(status.ServiceConfig{Repository: repo, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create status service: %w", err)
	}

	srv, err := server.NewServer(server.ServerConfig{
		ListenAddr:      cfg.ListenAddr,
		Executor:        svc,
		Lister:          listSvc,
		Getter:          statusSvc,
		ShutdownTimeout: c.shutdownTimeout,
		Logger:          logger,
	})
	if err != nil {
		return fmt.Errorf("could not create server: %w", err)
	}

	logger.WithValues(log.Kv{"backend": cfg.Backend()}).Infof("Starting execution server")
	return srv.Run(ctx)
}
