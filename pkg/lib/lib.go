package lib

import (
	"context"
	"fmt"
	"time"

	appexec "github.com/slok/podexec/internal/app/exec"
	"github.com/slok/podexec/internal/log"
	"github.com/slok/podexec/internal/model"
	"github.com/slok/podexec/internal/remote"
	"github.com/slok/podexec/internal/remote/backend"
)

// Config configures the SDK client.
//
// All fields are optional and have sensible defaults. An empty Config{} uses the
// Kubernetes backend with the default kubeconfig loading rules.
type Config struct {
	// Backend selects where the workers run.
	// Default: [BackendKubernetes].
	Backend BackendType

	// Kubeconfig is the kubeconfig path. When empty KUBECONFIG, ~/.kube/config and
	// the in-cluster configuration are tried in order.
	// Only used when Backend is [BackendKubernetes].
	Kubeconfig string

	// KubeContext is the kubeconfig context, empty uses the current context.
	// Only used when Backend is [BackendKubernetes].
	KubeContext string

	// Container forces the container used in the pods, empty uses the pod default
	// container.
	// Only used when Backend is [BackendKubernetes].
	Container string

	// DockerNamespaceLabel is the container label used as namespace.
	// Default: "com.docker.compose.project".
	// Only used when Backend is [BackendDocker].
	DockerNamespaceLabel string

	// LocalWorkers are the workers of the local backend, every one runs scripts as
	// local processes.
	// Only used when Backend is [BackendLocal].
	LocalWorkers []Worker

	// PollTimeout is the max wait of every output poll. It bounds how long
	// cancellation takes to be observed.
	// Default: 1s.
	PollTimeout time.Duration

	// Logger receives structured log output from the SDK.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger
}

func (c *Config) defaults() error {
	if c.Backend == "" {
		c.Backend = BackendKubernetes
	}

	if c.PollTimeout <= 0 {
		c.PollTimeout = time.Second
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

func (c Config) toInternal() (model.ServerConfig, error) {
	cfg := model.ServerConfig{PollTimeout: c.PollTimeout}

	switch c.Backend {
	case BackendKubernetes:
		cfg.KubernetesBackend = &model.KubernetesBackendConfig{
			Kubeconfig: c.Kubeconfig,
			Context:    c.KubeContext,
			Container:  c.Container,
		}
	case BackendDocker:
		cfg.DockerBackend = &model.DockerBackendConfig{NamespaceLabel: c.DockerNamespaceLabel}
	case BackendLocal:
		cfg.LocalBackend = &model.LocalBackendConfig{Workers: toInternalWorkers(c.LocalWorkers)}
	default:
		return model.ServerConfig{}, fmt.Errorf("unsupported backend type: %s: %w", c.Backend, ErrNotValid)
	}

	return cfg, nil
}

// Client is the main SDK entry point for running scripts on workers.
//
// Create a Client with [New]. A Client is safe for concurrent use and every
// execution is independent.
type Client struct {
	conn   remote.Connector
	svc    *appexec.Service
	logger log.Logger
}

// New creates a new SDK client connected to the configured backend.
//
//	client, err := lib.New(lib.Config{Backend: lib.BackendKubernetes})
//	if err != nil {
//	    return err
//	}
func New(cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	internalCfg, err := cfg.toInternal()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	conn, err := backend.NewConnector(internalCfg, cfg.Logger)
	if err != nil {
		return nil, mapError(fmt.Errorf("could not create %s connector: %w", cfg.Backend, err))
	}

	svc, err := appexec.NewService(appexec.ServiceConfig{
		Connector:   conn,
		PollTimeout: cfg.PollTimeout,
		Logger:      cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	return &Client{
		conn:   conn,
		svc:    svc,
		logger: cfg.Logger,
	}, nil
}

// Doctor runs the preflight checks of the configured backend.
//
// For [BackendKubernetes] it checks the API server, for [BackendDocker] the daemon
// and for [BackendLocal] the shell and the configured workers.
func (c *Client) Doctor(ctx context.Context) []CheckResult {
	return fromInternalCheckResults(c.conn.Check(ctx))
}
