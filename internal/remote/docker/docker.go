package docker

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"k8s.io/apimachinery/pkg/labels"

	"github.com/slok/podexec/internal/log"
	"github.com/slok/podexec/internal/model"
	"github.com/slok/podexec/internal/remote"
)

// DefaultNamespaceLabel is the container label used as namespace.
const DefaultNamespaceLabel = "com.docker.compose.project"

// DockerClient is the interface for Docker operations that we use.
// This allows us to mock the Docker client for testing.
type DockerClient interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	ContainerExecCreate(ctx context.Context, container string, options container.ExecOptions) (container.ExecCreateResponse, error)
	ContainerExecAttach(ctx context.Context, execID string, options container.ExecAttachOptions) (types.HijackedResponse, error)
	ContainerExecInspect(ctx context.Context, execID string) (container.ExecInspect, error)
	Ping(ctx context.Context) (types.Ping, error)
}

// ConnectorConfig is the configuration for the Docker connector.
type ConnectorConfig struct {
	Client DockerClient
	// NamespaceLabel is the label whose value is the worker namespace.
	NamespaceLabel string
	Logger         log.Logger
}

func (c *ConnectorConfig) defaults() error {
	if c.Client == nil {
		cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
		if err != nil {
			return fmt.Errorf("could not create Docker client: %w", err)
		}
		c.Client = cli
	}
	if c.NamespaceLabel == "" {
		c.NamespaceLabel = DefaultNamespaceLabel
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "remote.Docker"})
	return nil
}

// Connector runs commands on running containers using Docker exec.
type Connector struct {
	client         DockerClient
	namespaceLabel string
	logger         log.Logger
}

// NewConnector creates a new Docker connector.
func NewConnector(cfg ConnectorConfig) (*Connector, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Connector{
		client:         cfg.Client,
		namespaceLabel: cfg.NamespaceLabel,
		logger:         cfg.Logger,
	}, nil
}

func (c *Connector) Resolve(ctx context.Context, selector, namespace string) (*model.Worker, error) {
	sel, err := labels.Parse(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, model.ErrNotValid)
	}

	// The namespace is filtered by the daemon, the selector supports set based
	// requirements so it is matched here.
	containers, err := c.client.ContainerList(ctx, container.ListOptions{
		Filters: filters.NewArgs(
			filters.Arg("label", fmt.Sprintf("%s=%s", c.namespaceLabel, namespace)),
			filters.Arg("status", "running"),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("could not list containers: %w: %w", model.ErrConnection, err)
	}

	for _, ctr := range containers {
		if !sel.Matches(labels.Set(ctr.Labels)) {
			continue
		}

		worker := &model.Worker{
			Name:      containerName(ctr),
			Namespace: namespace,
			Labels:    ctr.Labels,
		}
		c.logger.Debugf("Resolved %q in %q to container %s (%s)", selector, namespace, worker, ctr.ID)
		return worker, nil
	}

	return nil, fmt.Errorf("no running containers found for %q in namespace %q: %w", selector, namespace, model.ErrWorkerNotFound)
}

func (c *Connector) Open(ctx context.Context, worker model.Worker, command []string) (remote.Channel, error) {
	if len(command) == 0 {
		return nil, fmt.Errorf("command cannot be empty: %w", model.ErrNotValid)
	}

	execResp, err := c.client.ContainerExecCreate(ctx, worker.Name, container.ExecOptions{
		Cmd:          command,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create exec on container %s: %w: %w", worker, model.ErrConnection, err)
	}

	attach, err := c.client.ContainerExecAttach(ctx, execResp.ID, container.ExecAttachOptions{})
	if err != nil {
		return nil, fmt.Errorf("could not attach to exec %s: %w: %w", execResp.ID, model.ErrConnection, err)
	}

	stream := func(ctx context.Context, stdout, stderr io.Writer) error {
		defer attach.Close()

		// Closing the hijacked connection is the only way to unblock the copy.
		stop := context.AfterFunc(ctx, attach.Close)
		defer stop()

		_, err := stdcopy.StdCopy(stdout, stderr, attach.Reader)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			return fmt.Errorf("exec stream on container %s failed: %w: %w", worker, model.ErrConnection, err)
		}

		if info, err := c.client.ContainerExecInspect(ctx, execResp.ID); err == nil {
			c.logger.Debugf("Command on container %s exited with code %d", worker, info.ExitCode)
		}

		return nil
	}

	ch, err := remote.NewStreamChannel(ctx, remote.StreamChannelConfig{
		Stream: stream,
		Logger: c.logger,
	})
	if err != nil {
		attach.Close()
		return nil, fmt.Errorf("could not create channel: %w", err)
	}

	return ch, nil
}

func (c *Connector) Check(ctx context.Context) []model.CheckResult {
	ping, err := c.client.Ping(ctx)
	if err != nil {
		return []model.CheckResult{{ID: "docker_daemon", Message: fmt.Sprintf("Docker daemon not reachable: %s", err), Status: model.CheckStatusError}}
	}

	return []model.CheckResult{{ID: "docker_daemon", Message: fmt.Sprintf("Docker daemon reachable (API %s)", ping.APIVersion), Status: model.CheckStatusOK}}
}

func containerName(ctr container.Summary) string {
	if len(ctr.Names) == 0 {
		return ctr.ID
	}
	return strings.TrimPrefix(ctr.Names[0], "/")
}
