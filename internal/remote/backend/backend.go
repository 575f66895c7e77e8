// Package backend creates the remote connector of a configured backend.
package backend

import (
	"fmt"

	"github.com/slok/podexec/internal/log"
	"github.com/slok/podexec/internal/model"
	"github.com/slok/podexec/internal/remote"
	"github.com/slok/podexec/internal/remote/docker"
	"github.com/slok/podexec/internal/remote/kubernetes"
	"github.com/slok/podexec/internal/remote/local"
)

// NewConnector creates the connector of the backend set in cfg.
func NewConnector(cfg model.ServerConfig, logger log.Logger) (remote.Connector, error) {
	switch cfg.Backend() {
	case model.BackendKubernetes:
		kcfg := cfg.KubernetesBackend
		client, restConfig, err := kubernetes.NewClient(kcfg.Kubeconfig, kcfg.Context)
		if err != nil {
			return nil, err
		}
		return kubernetes.NewConnector(kubernetes.ConnectorConfig{
			Client:     client,
			RESTConfig: restConfig,
			Container:  kcfg.Container,
			Logger:     logger,
		})

	case model.BackendDocker:
		return docker.NewConnector(docker.ConnectorConfig{
			NamespaceLabel: cfg.DockerBackend.NamespaceLabel,
			Logger:         logger,
		})

	case model.BackendLocal:
		return local.NewConnector(local.ConnectorConfig{
			Workers: cfg.LocalBackend.Workers,
			Logger:  logger,
		})
	}

	return nil, fmt.Errorf("a backend is required: %w", model.ErrNotValid)
}
