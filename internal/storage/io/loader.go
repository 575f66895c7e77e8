package io

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/slok/podexec/internal/model"
)

// ConfigYAMLRepository loads server configuration from YAML files.
type ConfigYAMLRepository struct {
	fs fs.FS
}

// NewConfigYAMLRepository creates a new YAML config repository.
func NewConfigYAMLRepository(filesystem fs.FS) *ConfigYAMLRepository {
	return &ConfigYAMLRepository{fs: filesystem}
}

// GetConfig loads a server configuration from a YAML file and returns a validated domain model.
func (r *ConfigYAMLRepository) GetConfig(ctx context.Context, path string) (model.ServerConfig, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return model.ServerConfig{}, fmt.Errorf("reading config file: %w", err)
	}

	if ctx.Err() != nil {
		return model.ServerConfig{}, ctx.Err()
	}

	var cfg ServerConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return model.ServerConfig{}, fmt.Errorf("parsing YAML: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return model.ServerConfig{}, fmt.Errorf("invalid configuration: %w: %w", model.ErrNotValid, err)
	}

	return cfg.toModel(), nil
}

// ServerConfig represents the YAML structure for server configuration.
type ServerConfig struct {
	ListenAddr  string        `yaml:"listen_addr"`
	PollTimeout string        `yaml:"poll_timeout"`
	Backend     BackendConfig `yaml:"backend"`
}

// BackendConfig represents the YAML structure for backend configuration.
type BackendConfig struct {
	Kubernetes *KubernetesBackendConfig `yaml:"kubernetes,omitempty"`
	Docker     *DockerBackendConfig     `yaml:"docker,omitempty"`
	Local      *LocalBackendConfig      `yaml:"local,omitempty"`
}

// KubernetesBackendConfig represents the YAML structure for Kubernetes backend configuration.
type KubernetesBackendConfig struct {
	Kubeconfig string `yaml:"kubeconfig"`
	Context    string `yaml:"context"`
	Container  string `yaml:"container"`
}

// DockerBackendConfig represents the YAML structure for Docker backend configuration.
type DockerBackendConfig struct {
	NamespaceLabel string `yaml:"namespace_label"`
}

// LocalBackendConfig represents the YAML structure for local backend configuration.
type LocalBackendConfig struct {
	Workers []WorkerConfig `yaml:"workers"`
}

// WorkerConfig represents the YAML structure of a local worker.
type WorkerConfig struct {
	Name      string            `yaml:"name"`
	Namespace string            `yaml:"namespace"`
	Labels    map[string]string `yaml:"labels"`
}

func (c ServerConfig) validate() error {
	if c.PollTimeout != "" {
		d, err := time.ParseDuration(c.PollTimeout)
		if err != nil {
			return fmt.Errorf("poll_timeout is not a valid duration: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("poll_timeout must be positive, got: %s", c.PollTimeout)
		}
	}

	// Ensure exactly one backend is specified
	backendCount := 0
	if c.Backend.Kubernetes != nil {
		backendCount++
	}
	if c.Backend.Docker != nil {
		backendCount++
	}
	if c.Backend.Local != nil {
		backendCount++
	}
	if backendCount == 0 {
		return fmt.Errorf("exactly one backend must be specified (kubernetes, docker or local)")
	}
	if backendCount > 1 {
		return fmt.Errorf("only one backend can be specified at a time")
	}

	if c.Backend.Local != nil {
		if len(c.Backend.Local.Workers) == 0 {
			return fmt.Errorf("local backend requires at least one worker")
		}
		for i, w := range c.Backend.Local.Workers {
			if w.Name == "" {
				return fmt.Errorf("local worker %d name is required", i)
			}
			if w.Namespace == "" {
				return fmt.Errorf("local worker %q namespace is required", w.Name)
			}
		}
	}

	return nil
}

func (c ServerConfig) toModel() model.ServerConfig {
	cfg := model.ServerConfig{
		ListenAddr: c.ListenAddr,
	}
	if c.PollTimeout != "" {
		// Already validated.
		cfg.PollTimeout, _ = time.ParseDuration(c.PollTimeout)
	}

	// Convert backend configuration
	if c.Backend.Kubernetes != nil {
		cfg.KubernetesBackend = &model.KubernetesBackendConfig{
			Kubeconfig: c.Backend.Kubernetes.Kubeconfig,
			Context:    c.Backend.Kubernetes.Context,
			Container:  c.Backend.Kubernetes.Container,
		}
	}
	if c.Backend.Docker != nil {
		cfg.DockerBackend = &model.DockerBackendConfig{
			NamespaceLabel: c.Backend.Docker.NamespaceLabel,
		}
	}
	if c.Backend.Local != nil {
		workers := make([]model.Worker, 0, len(c.Backend.Local.Workers))
		for _, w := range c.Backend.Local.Workers {
			workers = append(workers, model.Worker{
				Name:      w.Name,
				Namespace: w.Namespace,
				Labels:    w.Labels,
			})
		}
		cfg.LocalBackend = &model.LocalBackendConfig{Workers: workers}
	}

	return cfg
}
