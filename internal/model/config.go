package model

import "time"

// BackendType is the kind of cluster the workers run on.
type BackendType string

const (
	BackendKubernetes BackendType = "kubernetes"
	BackendDocker     BackendType = "docker"
	BackendLocal      BackendType = "local"
)

// ServerConfig is the configuration of the execution server.
type ServerConfig struct {
	// ListenAddr is the HTTP listen address, empty means default.
	ListenAddr string
	// PollTimeout is the max wait of every channel poll, zero means default.
	PollTimeout time.Duration

	// Only one backend is set.
	KubernetesBackend *KubernetesBackendConfig
	DockerBackend     *DockerBackendConfig
	LocalBackend      *LocalBackendConfig
}

// Backend returns the type of the configured backend.
func (c ServerConfig) Backend() BackendType {
	switch {
	case c.KubernetesBackend != nil:
		return BackendKubernetes
	case c.DockerBackend != nil:
		return BackendDocker
	case c.LocalBackend != nil:
		return BackendLocal
	}
	return ""
}

// KubernetesBackendConfig is the Kubernetes backend configuration.
type KubernetesBackendConfig struct {
	// Kubeconfig path, empty uses the default loading rules.
	Kubeconfig string
	// Context of the kubeconfig, empty uses the current one.
	Context string
	// Container to exec into, empty uses the pod default container.
	Container string
}

// DockerBackendConfig is the Docker backend configuration.
type DockerBackendConfig struct {
	// NamespaceLabel is the container label used as namespace.
	NamespaceLabel string
}

// LocalBackendConfig is the local processes backend configuration.
type LocalBackendConfig struct {
	Workers []Worker
}
