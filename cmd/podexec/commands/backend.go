package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/apimachinery/pkg/labels"

	"github.com/slok/podexec/internal/model"
	storageio "github.com/slok/podexec/internal/storage/io"
)

// backendFlags are the flags shared by the commands that talk to workers directly.
type backendFlags struct {
	configPath           string
	backend              string
	kubeconfig           string
	kubeContext          string
	container            string
	dockerNamespaceLabel string
	localWorkers         []string
	pollTimeout          time.Duration
}

func registerBackendFlags(cmd *kingpin.CmdClause) *backendFlags {
	f := &backendFlags{}

	cmd.Flag("config", "Server configuration YAML file, backend flags are ignored when set.").Short('c').StringVar(&f.configPath)
	cmd.Flag("backend", "Backend where the workers run.").Default(string(model.BackendKubernetes)).EnumVar(&f.backend, string(model.BackendKubernetes), string(model.BackendDocker), string(model.BackendLocal))
	cmd.Flag("kubeconfig", "Kubernetes configuration path (kubernetes backend).").Envar("KUBECONFIG").StringVar(&f.kubeconfig)
	cmd.Flag("kube-context", "Kubernetes configuration context (kubernetes backend).").StringVar(&f.kubeContext)
	cmd.Flag("container", "Container of the pods to exec into, defaults to the pod default container (kubernetes backend).").StringVar(&f.container)
	cmd.Flag("docker-namespace-label", "Container label used as namespace (docker backend).").StringVar(&f.dockerNamespaceLabel)
	cmd.Flag("local-worker", "Local worker in NAMESPACE/NAME[:KEY=VALUE,...] format, can be repeated (local backend).").StringsVar(&f.localWorkers)
	cmd.Flag("poll-timeout", "Max wait of every output poll.").Default("1s").DurationVar(&f.pollTimeout)

	return f
}

// serverConfig returns the configuration from the config file or from the flags.
func (f backendFlags) serverConfig(ctx context.Context) (model.ServerConfig, error) {
	if f.configPath != "" {
		path, err := filepath.Abs(f.configPath)
		if err != nil {
			return model.ServerConfig{}, fmt.Errorf("invalid config path: %w", err)
		}
		repo := storageio.NewConfigYAMLRepository(os.DirFS(filepath.Dir(path)))
		cfg, err := repo.GetConfig(ctx, filepath.Base(path))
		if err != nil {
			return model.ServerConfig{}, fmt.Errorf("could not load config: %w", err)
		}
		if cfg.PollTimeout == 0 {
			cfg.PollTimeout = f.pollTimeout
		}
		return cfg, nil
	}

	cfg := model.ServerConfig{PollTimeout: f.pollTimeout}
	switch model.BackendType(f.backend) {
	case model.BackendKubernetes:
		cfg.KubernetesBackend = &model.KubernetesBackendConfig{
			Kubeconfig: f.kubeconfig,
			Context:    f.kubeContext,
			Container:  f.container,
		}
	case model.BackendDocker:
		cfg.DockerBackend = &model.DockerBackendConfig{NamespaceLabel: f.dockerNamespaceLabel}
	case model.BackendLocal:
		workers, err := parseWorkerSpecs(f.localWorkers)
		if err != nil {
			return model.ServerConfig{}, fmt.Errorf("invalid --local-worker value: %w", err)
		}
		cfg.LocalBackend = &model.LocalBackendConfig{Workers: workers}
	default:
		return model.ServerConfig{}, fmt.Errorf("unknown backend %q: %w", f.backend, model.ErrNotValid)
	}

	return cfg, nil
}

// parseWorkerSpecs parses NAMESPACE/NAME[:KEY=VALUE,...] worker specs. Without specs a
// single `default/local` worker labeled `app=local` is returned.
func parseWorkerSpecs(specs []string) ([]model.Worker, error) {
	if len(specs) == 0 {
		return []model.Worker{{Name: "local", Namespace: "default", Labels: map[string]string{"app": "local"}}}, nil
	}

	workers := make([]model.Worker, 0, len(specs))
	for _, spec := range specs {
		id, rawLabels, _ := strings.Cut(spec, ":")
		namespace, name, ok := strings.Cut(id, "/")
		if !ok || namespace == "" || name == "" {
			return nil, fmt.Errorf("worker %q must be in NAMESPACE/NAME format: %w", spec, model.ErrNotValid)
		}

		lbls := map[string]string{}
		if rawLabels != "" {
			set, err := labels.ConvertSelectorToLabelsMap(rawLabels)
			if err != nil {
				return nil, fmt.Errorf("worker %q labels are not valid: %w: %w", spec, model.ErrNotValid, err)
			}
			lbls = set
		}

		workers = append(workers, model.Worker{Name: name, Namespace: namespace, Labels: lbls})
	}

	return workers, nil
}
