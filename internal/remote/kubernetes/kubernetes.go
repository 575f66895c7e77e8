package kubernetes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/util/httpstream"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/tools/remotecommand"
	utilexec "k8s.io/client-go/util/exec"

	"github.com/slok/podexec/internal/log"
	"github.com/slok/podexec/internal/model"
	"github.com/slok/podexec/internal/remote"
)

// defaultContainerAnnotation is the annotation kubectl uses to select the container of a pod.
const defaultContainerAnnotation = "kubectl.kubernetes.io/default-container"

// ExecutorFactory returns the executor that streams the exec request on url.
type ExecutorFactory func(cfg *rest.Config, url *url.URL) (remotecommand.Executor, error)

// ConnectorConfig is the configuration for the Kubernetes connector.
type ConnectorConfig struct {
	Client     kubernetes.Interface
	RESTConfig *rest.Config
	// RESTClient builds the exec requests. Defaults to the core/v1 client of Client.
	RESTClient rest.Interface
	// Container forces the container used in the pods. When empty the pod default is used.
	Container   string
	NewExecutor ExecutorFactory
	Logger      log.Logger
}

func (c *ConnectorConfig) defaults() error {
	if c.Client == nil {
		return fmt.Errorf("kubernetes client is required")
	}
	if c.RESTClient == nil {
		c.RESTClient = c.Client.CoreV1().RESTClient()
	}
	if c.NewExecutor == nil {
		if c.RESTConfig == nil {
			return fmt.Errorf("rest config is required")
		}
		c.NewExecutor = NewFallbackExecutor
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "remote.Kubernetes"})
	return nil
}

// Connector runs commands on pods using the exec subresource.
type Connector struct {
	client      kubernetes.Interface
	restConfig  *rest.Config
	restClient  rest.Interface
	container   string
	newExecutor ExecutorFactory
	logger      log.Logger
}

// NewConnector creates a new Kubernetes connector.
func NewConnector(cfg ConnectorConfig) (*Connector, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Connector{
		client:      cfg.Client,
		restConfig:  cfg.RESTConfig,
		restClient:  cfg.RESTClient,
		container:   cfg.Container,
		newExecutor: cfg.NewExecutor,
		logger:      cfg.Logger,
	}, nil
}

// NewClient loads the Kubernetes client configuration. An empty kubeconfig uses the
// default loading rules (KUBECONFIG, ~/.kube/config), falling back to the in-cluster
// configuration.
func NewClient(kubeconfig, kubeContext string) (kubernetes.Interface, *rest.Config, error) {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	rules.ExplicitPath = kubeconfig

	restConfig, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, &clientcmd.ConfigOverrides{
		CurrentContext: kubeContext,
	}).ClientConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("could not load kubernetes configuration: %w", err)
	}

	client, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("could not create kubernetes client: %w", err)
	}

	return client, restConfig, nil
}

// NewFallbackExecutor returns a WebSocket executor that falls back to SPDY when the
// API server does not support it.
func NewFallbackExecutor(cfg *rest.Config, u *url.URL) (remotecommand.Executor, error) {
	spdyExec, err := remotecommand.NewSPDYExecutor(cfg, "POST", u)
	if err != nil {
		return nil, fmt.Errorf("could not create SPDY executor: %w", err)
	}

	wsExec, err := remotecommand.NewWebSocketExecutor(cfg, "GET", u.String())
	if err != nil {
		return nil, fmt.Errorf("could not create WebSocket executor: %w", err)
	}

	return remotecommand.NewFallbackExecutor(wsExec, spdyExec, func(err error) bool {
		return httpstream.IsUpgradeFailure(err) || httpstream.IsHTTPSProxyError(err)
	})
}

func (c *Connector) Resolve(ctx context.Context, selector, namespace string) (*model.Worker, error) {
	if _, err := labels.Parse(selector); err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, model.ErrNotValid)
	}

	pods, err := c.client.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{LabelSelector: selector})
	if err != nil {
		return nil, fmt.Errorf("could not list pods: %w: %w", model.ErrConnection, err)
	}
	if len(pods.Items) == 0 {
		return nil, fmt.Errorf("no pods found for %q in namespace %q: %w", selector, namespace, model.ErrWorkerNotFound)
	}

	pod := pickPod(pods.Items)
	worker := &model.Worker{
		Name:      pod.Name,
		Namespace: pod.Namespace,
		Container: c.containerFor(pod),
		Labels:    pod.Labels,
	}
	c.logger.Debugf("Resolved %q in %q to pod %s (%d candidates)", selector, namespace, worker, len(pods.Items))

	return worker, nil
}

func (c *Connector) Open(ctx context.Context, worker model.Worker, command []string) (remote.Channel, error) {
	if len(command) == 0 {
		return nil, fmt.Errorf("command cannot be empty: %w", model.ErrNotValid)
	}

	req := c.restClient.Post().
		Resource("pods").
		Name(worker.Name).
		Namespace(worker.Namespace).
		SubResource("exec").
		VersionedParams(&corev1.PodExecOptions{
			Container: worker.Container,
			Command:   command,
			Stdout:    true,
			Stderr:    true,
		}, scheme.ParameterCodec)

	executor, err := c.newExecutor(c.restConfig, req.URL())
	if err != nil {
		return nil, fmt.Errorf("could not create executor: %w: %w", model.ErrConnection, err)
	}

	stream := func(ctx context.Context, stdout, stderr io.Writer) error {
		err := executor.StreamWithContext(ctx, remotecommand.StreamOptions{
			Stdout: stdout,
			Stderr: stderr,
		})
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		// The exit status travels on stderr, a non-zero exit is not a transport failure.
		var exitErr utilexec.ExitError
		if errors.As(err, &exitErr) && exitErr.Exited() {
			c.logger.Debugf("Command on pod %s exited with code %d", worker, exitErr.ExitStatus())
			return nil
		}

		return fmt.Errorf("exec stream on pod %s failed: %w: %w", worker, model.ErrConnection, err)
	}

	ch, err := remote.NewStreamChannel(ctx, remote.StreamChannelConfig{
		Stream: stream,
		Logger: c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create channel: %w", err)
	}

	return ch, nil
}

func (c *Connector) Check(ctx context.Context) []model.CheckResult {
	version, err := c.client.Discovery().ServerVersion()
	if err != nil {
		return []model.CheckResult{{ID: "kubernetes_api", Message: fmt.Sprintf("API server not reachable: %s", err), Status: model.CheckStatusError}}
	}

	return []model.CheckResult{{ID: "kubernetes_api", Message: fmt.Sprintf("API server reachable (%s)", version.GitVersion), Status: model.CheckStatusOK}}
}

// pickPod prefers the first running pod not being deleted, falling back to the first one.
func pickPod(pods []corev1.Pod) corev1.Pod {
	for _, p := range pods {
		if p.Status.Phase == corev1.PodRunning && p.DeletionTimestamp == nil {
			return p
		}
	}
	return pods[0]
}

func (c *Connector) containerFor(pod corev1.Pod) string {
	if c.container != "" {
		return c.container
	}
	if name := pod.Annotations[defaultContainerAnnotation]; name != "" {
		return name
	}
	if len(pod.Spec.Containers) > 0 {
		return pod.Spec.Containers[0].Name
	}
	return ""
}
