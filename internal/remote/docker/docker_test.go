package docker_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/podexec/internal/model"
	"github.com/slok/podexec/internal/remote"
	"github.com/slok/podexec/internal/remote/docker"
)

// fakeClient is a DockerClient serving a fixed container list and exec output.
type fakeClient struct {
	containers []container.Summary
	listErr    error
	gotFilters []string

	createErr error
	gotCmd    []string
	gotTarget string

	// serve writes the daemon side of the attached exec stream.
	serve   func(conn net.Conn)
	pingErr error
}

func (f *fakeClient) ContainerList(_ context.Context, options container.ListOptions) ([]container.Summary, error) {
	f.gotFilters = options.Filters.Get("label")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.containers, nil
}

func (f *fakeClient) ContainerExecCreate(_ context.Context, ctr string, options container.ExecOptions) (container.ExecCreateResponse, error) {
	f.gotTarget = ctr
	f.gotCmd = options.Cmd
	if f.createErr != nil {
		return container.ExecCreateResponse{}, f.createErr
	}
	return container.ExecCreateResponse{ID: "exec-1"}, nil
}

func (f *fakeClient) ContainerExecAttach(_ context.Context, _ string, _ container.ExecAttachOptions) (types.HijackedResponse, error) {
	client, server := net.Pipe()
	go f.serve(server)
	return types.NewHijackedResponse(client, "application/vnd.docker.multiplexed-stream"), nil
}

func (f *fakeClient) ContainerExecInspect(context.Context, string) (container.ExecInspect, error) {
	return container.ExecInspect{ExecID: "exec-1", ExitCode: 0}, nil
}

func (f *fakeClient) Ping(context.Context) (types.Ping, error) {
	if f.pingErr != nil {
		return types.Ping{}, f.pingErr
	}
	return types.Ping{APIVersion: "1.51"}, nil
}

func TestConnectorResolve(t *testing.T) {
	tests := map[string]struct {
		client     *fakeClient
		selector   string
		namespace  string
		expWorker  model.Worker
		expFilters []string
		expErr     error
	}{
		"A running container matching the selector should be resolved.": {
			client: &fakeClient{containers: []container.Summary{
				{ID: "c1", Names: []string{"/proj-web-1"}, Labels: map[string]string{"prefix": "web"}},
				{ID: "c2", Names: []string{"/proj-abc-1"}, Labels: map[string]string{"prefix": "abc"}},
			}},
			selector:   "prefix=abc",
			namespace:  "proj",
			expWorker:  model.Worker{Name: "proj-abc-1", Namespace: "proj", Labels: map[string]string{"prefix": "abc"}},
			expFilters: []string{"com.docker.compose.project=proj"},
		},

		"A container without names should use its ID.": {
			client: &fakeClient{containers: []container.Summary{
				{ID: "c1", Labels: map[string]string{"prefix": "abc"}},
			}},
			selector:   "prefix in (abc)",
			namespace:  "proj",
			expWorker:  model.Worker{Name: "c1", Namespace: "proj", Labels: map[string]string{"prefix": "abc"}},
			expFilters: []string{"com.docker.compose.project=proj"},
		},

		"No matching container should fail with worker not found.": {
			client: &fakeClient{containers: []container.Summary{
				{ID: "c1", Names: []string{"/proj-web-1"}, Labels: map[string]string{"prefix": "web"}},
			}},
			selector:  "prefix=abc",
			namespace: "proj",
			expErr:    model.ErrWorkerNotFound,
		},

		"A daemon error should be a connection error.": {
			client:    &fakeClient{listErr: errors.New("cannot connect to the Docker daemon")},
			selector:  "prefix=abc",
			namespace: "proj",
			expErr:    model.ErrConnection,
		},

		"An invalid selector should fail.": {
			client:    &fakeClient{},
			selector:  "prefix in (abc",
			namespace: "proj",
			expErr:    model.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			c, err := docker.NewConnector(docker.ConnectorConfig{Client: test.client})
			require.NoError(err)

			w, err := c.Resolve(context.Background(), test.selector, test.namespace)
			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
				return
			}
			require.NoError(err)
			assert.Equal(test.expWorker, *w)
			assert.Equal(test.expFilters, test.client.gotFilters)
		})
	}
}

func TestConnectorOpen(t *testing.T) {
	tests := map[string]struct {
		serve     func(conn net.Conn)
		expStdout string
		expStderr string
		expErr    error
	}{
		"The demultiplexed exec output should be streamed.": {
			serve: func(conn net.Conn) {
				defer conn.Close()
				_, _ = stdcopy.NewStdWriter(conn, stdcopy.Stdout).Write([]byte("hello\n"))
				_, _ = stdcopy.NewStdWriter(conn, stdcopy.Stderr).Write([]byte("\nEXIT_CODE:0\n"))
			},
			expStdout: "hello\n",
			expStderr: "\nEXIT_CODE:0\n",
		},

		"A corrupted stream should be a connection error.": {
			serve: func(conn net.Conn) {
				defer conn.Close()
				_, _ = conn.Write([]byte{9, 0, 0, 0, 0, 0, 0, 1, 'x'})
			},
			expErr: model.ErrConnection,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			client := &fakeClient{serve: test.serve}
			c, err := docker.NewConnector(docker.ConnectorConfig{Client: client})
			require.NoError(err)

			worker := model.Worker{Name: "proj-abc-1", Namespace: "proj"}
			ch, err := c.Open(context.Background(), worker, []string{"/bin/sh", "-c", "echo hello"})
			require.NoError(err)
			defer ch.Close()

			gotStdout, gotStderr := drain(t, ch)
			assert.Equal(test.expStdout, gotStdout)
			assert.Equal(test.expStderr, gotStderr)
			if test.expErr != nil {
				assert.ErrorIs(ch.Err(), test.expErr)
			} else {
				assert.NoError(ch.Err())
			}
			assert.Equal("proj-abc-1", client.gotTarget)
			assert.Equal([]string{"/bin/sh", "-c", "echo hello"}, client.gotCmd)
		})
	}
}

func TestConnectorOpenCreateError(t *testing.T) {
	c, err := docker.NewConnector(docker.ConnectorConfig{Client: &fakeClient{createErr: errors.New("No such container")}})
	require.NoError(t, err)

	_, err = c.Open(context.Background(), model.Worker{Name: "gone", Namespace: "proj"}, []string{"true"})
	assert.ErrorIs(t, err, model.ErrConnection)
}

func TestConnectorOpenClose(t *testing.T) {
	// The daemon never ends the stream.
	block := make(chan struct{})
	defer close(block)
	client := &fakeClient{serve: func(conn net.Conn) {
		<-block
		conn.Close()
	}}

	c, err := docker.NewConnector(docker.ConnectorConfig{Client: client})
	require.NoError(t, err)

	ch, err := c.Open(context.Background(), model.Worker{Name: "proj-abc-1", Namespace: "proj"}, []string{"sleep", "30"})
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, ch.Close())
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.False(t, ch.IsOpen())
}

func TestConnectorCheck(t *testing.T) {
	tests := map[string]struct {
		pingErr   error
		expStatus model.CheckStatus
	}{
		"A reachable daemon should be OK.": {
			expStatus: model.CheckStatusOK,
		},

		"An unreachable daemon should be an error.": {
			pingErr:   errors.New("connection refused"),
			expStatus: model.CheckStatusError,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			c, err := docker.NewConnector(docker.ConnectorConfig{Client: &fakeClient{pingErr: test.pingErr}})
			require.NoError(t, err)

			results := c.Check(context.Background())
			require.Len(t, results, 1)
			assert.Equal(t, test.expStatus, results[0].Status)
		})
	}
}

func drain(t *testing.T, ch remote.Channel) (stdout, stderr string) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for ch.IsOpen() {
		require.True(t, time.Now().Before(deadline))
		require.NoError(t, ch.Poll(context.Background(), 100*time.Millisecond))
		for ch.HasStdout() {
			b, _ := ch.ReadStdout()
			stdout += string(b)
		}
		for ch.HasStderr() {
			b, _ := ch.ReadStderr()
			stderr += string(b)
		}
	}
	return stdout, stderr
}
