package local_test

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/podexec/internal/model"
	"github.com/slok/podexec/internal/remote"
	"github.com/slok/podexec/internal/remote/local"
)

var testWorkers = []model.Worker{
	{Name: "w1", Namespace: "default", Labels: map[string]string{"prefix": "abc"}},
	{Name: "w2", Namespace: "batch", Labels: map[string]string{"prefix": "abc"}},
}

func TestNewConnector(t *testing.T) {
	tests := map[string]struct {
		cfg    local.ConnectorConfig
		expErr bool
	}{
		"An empty configuration should be valid.": {},

		"A worker without name should fail.": {
			cfg:    local.ConnectorConfig{Workers: []model.Worker{{Namespace: "default"}}},
			expErr: true,
		},

		"A worker without namespace should fail.": {
			cfg:    local.ConnectorConfig{Workers: []model.Worker{{Name: "w1"}}},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := local.NewConnector(test.cfg)
			if test.expErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConnectorResolve(t *testing.T) {
	tests := map[string]struct {
		selector  string
		namespace string
		expWorker string
		expErr    error
	}{
		"A matching worker should be resolved.": {
			selector:  "prefix=abc",
			namespace: "batch",
			expWorker: "w2",
		},

		"A missing worker should fail with worker not found.": {
			selector:  "prefix=abc",
			namespace: "other",
			expErr:    model.ErrWorkerNotFound,
		},

		"An invalid selector should fail.": {
			selector:  "prefix in (abc",
			namespace: "default",
			expErr:    model.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			c, err := local.NewConnector(local.ConnectorConfig{Workers: testWorkers})
			require.NoError(t, err)

			w, err := c.Resolve(context.Background(), test.selector, test.namespace)
			if test.expErr != nil {
				assert.ErrorIs(t, err, test.expErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expWorker, w.Name)
		})
	}
}

func drain(t *testing.T, ch remote.Channel) (stdout, stderr string) {
	t.Helper()

	deadline := time.Now().Add(10 * time.Second)
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

func TestConnectorOpen(t *testing.T) {
	if _, err := exec.LookPath("/bin/sh"); err != nil {
		t.Skip("/bin/sh not available")
	}

	tests := map[string]struct {
		command   []string
		expStdout string
		expStderr string
		expErr    bool
	}{
		"A command output should be streamed.": {
			command:   []string{"/bin/sh", "-c", "echo out; echo err >&2"},
			expStdout: "out\n",
			expStderr: "err\n",
		},

		"A non zero exit should not be a transport error.": {
			command: []string{"/bin/sh", "-c", "exit 4"},
		},

		"The worker identity should be available to the command.": {
			command:   []string{"/bin/sh", "-c", `echo "$PODEXEC_NAMESPACE/$PODEXEC_WORKER"`},
			expStdout: "default/w1\n",
		},

		"A missing binary should be a transport error.": {
			command: []string{"/does/not/exist"},
			expErr:  true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			c, err := local.NewConnector(local.ConnectorConfig{Workers: testWorkers})
			require.NoError(t, err)

			ch, err := c.Open(context.Background(), testWorkers[0], test.command)
			require.NoError(t, err)
			defer ch.Close()

			gotStdout, gotStderr := drain(t, ch)
			assert.Equal(test.expStdout, gotStdout)
			assert.Equal(test.expStderr, gotStderr)
			if test.expErr {
				assert.ErrorIs(ch.Err(), model.ErrConnection)
			} else {
				assert.NoError(ch.Err())
			}
		})
	}
}

func TestConnectorOpenClose(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}

	c, err := local.NewConnector(local.ConnectorConfig{Workers: testWorkers})
	require.NoError(t, err)

	ch, err := c.Open(context.Background(), testWorkers[0], []string{"sleep", "30"})
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, ch.Close())
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.False(t, ch.IsOpen())
}

func TestConnectorOpenEmptyCommand(t *testing.T) {
	c, err := local.NewConnector(local.ConnectorConfig{Workers: testWorkers})
	require.NoError(t, err)

	_, err = c.Open(context.Background(), testWorkers[0], nil)
	assert.ErrorIs(t, err, model.ErrNotValid)
}
