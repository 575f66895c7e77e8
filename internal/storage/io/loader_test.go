package io

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/podexec/internal/model"
)

func TestConfigYAMLRepository_GetConfig(t *testing.T) {
	tests := map[string]struct {
		fs     fstest.MapFS
		path   string
		expCfg model.ServerConfig
		expErr bool
		errMsg string
	}{
		"Valid kubernetes config should load successfully": {
			fs: fstest.MapFS{
				"podexec.yaml": &fstest.MapFile{
					Data: []byte(`listen_addr: ":9000"
poll_timeout: 500ms
backend:
  kubernetes:
    kubeconfig: /home/user/.kube/config
    context: staging
    container: worker
`),
				},
			},
			path: "podexec.yaml",
			expCfg: model.ServerConfig{
				ListenAddr:  ":9000",
				PollTimeout: 500 * time.Millisecond,
				KubernetesBackend: &model.KubernetesBackendConfig{
					Kubeconfig: "/home/user/.kube/config",
					Context:    "staging",
					Container:  "worker",
				},
			},
		},
		"Valid docker config without optional fields should load successfully": {
			fs: fstest.MapFS{
				"podexec.yaml": &fstest.MapFile{
					Data: []byte(`backend:
  docker: {}
`),
				},
			},
			path: "podexec.yaml",
			expCfg: model.ServerConfig{
				DockerBackend: &model.DockerBackendConfig{},
			},
		},
		"Valid local config should load successfully": {
			fs: fstest.MapFS{
				"podexec.yaml": &fstest.MapFile{
					Data: []byte(`backend:
  local:
    workers:
      - name: worker-abc-0
        namespace: default
        labels:
          prefix: abc
`),
				},
			},
			path: "podexec.yaml",
			expCfg: model.ServerConfig{
				LocalBackend: &model.LocalBackendConfig{
					Workers: []model.Worker{
						{Name: "worker-abc-0", Namespace: "default", Labels: map[string]string{"prefix": "abc"}},
					},
				},
			},
		},
		"Missing backend should return error": {
			fs: fstest.MapFS{
				"podexec.yaml": &fstest.MapFile{
					Data: []byte(`listen_addr: ":9000"
`),
				},
			},
			path:   "podexec.yaml",
			expErr: true,
			errMsg: "exactly one backend must be specified",
		},
		"Multiple backends should return error": {
			fs: fstest.MapFS{
				"podexec.yaml": &fstest.MapFile{
					Data: []byte(`backend:
  docker: {}
  kubernetes: {}
`),
				},
			},
			path:   "podexec.yaml",
			expErr: true,
			errMsg: "only one backend can be specified",
		},
		"Invalid poll timeout should return error": {
			fs: fstest.MapFS{
				"podexec.yaml": &fstest.MapFile{
					Data: []byte(`poll_timeout: soon
backend:
  docker: {}
`),
				},
			},
			path:   "podexec.yaml",
			expErr: true,
			errMsg: "poll_timeout is not a valid duration",
		},
		"Local worker without namespace should return error": {
			fs: fstest.MapFS{
				"podexec.yaml": &fstest.MapFile{
					Data: []byte(`backend:
  local:
    workers:
      - name: worker-abc-0
`),
				},
			},
			path:   "podexec.yaml",
			expErr: true,
			errMsg: `local worker "worker-abc-0" namespace is required`,
		},
		"Local backend without workers should return error": {
			fs: fstest.MapFS{
				"podexec.yaml": &fstest.MapFile{
					Data: []byte(`backend:
  local: {}
`),
				},
			},
			path:   "podexec.yaml",
			expErr: true,
			errMsg: "local backend requires at least one worker",
		},
		"Missing file should return error": {
			fs:     fstest.MapFS{},
			path:   "nonexistent.yaml",
			expErr: true,
			errMsg: "reading config file",
		},
		"Invalid YAML should return error": {
			fs: fstest.MapFS{
				"invalid.yaml": &fstest.MapFile{
					Data: []byte(`invalid: yaml: content: {}`),
				},
			},
			path:   "invalid.yaml",
			expErr: true,
			errMsg: "parsing YAML",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			repo := NewConfigYAMLRepository(tc.fs)
			cfg, err := repo.GetConfig(context.Background(), tc.path)

			if tc.expErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errMsg)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expCfg, cfg)
		})
	}
}

func TestConfigYAMLRepository_GetConfig_InvalidIsNotValid(t *testing.T) {
	fs := fstest.MapFS{
		"podexec.yaml": &fstest.MapFile{Data: []byte("listen_addr: \":9000\"\n")},
	}

	repo := NewConfigYAMLRepository(fs)
	_, err := repo.GetConfig(context.Background(), "podexec.yaml")
	assert.ErrorIs(t, err, model.ErrNotValid)
}

func TestConfigYAMLRepository_GetConfig_ContextCancellation(t *testing.T) {
	fs := fstest.MapFS{
		"test.yaml": &fstest.MapFile{
			Data: []byte(`backend:
  docker: {}
`),
		},
	}

	repo := NewConfigYAMLRepository(fs)
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	_, err := repo.GetConfig(ctx, "test.yaml")
	require.Error(t, err)
	assert.Equal(t, context.Canceled, err)
}
