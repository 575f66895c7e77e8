package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/slok/podexec/internal/api"
	"github.com/slok/podexec/internal/log"
	"github.com/slok/podexec/internal/model"
	"github.com/slok/podexec/internal/sse"
)

// ErrStop can be returned by a message handler to stop reading the stream without
// an error.
var ErrStop = errors.New("stop")

// MessageHandler handles every message of a stream.
type MessageHandler func(msg api.ReceivedMessage) error

// ClientConfig is the configuration for the client.
type ClientConfig struct {
	// BaseURL is the server URL (e.g. http://localhost:8000).
	BaseURL    string
	HTTPClient *http.Client
	Logger     log.Logger
}

func (c *ClientConfig) defaults() error {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:8000"
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.HTTPClient == nil {
		// No timeout, streams last as long as the execution.
		c.HTTPClient = &http.Client{}
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "client.HTTP"})
	return nil
}

// Client consumes the server streaming endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     log.Logger
}

// NewClient creates a new client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
	}, nil
}

// Execute runs an execution on the server and calls fn for every message until the
// terminal one. Validation errors of the server are returned wrapping model.ErrNotValid.
func (c *Client) Execute(ctx context.Context, req api.ExecuteRequest, fn MessageHandler) error {
	return c.stream(ctx, "/execute", req, fn)
}

// Health runs a heartbeat on the server and calls fn for every tick.
func (c *Client) Health(ctx context.Context, req api.HealthRequest, fn MessageHandler) error {
	return c.stream(ctx, "/health", req, fn)
}

// ListExecutions lists the executions running on the server. Empty filters are ignored.
func (c *Client) ListExecutions(ctx context.Context, namespace, state string) ([]model.Execution, error) {
	q := url.Values{}
	if namespace != "" {
		q.Set("namespace", namespace)
	}
	if state != "" {
		q.Set("state", state)
	}
	path := "/executions"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp api.ListExecutionsResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}

	executions := make([]model.Execution, 0, len(resp.Executions))
	for _, e := range resp.Executions {
		executions = append(executions, e.Model())
	}
	return executions, nil
}

// GetExecution gets a running execution from the server. Missing executions are
// returned wrapping model.ErrNotFound.
func (c *Client) GetExecution(ctx context.Context, id string) (*model.Execution, error) {
	var info api.ExecutionInfo
	if err := c.get(ctx, "/executions/"+url.PathEscape(id), &info); err != nil {
		return nil, err
	}
	e := info.Model()
	return &e, nil
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debugf("GET %s%s", c.baseURL, path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not connect to server: %w: %w", model.ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("could not decode response: %w", err)
	}
	return nil
}

func (c *Client) stream(ctx context.Context, path string, body any, fn MessageHandler) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("could not marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", sse.ContentType)

	c.logger.Debugf("POST %s%s", c.baseURL, path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not connect to server: %w: %w", model.ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError(resp)
	}

	sr := sse.NewReader(resp.Body)
	for {
		data, err := sr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("stream interrupted: %w: %w", model.ErrConnection, err)
		}

		msg, err := api.DecodeMessage(data)
		if err != nil {
			return err
		}

		if err := fn(msg); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
	}
}

func responseError(resp *http.Response) error {
	var errResp api.ErrorResponse
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	detail := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Detail != "" {
		detail = errResp.Detail
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return fmt.Errorf("server rejected request: %s: %w", detail, model.ErrNotValid)
	case http.StatusNotFound:
		return fmt.Errorf("server responded not found: %s: %w", detail, model.ErrNotFound)
	}
	return fmt.Errorf("server responded %d: %s", resp.StatusCode, detail)
}
