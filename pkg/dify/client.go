// Package dify is an HTTP client for running Dify workflows.
//
// Two endpoint layouts exist across Dify releases. When a workflow ID is
// configured the client calls /v1/workflows/{id}/run first and falls back to
// /v1/workflows/run (with the ID in the body) if the server answers 404.
package dify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jmylchreest/folio/internal/logger"
	"github.com/jmylchreest/folio/pkg/workflow"
)

const (
	// DefaultBaseURL is the hosted Dify API.
	DefaultBaseURL = "https://api.dify.ai"

	// DefaultTimeout matches the time a workflow typically needs to render
	// a full page.
	DefaultTimeout = 120 * time.Second

	// DefaultUser is sent when the caller does not identify the end user.
	DefaultUser = "anonymous"

	// WorkflowIDInput lets callers pass the workflow ID through the inputs.
	WorkflowIDInput = "sys.workflow_id"
)

// ErrMissingAPIKey is returned when no API key is configured.
var ErrMissingAPIKey = errors.New("dify API key required")

// ResponseMode selects blocking or streaming execution.
type ResponseMode string

const (
	ModeBlocking  ResponseMode = "blocking"
	ModeStreaming ResponseMode = "streaming"
)

// Config configures a Client.
type Config struct {
	APIKey     string
	BaseURL    string
	WorkflowID string
	Timeout    time.Duration

	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client runs workflows against a Dify server.
type Client struct {
	apiKey     string
	baseURL    string
	workflowID string
	client     *http.Client
}

// New creates a Client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		workflowID: cfg.WorkflowID,
		client:     client,
	}, nil
}

// Request is a single workflow invocation.
type Request struct {
	Inputs map[string]any
	User   string
	Mode   ResponseMode
}

// Run is the outcome of a workflow invocation that reached the server.
// Non-2xx statuses are reported here rather than as errors so the caller
// can still inspect the payload.
type Run struct {
	StatusCode int
	Endpoint   string
	Mode       ResponseMode
	Response   workflow.Response
	Duration   time.Duration
}

// OK reports whether the server answered with a 2xx status.
func (r *Run) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

type runPayload struct {
	WorkflowID   string         `json:"workflow_id,omitempty"`
	Inputs       map[string]any `json:"inputs"`
	ResponseMode ResponseMode   `json:"response_mode"`
	User         string         `json:"user"`
}

// Run executes the workflow.
func (c *Client) Run(ctx context.Context, req Request) (*Run, error) {
	start := time.Now()

	payload := runPayload{
		Inputs:       req.Inputs,
		ResponseMode: req.Mode,
		User:         req.User,
	}
	if payload.Inputs == nil {
		payload.Inputs = map[string]any{}
	}
	if payload.ResponseMode == "" {
		payload.ResponseMode = ModeBlocking
	}
	if payload.User == "" {
		payload.User = DefaultUser
	}

	if c.workflowID != "" {
		endpoint := c.baseURL + "/v1/workflows/" + url.PathEscape(c.workflowID) + "/run"
		run, err := c.post(ctx, endpoint, payload)
		if err != nil {
			return nil, err
		}
		if run.StatusCode != http.StatusNotFound {
			run.Duration = time.Since(start)
			return run, nil
		}
		logger.Debug("workflow endpoint not found, falling back", "endpoint", endpoint)
	}

	payload.WorkflowID = c.workflowID
	if payload.WorkflowID == "" {
		payload.WorkflowID, _ = req.Inputs[WorkflowIDInput].(string)
	}

	run, err := c.post(ctx, c.baseURL+"/v1/workflows/run", payload)
	if err != nil {
		return nil, err
	}
	run.Duration = time.Since(start)
	return run, nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload runPayload) (*Run, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	if payload.ResponseMode == ModeStreaming {
		httpReq.Header.Set("Accept", workflow.EventStreamContentType)
	}

	logger.Debug("dify request", "endpoint", endpoint, "mode", payload.ResponseMode, "inputs", len(payload.Inputs))

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("dify request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	run := &Run{
		StatusCode: resp.StatusCode,
		Endpoint:   endpoint,
		Mode:       payload.ResponseMode,
	}

	if isEventStream(resp.Header.Get("Content-Type")) {
		fragments, err := workflow.ParseResponse(resp)
		if err != nil {
			return nil, err
		}
		run.Mode = ModeStreaming
		run.Response = fragments
		logger.Debug("dify stream received", "status", resp.StatusCode, "fragments", len(fragments))
		return run, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	run.Mode = ModeBlocking
	run.Response = workflow.Decode(data)
	logger.Debug("dify response received", "status", resp.StatusCode, "bytes", len(data))
	return run, nil
}

func isEventStream(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == workflow.EventStreamContentType
}
