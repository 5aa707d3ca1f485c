// Package generator produces portfolio responses from a profile.
//
// A Generator returns the raw, loosely structured response of its backend
// (a Dify workflow or a chat model). Recovering the HTML from that response
// is left to the normalizer and extractor packages.
package generator

import (
	"context"
	"time"

	"github.com/jmylchreest/folio/pkg/profile"
	"github.com/jmylchreest/folio/pkg/workflow"
)

// AnswerKey is the mapping key chat generators store the model reply under.
const AnswerKey = "answer"

// Request is a single generation.
type Request struct {
	Profile profile.Profile

	// User identifies the end user to backends that track one.
	User string

	MaxTokens   int
	Temperature float64
}

// Usage tracks token consumption for chat backends.
type Usage struct {
	InputTokens  int `json:"input_tokens" yaml:"input_tokens"`
	OutputTokens int `json:"output_tokens" yaml:"output_tokens"`
}

// Output is what a backend returned.
type Output struct {
	Response workflow.Response

	// StatusCode is the HTTP status for backends that expose it, zero otherwise.
	StatusCode int
	Endpoint   string
	Model      string
	Usage      Usage
	Duration   time.Duration
}

// OK reports whether the backend answered successfully.
func (o *Output) OK() bool {
	return o.StatusCode == 0 || (o.StatusCode >= 200 && o.StatusCode < 300)
}

// Generator is implemented by every backend.
type Generator interface {
	// Generate runs the backend for the profile in req.
	Generate(ctx context.Context, req Request) (*Output, error)

	// Name returns the backend identifier (e.g., "dify", "openai").
	Name() string

	// Model returns the configured model or workflow.
	Model() string
}

// Config holds common configuration for generators.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxRetries int
	Timeout    time.Duration

	// WorkflowID selects the Dify workflow.
	WorkflowID string

	// Stream requests incremental output where the backend supports it.
	Stream bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxRetries: 3,
		Timeout:    120 * time.Second,
	}
}

const defaultMaxTokens = 8192

func maxTokens(req Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return defaultMaxTokens
}
