// Package folio provides the public API for generating portfolio pages.
package folio

import (
	"time"

	"github.com/jmylchreest/folio/pkg/generator"
)

// Config holds all folio configuration.
type Config struct {
	// Generator settings
	Generator  string
	Model      string
	APIKey     string
	BaseURL    string
	WorkflowID string
	Stream     bool
	Timeout    time.Duration
	MaxRetries int

	// Prompt settings for chat generators
	Temperature float64
	MaxTokens   int

	// User is forwarded to backends that track end users.
	User string

	// RateLimit caps generations per second in GenerateMany (0 = unlimited).
	RateLimit float64

	// TrimTrailing drops text after the closing </html> tag.
	TrimTrailing bool

	// Injected collaborators
	Instance generator.Generator
	Fallback []generator.Generator
	Observer generator.Observer
	OnResult func(*Result)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Generator:   "dify",
		Timeout:     120 * time.Second,
		MaxRetries:  3,
		Temperature: 0.7,
	}
}

// Option configures folio.
type Option func(*Config)

// WithGenerator sets the backend by registered name.
func WithGenerator(name string) Option {
	return func(c *Config) {
		c.Generator = name
	}
}

// WithModel sets the chat model.
func WithModel(model string) Option {
	return func(c *Config) {
		c.Model = model
	}
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithBaseURL sets a custom API base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithWorkflowID sets the Dify workflow.
func WithWorkflowID(id string) Option {
	return func(c *Config) {
		c.WorkflowID = id
	}
}

// WithStreaming requests streamed output.
func WithStreaming(enabled bool) Option {
	return func(c *Config) {
		c.Stream = enabled
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithMaxRetries sets the SDK retry count for chat generators.
func WithMaxRetries(n int) Option {
	return func(c *Config) {
		c.MaxRetries = n
	}
}

// WithTemperature sets the chat model temperature.
func WithTemperature(t float64) Option {
	return func(c *Config) {
		c.Temperature = t
	}
}

// WithMaxTokens caps the chat model reply.
func WithMaxTokens(n int) Option {
	return func(c *Config) {
		c.MaxTokens = n
	}
}

// WithUser sets the end user identifier.
func WithUser(user string) Option {
	return func(c *Config) {
		c.User = user
	}
}

// WithRateLimit caps generations per second in GenerateMany.
func WithRateLimit(rps float64) Option {
	return func(c *Config) {
		c.RateLimit = rps
	}
}

// WithTrimTrailing drops text after the closing </html> tag.
func WithTrimTrailing(enabled bool) Option {
	return func(c *Config) {
		c.TrimTrailing = enabled
	}
}

// WithGeneratorInstance uses g instead of building one from the registry.
func WithGeneratorInstance(g generator.Generator) Option {
	return func(c *Config) {
		c.Instance = g
	}
}

// WithFallback appends generators tried when the primary one fails.
func WithFallback(gens ...generator.Generator) Option {
	return func(c *Config) {
		c.Fallback = append(c.Fallback, gens...)
	}
}

// WithObserver reports every generation to obs.
func WithObserver(obs generator.Observer) Option {
	return func(c *Config) {
		c.Observer = obs
	}
}

// WithResultHook calls fn with every finished result.
func WithResultHook(fn func(*Result)) Option {
	return func(c *Config) {
		c.OnResult = fn
	}
}
