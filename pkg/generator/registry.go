package generator

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownGenerator is returned by New for unregistered names.
var ErrUnknownGenerator = errors.New("unknown generator")

// Factory creates generators from config.
type Factory func(cfg Config) (Generator, error)

// DefaultModels maps generator names to their default models.
var DefaultModels = map[string]string{
	"anthropic": "claude-sonnet-4-20250514",
	"openai":    "gpt-4o",
	"ollama":    "llama3.2",
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func init() {
	Register("dify", func(cfg Config) (Generator, error) {
		return NewDify(cfg)
	})
	Register("openai", func(cfg Config) (Generator, error) {
		return NewOpenAI(cfg)
	})
	Register("anthropic", func(cfg Config) (Generator, error) {
		return NewAnthropic(cfg)
	})
	Register("ollama", func(cfg Config) (Generator, error) {
		return NewOllama(cfg)
	})
}

// New creates a generator by name.
func New(name string, cfg Config) (Generator, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %s)", ErrUnknownGenerator, name, strings.Join(Available(), ", "))
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel(name)
	}
	return factory(cfg)
}

// Register adds a generator factory, replacing any with the same name.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Available returns the registered generator names, sorted.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered returns true if a generator is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}

// DefaultModel returns the default model for a generator.
func DefaultModel(name string) string {
	return DefaultModels[name]
}

// envKeys maps generator names to their API key environment variables.
var envKeys = map[string]string{
	"dify":      "DIFY_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"openai":    "OPENAI_API_KEY",
}

// Detect picks a generator based on available API keys.
// Priority: DIFY_API_KEY > ANTHROPIC_API_KEY > OPENAI_API_KEY > ollama.
func Detect() (name string, apiKey string) {
	for _, name := range []string{"dify", "anthropic", "openai"} {
		if key := os.Getenv(envKeys[name]); key != "" {
			return name, key
		}
	}
	return "ollama", ""
}

// APIKeyFromEnv returns the API key for the named generator from its
// environment variable.
func APIKeyFromEnv(name string) string {
	if env, ok := envKeys[name]; ok {
		return os.Getenv(env)
	}
	return ""
}
