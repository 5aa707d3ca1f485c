package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmylchreest/folio/internal/logger"
)

// ErrNoGenerator is returned when a fallback chain is empty.
var ErrNoGenerator = errors.New("no generator available")

// Fallback tries each generator in order until one answers successfully.
// A transport error or a non-2xx status moves on to the next generator.
type Fallback struct {
	generators []Generator
}

// NewFallback creates a fallback chain from the given generators.
func NewFallback(generators ...Generator) *Fallback {
	return &Fallback{generators: generators}
}

// Generate tries each generator in order.
func (f *Fallback) Generate(ctx context.Context, req Request) (*Output, error) {
	if len(f.generators) == 0 {
		return nil, ErrNoGenerator
	}

	var (
		lastErr error
		lastOut *Output
		tried   []string
	)
	for _, g := range f.generators {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		tried = append(tried, g.Name())
		out, err := g.Generate(ctx, req)
		if err == nil && out.OK() {
			return out, nil
		}

		if err == nil {
			lastOut = out
			err = fmt.Errorf("%s returned status %d", g.Name(), out.StatusCode)
		}
		lastErr = err
		logger.Warn("generator failed, trying next", "generator", g.Name(), "error", err)
	}

	// Surface the last server answer so its payload can still be inspected.
	if lastOut != nil {
		return lastOut, nil
	}
	return nil, fmt.Errorf("all generators failed (tried: %s): %w", strings.Join(tried, ", "), lastErr)
}

// Name returns the fallback chain name.
func (f *Fallback) Name() string {
	names := make([]string, 0, len(f.generators))
	for _, g := range f.generators {
		names = append(names, g.Name())
	}
	return "fallback(" + strings.Join(names, "->") + ")"
}

// Model returns the model of the first generator.
func (f *Fallback) Model() string {
	if len(f.generators) == 0 {
		return ""
	}
	return f.generators[0].Model()
}
