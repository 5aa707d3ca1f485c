package folio

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/jmylchreest/folio/internal/logger"
	"github.com/jmylchreest/folio/pkg/extractor"
	"github.com/jmylchreest/folio/pkg/generator"
	"github.com/jmylchreest/folio/pkg/normalizer"
	"github.com/jmylchreest/folio/pkg/profile"
	"github.com/jmylchreest/folio/pkg/workflow"
)

// ErrStatus is reported when the backend answered with a non-2xx status.
var ErrStatus = errors.New("workflow returned an error status")

// ErrNoHTML is reported when the response held no HTML document.
var ErrNoHTML = extractor.ErrNoHTML

const modulePath = "github.com/jmylchreest/folio"

// Version returns the module version of the folio library as recorded in
// the running binary, whether folio is the main module or a dependency.
func Version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "(unknown)"
	}

	v := ""
	if info.Main.Path == modulePath {
		v = info.Main.Version
	}
	for _, dep := range info.Deps {
		if dep.Path != modulePath {
			continue
		}
		v = dep.Version
		if dep.Replace != nil {
			v = dep.Replace.Version
		}
	}
	if v == "" {
		return "(devel)"
	}
	return v
}

// Result is the outcome of one generation.
type Result struct {
	RunID     string    `json:"run_id" yaml:"run_id"`
	Profile   string    `json:"profile" yaml:"profile"`
	Slug      string    `json:"slug" yaml:"slug"`
	Generator string    `json:"generator" yaml:"generator"`
	Model     string    `json:"model" yaml:"model"`
	StartedAt time.Time `json:"started_at" yaml:"started_at"`

	StatusCode int    `json:"status_code,omitempty" yaml:"status_code,omitempty"`
	Endpoint   string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`

	Found      bool               `json:"found" yaml:"found"`
	HTML       string             `json:"-" yaml:"-"`
	Rule       string             `json:"rule" yaml:"rule"`
	Candidate  int                `json:"candidate" yaml:"candidate"`
	Candidates int                `json:"candidates" yaml:"candidates"`
	Summary    *extractor.Summary `json:"summary,omitempty" yaml:"summary,omitempty"`

	Usage            generator.Usage `json:"usage" yaml:"usage"`
	GenerateDuration time.Duration   `json:"generate_duration" yaml:"generate_duration"`
	ExtractDuration  time.Duration   `json:"extract_duration" yaml:"extract_duration"`

	// Response is the raw backend answer, kept for inspection on failure.
	Response workflow.Response `json:"-" yaml:"-"`

	Error        error  `json:"-" yaml:"-"`
	ErrorMessage string `json:"error,omitempty" yaml:"error,omitempty"`
}

func (r *Result) setError(err error) {
	r.Error = err
	if err != nil {
		r.ErrorMessage = err.Error()
	}
}

// Folio is the main entry point for generating portfolio pages.
type Folio struct {
	generator generator.Generator
	limiter   *rate.Limiter
	config    Config
}

// New creates a new Folio instance.
func New(opts ...Option) (*Folio, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	// Use injected generator or create one from the registry
	gen := cfg.Instance
	if gen == nil {
		var err error
		gen, err = generator.New(cfg.Generator, generator.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			MaxRetries: cfg.MaxRetries,
			Timeout:    cfg.Timeout,
			WorkflowID: cfg.WorkflowID,
			Stream:     cfg.Stream,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create generator: %w", err)
		}
	}

	if len(cfg.Fallback) > 0 {
		gen = generator.NewFallback(append([]generator.Generator{gen}, cfg.Fallback...)...)
	}
	gen = generator.Observe(gen, cfg.Observer)

	f := &Folio{generator: gen, config: cfg}
	if cfg.RateLimit > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return f, nil
}

// Generate runs the backend for p and extracts the page from its answer.
//
// Transport failures and invalid profiles are returned as errors. A backend
// error status or an answer without HTML yields a Result whose Error is set
// (ErrStatus or ErrNoHTML) so the raw response stays available.
func (f *Folio) Generate(ctx context.Context, p profile.Profile) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:     uuid.New().String(),
		Profile:   p.FullName,
		Slug:      p.Slug(),
		Generator: f.generator.Name(),
		Model:     f.generator.Model(),
		StartedAt: time.Now(),
		Candidate: -1,
	}

	logger.Debug("generating portfolio", "run_id", result.RunID, "generator", result.Generator, "profile", result.Profile)

	out, err := f.generator.Generate(ctx, generator.Request{
		Profile:     p,
		User:        f.user(p),
		MaxTokens:   f.config.MaxTokens,
		Temperature: f.config.Temperature,
	})
	result.GenerateDuration = time.Since(result.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	result.StatusCode = out.StatusCode
	result.Endpoint = out.Endpoint
	result.Usage = out.Usage
	result.Response = out.Response
	if out.Model != "" {
		result.Model = out.Model
	}

	f.extract(result)
	if !out.OK() {
		result.setError(fmt.Errorf("%w: %d", ErrStatus, out.StatusCode))
	}

	if f.config.OnResult != nil {
		f.config.OnResult(result)
	}
	return result, nil
}

func (f *Folio) user(p profile.Profile) string {
	if p.UserID != "" {
		return p.UserID
	}
	return f.config.User
}

func (f *Folio) extract(result *Result) {
	start := time.Now()
	defer func() { result.ExtractDuration = time.Since(start) }()

	candidates := normalizer.Normalize(result.Response)
	found := extractor.Extract(candidates)

	result.Candidates = len(candidates)
	result.Found = found.Found
	result.Rule = found.Rule.String()
	result.Candidate = found.Candidate
	if !found.Found {
		result.setError(found.Err())
		logger.Debug("no HTML in response", "run_id", result.RunID, "candidates", len(candidates))
		return
	}

	result.HTML = found.HTML
	if f.config.TrimTrailing {
		result.HTML = extractor.TrimTrailing(result.HTML)
	}

	summary, err := extractor.Inspect(result.HTML)
	if err != nil {
		logger.Debug("failed to inspect page", "run_id", result.RunID, "error", err)
		return
	}
	result.Summary = &summary
}

// GenerateMany generates pages for several profiles concurrently.
// Results arrive in completion order; failures are reported via Result.Error.
func (f *Folio) GenerateMany(ctx context.Context, profiles []profile.Profile, concurrency int) <-chan *Result {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make(chan *Result, len(profiles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for _, p := range profiles {
			g.Go(func() error {
				results <- f.generateOne(gctx, p)
				return nil
			})
		}
		_ = g.Wait()
		close(results)
	}()

	return results
}

func (f *Folio) generateOne(ctx context.Context, p profile.Profile) *Result {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return f.failed(p, err)
		}
	}

	result, err := f.Generate(ctx, p)
	if err != nil {
		return f.failed(p, err)
	}
	return result
}

func (f *Folio) failed(p profile.Profile, err error) *Result {
	r := &Result{
		RunID:     uuid.New().String(),
		Profile:   p.FullName,
		Slug:      p.Slug(),
		Generator: f.generator.Name(),
		Model:     f.generator.Model(),
		StartedAt: time.Now(),
		Candidate: -1,
	}
	r.setError(err)
	if f.config.OnResult != nil {
		f.config.OnResult(r)
	}
	return r
}

// Generator returns the backend name.
func (f *Folio) Generator() string {
	return f.generator.Name()
}

// ExtractResponse recovers the HTML document from a raw backend response.
func ExtractResponse(response workflow.Response) extractor.Result {
	return extractor.Extract(normalizer.Normalize(response))
}
