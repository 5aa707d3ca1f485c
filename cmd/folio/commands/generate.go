package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/folio/internal/logger"
	"github.com/jmylchreest/folio/internal/output"
	"github.com/jmylchreest/folio/internal/preview"
	"github.com/jmylchreest/folio/pkg/folio"
	"github.com/jmylchreest/folio/pkg/generator"
	"github.com/jmylchreest/folio/pkg/profile"
)

// generateRecord is one report entry: the result plus the files written.
type generateRecord struct {
	folio.Result `yaml:",inline"`

	Page       string `json:"page,omitempty" yaml:"page,omitempty"`
	Screenshot string `json:"screenshot,omitempty" yaml:"screenshot,omitempty"`
	RawDump    string `json:"response_file,omitempty" yaml:"response_file,omitempty"`
}

var generateCmd = &cobra.Command{
	Use:   "generate PROFILE...",
	Short: "Generate portfolio pages from profile files",
	Long: `Send each profile to the configured backend and write the HTML page it
returns. Profiles can be JSON, YAML or TOML.

With a single profile and no --out-dir the page is written to
portfolio.html. Otherwise each page is written to <out-dir>/<slug>.html.
A report of every run is written to stdout (or --output).

Examples:
  folio generate profile.yaml
  folio generate team/*.json --out-dir site --concurrency 4 --rate 1
  folio generate profile.toml -g openai -m gpt-4o --screenshot`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	flags := generateCmd.Flags()

	// Output settings
	flags.String("out-dir", "", "directory for generated pages (default: ./portfolio.html for one profile)")
	flags.StringP("output", "o", "", "report file (default: stdout)")
	flags.String("format", "json", "report format: json, jsonl, yaml")
	flags.Bool("trim", false, "drop text after the closing </html> tag")
	flags.Bool("screenshot", false, "render a PNG preview next to each page (needs Chrome)")
	flags.Bool("save-response", false, "write the raw backend response next to each page")

	// Generation settings
	flags.Float64("temperature", 0.7, "sampling temperature for chat generators")
	flags.Int("max-tokens", 0, "max output tokens for chat generators (0 = default)")
	flags.IntP("concurrency", "c", 2, "concurrent generations")
	flags.Float64("rate", 0, "max generations per second (0 = unlimited)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Debug("generate command starting", "profiles", len(args))

	profiles := make([]profile.Profile, 0, len(args))
	for _, path := range args {
		p, err := profile.FromFile(path)
		if err != nil {
			logger.Error("failed to load profile", "path", path, "error", err)
			return err
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		profiles = append(profiles, p)
	}

	outDir, _ := cmd.Flags().GetString("out-dir")
	if outDir == "" && len(profiles) > 1 {
		outDir = "."
	}
	trim, _ := cmd.Flags().GetBool("trim")
	screenshot, _ := cmd.Flags().GetBool("screenshot")
	saveResponse, _ := cmd.Flags().GetBool("save-response")
	temperature, _ := cmd.Flags().GetFloat64("temperature")
	maxTokens, _ := cmd.Flags().GetInt("max-tokens")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	rps, _ := cmd.Flags().GetFloat64("rate")

	opts, err := folioOptions()
	if err != nil {
		return err
	}
	opts = append(opts,
		folio.WithTemperature(temperature),
		folio.WithMaxTokens(maxTokens),
		folio.WithRateLimit(rps),
		folio.WithTrimTrailing(trim),
		folio.WithObserver(generator.ObserverFunc(logGeneration)),
	)

	f, err := folio.New(opts...)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		return err
	}

	// Setup report output
	reportFile := os.Stdout
	if outPath, _ := cmd.Flags().GetString("output"); outPath != "" {
		file, err := os.Create(outPath) //#nosec G304 -- CLI tool writes to user-specified output file
		if err != nil {
			logger.Error("failed to create output file", "path", outPath, "error", err)
			return err
		}
		defer func() { _ = file.Close() }()
		reportFile = file
	}

	formatStr, _ := cmd.Flags().GetString("format")
	format, err := output.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	writer, err := output.NewWriter(reportFile, format)
	if err != nil {
		logger.Error("failed to create output writer", "format", formatStr, "error", err)
		return err
	}
	defer func() { _ = writer.Close() }()

	logger.Info("starting generation",
		"profiles", len(profiles),
		"generator", f.Generator(),
		"concurrency", concurrency)

	slugs := newSlugger()
	failed := 0
	var lastErr error
	for result := range f.GenerateMany(ctx, profiles, concurrency) {
		record := generateRecord{Result: *result}
		slug := slugs.unique(result.Slug)

		if result.Found {
			path, err := output.WritePage(outDir, slug, result.HTML)
			if err != nil {
				logger.Error("failed to write page", "profile", result.Profile, "error", err)
				return err
			}
			record.Page = path
			logInfo("%s: wrote %s (%s, rule %s)", result.Profile, path, humanize.Bytes(uint64(len(result.HTML))), result.Rule)

			if screenshot {
				record.Screenshot = writeScreenshot(ctx, path, result.HTML)
			}
		} else {
			failed++
			lastErr = result.Error
			reportFailure(result)
		}

		if saveResponse && result.Response != nil {
			record.RawDump = writeResponse(outDir, slug, result)
		}

		if err := writer.Write(record); err != nil {
			logger.Error("failed to write output", "error", err)
			return err
		}
	}

	logger.Info("generation complete", "pages", len(profiles)-failed, "failed", failed)

	switch {
	case failed == 0:
		return nil
	case len(profiles) == 1:
		return lastErr
	default:
		return fmt.Errorf("%d of %d profiles failed", failed, len(profiles))
	}
}

// reportFailure explains a failed run on stderr.
func reportFailure(result *folio.Result) {
	switch {
	case errors.Is(result.Error, folio.ErrNoHTML):
		logError("%s: no HTML found in the response (status %d); check the workflow output node", result.Profile, result.StatusCode)
	case errors.Is(result.Error, folio.ErrStatus):
		logError("%s: backend returned status %d", result.Profile, result.StatusCode)
	default:
		logError("%s: %v", result.Profile, result.Error)
	}
	if raw, err := json.Marshal(result.Response); err == nil && result.Response != nil {
		logger.Debug("raw response", "run_id", result.RunID, "response", string(raw))
	}
}

func writeScreenshot(ctx context.Context, pagePath, html string) string {
	png, err := preview.Screenshot(ctx, html, preview.DefaultConfig())
	if err != nil {
		logger.Warn("screenshot skipped", "page", pagePath, "error", err)
		return ""
	}
	path := strings.TrimSuffix(pagePath, ".html") + ".png"
	if err := output.WriteFile(path, png); err != nil {
		logger.Warn("failed to write screenshot", "path", path, "error", err)
		return ""
	}
	return path
}

func writeResponse(outDir, slug string, result *folio.Result) string {
	raw, err := json.MarshalIndent(result.Response, "", "  ")
	if err != nil {
		logger.Warn("failed to encode response", "run_id", result.RunID, "error", err)
		return ""
	}
	path := strings.TrimSuffix(output.PagePath(outDir, slug), ".html") + ".response.json"
	if err := output.WriteFile(path, raw); err != nil {
		logger.Warn("failed to write response", "path", path, "error", err)
		return ""
	}
	return path
}

func logGeneration(_ context.Context, e generator.Event) {
	logger.Debug("generation finished",
		"generator", e.Generator,
		"model", e.Model,
		"profile", e.Profile,
		"status", e.StatusCode,
		"input_tokens", e.Usage.InputTokens,
		"output_tokens", e.Usage.OutputTokens,
		"duration", e.Duration,
		"error", e.Err)
}

// slugger hands out page names that do not collide within one run.
type slugger map[string]int

func newSlugger() slugger { return make(slugger) }

func (s slugger) unique(slug string) string {
	s[slug]++
	if n := s[slug]; n > 1 {
		return fmt.Sprintf("%s-%d", slug, n)
	}
	return slug
}
