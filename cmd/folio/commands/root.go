// Package commands implements the CLI commands for folio.
package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/folio/internal/logger"
	"github.com/jmylchreest/folio/pkg/folio"
	"github.com/jmylchreest/folio/pkg/generator"
)

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Generate HTML portfolio pages from a workflow backend",
	Long: `Folio sends a personal profile to a Dify workflow (or a chat model) and
recovers the single HTML document embedded in its answer.

Examples:
  # Generate portfolio.html from a profile
  folio generate profile.yaml

  # Several profiles into a directory, with a YAML report
  folio generate alice.json bob.toml --out-dir site --format yaml

  # Recover the page from a saved workflow response
  folio extract response.json > portfolio.html

  # Serve the web form
  folio serve --addr :8080`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(logger.Options{
			Debug: viper.GetBool("debug"),
			Quiet: viper.GetBool("quiet"),
			JSON:  viper.GetBool("log_json"),
			Level: viper.GetString("log_level"),
		})
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()

	// Global flags
	flags.String("config", "", "config file (default $HOME/.folio.yaml)")
	flags.Bool("debug", false, "enable debug logging")
	flags.BoolP("quiet", "q", false, "suppress progress output")
	flags.Bool("log-json", false, "log as JSON")
	flags.String("log-level", "", "log level: debug, info, warn, error")

	// Backend settings
	flags.StringP("generator", "g", "", "backend: "+fmt.Sprint(generator.Available())+" (auto-detects from env vars)")
	flags.StringP("model", "m", "", "model name (generator-specific)")
	flags.StringP("api-key", "k", "", "API key (or DIFY_API_KEY / provider env var)")
	flags.String("base-url", "", "custom API base URL (or BASE_URL)")
	flags.String("workflow-id", "", "Dify workflow ID (or WORKFLOW_ID)")
	flags.String("user", "", "end-user identifier sent to the workflow")
	flags.Duration("timeout", 120*time.Second, "backend request timeout")
	flags.Int("max-retries", 3, "max retries for SDK-backed generators")
	flags.Bool("stream", false, "request a streamed answer (extract: input is an event stream)")
	flags.StringSlice("fallback", nil, "generators to try when the first one fails")

	for key, flag := range map[string]string{
		"config":      "config",
		"debug":       "debug",
		"quiet":       "quiet",
		"log_json":    "log-json",
		"log_level":   "log-level",
		"generator":   "generator",
		"model":       "model",
		"api_key":     "api-key",
		"base_url":    "base-url",
		"workflow_id": "workflow-id",
		"user":        "user",
		"timeout":     "timeout",
		"max_retries": "max-retries",
		"stream":      "stream",
		"fallback":    "fallback",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".folio")
		viper.SetConfigType("yaml")
	}

	// Environment variables
	viper.SetEnvPrefix("FOLIO")
	viper.AutomaticEnv()

	// The workflow secrets are commonly exported without a prefix
	_ = viper.BindEnv("api_key", "FOLIO_API_KEY", "DIFY_API_KEY")
	_ = viper.BindEnv("base_url", "FOLIO_BASE_URL", "BASE_URL")
	_ = viper.BindEnv("workflow_id", "FOLIO_WORKFLOW_ID", "WORKFLOW_ID")

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		logError("%v", err)
	}
	return err
}

// GeneratorConfig holds per-generator settings from the config file.
type GeneratorConfig struct {
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// folioOptions builds library options from flags, env and config file.
func folioOptions() ([]folio.Option, error) {
	name := viper.GetString("generator")
	if name == "" {
		name, _ = generator.Detect()
		logger.Debug("generator auto-detected", "generator", name)
	}
	if !generator.IsRegistered(name) {
		return nil, fmt.Errorf("%w: %s (available: %v)", generator.ErrUnknownGenerator, name, generator.Available())
	}

	// api_key falls back to DIFY_API_KEY, which only suits the dify backend
	apiKey := viper.GetString("api_key")
	if name != "dify" && !rootCmd.PersistentFlags().Changed("api-key") {
		apiKey = generator.APIKeyFromEnv(name)
	}

	perGenerator := make(map[string]GeneratorConfig)
	_ = viper.UnmarshalKey("generators", &perGenerator)

	model := viper.GetString("model")
	baseURL := viper.GetString("base_url")
	if pc, ok := perGenerator[name]; ok {
		if model == "" {
			model = pc.Model
		}
		if baseURL == "" {
			baseURL = pc.BaseURL
		}
		if apiKey == "" {
			apiKey = pc.APIKey
		}
	}

	timeout := viper.GetDuration("timeout")
	maxRetries := viper.GetInt("max_retries")

	logger.Debug("backend configuration",
		"generator", name,
		"model", model,
		"base_url", baseURL,
		"workflow_id", viper.GetString("workflow_id"),
		"api_key", logger.Secret(apiKey),
		"timeout", timeout,
		"stream", viper.GetBool("stream"))

	opts := []folio.Option{
		folio.WithGenerator(name),
		folio.WithModel(model),
		folio.WithAPIKey(apiKey),
		folio.WithBaseURL(baseURL),
		folio.WithWorkflowID(viper.GetString("workflow_id")),
		folio.WithUser(viper.GetString("user")),
		folio.WithTimeout(timeout),
		folio.WithMaxRetries(maxRetries),
		folio.WithStreaming(viper.GetBool("stream")),
	}

	var fallback []generator.Generator
	for _, fb := range viper.GetStringSlice("fallback") {
		if fb == name {
			continue
		}
		pc := perGenerator[fb]
		key := pc.APIKey
		if key == "" {
			key = generator.APIKeyFromEnv(fb)
		}
		if key == "" && fb != "ollama" {
			logger.Debug("skipping fallback generator without API key", "generator", fb)
			continue
		}
		gen, err := generator.New(fb, generator.Config{
			APIKey:     key,
			BaseURL:    pc.BaseURL,
			Model:      pc.Model,
			MaxRetries: maxRetries,
			Timeout:    timeout,
			WorkflowID: viper.GetString("workflow_id"),
			Stream:     viper.GetBool("stream"),
		})
		if err != nil {
			return nil, fmt.Errorf("fallback %s: %w", fb, err)
		}
		fallback = append(fallback, gen)
	}
	if len(fallback) > 0 {
		opts = append(opts, folio.WithFallback(fallback...))
	}

	return opts, nil
}

// logError prints an error message to stderr.
func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// logInfo prints an info message to stderr (unless quiet mode).
func logInfo(format string, args ...any) {
	if !viper.GetBool("quiet") {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
