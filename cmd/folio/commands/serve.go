package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/folio/internal/logger"
	"github.com/jmylchreest/folio/internal/metrics"
	"github.com/jmylchreest/folio/internal/web"
	"github.com/jmylchreest/folio/pkg/folio"
	"github.com/jmylchreest/folio/pkg/generator"
	"github.com/jmylchreest/folio/pkg/profile"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the portfolio form in a browser",
	Long: `Start a web server with a profile form. Submitting the form runs the
backend, shows the generated page inline and offers it as a download.
Prometheus metrics are served at /metrics.

Examples:
  folio serve
  folio serve --addr 127.0.0.1:9000 --defaults me.yaml`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	flags := serveCmd.Flags()
	flags.String("addr", ":8080", "listen address")
	flags.String("defaults", "", "profile file used to pre-fill the form")
	flags.Int("max-results", 100, "how many results stay downloadable")
	flags.Bool("trim", false, "drop text after the closing </html> tag")
	flags.Bool("no-metrics", false, "do not expose /metrics")

	_ = viper.BindPFlag("serve.addr", flags.Lookup("addr"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var defaults profile.Profile
	if path, _ := cmd.Flags().GetString("defaults"); path != "" {
		p, err := profile.FromFile(path)
		if err != nil {
			logger.Error("failed to load defaults", "path", path, "error", err)
			return err
		}
		defaults = p
	}

	opts, err := folioOptions()
	if err != nil {
		return err
	}
	trim, _ := cmd.Flags().GetBool("trim")
	opts = append(opts, folio.WithTrimTrailing(trim))

	cfg := web.Config{Defaults: defaults}
	cfg.MaxResults, _ = cmd.Flags().GetInt("max-results")

	if noMetrics, _ := cmd.Flags().GetBool("no-metrics"); noMetrics {
		opts = append(opts, folio.WithObserver(generator.ObserverFunc(logGeneration)))
	} else {
		m := metrics.New()
		opts = append(opts,
			folio.WithObserver(generator.NewMultiObserver(m, generator.ObserverFunc(logGeneration))),
			folio.WithResultHook(m.ObserveResult),
		)
		cfg.Metrics = m.Handler()
	}

	f, err := folio.New(opts...)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		return err
	}
	cfg.Generator = f

	addr := viper.GetString("serve.addr")
	logInfo("serving on http://%s (generator %s)", displayAddr(addr), f.Generator())
	return web.New(cfg).ListenAndServe(ctx, addr)
}

// displayAddr turns ":8080" into "localhost:8080" for the startup message.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
