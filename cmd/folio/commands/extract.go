package commands

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/folio/internal/logger"
	"github.com/jmylchreest/folio/internal/output"
	"github.com/jmylchreest/folio/pkg/extractor"
	"github.com/jmylchreest/folio/pkg/normalizer"
	"github.com/jmylchreest/folio/pkg/workflow"
)

// extractReport describes how a saved response was resolved.
type extractReport struct {
	Source     string             `json:"source" yaml:"source"`
	Found      bool               `json:"found" yaml:"found"`
	Rule       string             `json:"rule" yaml:"rule"`
	Candidate  int                `json:"candidate" yaml:"candidate"`
	Candidates []string           `json:"candidates" yaml:"candidates"`
	Summary    *extractor.Summary `json:"summary,omitempty" yaml:"summary,omitempty"`
	Page       string             `json:"page,omitempty" yaml:"page,omitempty"`
}

var extractCmd = &cobra.Command{
	Use:   "extract [RESPONSE]",
	Short: "Recover the HTML page from a saved workflow response",
	Long: `Read a workflow response (a JSON body, or an event stream with --stream)
from a file or stdin and print the HTML document found in it.

Examples:
  folio extract response.json > portfolio.html
  folio extract --stream -o portfolio.html < events.txt
  folio extract response.json --report --format yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	flags := extractCmd.Flags()
	flags.StringP("output", "o", "", "write the page to this file instead of stdout")
	flags.Bool("report", false, "print an extraction report instead of the page")
	flags.String("format", "json", "report format: json, jsonl, yaml")
	flags.Bool("trim", false, "drop text after the closing </html> tag")
}

func runExtract(cmd *cobra.Command, args []string) error {
	source := "-"
	if len(args) == 1 {
		source = args[0]
	}

	body, err := readSource(cmd, source)
	if err != nil {
		return err
	}
	logger.Debug("response loaded", "source", source, "bytes", len(body))

	var response workflow.Response
	if stream, _ := cmd.Flags().GetBool("stream"); stream {
		fragments, err := workflow.ParseStream(bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to parse event stream: %w", err)
		}
		response = fragments
	} else {
		response = workflow.Decode(body)
	}

	collected := normalizer.Collect(response)
	texts := make([]string, 0, len(collected))
	sources := make([]string, 0, len(collected))
	for _, c := range collected {
		texts = append(texts, c.Text)
		sources = append(sources, c.Source)
	}

	found := extractor.Extract(texts)
	report := extractReport{
		Source:     source,
		Found:      found.Found,
		Rule:       found.Rule.String(),
		Candidate:  found.Candidate,
		Candidates: sources,
	}
	logger.Debug("extraction finished", "found", found.Found, "rule", report.Rule, "candidates", len(texts))

	html := found.HTML
	if trim, _ := cmd.Flags().GetBool("trim"); trim && found.Found {
		html = extractor.TrimTrailing(html)
	}
	if found.Found {
		if summary, err := extractor.Inspect(html); err == nil {
			report.Summary = &summary
		}
	}

	if outPath, _ := cmd.Flags().GetString("output"); outPath != "" && found.Found {
		if err := output.WriteFile(outPath, []byte(html)); err != nil {
			return err
		}
		report.Page = outPath
		logInfo("wrote %s", outPath)
	}

	if asReport, _ := cmd.Flags().GetBool("report"); asReport {
		formatStr, _ := cmd.Flags().GetString("format")
		format, err := output.ParseFormat(formatStr)
		if err != nil {
			return err
		}
		writer, err := output.NewWriter(cmd.OutOrStdout(), format)
		if err != nil {
			return err
		}
		if err := writer.Write(report); err != nil {
			return err
		}
		if err := writer.Close(); err != nil {
			return err
		}
	} else if found.Found && report.Page == "" {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), html); err != nil {
			return err
		}
	}

	if !found.Found {
		return fmt.Errorf("no HTML found in %s: %w", source, found.Err())
	}
	return nil
}

func readSource(cmd *cobra.Command, source string) ([]byte, error) {
	if source == "-" {
		body, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return body, nil
	}
	body, err := os.ReadFile(source) //#nosec G304 -- CLI tool reads a user-specified file
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}
