package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/folio/internal/version"
	"github.com/jmylchreest/folio/pkg/folio"
)

// versionReport is the --json output: build metadata plus the version of
// the folio library linked into the binary.
type versionReport struct {
	version.Info
	Library string `json:"library"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(versionReport{Info: version.Get(), Library: folio.Version()})
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\n  Library:    %s\n", version.Full(), folio.Version())
		return err
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().Bool("json", false, "print as JSON")
	rootCmd.Version = version.String()
}
