// cmd/leadctl/email.go
package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"nexsupply-workers/internal/leadintel"
)

var emailCmd = &cobra.Command{
	Use:   "email <address>...",
	Short: "Classify work email addresses",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "ADDRESS\tDOMAIN\tEMAIL_TYPE\tLOCAL_PART")
		for _, addr := range args {
			intel := leadintel.AnalyzeEmail(addr)
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", addr, intel.Domain, intel.EmailType, intel.LocalPartType)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(emailCmd)
}
