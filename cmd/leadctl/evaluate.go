// cmd/leadctl/evaluate.go
package main

import (
	"github.com/spf13/cobra"

	"nexsupply-workers/internal/models"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Apply guardrails and routing to a saved analysis",
	Long: `Reads a submission payload and, optionally, a raw model analysis, both as
JSON files, and prints the guarded analysis, the routing decision and the
guardrail rules that changed something. Without --analysis the fallback
analysis is evaluated.

Examples:
  leadctl evaluate --payload lead.json --analysis raw.json`,
	RunE: runEvaluate,
}

func init() {
	f := evaluateCmd.Flags()
	f.String("payload", "", "submission payload JSON file")
	f.String("analysis", "", "raw lead analysis JSON file")
	_ = evaluateCmd.MarkFlagRequired("payload")

	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	payloadPath, _ := cmd.Flags().GetString("payload")
	analysisPath, _ := cmd.Flags().GetString("analysis")

	payload, err := readPayload(payloadPath)
	if err != nil {
		return err
	}

	var analysis *models.LeadAnalysis
	if analysisPath != "" {
		if analysis, err = readAnalysis(analysisPath); err != nil {
			return err
		}
	}
	return printJSON(cmd.OutOrStdout(), evaluate(payload, analysis))
}
