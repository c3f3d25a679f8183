// cmd/leadctl/main.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"nexsupply-workers/internal/common/logger"
	"nexsupply-workers/internal/common/validation"
	"nexsupply-workers/internal/leadintel"
	"nexsupply-workers/internal/models"
)

var log logger.Logger = logger.NewNoOpLogger()

var rootCmd = &cobra.Command{
	Use:   "leadctl",
	Short: "Inspect how NexSupply qualifies and routes leads",
	Long: `Offline tooling for the lead pipeline: classify work emails, replay
guardrails and routing against saved analyses, and run the built-in lead
scenarios. Only "analyze" talks to the model; it needs GEMINI_API_KEY.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		_ = godotenv.Load() // .env is optional

		verbose, _ := cmd.Flags().GetBool("verbose")
		if verbose {
			log = logger.NewStructured("debug", "console")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log pipeline steps to stderr")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Evaluation is what evaluate, analyze and samples report per lead.
type Evaluation struct {
	GuardedAnalysis   *models.LeadAnalysis       `json:"guardedAnalysis"`
	Routing           models.LeadRoutingDecision `json:"routing"`
	SLALabel          string                     `json:"slaLabel"`
	AppliedGuardrails []string                   `json:"appliedGuardrails"`
	EmailIntel        models.EmailIntel          `json:"emailIntel"`
}

// evaluate runs guardrails then routing. A nil analysis is replaced by the
// fallback analysis.
func evaluate(payload models.SubmissionPayload, analysis *models.LeadAnalysis) Evaluation {
	if analysis == nil {
		analysis = leadintel.FallbackAnalysis(payload)
	}
	report := leadintel.GuardLead(payload, analysis)
	routing := leadintel.DeriveLeadRouting(report.Analysis)
	return Evaluation{
		GuardedAnalysis:   report.Analysis,
		Routing:           routing,
		SLALabel:          leadintel.FormatSLALabel(routing.SLAHours),
		AppliedGuardrails: report.Applied,
		EmailIntel:        report.EmailIntel,
	}
}

func readPayload(path string) (models.SubmissionPayload, error) {
	var payload models.SubmissionPayload
	raw, err := os.ReadFile(path)
	if err != nil {
		return payload, fmt.Errorf("read payload: %w", err)
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, fmt.Errorf("decode payload %s: %w", path, err)
	}
	normalized, res, err := validation.ValidateSubmission(payload)
	if err != nil {
		return payload, err
	}
	if !res.Valid {
		return payload, fmt.Errorf("invalid payload: %s", res.Summary())
	}
	return normalized, nil
}

func readAnalysis(path string) (*models.LeadAnalysis, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read analysis: %w", err)
	}
	analysis, res, err := validation.ParseLeadAnalysis(raw)
	if err != nil {
		return nil, fmt.Errorf("decode analysis %s: %w", path, err)
	}
	if analysis == nil {
		return nil, fmt.Errorf("analysis %s does not match the schema: %s", path, res.Summary())
	}
	return analysis, nil
}

func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
