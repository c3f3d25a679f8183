// cmd/leadctl/analyze.go
package main

import (
	"os"

	"github.com/spf13/cobra"

	"nexsupply-workers/internal/common/config"
	"nexsupply-workers/internal/common/genai"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a submission with Gemini, then evaluate it",
	Long: `Calls the configured Gemini model for the payload and prints the raw
analysis next to its guarded and routed form. A failed call is reported
as an error rather than replaced by the fallback analysis.`,
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.String("payload", "", "submission payload JSON file")
	f.String("model", genai.DefaultModel, "Gemini model name")
	f.Int("timeout-ms", 60000, "model call timeout in milliseconds")
	_ = analyzeCmd.MarkFlagRequired("payload")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	payloadPath, _ := cmd.Flags().GetString("payload")
	model, _ := cmd.Flags().GetString("model")
	timeoutMs, _ := cmd.Flags().GetInt("timeout-ms")

	payload, err := readPayload(payloadPath)
	if err != nil {
		return err
	}

	gcfg := config.GenAIConfig{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		Model:   model,
		Timeout: timeoutMs,
	}
	generator, err := genai.NewGeminiGenerator(cmd.Context(), gcfg)
	if err != nil {
		return err
	}

	raw, err := genai.NewLeadAnalyzer(generator, genai.Timeout(gcfg), log).Analyze(cmd.Context(), payload)
	if err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), struct {
		RawAnalysis interface{} `json:"rawAnalysis"`
		Evaluation
	}{
		RawAnalysis: raw,
		Evaluation:  evaluate(payload, raw),
	})
}
