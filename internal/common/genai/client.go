// internal/common/genai/client.go
package genai

import (
	"context"
	"fmt"
	"time"

	gogenai "google.golang.org/genai"

	"nexsupply-workers/internal/common/config"
)

// Generator turns a prompt into raw model text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// GeminiGenerator calls a Gemini model in JSON response mode.
type GeminiGenerator struct {
	client *gogenai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, cfg config.GenAIConfig) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	client, err := gogenai.NewClient(ctx, &gogenai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: gogenai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx,
		g.model,
		gogenai.Text(prompt),
		&gogenai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	return result.Text(), nil
}

func (g *GeminiGenerator) Model() string {
	return g.model
}

const DefaultModel = "gemini-2.5-pro"

// Timeout returns the configured per-call budget.
func Timeout(cfg config.GenAIConfig) time.Duration {
	if cfg.Timeout <= 0 {
		return 60 * time.Second
	}
	return config.GetDuration(cfg.Timeout)
}
