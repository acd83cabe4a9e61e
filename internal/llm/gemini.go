package llm

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/tmc/langchaingo/llms/googleai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiConfig configures the Google Gemini generator.
type GeminiConfig struct {
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// NewGemini builds a generator backed by the Gemini API.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*LangChainGenerator, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "GEMINI_API_KEY"
	}
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}

	client, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	return NewLangChain(client, "gemini", cfg.Model).WithTimeout(cfg.Timeout), nil
}
