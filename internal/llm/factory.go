package llm

import (
	"context"
	"fmt"
	"time"

	"ragchat/internal/config"
	"ragchat/internal/domain"
)

// New creates the generator selected by cfg.Type.
func New(ctx context.Context, cfg config.GeneratorConfig) (domain.Generator, error) {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	switch cfg.Type {
	case "", "gemini":
		g, err := NewGemini(ctx, GeminiConfig{APIKeyEnv: cfg.APIKeyEnv, Model: cfg.Model, Timeout: timeout})
		if err != nil {
			return nil, err
		}
		return g, nil
	case "openai":
		g, err := NewOpenAI(OpenAIConfig{BaseURL: cfg.BaseURL, APIKeyEnv: cfg.APIKeyEnv, Model: cfg.Model, Timeout: timeout})
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown generator type: %s", cfg.Type)
	}
}
