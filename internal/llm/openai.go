package llm

import (
	"fmt"
	"os"
	"time"

	"github.com/tmc/langchaingo/llms/openai"
)

// Defaults for the OpenAI-compatible chat generator.
const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "gpt-4o-mini"
	DefaultTimeout       = 120 * time.Second
)

// OpenAIConfig configures an OpenAI-compatible /chat/completions backend.
type OpenAIConfig struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// NewOpenAI builds a generator for OpenAI or any compatible server (Ollama,
// vLLM, LM Studio). The key is only mandatory for api.openai.com.
func NewOpenAI(cfg OpenAIConfig) (*LangChainGenerator, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenAIBaseURL
	}
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		if cfg.BaseURL == DefaultOpenAIBaseURL {
			return nil, fmt.Errorf("openai: missing API key in env %s", cfg.APIKeyEnv)
		}
		// the client rejects an empty token; local servers ignore it
		key = "unused"
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	client, err := openai.New(
		openai.WithToken(key),
		openai.WithModel(cfg.Model),
		openai.WithBaseURL(cfg.BaseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	return NewLangChain(client, "openai", cfg.Model).WithTimeout(cfg.Timeout), nil
}
