// Package llm adapts text-generation backends to domain.Generator.
package llm

import (
	"context"
	"errors"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"ragchat/internal/domain"
)

// LangChainGenerator sends a single-turn prompt through any langchaingo model.
type LangChainGenerator struct {
	model    llms.Model
	provider string
	name     string
	timeout  time.Duration
}

// NewLangChain wraps model. modelName is passed per call when set.
func NewLangChain(model llms.Model, provider, modelName string) *LangChainGenerator {
	return &LangChainGenerator{model: model, provider: provider, name: modelName}
}

// WithTimeout bounds each Generate call. Zero means no limit beyond ctx.
func (g *LangChainGenerator) WithTimeout(d time.Duration) *LangChainGenerator {
	g.timeout = d
	return g
}

// Name returns "provider/model".
func (g *LangChainGenerator) Name() string {
	if g.name == "" {
		return g.provider
	}
	return g.provider + "/" + g.name
}

// Generate returns the model's answer to prompt. Provider failures are
// wrapped in *domain.GenerationError.
func (g *LangChainGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	var opts []llms.CallOption
	if g.name != "" {
		opts = append(opts, llms.WithModel(g.name))
	}
	messages := []llms.MessageContent{llms.TextParts(schema.ChatMessageTypeHuman, prompt)}

	resp, err := g.model.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return "", &domain.GenerationError{Provider: g.provider, Err: err}
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", &domain.GenerationError{Provider: g.provider, Err: errors.New("empty response")}
	}
	return resp.Choices[0].Content, nil
}
