package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"ragchat/internal/config"
	"ragchat/internal/domain"
)

// fakeModel is a test double for llms.Model.
type fakeModel struct {
	answer   string
	err      error
	empty    bool
	messages []llms.MessageContent
	opts     llms.CallOptions
}

func (f *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	for _, o := range options {
		o(&f.opts)
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.empty {
		return &llms.ContentResponse{}, nil
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.answer}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestLangChain_Generate(t *testing.T) {
	m := &fakeModel{answer: "  Paris.\n"}
	g := NewLangChain(m, "gemini", "gemini-2.5-flash")

	out, err := g.Generate(context.Background(), "What is the capital?")
	require.NoError(t, err)
	assert.Equal(t, "  Paris.\n", out, "answer must be returned verbatim")
	assert.Equal(t, "gemini/gemini-2.5-flash", g.Name())
	assert.Equal(t, "gemini-2.5-flash", m.opts.Model)

	require.Len(t, m.messages, 1)
	assert.Equal(t, schema.ChatMessageTypeHuman, m.messages[0].Role)
	assert.Equal(t, llms.TextContent{Text: "What is the capital?"}, m.messages[0].Parts[0])
}

func TestLangChain_Failures(t *testing.T) {
	cause := errors.New("quota exceeded")
	tests := []struct {
		name  string
		model *fakeModel
	}{
		{name: "provider error", model: &fakeModel{err: cause}},
		{name: "no choices", model: &fakeModel{empty: true}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLangChain(tc.model, "gemini", "").Generate(context.Background(), "q")
			assert.ErrorIs(t, err, domain.ErrGeneration)
			var ge *domain.GenerationError
			require.ErrorAs(t, err, &ge)
			assert.Equal(t, "gemini", ge.Provider)
		})
	}
}

func TestOpenAI_Generate(t *testing.T) {
	t.Setenv("TEST_LLM_KEY", "sk-test")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "llama3", req["model"])
		assert.Contains(t, string(body), "hello")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"llama3",` +
			`"choices":[{"index":0,"message":{"role":"assistant","content":"hi there"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	g, err := NewOpenAI(OpenAIConfig{BaseURL: srv.URL, APIKeyEnv: "TEST_LLM_KEY", Model: "llama3"})
	require.NoError(t, err)

	out, err := g.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi there", out)
	assert.Equal(t, "openai/llama3", g.Name())
}

func TestOpenAI_ErrorsAreGenerationErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"model not found","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	g, err := NewOpenAI(OpenAIConfig{BaseURL: srv.URL, APIKeyEnv: "TEST_LLM_UNSET"})
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), "hello")
	assert.ErrorIs(t, err, domain.ErrGeneration)
	var ge *domain.GenerationError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "openai", ge.Provider)
}

func TestNew_Factory(t *testing.T) {
	t.Setenv("TEST_LLM_EMPTY", "")

	_, err := New(context.Background(), config.GeneratorConfig{Type: "gemini", APIKeyEnv: "TEST_LLM_EMPTY"})
	assert.ErrorContains(t, err, "missing API key")

	_, err = New(context.Background(), config.GeneratorConfig{Type: "openai", APIKeyEnv: "TEST_LLM_EMPTY"})
	assert.ErrorContains(t, err, "missing API key")

	g, err := New(context.Background(), config.GeneratorConfig{Type: "openai", BaseURL: "http://localhost:11434/v1", Model: "llama3"})
	require.NoError(t, err)
	assert.Equal(t, "openai/llama3", g.Name())

	_, err = New(context.Background(), config.GeneratorConfig{Type: "bard"})
	assert.ErrorContains(t, err, "unknown generator type")
}
