package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/config"
)

func TestNew(t *testing.T) {
	e, err := New(config.EmbedderConfig{})
	require.NoError(t, err)
	assert.Equal(t, "tfidf", e.Name())

	e, err = New(config.EmbedderConfig{Type: "openai", OpenAI: &config.OpenAIEmbedderConfig{
		BaseURL: "http://localhost:11434/v1",
		Model:   "nomic-embed-text",
	}})
	require.NoError(t, err)
	assert.Equal(t, "openai", e.Name())

	_, err = New(config.EmbedderConfig{Type: "word2vec"})
	assert.ErrorContains(t, err, "unknown embedder type")
}
