// Package embedding constructs the embedding provider. The rest of the
// pipeline depends only on langchaingo's embeddings.Embedder interface; the
// concrete model is swappable as long as the vector dimension stays fixed
// for the lifetime of an index.
package embedding

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"paper-rag/internal/config"
)

// New builds an embedder from config. Recognized providers are "ollama" and
// "openai"; the latter also covers OpenAI-compatible gateways.
func New(cfg *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	switch cfg.Provider {
	case "", "ollama":
		return NewOllamaEmbedder(cfg)
	case "openai":
		return NewOpenAIEmbedder(cfg)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

// NewOllamaEmbedder wraps an Ollama-served embedding model.
func NewOllamaEmbedder(cfg *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(cfg.BaseURL),
		ollama.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("init ollama embedding model: %w", err)
	}
	return embeddings.NewEmbedder(llm)
}

// NewOpenAIEmbedder wraps an OpenAI-compatible embedding endpoint.
func NewOpenAIEmbedder(cfg *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("init openai embedding model: %w", err)
	}
	return embeddings.NewEmbedder(llm)
}
