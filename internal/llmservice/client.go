// Package llmservice is the generation-model boundary: one system message,
// one user message, one completion.
package llmservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"paper-rag/internal/config"
)

// ErrEmptyCompletion means the generation model returned no usable text.
var ErrEmptyCompletion = errors.New("generation model returned an empty completion")

// SystemInstruction is the fixed system message sent with every generation
// call.
const SystemInstruction = "You are a helpful assistant. Answer the question using only the provided context."

// Generator produces an answer from an assembled prompt. The call is
// blocking and non-retrying; callers own timeout and retry policy.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// LLMGenerator calls a chat-style completion API through langchaingo.
type LLMGenerator struct {
	llm llms.Model
}

func NewLLMGenerator(cfg *config.LLMConfig) (*LLMGenerator, error) {
	var llm llms.Model
	var err error
	switch cfg.Provider {
	case "ollama":
		llm, err = ollama.New(
			ollama.WithServerURL(cfg.BaseURL),
			ollama.WithModel(cfg.Model),
		)
	case "", "openai":
		llm, err = openai.New(
			openai.WithBaseURL(cfg.BaseURL),
			openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
			openai.WithModel(cfg.Model),
		)
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("init generation model: %w", err)
	}
	return &LLMGenerator{llm: llm}, nil
}

// Generate sends the prompt as a single user message preceded by the fixed
// system instruction and returns the trimmed text of the first completion.
func (g *LLMGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextContent{Text: SystemInstruction}},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}

	res, err := g.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if len(res.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	answer := strings.TrimSpace(res.Choices[0].Content)
	if answer == "" {
		return "", ErrEmptyCompletion
	}
	return answer, nil
}
