// Package rag composes retrieval, reranking and generation into one
// query-to-answer call.
package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"paper-rag/internal/config"
	"paper-rag/internal/llmservice"
	"paper-rag/internal/models"
)

// ErrGenerationTimeout means the external generation call exceeded the
// configured deadline.
var ErrGenerationTimeout = errors.New("generation call timed out")

// promptTemplate is the fixed grounded-prompt shape: retrieved context
// first, then the question.
const promptTemplate = "Context:\n%s\n\nQuestion: %s\nAnswer:"

// ChunkRetriever is the first retrieval stage.
type ChunkRetriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]models.RetrievedChunk, error)
}

// ChunkReranker is the second, cross-encoder stage.
type ChunkReranker interface {
	Rerank(ctx context.Context, query string, chunks []models.RetrievedChunk, topN int) ([]models.ScoredChunk, error)
}

// RAG runs retrieve, rerank and generate strictly in sequence. Every stage
// error propagates unchanged; there is no partial-answer fallback and no
// automatic retry of the generation call.
type RAG struct {
	retriever  ChunkRetriever
	reranker   ChunkReranker
	generator  llmservice.Generator
	topK       int
	topN       int
	genTimeout time.Duration
}

func NewRAG(retriever ChunkRetriever, reranker ChunkReranker, generator llmservice.Generator, cfg *config.RAGConfig) *RAG {
	return &RAG{
		retriever:  retriever,
		reranker:   reranker,
		generator:  generator,
		topK:       cfg.TopK,
		topN:       cfg.TopN,
		genTimeout: time.Duration(cfg.GenTimeoutSecs) * time.Second,
	}
}

// Query answers a question grounded in the indexed corpus and reports the
// source files the context came from.
func (r *RAG) Query(ctx context.Context, query string) (*models.PromptResponse, error) {
	retrieved, err := r.retriever.Retrieve(ctx, query, r.topK)
	if err != nil {
		return nil, err
	}

	reranked, err := r.reranker.Rerank(ctx, query, retrieved, r.topN)
	if err != nil {
		return nil, err
	}

	prompt := buildPrompt(query, reranked)

	genCtx, cancel := context.WithTimeout(ctx, r.genTimeout)
	defer cancel()
	answer, err := r.generator.Generate(genCtx, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("after %s: %w", r.genTimeout, ErrGenerationTimeout)
		}
		return nil, err
	}

	return &models.PromptResponse{
		Query:   query,
		Sources: sources(reranked),
		Content: answer,
	}, nil
}

// Answer is the plain query-to-answer entry point.
func (r *RAG) Answer(ctx context.Context, query string) (string, error) {
	resp, err := r.Query(ctx, query)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// buildPrompt joins the reranked chunk texts, in the order given and
// separated by a blank line, into the grounded prompt.
func buildPrompt(query string, chunks []models.ScoredChunk) string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Chunk.Text
	}
	return fmt.Sprintf(promptTemplate, strings.Join(texts, "\n\n"), query)
}

// sources lists the distinct source files of the context chunks, first
// occurrence first.
func sources(chunks []models.ScoredChunk) []string {
	seen := make(map[string]struct{}, len(chunks))
	var out []string
	for _, c := range chunks {
		if _, ok := seen[c.Chunk.SourceFile]; ok {
			continue
		}
		seen[c.Chunk.SourceFile] = struct{}{}
		out = append(out, c.Chunk.SourceFile)
	}
	return out
}
