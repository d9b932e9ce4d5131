package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paper-rag/internal/config"
	"paper-rag/internal/models"
)

type stubRetriever struct {
	chunks []models.RetrievedChunk
	err    error
	gotK   int
}

func (s *stubRetriever) Retrieve(ctx context.Context, query string, k int) ([]models.RetrievedChunk, error) {
	s.gotK = k
	return s.chunks, s.err
}

type stubReranker struct {
	err     error
	gotTopN int
}

func (s *stubReranker) Rerank(ctx context.Context, query string, chunks []models.RetrievedChunk, topN int) ([]models.ScoredChunk, error) {
	s.gotTopN = topN
	if s.err != nil {
		return nil, s.err
	}
	if topN > len(chunks) {
		topN = len(chunks)
	}
	out := make([]models.ScoredChunk, topN)
	for i := 0; i < topN; i++ {
		out[i] = models.ScoredChunk{Chunk: chunks[i].Chunk, Score: 1 - float64(i)*0.1}
	}
	return out, nil
}

// echoGenerator returns the prompt it was handed, which lets tests verify
// prompt assembly.
type echoGenerator struct{}

func (echoGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return prompt, nil
}

type errGenerator struct{ err error }

func (g errGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return "", g.err
}

func testConfig() *config.RAGConfig {
	return &config.RAGConfig{TopK: 5, TopN: 3, GenTimeoutSecs: 1}
}

func retrievedChunks(texts ...string) []models.RetrievedChunk {
	out := make([]models.RetrievedChunk, len(texts))
	for i, text := range texts {
		out[i] = models.RetrievedChunk{
			Chunk:    models.Chunk{SourceFile: "paper.pdf", ChunkIndex: i, Text: text},
			Distance: float32(i),
		}
	}
	return out
}

func TestQueryAssemblesGroundedPrompt(t *testing.T) {
	ret := &stubRetriever{chunks: retrievedChunks("first passage", "second passage", "third passage", "fourth passage")}
	rr := &stubReranker{}
	r := NewRAG(ret, rr, echoGenerator{}, testConfig())

	resp, err := r.Query(context.Background(), "what is a vector space?")
	require.NoError(t, err)

	assert.Equal(t, 5, ret.gotK)
	assert.Equal(t, 3, rr.gotTopN)

	assert.Contains(t, resp.Content, "Question: what is a vector space?")
	assert.True(t, strings.HasPrefix(resp.Content, "Context:\n"), "prompt starts with the context block")
	assert.True(t, strings.HasSuffix(resp.Content, "\nAnswer:"))
	assert.Contains(t, resp.Content, "first passage\n\nsecond passage\n\nthird passage")
	assert.NotContains(t, resp.Content, "fourth passage", "only the reranked top-n feeds the prompt")
	assert.Equal(t, []string{"paper.pdf"}, resp.Sources)
}

func TestAnswerReturnsContent(t *testing.T) {
	ret := &stubRetriever{chunks: retrievedChunks("only passage")}
	r := NewRAG(ret, &stubReranker{}, echoGenerator{}, testConfig())

	answer, err := r.Answer(context.Background(), "short question")
	require.NoError(t, err)
	assert.Contains(t, answer, "Question: short question")
}

func TestQueryRetrieverErrorPropagates(t *testing.T) {
	wantErr := errors.New("index is empty")
	r := NewRAG(&stubRetriever{err: wantErr}, &stubReranker{}, echoGenerator{}, testConfig())

	_, err := r.Query(context.Background(), "q")
	assert.ErrorIs(t, err, wantErr)
}

func TestQueryRerankerErrorPropagates(t *testing.T) {
	wantErr := errors.New("scoring failed")
	ret := &stubRetriever{chunks: retrievedChunks("a")}
	r := NewRAG(ret, &stubReranker{err: wantErr}, echoGenerator{}, testConfig())

	_, err := r.Query(context.Background(), "q")
	assert.ErrorIs(t, err, wantErr)
}

func TestQueryGenerationTimeout(t *testing.T) {
	ret := &stubRetriever{chunks: retrievedChunks("a")}
	r := NewRAG(ret, &stubReranker{}, errGenerator{err: context.DeadlineExceeded}, testConfig())

	_, err := r.Query(context.Background(), "q")
	assert.ErrorIs(t, err, ErrGenerationTimeout)
}

func TestQueryGenerationFailurePropagates(t *testing.T) {
	wantErr := errors.New("completion API returned 500")
	ret := &stubRetriever{chunks: retrievedChunks("a")}
	r := NewRAG(ret, &stubReranker{}, errGenerator{err: wantErr}, testConfig())

	_, err := r.Query(context.Background(), "q")
	assert.ErrorIs(t, err, wantErr)
	assert.NotErrorIs(t, err, ErrGenerationTimeout)
}
