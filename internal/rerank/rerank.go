// Package rerank scores retrieval candidates against the query with a
// cross-encoder model and keeps the best. The second stage is slower but
// more accurate than the first-stage vector search, so it runs over a small
// candidate set only.
package rerank

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"paper-rag/internal/models"
)

// ErrRerankInputEmpty means zero candidates were passed to the reranker.
var ErrRerankInputEmpty = errors.New("no candidates to rerank")

// Scorer is the cross-encoder boundary: given a query and candidate texts,
// return one relevance score per text, in input order. Scoring is
// inference-only; pairs are independent of each other.
type Scorer interface {
	Score(ctx context.Context, query string, texts []string) ([]float64, error)
}

type Reranker struct {
	scorer Scorer
}

func New(scorer Scorer) *Reranker {
	return &Reranker{scorer: scorer}
}

// Rerank scores every (query, chunk) pair, sorts descending by score with
// ties keeping the input order, and returns the first topN. A topN larger
// than the candidate set returns all candidates reranked.
func (r *Reranker) Rerank(ctx context.Context, query string, chunks []models.RetrievedChunk, topN int) ([]models.ScoredChunk, error) {
	if len(chunks) == 0 {
		return nil, ErrRerankInputEmpty
	}
	if topN < 1 {
		return nil, fmt.Errorf("rerank: topN must be >= 1, got %d", topN)
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Chunk.Text
	}
	scores, err := r.scorer.Score(ctx, query, texts)
	if err != nil {
		return nil, err
	}
	if len(scores) != len(chunks) {
		return nil, errors.New("scorer returned wrong number of scores")
	}

	scored := make([]models.ScoredChunk, len(chunks))
	for i, c := range chunks {
		scored[i] = models.ScoredChunk{Chunk: c.Chunk, Score: scores[i]}
	}
	sort.SliceStable(scored, func(a, b int) bool { return scored[a].Score > scored[b].Score })

	if topN > len(scored) {
		topN = len(scored)
	}
	return scored[:topN], nil
}
