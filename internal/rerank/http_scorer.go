package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"paper-rag/internal/config"
)

// HTTPScorer calls a hosted cross-encoder through a text-embeddings-
// inference style /rerank endpoint. The model is loaded once server-side
// and reused across calls; this client is stateless.
type HTTPScorer struct {
	baseURL string
	key     string
	model   string
	client  *http.Client
}

func NewHTTPScorer(cfg *config.RerankConfig) *HTTPScorer {
	return &HTTPScorer{
		baseURL: cfg.BaseURL,
		key:     cfg.Key,
		model:   cfg.Model,
		client:  &http.Client{Timeout: time.Duration(cfg.TimeoutSecs) * time.Second},
	}
}

type rerankRequest struct {
	Model     string   `json:"model,omitempty"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
}

type rerankResponse struct {
	Results []struct {
		Index int     `json:"index"`
		Score float64 `json:"relevance_score"`
	} `json:"results"`
}

// Score issues one batched rerank call and maps the scores back to input
// order.
func (s *HTTPScorer) Score(ctx context.Context, query string, texts []string) ([]float64, error) {
	payload, err := json.Marshal(rerankRequest{Model: s.model, Query: query, Documents: texts})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/rerank", bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.key != "" {
		req.Header.Set("Authorization", s.key)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("rerank request failed: %d, %s", resp.StatusCode, string(body))
	}

	var parsed rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode rerank response: %w", err)
	}

	scores := make([]float64, len(texts))
	seen := make([]bool, len(texts))
	for _, r := range parsed.Results {
		if r.Index < 0 || r.Index >= len(texts) {
			return nil, fmt.Errorf("rerank response references index %d of %d documents", r.Index, len(texts))
		}
		if seen[r.Index] {
			return nil, fmt.Errorf("rerank response contains duplicate score for document %d", r.Index)
		}
		scores[r.Index] = r.Score
		seen[r.Index] = true
	}
	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("rerank response missing score for document %d", i)
		}
	}
	return scores, nil
}
