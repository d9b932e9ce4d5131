package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rag:
  chunk_size: 250
  top_k: 8
  store: chromem
embed_llm:
  provider: ollama
  base_url: http://localhost:11434
  model: nomic-embed-text
gen_llm:
  provider: openai
  base_url: https://example.test/v1
  key: Bearer token
  model: gpt-4o-mini
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.RAG.ChunkSize)
	assert.Equal(t, 8, cfg.RAG.TopK)
	assert.Equal(t, "chromem", cfg.RAG.Store)
	assert.Equal(t, "nomic-embed-text", cfg.EmbedLLM.Model)
	assert.Equal(t, "gpt-4o-mini", cfg.GenLLM.Model)

	// Unset fields fall back to defaults.
	assert.Equal(t, 3, cfg.RAG.TopN)
	assert.Equal(t, 60, cfg.RAG.GenTimeoutSecs)
	assert.Equal(t, "./vectordb/index.gob", cfg.RAG.IndexPath)
	assert.Equal(t, "paper_chunks", cfg.Chromem.Collection)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rag: [unclosed"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
