package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LLMConfig points at one remote model endpoint.
type LLMConfig struct {
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	Key      string `yaml:"key"`
	Model    string `yaml:"model"`
}

// RerankConfig points at a cross-encoder rerank endpoint.
type RerankConfig struct {
	BaseURL     string `yaml:"base_url"`
	Key         string `yaml:"key"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// DatabaseConfig holds the postgres/pgvector connection for the bun store.
type DatabaseConfig struct {
	URL   string `yaml:"url"`
	Key   string `yaml:"key"`
	Debug bool   `yaml:"debug"`
}

// ChromemConfig holds the chromem-go store location.
type ChromemConfig struct {
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
}

// RAGConfig controls the indexing and retrieval pipeline.
type RAGConfig struct {
	ChunkSize      int    `yaml:"chunk_size"`
	TopK           int    `yaml:"top_k"`
	TopN           int    `yaml:"top_n"`
	Store          string `yaml:"store"` // flat, chromem or postgres
	IndexPath      string `yaml:"index_path"`
	MetadataPath   string `yaml:"metadata_path"`
	GenTimeoutSecs int    `yaml:"gen_timeout_secs"`
}

type Config struct {
	RAG      RAGConfig      `yaml:"rag"`
	EmbedLLM LLMConfig      `yaml:"embed_llm"`
	GenLLM   LLMConfig      `yaml:"gen_llm"`
	Rerank   RerankConfig   `yaml:"rerank"`
	Database DatabaseConfig `yaml:"database"`
	Chromem  ChromemConfig  `yaml:"chromem"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.RAG.ChunkSize <= 0 {
		cfg.RAG.ChunkSize = 500
	}
	if cfg.RAG.TopK <= 0 {
		cfg.RAG.TopK = 5
	}
	if cfg.RAG.TopN <= 0 {
		cfg.RAG.TopN = 3
	}
	if cfg.RAG.Store == "" {
		cfg.RAG.Store = "flat"
	}
	if cfg.RAG.IndexPath == "" {
		cfg.RAG.IndexPath = "./vectordb/index.gob"
	}
	if cfg.RAG.MetadataPath == "" {
		cfg.RAG.MetadataPath = "./vectordb/metadata.gob"
	}
	if cfg.RAG.GenTimeoutSecs <= 0 {
		cfg.RAG.GenTimeoutSecs = 60
	}
	if cfg.Rerank.TimeoutSecs <= 0 {
		cfg.Rerank.TimeoutSecs = 30
	}
	if cfg.Chromem.Collection == "" {
		cfg.Chromem.Collection = "paper_chunks"
	}
	if cfg.Chromem.Path == "" {
		cfg.Chromem.Path = "./chromemdb"
	}
}
