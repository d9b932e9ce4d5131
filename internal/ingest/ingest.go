// Package ingest turns a corpus directory into indexed, searchable chunks.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"paper-rag/internal/helper"
	"paper-rag/internal/models"
	"paper-rag/internal/parser"
	"paper-rag/internal/segmenter"
	"paper-rag/internal/store"
)

// ErrEmptyCorpus means the corpus directory held no ingestible documents.
var ErrEmptyCorpus = errors.New("no processable documents found in corpus")

// Pipeline is the single writer of the store. Concurrent ingestion runs are
// not supported and must be serialized by the caller.
type Pipeline struct {
	embedder  embeddings.Embedder
	store     store.Store
	chunkSize int
}

func NewPipeline(embedder embeddings.Embedder, st store.Store, chunkSize int) *Pipeline {
	return &Pipeline{embedder: embedder, store: st, chunkSize: chunkSize}
}

// IngestCorpus enumerates documents in dir, extracts and segments their
// text, embeds all chunks in one batched call and appends vectors and
// metadata to the store as one logical unit before persisting.
//
// A file that fails extraction is logged and skipped; it does not abort the
// batch. Unrecognized file formats are ignored.
func (p *Pipeline) IngestCorpus(ctx context.Context, dir string) (models.IngestionReport, error) {
	var report models.IngestionReport

	runID, err := helper.GenerateUUID()
	if err != nil {
		return report, err
	}
	report.RunID = runID

	entries, err := os.ReadDir(dir)
	if err != nil {
		return report, fmt.Errorf("read corpus directory: %w", err)
	}

	var chunks []models.Chunk
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if !parser.Supported(path) {
			log.Debug().Str("run_id", runID).Str("file", entry.Name()).Msg("Skipping unrecognized file")
			continue
		}
		text, err := parser.Extract(path)
		if err != nil {
			log.Warn().Err(err).Str("run_id", runID).Str("file", entry.Name()).Msg("Skipping file, extraction failed")
			continue
		}
		fileChunks := segmenter.Split(text, p.chunkSize)
		for i, chunkText := range fileChunks {
			chunks = append(chunks, models.Chunk{SourceFile: entry.Name(), ChunkIndex: i, Text: chunkText})
		}
		report.FilesProcessed++
		log.Debug().Str("run_id", runID).Str("file", entry.Name()).Int("chunks", len(fileChunks)).Msg("Segmented file")
	}

	if report.FilesProcessed == 0 || len(chunks) == 0 {
		return report, ErrEmptyCorpus
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := p.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return report, fmt.Errorf("embed chunks: %w", err)
	}

	if err := p.store.Add(ctx, chunks, vectors); err != nil {
		return report, err
	}
	if err := p.store.Persist(); err != nil {
		return report, err
	}

	report.ChunksIndexed = len(chunks)
	log.Info().Str("run_id", runID).Int("files", report.FilesProcessed).Int("chunks", report.ChunksIndexed).Msg("Corpus ingested")
	return report, nil
}
