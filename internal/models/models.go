package models

// Chunk is a contiguous window of a document's extracted text. Identity is
// (SourceFile, ChunkIndex); chunks are never mutated after segmentation.
type Chunk struct {
	SourceFile string
	ChunkIndex int
	Text       string
}

// MetadataRecord resolves a vector index position back to its source chunk.
type MetadataRecord struct {
	SourceFile string
	ChunkIndex int
	Text       string
}

// Chunk reconstructs the chunk a metadata record describes.
func (r MetadataRecord) Chunk() Chunk {
	return Chunk{SourceFile: r.SourceFile, ChunkIndex: r.ChunkIndex, Text: r.Text}
}

// RetrievedChunk is a retrieval candidate with its L2 distance to the query.
type RetrievedChunk struct {
	Chunk    Chunk
	Distance float32
}

// ScoredChunk is a reranked candidate with its cross-encoder relevance score.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// IngestionReport summarizes one corpus ingestion run.
type IngestionReport struct {
	RunID          string
	FilesProcessed int
	ChunksIndexed  int
}

// PromptResponse carries a generated answer together with the source files
// the grounding context came from.
type PromptResponse struct {
	Query   string
	Sources []string
	Content string
}
