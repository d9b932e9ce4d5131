package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"paper-rag/internal/config"
	"paper-rag/internal/index"
	"paper-rag/internal/models"
)

// pgChunk is one indexed chunk row with its pgvector embedding.
type pgChunk struct {
	bun.BaseModel `bun:"table:paper_chunks,alias:pc"`
	ID            int64     `bun:"id,pk,autoincrement"`
	SourceFile    string    `bun:"source_file,notnull"`
	ChunkIndex    int       `bun:"chunk_index,notnull"`
	Content       string    `bun:"content,notnull"`
	Embedding     []float32 `bun:"embedding,notnull,type:vector(768)"`
	Distance      float32   `bun:"distance,scanonly"`
}

// PostgresStore keeps chunks and vectors in one pgvector-backed table; the
// database orders by the `<->` distance operator, so the pairing invariant
// holds per row by construction.
type PostgresStore struct {
	db *bun.DB
}

// ConnectDB opens the pgvector-enabled database from config.
func ConnectDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	dsn := cfg.URL + "?sslmode=disable"
	return sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn), pgdriver.WithPassword(cfg.Key))), nil
}

func NewPostgresStore(sqldb *sql.DB, debug bool) *PostgresStore {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return &PostgresStore{db: db}
}

// Init creates the chunk table if it does not exist.
func (s *PostgresStore) Init(ctx context.Context) error {
	_, err := s.db.NewCreateTable().Model((*pgChunk)(nil)).IfNotExists().Exec(ctx)
	return err
}

func (s *PostgresStore) Add(ctx context.Context, chunks []models.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("add: %d chunks but %d vectors: %w", len(chunks), len(vectors), ErrStoreMismatch)
	}
	if len(chunks) == 0 {
		return nil
	}
	rows := make([]pgChunk, len(chunks))
	for i, c := range chunks {
		rows[i] = pgChunk{
			SourceFile: c.SourceFile,
			ChunkIndex: c.ChunkIndex,
			Content:    c.Text,
			Embedding:  vectors[i],
		}
	}
	_, err := s.db.NewInsert().Model(&rows).Exec(ctx)
	return err
}

func (s *PostgresStore) Search(ctx context.Context, vector []float32, k int) ([]models.RetrievedChunk, error) {
	count, err := s.Len(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, index.ErrIndexEmpty
	}

	var rows []pgChunk
	err = s.db.NewSelect().
		Model(&rows).
		Column("source_file", "chunk_index", "content").
		ColumnExpr("embedding <-> ? AS distance", vector).
		OrderExpr("embedding <-> ?", vector).
		Limit(k).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	retrieved := make([]models.RetrievedChunk, len(rows))
	for i, row := range rows {
		retrieved[i] = models.RetrievedChunk{
			Chunk:    models.Chunk{SourceFile: row.SourceFile, ChunkIndex: row.ChunkIndex, Text: row.Content},
			Distance: row.Distance,
		}
	}
	return retrieved, nil
}

func (s *PostgresStore) Len(ctx context.Context) (int, error) {
	return s.db.NewSelect().Model((*pgChunk)(nil)).Count(ctx)
}

// Persist is a no-op: writes go straight to the database.
func (s *PostgresStore) Persist() error { return nil }

// Load is a no-op: the database is the durable state.
func (s *PostgresStore) Load() error { return nil }

func (s *PostgresStore) Close() error { return s.db.Close() }
