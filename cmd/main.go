package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"paper-rag/internal/config"
	"paper-rag/internal/embedding"
	"paper-rag/internal/index"
	"paper-rag/internal/ingest"
	"paper-rag/internal/llmservice"
	"paper-rag/internal/rag"
	"paper-rag/internal/rerank"
	"paper-rag/internal/retriever"
	"paper-rag/internal/store"
)

const defaultConfigPath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	_ = godotenv.Load()

	configPath := flag.String("config", defaultConfigPath, "Path to the config file")
	corpusDir := flag.String("corpus", "", "Directory of documents to ingest")
	query := flag.String("query", "", "Question to answer against the index")
	topK := flag.Int("k", 0, "Retrieval candidate count (overrides config)")
	topN := flag.Int("n", 0, "Context chunk count after reranking (overrides config)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	if *topK > 0 {
		cfg.RAG.TopK = *topK
	}
	if *topN > 0 {
		cfg.RAG.TopN = *topN
	}

	ctx := context.Background()
	switch {
	case *corpusDir != "" && *query != "":
		log.Fatal().Msg("Please provide either -corpus or -query, but not both")
	case *corpusDir != "":
		ingestCorpus(ctx, cfg, *corpusDir)
	case *query != "":
		answerQuery(ctx, cfg, *query)
	default:
		flag.Usage()
	}
}

func ingestCorpus(ctx context.Context, cfg *config.Config, dir string) {
	st, cleanup := newStore(ctx, cfg)
	defer cleanup()

	// Extend an existing index when one is on disk. Only a store with
	// neither file present starts fresh; a surviving half of a crashed
	// write surfaces as a pairing violation and stops the run.
	if err := st.Load(); err != nil {
		if !errors.Is(err, index.ErrIndexNotFound) {
			log.Fatal().Err(err).Msg("Error loading existing store")
		}
	}

	embedder, err := embedding.New(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	pipeline := ingest.NewPipeline(embedder, st, cfg.RAG.ChunkSize)
	report, err := pipeline.IngestCorpus(ctx, dir)
	if err != nil {
		log.Fatal().Err(err).Msg("Error ingesting corpus")
	}

	fmt.Printf("Indexed %d chunks from %d files (run %s)\n", report.ChunksIndexed, report.FilesProcessed, report.RunID)
}

func answerQuery(ctx context.Context, cfg *config.Config, query string) {
	st, cleanup := newStore(ctx, cfg)
	defer cleanup()

	if err := st.Load(); err != nil {
		log.Fatal().Err(err).Msg("Error loading store")
	}

	embedder, err := embedding.New(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}
	generator, err := llmservice.NewLLMGenerator(&cfg.GenLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing generator")
	}

	engine := rag.NewRAG(
		retriever.New(embedder, st),
		rerank.New(rerank.NewHTTPScorer(&cfg.Rerank)),
		generator,
		&cfg.RAG,
	)

	response, err := engine.Query(ctx, query)
	if err != nil {
		log.Fatal().Err(err).Msg("Error querying")
	}

	log.Info().Msg("Query: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", response.Query)

	log.Info().Msg("Sources: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	for _, source := range response.Sources {
		fmt.Printf("%s\n", source)
	}
	fmt.Println()

	log.Info().Msg("Assistant: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", response.Content)
}

func newStore(ctx context.Context, cfg *config.Config) (store.Store, func()) {
	switch cfg.RAG.Store {
	case "flat":
		return store.NewFlatStore(cfg.RAG.IndexPath, cfg.RAG.MetadataPath), func() {}
	case "chromem":
		st, err := store.NewChromemStore(&cfg.Chromem)
		if err != nil {
			log.Fatal().Err(err).Msg("Error creating chromem store")
		}
		return st, func() {}
	case "postgres":
		sqldb, err := store.ConnectDB(&cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Error connecting to database")
		}
		st := store.NewPostgresStore(sqldb, cfg.Database.Debug)
		if err := st.Init(ctx); err != nil {
			log.Fatal().Err(err).Msg("Error initializing database")
		}
		return st, func() { st.Close() }
	default:
		log.Fatal().Str("store", cfg.RAG.Store).Msg("Unknown store type")
		return nil, nil
	}
}
