// Command build-index populates the document store from the corpus file
// and precomputes the preset-question embedding table. Run it once
// before starting the engine; re-runs skip artworks that already have
// chunks.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/atelier-ai/atelier-engine/pkg/catalog"
	"github.com/atelier-ai/atelier-engine/pkg/config"
	"github.com/atelier-ai/atelier-engine/pkg/database"
	"github.com/atelier-ai/atelier-engine/pkg/llm"
	"github.com/atelier-ai/atelier-engine/pkg/logging"
	"github.com/atelier-ai/atelier-engine/pkg/services"
	"github.com/atelier-ai/atelier-engine/pkg/store"
	"github.com/atelier-ai/atelier-engine/pkg/suggest"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	skipPresets := flag.Bool("skip-presets", false, "skip preset embedding generation")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()

	migrationDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("opening migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("running migrations", zap.Error(err))
	}
	_ = migrationDB.Close()

	embedder, err := llm.NewClient(&llm.Config{
		APIKey:         cfg.AI.OpenAI.APIKey,
		Model:          cfg.AI.OpenAI.Model,
		EmbeddingModel: cfg.AI.OpenAI.EmbeddingModel,
	}, logger)
	if err != nil {
		logger.Fatal("building embedding client", zap.Error(err))
	}

	corpus, err := services.LoadCorpus(cfg.Corpus.Path)
	if err != nil {
		logger.Fatal("loading corpus", zap.Error(err))
	}

	docs := store.NewPostgresStore(db, logger)
	indexer := services.NewIndexingService(embedder, docs, cfg.Corpus.ChunkSize, logger)
	if err := indexer.IndexAll(ctx, corpus); err != nil {
		logger.Fatal("indexing incomplete", zap.Error(err))
	}
	logger.Info("indexing complete", zap.Int("artworks", len(corpus)))

	if *skipPresets {
		return
	}
	if err := buildPresetTable(ctx, cfg, embedder, logger); err != nil {
		logger.Fatal("building preset embeddings", zap.Error(err))
	}
}

// buildPresetTable embeds every catalog preset question and writes the
// lookup table the suggestion engine loads at startup.
func buildPresetTable(ctx context.Context, cfg *config.Config, embedder llm.EmbeddingClient, logger *zap.Logger) error {
	cat, err := catalog.Load(cfg.Corpus.CatalogPath)
	if err != nil {
		return err
	}

	table := suggest.Table{}
	for _, artwork := range cat.List() {
		if len(artwork.Presets) == 0 {
			continue
		}
		presets := suggest.ArtworkPresets{Questions: artwork.Presets}
		for _, q := range artwork.Presets {
			vector, err := embedder.CreateEmbedding(ctx, q)
			if err != nil {
				return err
			}
			presets.Embeddings = append(presets.Embeddings, vector)
		}
		table[artwork.ID] = presets
		logger.Info("presets embedded",
			zap.String("artwork_id", artwork.ID),
			zap.Int("questions", len(artwork.Presets)))
	}

	raw, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(cfg.Corpus.PresetEmbeddings, raw, 0o644)
}
