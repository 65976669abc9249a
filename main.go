package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	"github.com/gorilla/sessions"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/atelier-ai/atelier-engine/pkg/catalog"
	"github.com/atelier-ai/atelier-engine/pkg/config"
	"github.com/atelier-ai/atelier-engine/pkg/database"
	"github.com/atelier-ai/atelier-engine/pkg/handlers"
	"github.com/atelier-ai/atelier-engine/pkg/llm"
	"github.com/atelier-ai/atelier-engine/pkg/logging"
	"github.com/atelier-ai/atelier-engine/pkg/middleware"
	"github.com/atelier-ai/atelier-engine/pkg/museum"
	"github.com/atelier-ai/atelier-engine/pkg/retrieval"
	"github.com/atelier-ai/atelier-engine/pkg/services"
	"github.com/atelier-ai/atelier-engine/pkg/store"
	"github.com/atelier-ai/atelier-engine/pkg/style"
	"github.com/atelier-ai/atelier-engine/pkg/suggest"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	// Database pool plus schema migrations over a short-lived stdlib handle.
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

	// Session storage: Redis when configured, in-memory otherwise.
	var sessionStore services.SessionStore
	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("connecting to redis", zap.Error(err))
	}
	if redisClient != nil {
		sessionStore = services.NewRedisSessionStore(redisClient, cfg.Redis.SessionTTL)
		logger.Info("using redis session store")
	} else {
		sessionStore = services.NewMemorySessionStore()
		logger.Info("using in-memory session store")
	}

	openAICfg := llm.Config{
		APIKey:         cfg.AI.OpenAI.APIKey,
		Model:          cfg.AI.OpenAI.Model,
		EmbeddingModel: cfg.AI.OpenAI.EmbeddingModel,
	}
	embedder, err := llm.NewClient(&openAICfg, logger)
	if err != nil {
		logger.Fatal("building embedding client", zap.Error(err))
	}
	generator, err := llm.NewGenerationClient(&llm.FactoryConfig{
		Provider: cfg.AI.Provider,
		OpenAI:   openAICfg,
		Anthropic: llm.AnthropicConfig{
			APIKey:    cfg.AI.Anthropic.APIKey,
			Model:     cfg.AI.Anthropic.Model,
			MaxTokens: cfg.AI.Anthropic.MaxTokens,
		},
	}, logger)
	if err != nil {
		logger.Fatal("building generation client", zap.Error(err))
	}

	docs := store.NewPostgresStore(db, logger)
	retriever := retrieval.NewRetriever(embedder, docs, logger)

	cat, err := catalog.Load(cfg.Corpus.CatalogPath)
	if err != nil {
		logger.Fatal("loading artwork catalog", zap.Error(err))
	}

	sampler := style.NewSampler(logger)
	for _, pool := range cfg.Style.Pools {
		if err := sampler.LoadDir(pool.Persona, pool.Dir, cfg.Style.SnippetChars); err != nil {
			logger.Fatal("loading style pool", zap.String("persona", pool.Persona), zap.Error(err))
		}
	}

	museumClient := museum.NewClient(museum.ClientConfig{
		SearchURL: cfg.Museum.SearchURL,
		Profile:   cfg.Museum.Profile,
		MediaType: cfg.Museum.MediaType,
		Timeout:   cfg.Museum.Timeout,
	}, logger)
	registry := museum.NewRegistry()
	for _, mapping := range cfg.Museum.Objects {
		registry.Add(mapping.ArtworkID,
			museum.NewCache(museumClient, mapping.ObjectNumber, cfg.Museum.CacheTTL, logger))
	}
	registry.WarmAll(ctx)

	conversations := services.NewConversationService(
		cat, sessionStore, generator, retriever, sampler, registry,
		services.ConversationConfig{
			MaxQuestions:  cfg.Chat.MaxQuestions,
			StyleExamples: cfg.Chat.StyleExamples,
			RetrievalTopK: cfg.Chat.RetrievalTopK,
		},
		logger,
	)

	// Suggestions are optional; a missing preset table just disables them.
	var suggester handlers.Suggester
	if table, err := suggest.LoadTable(cfg.Corpus.PresetEmbeddings); err != nil {
		logger.Warn("preset embeddings unavailable, suggestions disabled", zap.Error(err))
	} else {
		suggester = suggest.NewEngine(table, embedder, logger)
	}

	if cfg.SessionSecret == "" {
		logger.Fatal("SESSION_SECRET must be set")
	}
	cookies := sessions.NewCookieStore([]byte(cfg.SessionSecret))

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewChatHandler(conversations, suggester, cookies, logger).RegisterRoutes(mux)

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("starting atelier-engine",
		zap.String("addr", addr),
		zap.String("env", cfg.Env))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
