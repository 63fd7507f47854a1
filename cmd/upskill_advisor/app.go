package main

import (
	"context"
	"fmt"

	"github.com/jonathan/upskill-advisor/internal/cache"
	"github.com/jonathan/upskill-advisor/internal/catalog"
	"github.com/jonathan/upskill-advisor/internal/config"
	"github.com/jonathan/upskill-advisor/internal/db"
	"github.com/jonathan/upskill-advisor/internal/llm"
	"github.com/jonathan/upskill-advisor/internal/logging"
	"github.com/jonathan/upskill-advisor/internal/pipeline"
	"github.com/jonathan/upskill-advisor/internal/prompts"
	"github.com/jonathan/upskill-advisor/internal/ranking"
	"github.com/jonathan/upskill-advisor/internal/resilience"
	"github.com/jonathan/upskill-advisor/internal/retrieval"
	"github.com/jonathan/upskill-advisor/internal/server"
)

// loadConfig reads the optional config file, applies environment overrides,
// validates the result and initializes logging.
func loadConfig(path string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	return &cfg, nil
}

// app holds the catalog, the advisor and whichever optional backends could
// be reached.
type app struct {
	cfg     *config.Config
	catalog *catalog.Catalog
	advisor *pipeline.Advisor

	llm   llm.Client
	db    appDB
	redis *cache.RedisStore
	index *retrieval.VectorIndex
}

// appDB is the PostgreSQL surface the commands use; *db.DB implements it.
type appDB interface {
	retrieval.VectorStore
	server.RunStore
	EnsureSchema(ctx context.Context, dim int) error
	Close()
}

// buildApp loads the catalog and wires the optional backends. An optional
// backend that is not configured or cannot be reached is left out with a
// warning; the advisor then runs lexical-only or without rerank.
func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	cat, err := catalog.Load(cfg.CoursesPath, cfg.RolesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	log := logging.Ctx(ctx)

	a := &app{cfg: cfg, catalog: cat}

	if cfg.APIKey != "" {
		llmCfg := llm.DefaultGeminiConfig().WithEmbeddingModel(cfg.EmbeddingModel)
		client, err := llm.NewClient(ctx, llmCfg, cfg.APIKey)
		if err != nil {
			log.Warn().Err(err).Msg("LLM client unavailable; semantic search and rerank disabled")
		} else {
			a.llm = client
		}
	}

	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Warn().Err(err).Msg("database unavailable; semantic search and run history disabled")
		} else {
			a.attachDatabase(ctx, database)
		}
	}

	if cfg.RedisAddr != "" {
		store, err := cache.NewRedisStore(ctx, cfg.RedisAddr)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable; embeddings will not be cached")
		} else {
			a.redis = store
		}
	}

	a.assemble(ctx)
	return a, nil
}

// attachDatabase keeps d only when its schema can be created. A database
// without the vector extension is closed and left out.
func (a *app) attachDatabase(ctx context.Context, d appDB) {
	if err := d.EnsureSchema(ctx, a.cfg.EmbeddingDim); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("database schema unavailable; semantic search and run history disabled")
		d.Close()
		return
	}
	a.db = d
}

// assemble builds the retrieval, rerank and advisor chain from whichever
// backends are attached.
func (a *app) assemble(ctx context.Context) {
	cat, cfg, log := a.catalog, a.cfg, logging.Ctx(ctx)

	var semantic retrieval.SemanticIndex
	if a.llm != nil && a.db != nil {
		var embedder retrieval.Embedder = a.llm
		if a.redis != nil {
			embedder = cache.NewCachedEmbedder(a.llm, a.redis, a.llm.EmbeddingModel(), cache.DefaultEmbeddingTTL)
		}
		a.index = retrieval.NewVectorIndex(cat, embedder, a.db, a.breakerConfig("semantic-index"))
		semantic = a.index
	}

	var oracle ranking.Oracle
	if cfg.RerankEnabled && a.llm != nil {
		if err := prompts.Check(); err != nil {
			log.Warn().Err(err).Msg("rerank prompts invalid; rerank disabled")
		} else {
			oracle = ranking.NewLLMJudge(a.llm, cfg.JudgeConcurrency)
		}
	}

	retriever := retrieval.NewRetriever(retrieval.NewLexicalIndex(cat), semantic, retrieval.Options{
		LexicalWeight:   cfg.LexicalWeight,
		VectorWeight:    cfg.VectorWeight,
		SemanticTimeout: cfg.SemanticTimeout(),
	})
	reranker := ranking.NewReranker(cat, oracle, ranking.RerankOptions{
		Timeout: cfg.RerankTimeout(),
		Breaker: a.breakerConfig("rerank-oracle"),
	})

	opts := pipeline.Options{
		RetrievalK: cfg.RetrievalK,
		RerankK:    cfg.RerankK,
		Bias:       ranking.BiasConfig{Step: cfg.BiasStep, Cap: cfg.BiasCap},
	}
	if a.index != nil {
		opts.EmbeddingModel = a.llm.EmbeddingModel()
	}
	a.advisor = pipeline.NewAdvisor(cat, retriever, reranker, opts)
}

func (a *app) breakerConfig(name string) resilience.BreakerConfig {
	cfg := resilience.DefaultBreakerConfig(name)
	if a.cfg.BreakerFailures > 0 {
		cfg.FailureThreshold = uint32(a.cfg.BreakerFailures)
	}
	if a.cfg.BreakerOpenSeconds > 0 {
		cfg.OpenTimeout = a.cfg.BreakerOpenTimeout()
	}
	return cfg
}

// bootstrapIndex fills the semantic index when it is empty. It does nothing
// when the index is not configured.
func (a *app) bootstrapIndex(ctx context.Context) (int, error) {
	if a.index == nil {
		return 0, nil
	}
	return a.index.Bootstrap(ctx)
}

// Close releases every backend connection.
func (a *app) Close() {
	if a.llm != nil {
		if err := a.llm.Close(); err != nil {
			logging.Warn().Err(err).Msg("failed to close LLM client")
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logging.Warn().Err(err).Msg("failed to close redis")
		}
	}
	if a.db != nil {
		a.db.Close()
	}
}
