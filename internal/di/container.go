package di

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"legal-rag/internal/adapter/embedder"
	"legal-rag/internal/adapter/generation"
	"legal-rag/internal/adapter/memindex"
	"legal-rag/internal/adapter/pgindex"
	"legal-rag/internal/adapter/pinecone"
	"legal-rag/internal/adapter/websearch"
	"legal-rag/internal/domain"
	"legal-rag/internal/infra"
	"legal-rag/internal/infra/config"
	"legal-rag/internal/infra/httpclient"
	"legal-rag/internal/usecase"
)

// ApplicationComponents holds all wired dependencies for the application.
type ApplicationComponents struct {
	Encoder domain.VectorEncoder
	Index   domain.VectorIndex

	PipelineUsecase  usecase.ProcessQueryUsecase
	AssistantUsecase usecase.LegalAssistantUsecase

	// Pool is nil unless the pgvector backend is selected.
	Pool *pgxpool.Pool
}

// NewApplicationComponents wires all dependencies from config. The
// embedding dimensionality is verified against the provider before
// anything is served; a mismatch is fatal at startup.
func NewApplicationComponents(ctx context.Context, cfg *config.Config, log *slog.Logger) (*ApplicationComponents, error) {
	// Shared HTTP clients with connection pooling
	embedderHTTP := httpclient.NewPooledClient(90 * time.Second)
	indexHTTP := httpclient.NewPooledClient(30 * time.Second)
	webSearchHTTP := httpclient.NewPooledClient(15 * time.Second)
	generationHTTP := httpclient.NewPooledClient(120 * time.Second)

	encoder := embedder.NewOllamaEmbedder(cfg.EmbedderURL, cfg.EmbeddingModel, cfg.EmbeddingDimensions, embedderHTTP)
	if err := encoder.VerifyDimensions(ctx); err != nil {
		return nil, err
	}

	var (
		index domain.VectorIndex
		pool  *pgxpool.Pool
	)
	switch cfg.IndexBackend {
	case config.BackendPinecone:
		client, err := pinecone.NewClient(cfg.PineconeHost, cfg.PineconeAPIKey, cfg.PineconeNamespace, indexHTTP, log)
		if err != nil {
			return nil, err
		}
		index = client
	case config.BackendPgvector:
		var err error
		pool, err = infra.NewPostgresDB(ctx, cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		index = pgindex.NewRepository(pool, cfg.EmbeddingDimensions)
	case config.BackendMemory:
		index = memindex.NewStore(cfg.EmbeddingDimensions)
	default:
		return nil, &domain.ConfigurationError{
			Component: "vector index",
			Reason:    fmt.Sprintf("unknown backend %q", cfg.IndexBackend),
		}
	}

	// Web fallback is optional
	var webSearcher domain.WebSearcher
	if cfg.WebSearchURL != "" {
		webSearcher = websearch.NewClient(cfg.WebSearchURL, webSearchHTTP)
		log.Info("web_fallback_enabled", slog.String("url", cfg.WebSearchURL))
	}

	// Answer generation is optional; the template path always works
	var synthesizer usecase.AnswerSynthesizer = usecase.NewTemplateSynthesizer()
	if cfg.GenerationURL != "" {
		generator := generation.NewOllamaGenerator(cfg.GenerationURL, cfg.GenerationModel, generationHTTP, log)
		synthesizer = usecase.NewGeneratorSynthesizer(generator, log)
		log.Info("generation_enabled",
			slog.String("url", cfg.GenerationURL),
			slog.String("model", cfg.GenerationModel))
	}

	pipelineCfg := usecase.PipelineConfig{
		QualityThreshold: cfg.QualityThreshold,
		MinIndexSources:  cfg.MinIndexSources,
		OverFetch:        cfg.OverFetch,
		CacheTTL:         cfg.PipelineCacheTTL,
		CacheSize:        cfg.PipelineCacheMax,
	}
	if err := pipelineCfg.Validate(); err != nil {
		return nil, &domain.ConfigurationError{Component: "pipeline", Reason: err.Error()}
	}

	pipelineUsecase := usecase.NewProcessQueryUsecase(
		encoder, index, webSearcher, synthesizer,
		usecase.DefaultSynonymTable(), usecase.DefaultGuidanceTable(),
		pipelineCfg, log,
	)

	assistantUsecase := usecase.NewLegalAssistantUsecase(
		pipelineUsecase, encoder, index,
		usecase.AssistantConfig{
			CacheTTL:   cfg.AssistantCacheTTL,
			CacheSize:  cfg.AssistantCacheMax,
			SearchTopK: cfg.SearchTopK,
		},
		log,
	)

	return &ApplicationComponents{
		Encoder:          encoder,
		Index:            index,
		PipelineUsecase:  pipelineUsecase,
		AssistantUsecase: assistantUsecase,
		Pool:             pool,
	}, nil
}

// Close releases resources held by the container.
func (c *ApplicationComponents) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}
