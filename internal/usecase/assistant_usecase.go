package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"legal-rag/internal/cache"
	"legal-rag/internal/domain"
)

// AssistantConfig holds facade-level settings.
type AssistantConfig struct {
	CacheTTL  time.Duration
	CacheSize int
	// SearchTopK is the default result count for category search.
	SearchTopK int
}

// DefaultAssistantConfig returns the standard facade settings.
func DefaultAssistantConfig() AssistantConfig {
	return AssistantConfig{
		CacheTTL:   10 * time.Minute,
		CacheSize:  1000,
		SearchTopK: 5,
	}
}

// AssistantStats aggregates corpus and cache statistics for callers.
type AssistantStats struct {
	Index      domain.IndexStats
	QueryCache cache.Stats
}

// LegalAssistantUsecase is the caller-facing facade: question answering
// with query-level caching, category-filtered search without synthesis,
// and corpus statistics.
type LegalAssistantUsecase interface {
	AskQuestion(ctx context.Context, question, category string, maxResults int, minScore float64) (*domain.RAGResult, error)
	SearchByCategory(ctx context.Context, category, query string, topK int) ([]domain.RankedSource, error)
	GetStats(ctx context.Context) (*AssistantStats, error)
}

type legalAssistantUsecase struct {
	pipeline   ProcessQueryUsecase
	encoder    domain.VectorEncoder
	index      domain.VectorIndex
	queryCache *cache.ResultCache
	cfg        AssistantConfig
	logger     *slog.Logger
}

// NewLegalAssistantUsecase creates the facade over the query pipeline.
func NewLegalAssistantUsecase(
	pipeline ProcessQueryUsecase,
	encoder domain.VectorEncoder,
	index domain.VectorIndex,
	cfg AssistantConfig,
	logger *slog.Logger,
) LegalAssistantUsecase {
	return &legalAssistantUsecase{
		pipeline:   pipeline,
		encoder:    encoder,
		index:      index,
		queryCache: cache.New(cfg.CacheSize, cfg.CacheTTL),
		cfg:        cfg,
		logger:     logger,
	}
}

func (u *legalAssistantUsecase) AskQuestion(ctx context.Context, question, category string, maxResults int, minScore float64) (*domain.RAGResult, error) {
	key := cache.Key(question, category)
	if cached, ok := u.queryCache.Get(key); ok {
		u.logger.Debug("assistant_cache_hit", slog.String("key", key))
		return cached, nil
	}

	result, err := u.pipeline.ProcessQuery(ctx, domain.Query{
		Question:   question,
		Context:    category,
		MaxResults: maxResults,
		MinScore:   minScore,
	})
	if err != nil {
		return nil, err
	}

	u.queryCache.Set(key, result)
	return result, nil
}

// SearchByCategory returns ranked index documents without running answer
// synthesis. An empty query falls back to the category name itself.
func (u *legalAssistantUsecase) SearchByCategory(ctx context.Context, category, query string, topK int) ([]domain.RankedSource, error) {
	if category == "" {
		return nil, fmt.Errorf("category is required")
	}
	if query == "" {
		query = category
	}
	if topK <= 0 {
		topK = u.cfg.SearchTopK
	}

	vector, err := u.encoder.Encode(ctx, domain.NormalizeQuestion(query))
	if err != nil {
		return nil, &domain.UpstreamError{Component: "embedding", Err: err}
	}

	matches, err := u.index.Search(ctx, vector, topK, map[string]string{"category": category})
	if err != nil {
		return nil, &domain.UpstreamError{Component: "vector index", Err: err}
	}

	candidates := make([]domain.SourceCandidate, 0, len(matches))
	for _, m := range matches {
		candidates = append(candidates, domain.SourceCandidate{
			ID:          m.ID,
			Content:     m.Metadata.Text,
			RawScore:    m.Score,
			Origin:      domain.OriginIndex,
			SourceLabel: m.Metadata.Source,
			Metadata:    map[string]string{"category": m.Metadata.Category},
		})
	}

	ranked := make([]domain.RankedSource, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, domain.RankedSource{
			SourceCandidate: c,
			FinalScore:      c.RawScore * c.Origin.Weight(),
		})
	}
	return ranked, nil
}

func (u *legalAssistantUsecase) GetStats(ctx context.Context) (*AssistantStats, error) {
	indexStats, err := u.index.Stats(ctx)
	if err != nil {
		return nil, &domain.UpstreamError{Component: "vector index", Err: err}
	}

	return &AssistantStats{
		Index:      *indexStats,
		QueryCache: u.queryCache.Stats(),
	}, nil
}
