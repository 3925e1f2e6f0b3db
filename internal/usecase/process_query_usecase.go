package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"legal-rag/internal/cache"
	"legal-rag/internal/domain"
)

// qualityEpsilon absorbs float drift when averaged scores land exactly on
// the quality threshold, so a nominal 0.8 average does not trip the gate.
const qualityEpsilon = 1e-9

// PipelineConfig holds the tunable thresholds of the query pipeline.
type PipelineConfig struct {
	// QualityThreshold is the retrieval quality below which the web
	// fallback triggers.
	QualityThreshold float64
	// MinIndexSources is the kept-candidate count below which the web
	// fallback triggers regardless of quality.
	MinIndexSources int
	// OverFetch multiplies MaxResults when querying the index so that
	// score filtering still leaves enough candidates.
	OverFetch int
	// CacheTTL and CacheSize configure the orchestrator-adjacent cache.
	CacheTTL  time.Duration
	CacheSize int
}

// DefaultPipelineConfig returns the standard pipeline thresholds.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		QualityThreshold: 0.8,
		MinIndexSources:  2,
		OverFetch:        2,
		CacheTTL:         5 * time.Minute,
		CacheSize:        500,
	}
}

// Validate checks the configuration values.
func (c PipelineConfig) Validate() error {
	if c.QualityThreshold <= 0 || c.QualityThreshold > 1 {
		return fmt.Errorf("qualityThreshold must be in (0, 1], got %f", c.QualityThreshold)
	}
	if c.MinIndexSources < 0 {
		return fmt.Errorf("minIndexSources must be non-negative, got %d", c.MinIndexSources)
	}
	if c.OverFetch < 1 {
		return fmt.Errorf("overFetch must be at least 1, got %d", c.OverFetch)
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cacheSize must be positive, got %d", c.CacheSize)
	}
	return nil
}

// ProcessQueryUsecase runs the full retrieval-augmented pipeline for one
// legal question.
type ProcessQueryUsecase interface {
	ProcessQuery(ctx context.Context, query domain.Query) (*domain.RAGResult, error)
}

type processQueryUsecase struct {
	encoder     domain.VectorEncoder
	index       domain.VectorIndex
	webSearcher domain.WebSearcher
	synthesizer AnswerSynthesizer
	synonyms    *SynonymTable
	guidance    *GuidanceTable
	resultCache *cache.ResultCache
	cfg         PipelineConfig
	logger      *slog.Logger
}

// NewProcessQueryUsecase wires the pipeline components together. The web
// searcher may be nil, in which case degraded retrieval is answered from
// index results alone.
func NewProcessQueryUsecase(
	encoder domain.VectorEncoder,
	index domain.VectorIndex,
	webSearcher domain.WebSearcher,
	synthesizer AnswerSynthesizer,
	synonyms *SynonymTable,
	guidance *GuidanceTable,
	cfg PipelineConfig,
	logger *slog.Logger,
) ProcessQueryUsecase {
	return &processQueryUsecase{
		encoder:     encoder,
		index:       index,
		webSearcher: webSearcher,
		synthesizer: synthesizer,
		synonyms:    synonyms,
		guidance:    guidance,
		resultCache: cache.New(cfg.CacheSize, cfg.CacheTTL),
		cfg:         cfg,
		logger:      logger,
	}
}

func (u *processQueryUsecase) ProcessQuery(ctx context.Context, query domain.Query) (*domain.RAGResult, error) {
	if strings.TrimSpace(query.Question) == "" {
		return nil, fmt.Errorf("question is required")
	}
	q := query.Normalized()

	key := cache.Key(q.Question, q.Context)
	if cached, ok := u.resultCache.Get(key); ok {
		u.logger.Debug("pipeline_cache_hit", slog.String("key", key))
		return cached, nil
	}

	start := time.Now()

	// Preprocess and embed. Embedding failures are fatal: nothing
	// downstream can proceed without a vector.
	augmented := u.synonyms.PreprocessQuestion(q.Question)
	vector, err := u.encoder.Encode(ctx, augmented)
	if err != nil {
		return nil, &domain.UpstreamError{Component: "embedding", Err: err}
	}

	candidates, err := u.primaryRetrieval(ctx, vector, q)
	if err != nil {
		return nil, err
	}

	quality := domain.RetrievalQuality(candidates)

	webUsed := false
	if u.cfg.QualityThreshold-quality > qualityEpsilon || len(candidates) < u.cfg.MinIndexSources {
		webCandidates := u.webFallback(ctx, q.Question)
		webUsed = len(webCandidates) > 0
		candidates = append(candidates, webCandidates...)
	}

	sources := domain.FuseSources(candidates)

	answer := u.synthesizer.Synthesize(ctx, q.Question, sources)
	answer.ConfidenceLabel = domain.ConfidenceLabelFor(quality)
	answer.NextSteps, answer.RelatedTopics = u.guidance.For(q.Question)

	result := &domain.RAGResult{
		Answer:           answer,
		Sources:          sources,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		Confidence:       domain.ConfidenceScore(quality, len(sources)),
		Metadata: domain.ResultMetadata{
			IndexHitCount:       countOrigin(sources, domain.OriginIndex),
			WebSearchUsed:       webUsed,
			EmbeddingDimensions: u.encoder.Dimensions(),
			ModelName:           u.encoder.Version(),
		},
		GeneratedAt: time.Now(),
	}

	u.resultCache.Set(key, result)

	u.logger.Info("pipeline_completed",
		slog.String("key", key),
		slog.Float64("quality", quality),
		slog.Float64("confidence", result.Confidence),
		slog.Int("source_count", len(sources)),
		slog.Bool("web_search_used", webUsed),
		slog.Int64("duration_ms", result.ProcessingTimeMs))

	return result, nil
}

// primaryRetrieval over-fetches from the index, filters by the score
// threshold, then truncates to MaxResults, in that exact order.
func (u *processQueryUsecase) primaryRetrieval(ctx context.Context, vector []float32, q domain.Query) ([]domain.SourceCandidate, error) {
	var filter map[string]string
	if q.Context != "" {
		filter = map[string]string{"category": q.Context}
	}

	topK := u.cfg.OverFetch * q.MaxResults
	matches, err := u.index.Search(ctx, vector, topK, filter)
	if err != nil {
		return nil, &domain.UpstreamError{Component: "vector index", Err: err}
	}

	filtered := make([]domain.IndexMatch, 0, len(matches))
	for _, m := range matches {
		if m.Score >= q.MinScore {
			filtered = append(filtered, m)
		}
	}
	if len(filtered) > q.MaxResults {
		filtered = filtered[:q.MaxResults]
	}

	candidates := make([]domain.SourceCandidate, 0, len(filtered))
	for _, m := range filtered {
		candidates = append(candidates, domain.SourceCandidate{
			ID:          m.ID,
			Content:     m.Metadata.Text,
			RawScore:    m.Score,
			Origin:      domain.OriginIndex,
			SourceLabel: m.Metadata.Source,
			Metadata:    map[string]string{"category": m.Metadata.Category},
		})
	}

	u.logger.Info("vector_search_completed",
		slog.Int("fetched", len(matches)),
		slog.Int("kept", len(candidates)),
		slog.Float64("min_score", q.MinScore))

	return candidates, nil
}

// webFallback performs the supplementary web search. Best effort: any
// failure is logged and treated as zero results.
func (u *processQueryUsecase) webFallback(ctx context.Context, question string) []domain.SourceCandidate {
	if u.webSearcher == nil {
		return nil
	}

	results, err := u.webSearcher.Search(ctx, question)
	if err != nil {
		u.logger.Warn("web_fallback_failed", slog.String("error", err.Error()))
		return nil
	}

	candidates := make([]domain.SourceCandidate, 0, len(results))
	for i, r := range results {
		candidates = append(candidates, domain.SourceCandidate{
			ID:          fmt.Sprintf("web-%d", i+1),
			Content:     r.Content,
			RawScore:    r.Score,
			Origin:      domain.OriginWeb,
			SourceLabel: r.SourceLabel,
		})
	}

	u.logger.Info("web_fallback_completed", slog.Int("result_count", len(candidates)))
	return candidates
}

func countOrigin(sources []domain.RankedSource, origin domain.Origin) int {
	count := 0
	for _, s := range sources {
		if s.Origin == origin {
			count++
		}
	}
	return count
}
