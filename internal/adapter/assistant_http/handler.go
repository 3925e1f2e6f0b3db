// Package assistant_http exposes the legal assistant over HTTP.
package assistant_http

import (
	"errors"
	"net/http"
	"time"

	"legal-rag/internal/domain"
	"legal-rag/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	assistant usecase.LegalAssistantUsecase
	encoder   domain.VectorEncoder
	index     domain.VectorIndex
}

func NewHandler(
	assistant usecase.LegalAssistantUsecase,
	encoder domain.VectorEncoder,
	index domain.VectorIndex,
) *Handler {
	return &Handler{
		assistant: assistant,
		encoder:   encoder,
		index:     index,
	}
}

// Register mounts all routes on the given echo instance.
func (h *Handler) Register(e *echo.Echo) {
	e.POST("/v1/assistant/ask", h.AskQuestion)
	e.GET("/v1/assistant/search", h.SearchByCategory)
	e.GET("/v1/assistant/stats", h.GetStats)
	e.POST("/internal/corpus/upsert", h.UpsertCorpus)
	e.POST("/internal/corpus/delete", h.DeleteCorpus)
	e.GET("/healthz", h.Healthz)
	e.GET("/readyz", h.Readyz)
}

type askRequest struct {
	Question   string  `json:"question"`
	Category   string  `json:"category,omitempty"`
	MaxResults int     `json:"max_results,omitempty"`
	MinScore   float64 `json:"min_score,omitempty"`
}

type articleView struct {
	Number    string `json:"number"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Highlight bool   `json:"highlight"`
	Source    string `json:"source"`
}

type answerView struct {
	Title           string        `json:"title"`
	Content         string        `json:"content"`
	Articles        []articleView `json:"articles"`
	Summary         string        `json:"summary"`
	Disclaimer      string        `json:"disclaimer"`
	Confidence      string        `json:"confidence"`
	NextSteps       []string      `json:"next_steps,omitempty"`
	RelatedTopics   []string      `json:"related_topics,omitempty"`
	GeneratedBy     string        `json:"generated_by"`
	GenerationMode  string        `json:"generation_mode"`
	GenerationModel string        `json:"generation_model,omitempty"`
}

type sourceView struct {
	ID          string  `json:"id"`
	Content     string  `json:"content"`
	RawScore    float64 `json:"raw_score"`
	FinalScore  float64 `json:"final_score"`
	Origin      string  `json:"origin"`
	SourceLabel string  `json:"source_label"`
}

type askResponse struct {
	Answer           answerView   `json:"answer"`
	Sources          []sourceView `json:"sources"`
	Confidence       float64      `json:"confidence"`
	ProcessingTimeMs int64        `json:"processing_time_ms"`
	IndexHitCount    int          `json:"index_hit_count"`
	WebSearchUsed    bool         `json:"web_search_used"`
	GeneratedAt      time.Time    `json:"generated_at"`
}

// Answer a legal question through the full retrieval pipeline
// (POST /v1/assistant/ask)
func (h *Handler) AskQuestion(ctx echo.Context) error {
	var req askRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.Question == "" {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "question is required"})
	}

	result, err := h.assistant.AskQuestion(ctx.Request().Context(), req.Question, req.Category, req.MaxResults, req.MinScore)
	if err != nil {
		var upstream *domain.UpstreamError
		if errors.As(err, &upstream) {
			return ctx.JSON(http.StatusBadGateway, map[string]string{"error": upstream.Error()})
		}
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(http.StatusOK, toAskResponse(result))
}

func toAskResponse(result *domain.RAGResult) askResponse {
	articles := make([]articleView, 0, len(result.Answer.Articles))
	for _, a := range result.Answer.Articles {
		articles = append(articles, articleView{
			Number:    a.Number,
			Title:     a.Title,
			Content:   a.Content,
			Highlight: a.Highlight,
			Source:    a.Source,
		})
	}

	return askResponse{
		Answer: answerView{
			Title:           result.Answer.Title,
			Content:         result.Answer.Content,
			Articles:        articles,
			Summary:         result.Answer.Summary,
			Disclaimer:      result.Answer.Disclaimer,
			Confidence:      string(result.Answer.ConfidenceLabel),
			NextSteps:       result.Answer.NextSteps,
			RelatedTopics:   result.Answer.RelatedTopics,
			GeneratedBy:     result.Answer.Meta.System + "/" + result.Answer.Meta.Version,
			GenerationMode:  string(result.Answer.Meta.Mode),
			GenerationModel: result.Answer.Meta.Model,
		},
		Sources:          toSourceViews(result.Sources),
		Confidence:       result.Confidence,
		ProcessingTimeMs: result.ProcessingTimeMs,
		IndexHitCount:    result.Metadata.IndexHitCount,
		WebSearchUsed:    result.Metadata.WebSearchUsed,
		GeneratedAt:      result.GeneratedAt,
	}
}

func toSourceViews(sources []domain.RankedSource) []sourceView {
	views := make([]sourceView, 0, len(sources))
	for _, s := range sources {
		views = append(views, sourceView{
			ID:          s.ID,
			Content:     s.Content,
			RawScore:    s.RawScore,
			FinalScore:  s.FinalScore,
			Origin:      string(s.Origin),
			SourceLabel: s.SourceLabel,
		})
	}
	return views
}

// Search indexed documents within a category, without answer synthesis
// (GET /v1/assistant/search?category=...&q=...&top_k=...)
func (h *Handler) SearchByCategory(ctx echo.Context) error {
	category := ctx.QueryParam("category")
	if category == "" {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "category is required"})
	}
	query := ctx.QueryParam("q")

	topK := 0
	if err := echo.QueryParamsBinder(ctx).Int("top_k", &topK).BindError(); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid top_k"})
	}

	results, err := h.assistant.SearchByCategory(ctx.Request().Context(), category, query, topK)
	if err != nil {
		var upstream *domain.UpstreamError
		if errors.As(err, &upstream) {
			return ctx.JSON(http.StatusBadGateway, map[string]string{"error": upstream.Error()})
		}
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"category": category,
		"results":  toSourceViews(results),
	})
}

// Corpus and cache statistics
// (GET /v1/assistant/stats)
func (h *Handler) GetStats(ctx echo.Context) error {
	stats, err := h.assistant.GetStats(ctx.Request().Context())
	if err != nil {
		return ctx.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"index": map[string]interface{}{
			"total_count": stats.Index.TotalCount,
			"dimension":   stats.Index.Dimension,
			"namespaces":  stats.Index.Namespaces,
		},
		"query_cache": map[string]interface{}{
			"size":   stats.QueryCache.Size,
			"hits":   stats.QueryCache.Hits,
			"misses": stats.QueryCache.Misses,
		},
	})
}

type upsertRequest struct {
	Documents []upsertDocument `json:"documents"`
}

type upsertDocument struct {
	ID       string `json:"id,omitempty"`
	Text     string `json:"text"`
	Source   string `json:"source"`
	Category string `json:"category"`
}

// Embed and upsert document chunks into the index
// (POST /internal/corpus/upsert)
func (h *Handler) UpsertCorpus(ctx echo.Context) error {
	var req upsertRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if len(req.Documents) == 0 {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "documents are required"})
	}

	texts := make([]string, 0, len(req.Documents))
	for i, doc := range req.Documents {
		if doc.Text == "" {
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "document text is required"})
		}
		if doc.ID == "" {
			req.Documents[i].ID = uuid.New().String()
		}
		texts = append(texts, doc.Text)
	}

	vectors, err := h.encoder.EncodeBatch(ctx.Request().Context(), texts)
	if err != nil {
		return ctx.JSON(http.StatusBadGateway, map[string]string{"error": "embedding failed: " + err.Error()})
	}
	if len(vectors) != len(req.Documents) {
		return ctx.JSON(http.StatusBadGateway, map[string]string{"error": "embedding count mismatch"})
	}

	chunks := make([]domain.DocumentChunk, 0, len(req.Documents))
	for i, doc := range req.Documents {
		chunks = append(chunks, domain.DocumentChunk{
			ID:        doc.ID,
			Embedding: vectors[i],
			Metadata: domain.IndexMetadata{
				Text:     doc.Text,
				Source:   doc.Source,
				Category: doc.Category,
			},
		})
	}

	if err := h.index.Upsert(ctx.Request().Context(), chunks); err != nil {
		return ctx.JSON(http.StatusBadGateway, map[string]string{"error": "index upsert failed: " + err.Error()})
	}

	ids := make([]string, 0, len(chunks))
	for _, c := range chunks {
		ids = append(ids, c.ID)
	}
	return ctx.JSON(http.StatusOK, map[string]interface{}{"upserted": len(chunks), "ids": ids})
}

type deleteRequest struct {
	IDs []string `json:"ids"`
}

// Delete document chunks from the index
// (POST /internal/corpus/delete)
func (h *Handler) DeleteCorpus(ctx echo.Context) error {
	var req deleteRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if len(req.IDs) == 0 {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "ids are required"})
	}

	if err := h.index.Delete(ctx.Request().Context(), req.IDs); err != nil {
		return ctx.JSON(http.StatusBadGateway, map[string]string{"error": "index delete failed: " + err.Error()})
	}

	return ctx.JSON(http.StatusOK, map[string]interface{}{"deleted": len(req.IDs)})
}

func (h *Handler) Healthz(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz verifies the index is reachable.
func (h *Handler) Readyz(ctx echo.Context) error {
	if _, err := h.index.Stats(ctx.Request().Context()); err != nil {
		return ctx.JSON(http.StatusServiceUnavailable, map[string]string{"status": "index unavailable"})
	}
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ready"})
}
