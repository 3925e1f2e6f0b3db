// Package embedder provides the embedding-provider adapter consumed by the
// query pipeline.
package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"legal-rag/internal/domain"
)

const (
	singleTimeout = 30 * time.Second
	batchTimeout  = 60 * time.Second
)

// OllamaEmbedder generates embeddings through Ollama's /api/embed endpoint.
type OllamaEmbedder struct {
	BaseURL    string
	Model      string
	Client     *http.Client
	dimensions int
	limiter    *rate.Limiter
}

// NewOllamaEmbedder constructs an embedder for the given endpoint, model
// and expected dimensionality. Requests are rate limited to smooth bursts
// against a shared provider.
func NewOllamaEmbedder(baseURL, model string, dimensions int, client *http.Client) *OllamaEmbedder {
	if client == nil {
		client = &http.Client{Timeout: batchTimeout}
	}
	return &OllamaEmbedder{
		BaseURL:    baseURL,
		Model:      model,
		Client:     client,
		dimensions: dimensions,
		limiter:    rate.NewLimiter(rate.Limit(10), 20),
	}
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func (e *OllamaEmbedder) Encode(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, singleTimeout)
	defer cancel()

	vectors, err := e.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected 1 embedding, got %d", len(vectors))
	}
	return vectors[0], nil
}

func (e *OllamaEmbedder) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, batchTimeout)
	defer cancel()

	vectors, err := e.embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(vectors))
	}
	return vectors, nil
}

func (e *OllamaEmbedder) embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	start := time.Now()

	jsonData, err := json.Marshal(embedRequest{Model: e.Model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/embed", e.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.Client.Do(req)
	if err != nil {
		slog.Error("embed_request_failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)))
		return nil, fmt.Errorf("failed to call embedding provider: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		slog.Error("embed_bad_status",
			slog.Int("status", resp.StatusCode),
			slog.Duration("elapsed", time.Since(start)))
		return nil, fmt.Errorf("embedding provider returned status: %d", resp.StatusCode)
	}

	var respBody embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	slog.Debug("embed_completed",
		slog.Int("text_count", len(texts)),
		slog.Duration("elapsed", time.Since(start)))

	return respBody.Embeddings, nil
}

func (e *OllamaEmbedder) Dimensions() int {
	return e.dimensions
}

func (e *OllamaEmbedder) Version() string {
	return e.Model
}

// VerifyDimensions probes the provider with a short text and checks the
// returned dimensionality against the configured value. Called once at
// startup; a mismatch is a fatal configuration error, not a per-query one.
func (e *OllamaEmbedder) VerifyDimensions(ctx context.Context) error {
	vector, err := e.Encode(ctx, "probe")
	if err != nil {
		return &domain.UpstreamError{Component: "embedding", Err: err}
	}
	if len(vector) != e.dimensions {
		return &domain.ConfigurationError{
			Component: "embedder",
			Reason: fmt.Sprintf("model %s returns %d dimensions, index expects %d",
				e.Model, len(vector), e.dimensions),
		}
	}
	return nil
}

var _ domain.VectorEncoder = (*OllamaEmbedder)(nil)
