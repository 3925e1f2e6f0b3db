// Package pinecone implements the vector index contract against a Pinecone
// index over its REST API.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"legal-rag/internal/domain"
)

// Client talks to a single Pinecone index host.
type Client struct {
	Host      string
	Namespace string
	apiKey    string
	client    *http.Client
	logger    *slog.Logger
}

// NewClient constructs a Pinecone index client. Host is the index endpoint
// (e.g. https://legal-docs-xxxx.svc.region.pinecone.io). A missing API key
// is a fatal configuration error.
func NewClient(host, apiKey, namespace string, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, &domain.ConfigurationError{Component: "pinecone", Reason: "missing API key"}
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		Host:      strings.TrimRight(host, "/"),
		Namespace: namespace,
		apiKey:    apiKey,
		client:    httpClient,
		logger:    logger,
	}, nil
}

type queryRequest struct {
	Vector          []float32         `json:"vector"`
	TopK            int               `json:"topK"`
	Filter          map[string]string `json:"filter,omitempty"`
	Namespace       string            `json:"namespace,omitempty"`
	IncludeMetadata bool              `json:"includeMetadata"`
}

type queryMatch struct {
	ID       string            `json:"id"`
	Score    float64           `json:"score"`
	Metadata map[string]string `json:"metadata"`
}

type queryResponse struct {
	Matches []queryMatch `json:"matches"`
}

func (c *Client) Search(ctx context.Context, vector []float32, topK int, filter map[string]string) ([]domain.IndexMatch, error) {
	start := time.Now()

	var resp queryResponse
	err := c.post(ctx, "/query", queryRequest{
		Vector:          vector,
		TopK:            topK,
		Filter:          filter,
		Namespace:       c.Namespace,
		IncludeMetadata: true,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("pinecone query failed: %w", err)
	}

	matches := make([]domain.IndexMatch, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		matches = append(matches, domain.IndexMatch{
			ID:    m.ID,
			Score: m.Score,
			Metadata: domain.IndexMetadata{
				Text:     m.Metadata["text"],
				Source:   m.Metadata["source"],
				Category: m.Metadata["category"],
			},
		})
	}

	c.logger.Info("pinecone_query_completed",
		slog.Int("top_k", topK),
		slog.Int("match_count", len(matches)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))

	return matches, nil
}

type upsertVector struct {
	ID       string            `json:"id"`
	Values   []float32         `json:"values"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type upsertRequest struct {
	Vectors   []upsertVector `json:"vectors"`
	Namespace string         `json:"namespace,omitempty"`
}

func (c *Client) Upsert(ctx context.Context, chunks []domain.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	vectors := make([]upsertVector, len(chunks))
	for i, chunk := range chunks {
		vectors[i] = upsertVector{
			ID:     chunk.ID,
			Values: chunk.Embedding,
			Metadata: map[string]string{
				"text":     chunk.Metadata.Text,
				"source":   chunk.Metadata.Source,
				"category": chunk.Metadata.Category,
			},
		}
	}

	if err := c.post(ctx, "/vectors/upsert", upsertRequest{Vectors: vectors, Namespace: c.Namespace}, nil); err != nil {
		return fmt.Errorf("pinecone upsert failed: %w", err)
	}

	c.logger.Info("pinecone_upsert_completed", slog.Int("vector_count", len(vectors)))
	return nil
}

type deleteRequest struct {
	IDs       []string `json:"ids"`
	Namespace string   `json:"namespace,omitempty"`
}

func (c *Client) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := c.post(ctx, "/vectors/delete", deleteRequest{IDs: ids, Namespace: c.Namespace}, nil); err != nil {
		return fmt.Errorf("pinecone delete failed: %w", err)
	}
	return nil
}

type statsResponse struct {
	Namespaces map[string]struct {
		VectorCount int64 `json:"vectorCount"`
	} `json:"namespaces"`
	Dimension        int   `json:"dimension"`
	TotalVectorCount int64 `json:"totalVectorCount"`
}

func (c *Client) Stats(ctx context.Context) (*domain.IndexStats, error) {
	var resp statsResponse
	if err := c.post(ctx, "/describe_index_stats", struct{}{}, &resp); err != nil {
		return nil, fmt.Errorf("pinecone stats failed: %w", err)
	}

	namespaces := make([]string, 0, len(resp.Namespaces))
	for ns := range resp.Namespaces {
		namespaces = append(namespaces, ns)
	}

	return &domain.IndexStats{
		TotalCount: resp.TotalVectorCount,
		Dimension:  resp.Dimension,
		Namespaces: namespaces,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Host+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

var _ domain.VectorIndex = (*Client)(nil)
