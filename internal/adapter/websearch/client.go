// Package websearch provides the supplementary retrieval client used when
// index results fall below the quality gate.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"legal-rag/internal/domain"
)

// Client queries an external search endpoint for scored text snippets.
// The whole path is best-effort: callers treat errors as zero results.
type Client struct {
	BaseURL string
	client  *http.Client
}

// NewClient builds a web search client against the given base URL.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{BaseURL: baseURL, client: httpClient}
}

type searchResponse struct {
	Results []searchHit `json:"results"`
}

type searchHit struct {
	Content string  `json:"content"`
	Source  string  `json:"source"`
	Score   float64 `json:"score"`
}

func (c *Client) Search(ctx context.Context, query string) ([]domain.WebResult, error) {
	u, err := url.Parse(fmt.Sprintf("%s/v1/search", c.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status: %d", resp.StatusCode)
	}

	var sResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sResp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	results := make([]domain.WebResult, len(sResp.Results))
	for i, hit := range sResp.Results {
		results[i] = domain.WebResult{
			Content:     hit.Content,
			SourceLabel: hit.Source,
			Score:       hit.Score,
		}
	}
	return results, nil
}

var _ domain.WebSearcher = (*Client)(nil)
