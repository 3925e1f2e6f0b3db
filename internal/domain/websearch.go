package domain

import "context"

// WebResult is a scored hit from the supplementary web search.
type WebResult struct {
	Content     string
	SourceLabel string
	Score       float64
}

// WebSearcher defines the optional supplementary retrieval path. It is
// best-effort: callers treat any error as zero results. Implementations
// may be stubs.
type WebSearcher interface {
	Search(ctx context.Context, query string) ([]WebResult, error)
}
