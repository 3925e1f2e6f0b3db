package domain

import "context"

// IndexMatch is a single nearest-neighbor hit from the vector index.
type IndexMatch struct {
	ID       string
	Score    float64
	Metadata IndexMetadata
}

// IndexMetadata carries the stored attributes of an indexed chunk.
type IndexMetadata struct {
	Text     string
	Source   string
	Category string
}

// IndexStats describes the indexed corpus.
type IndexStats struct {
	TotalCount int64
	Dimension  int
	Namespaces []string
}

// DocumentChunk is the unit of corpus maintenance writes.
type DocumentChunk struct {
	ID        string
	Embedding []float32
	Metadata  IndexMetadata
}

// VectorIndex stores and queries document chunks by vector similarity.
// Search returns an empty slice rather than an error when the index holds
// no data, so the pipeline's web-fallback branch can compensate. Upsert
// and Delete exist for corpus maintenance and stay off the query hot path.
type VectorIndex interface {
	Search(ctx context.Context, vector []float32, topK int, filter map[string]string) ([]IndexMatch, error)
	Upsert(ctx context.Context, chunks []DocumentChunk) error
	Delete(ctx context.Context, ids []string) error
	Stats(ctx context.Context) (*IndexStats, error)
}
