// Package memindex provides an in-memory vector index for tests and for
// deployments without a configured index. An empty store returns empty
// search results rather than an error, so the pipeline's web fallback can
// compensate.
package memindex

import (
	"context"
	"math"
	"sort"
	"sync"

	"legal-rag/internal/domain"
)

// Store is a mutex-guarded in-memory cosine-similarity index.
type Store struct {
	mu        sync.RWMutex
	chunks    map[string]domain.DocumentChunk
	dimension int
}

// NewStore creates an empty in-memory index with the given dimensionality.
func NewStore(dimension int) *Store {
	return &Store{
		chunks:    make(map[string]domain.DocumentChunk),
		dimension: dimension,
	}
}

func (s *Store) Search(_ context.Context, vector []float32, topK int, filter map[string]string) ([]domain.IndexMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	category := filter["category"]

	var matches []domain.IndexMatch
	for _, chunk := range s.chunks {
		if category != "" && chunk.Metadata.Category != category {
			continue
		}
		matches = append(matches, domain.IndexMatch{
			ID:       chunk.ID,
			Score:    cosineSimilarity(vector, chunk.Embedding),
			Metadata: chunk.Metadata,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (s *Store) Upsert(_ context.Context, chunks []domain.DocumentChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, chunk := range chunks {
		s.chunks[chunk.ID] = chunk
	}
	return nil
}

func (s *Store) Delete(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		delete(s.chunks, id)
	}
	return nil
}

func (s *Store) Stats(_ context.Context) (*domain.IndexStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var namespaces []string
	for _, chunk := range s.chunks {
		if chunk.Metadata.Category != "" && !seen[chunk.Metadata.Category] {
			seen[chunk.Metadata.Category] = true
			namespaces = append(namespaces, chunk.Metadata.Category)
		}
	}
	sort.Strings(namespaces)

	return &domain.IndexStats{
		TotalCount: int64(len(s.chunks)),
		Dimension:  s.dimension,
		Namespaces: namespaces,
	}, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

var _ domain.VectorIndex = (*Store)(nil)
