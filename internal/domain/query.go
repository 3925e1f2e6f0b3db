package domain

import "time"

const (
	// DefaultMaxResults bounds how many index candidates survive filtering.
	DefaultMaxResults = 5
	// DefaultMinScore is the similarity threshold applied to index matches.
	DefaultMinScore = 0.7
)

// Query represents a single legal question submitted to the pipeline.
// A Query is immutable once submitted; defaults are resolved via Normalized.
type Query struct {
	Question   string
	UserID     string
	Context    string // category tag, empty means unfiltered
	MaxResults int
	MinScore   float64
}

// Normalized returns a copy with zero-value fields replaced by defaults.
func (q Query) Normalized() Query {
	if q.MaxResults <= 0 {
		q.MaxResults = DefaultMaxResults
	}
	if q.MinScore <= 0 {
		q.MinScore = DefaultMinScore
	}
	return q
}

// Origin identifies which retrieval path produced a candidate.
type Origin string

const (
	OriginIndex Origin = "index"
	OriginWeb   Origin = "web"
)

// Weight returns the fusion weight applied to raw scores from this origin.
func (o Origin) Weight() float64 {
	if o == OriginWeb {
		return 0.7
	}
	return 1.0
}

// SourceCandidate is a scored excerpt produced by the vector index or the
// web-search fallback. Candidates are never mutated after creation; fusion
// re-scores them into RankedSources.
type SourceCandidate struct {
	ID          string
	Content     string
	RawScore    float64
	Origin      Origin
	SourceLabel string
	Metadata    map[string]string
}

// RankedSource is a SourceCandidate with its fused score.
type RankedSource struct {
	SourceCandidate
	FinalScore float64
}

// ResultMetadata carries pipeline diagnostics attached to every result.
type ResultMetadata struct {
	IndexHitCount       int
	WebSearchUsed       bool
	EmbeddingDimensions int
	ModelName           string
}

// RAGResult is the unit returned to callers and stored in caches.
type RAGResult struct {
	Answer           *FormattedAnswer
	Sources          []RankedSource
	ProcessingTimeMs int64
	Confidence       float64
	Metadata         ResultMetadata
	GeneratedAt      time.Time
}
