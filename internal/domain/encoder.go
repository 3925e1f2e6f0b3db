package domain

import "context"

// VectorEncoder defines the capability to turn text into fixed-length
// embedding vectors. Dimensions is a corpus-wide constant that must match
// the configured vector index; a mismatch is a ConfigurationError at
// startup, not a per-query failure.
type VectorEncoder interface {
	// Encode embeds a single text. Errors are fatal for the calling query.
	Encode(ctx context.Context, text string) ([]float32, error)
	// EncodeBatch embeds multiple texts in one call.
	EncodeBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Version() string
}
