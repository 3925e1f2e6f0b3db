package domain

import "context"

// GeneratedAnswer is the structured output of the generation provider.
type GeneratedAnswer struct {
	Title   string
	Content string
	Summary string
}

// AnswerGenerator defines the optional text-generation capability. When no
// generator is configured, or a call fails, the deterministic template
// path is used instead; generator failures never surface to callers.
type AnswerGenerator interface {
	Generate(ctx context.Context, question string, sources []RankedSource) (*GeneratedAnswer, error)
	ModelName() string
}
