package domain

import "time"

// ConfidenceLabel buckets the retrieval quality score for end users.
// The numeric confidence on RAGResult is a separate, finer-grained value.
type ConfidenceLabel string

const (
	ConfidenceHigh   ConfidenceLabel = "High"
	ConfidenceMedium ConfidenceLabel = "Medium"
	ConfidenceLow    ConfidenceLabel = "Low"
)

// ConfidenceLabelFor maps a quality score onto its user-facing bucket.
func ConfidenceLabelFor(quality float64) ConfidenceLabel {
	switch {
	case quality > 0.8:
		return ConfidenceHigh
	case quality > 0.6:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Article is a cited excerpt surfaced inside a formatted answer.
type Article struct {
	Number    string
	Title     string
	Content   string
	Highlight bool
	Source    string
}

// GenerationMode distinguishes provider-generated answers from the
// deterministic template path so callers can tell them apart.
type GenerationMode string

const (
	ModeGenerated GenerationMode = "generated"
	ModeTemplate  GenerationMode = "template"
)

// GenerationMeta identifies how and when an answer was produced.
type GenerationMeta struct {
	System    string
	Version   string
	Mode      GenerationMode
	Model     string
	Timestamp time.Time
}

// FormattedAnswer is the structured, human-readable answer object.
// Constructed once per query and never mutated afterwards.
type FormattedAnswer struct {
	Title           string
	Content         string
	Articles        []Article
	Summary         string
	Disclaimer      string
	ConfidenceLabel ConfidenceLabel
	NextSteps       []string
	RelatedTopics   []string
	Meta            GenerationMeta
}
