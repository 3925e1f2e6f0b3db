package domain

import (
	"regexp"
	"strings"
)

var (
	emphasisPattern  = regexp.MustCompile(`[*_]{1,3}`)
	headingPattern   = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	excessNewlines   = regexp.MustCompile(`\n{3,}`)
	whitespaceRuns   = regexp.MustCompile(`\s+`)
	trailingPunctRun = regexp.MustCompile(`[?!.,;:]+$`)
)

// FormatDocumentText strips markdown emphasis and heading markers from raw
// indexed text and collapses runs of three or more newlines down to two.
// Applied whenever indexed content is surfaced to an end user.
func FormatDocumentText(text string) string {
	text = emphasisPattern.ReplaceAllString(text, "")
	text = headingPattern.ReplaceAllString(text, "")
	text = excessNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// NormalizeQuestion canonicalizes a question for matching and cache keys:
// lower-case, trimmed, trailing punctuation stripped, whitespace collapsed.
func NormalizeQuestion(question string) string {
	q := strings.ToLower(strings.TrimSpace(question))
	q = trailingPunctRun.ReplaceAllString(q, "")
	q = whitespaceRuns.ReplaceAllString(q, " ")
	return strings.TrimSpace(q)
}
