package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode/utf8"
)

const (
	// MinChunkRunes is the minimum chunk length in runes. Shorter
	// paragraphs are merged with adjacent ones.
	MinChunkRunes = 80
	// MaxChunkRunes is the maximum chunk length in runes. Longer
	// paragraphs are split at sentence boundaries.
	MaxChunkRunes = 1000
)

// TextChunk is one piece of a split document. Hash is a SHA-256 over the
// content and stays stable across re-ingestions, so it doubles as a
// dedupe key for the index.
type TextChunk struct {
	Ordinal int
	Content string
	Hash    string
}

// ChunkText splits a document body into index-sized chunks. Paragraphs
// are the primary unit; short ones are merged, oversized ones are split
// at sentence boundaries.
func ChunkText(body string) []TextChunk {
	normalized := strings.ReplaceAll(body, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	var paragraphs []string
	for _, part := range strings.Split(normalized, "\n\n") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
	}

	merged := mergeShortParagraphs(paragraphs)
	merged = mergeShortRuns(merged)
	pieces := splitOversized(merged)

	chunks := make([]TextChunk, 0, len(pieces))
	for i, content := range pieces {
		sum := sha256.Sum256([]byte(content))
		chunks = append(chunks, TextChunk{
			Ordinal: i,
			Content: content,
			Hash:    hex.EncodeToString(sum[:]),
		})
	}
	return chunks
}

// mergeShortParagraphs folds paragraphs shorter than MinChunkRunes into
// their neighbors. Accumulated short text attaches to the previous chunk
// when one exists, otherwise it is prepended to the next long paragraph.
func mergeShortParagraphs(paragraphs []string) []string {
	if len(paragraphs) == 0 {
		return paragraphs
	}

	var merged []string
	var pending string

	for _, para := range paragraphs {
		if utf8.RuneCountInString(para) >= MinChunkRunes {
			if pending != "" {
				if utf8.RuneCountInString(pending) < MinChunkRunes {
					if len(merged) > 0 {
						merged[len(merged)-1] += "\n\n" + pending
					} else {
						para = pending + "\n\n" + para
					}
				} else {
					merged = append(merged, pending)
				}
				pending = ""
			}
			merged = append(merged, para)
			continue
		}

		if pending == "" {
			pending = para
		} else {
			pending += "\n\n" + para
		}
	}

	if pending != "" {
		if utf8.RuneCountInString(pending) < MinChunkRunes && len(merged) > 0 {
			merged[len(merged)-1] += "\n\n" + pending
		} else {
			merged = append(merged, pending)
		}
	}

	return merged
}

// mergeShortRuns is a second pass over runs of still-short chunks that
// the first pass left behind.
func mergeShortRuns(paragraphs []string) []string {
	if len(paragraphs) <= 1 {
		return paragraphs
	}

	var result []string
	for i := 0; i < len(paragraphs); i++ {
		current := paragraphs[i]
		currentLen := utf8.RuneCountInString(current)

		for i+1 < len(paragraphs) {
			nextLen := utf8.RuneCountInString(paragraphs[i+1])
			if currentLen < MinChunkRunes && nextLen < MinChunkRunes {
				current += "\n\n" + paragraphs[i+1]
				currentLen = utf8.RuneCountInString(current)
				i++
			} else {
				break
			}
		}

		if currentLen < MinChunkRunes && i+1 < len(paragraphs) {
			paragraphs[i+1] = current + "\n\n" + paragraphs[i+1]
			continue
		}
		if currentLen < MinChunkRunes && len(result) > 0 {
			result[len(result)-1] += "\n\n" + current
			continue
		}

		result = append(result, current)
	}
	return result
}

// splitOversized splits paragraphs longer than MaxChunkRunes at sentence
// boundaries, packing sentences greedily up to the limit.
func splitOversized(paragraphs []string) []string {
	var result []string

	for _, para := range paragraphs {
		if utf8.RuneCountInString(para) <= MaxChunkRunes {
			result = append(result, para)
			continue
		}

		var chunk string
		for _, sentence := range splitSentences(para) {
			chunkLen := utf8.RuneCountInString(chunk)
			sentenceLen := utf8.RuneCountInString(sentence)
			spaceLen := 0
			if chunkLen > 0 {
				spaceLen = 1
			}

			if chunkLen > 0 && chunkLen+spaceLen+sentenceLen > MaxChunkRunes {
				result = append(result, chunk)
				chunk = sentence
			} else {
				if chunk != "" {
					chunk += " "
				}
				chunk += sentence
			}
		}
		if chunk != "" {
			result = append(result, chunk)
		}
	}

	return result
}

// splitSentences cuts text at . ! ? or … when followed by whitespace or
// end of text.
func splitSentences(text string) []string {
	var sentences []string
	var current string

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		current += string(runes[i])

		if runes[i] == '.' || runes[i] == '!' || runes[i] == '?' || runes[i] == '…' {
			if i+1 >= len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n' {
				sentences = append(sentences, strings.TrimSpace(current))
				current = ""
			}
		}
	}

	if trimmed := strings.TrimSpace(current); trimmed != "" {
		sentences = append(sentences, trimmed)
	}

	return sentences
}
