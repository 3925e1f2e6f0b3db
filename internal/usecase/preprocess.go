package usecase

import (
	"strings"

	"legal-rag/internal/domain"
)

// SynonymEntry pairs a trigger keyword with the domain terms appended to
// the query when the keyword is present.
type SynonymEntry struct {
	Keyword  string
	Synonyms []string
}

// SynonymTable widens recall by appending domain synonyms to a normalized
// question. It is an ordered, immutable lookup: expansion is deterministic
// and entries are applied in declaration order.
type SynonymTable struct {
	entries []SynonymEntry
}

// NewSynonymTable builds a table from the given entries. The slice is
// copied so callers cannot mutate the table afterwards.
func NewSynonymTable(entries []SynonymEntry) *SynonymTable {
	copied := make([]SynonymEntry, len(entries))
	copy(copied, entries)
	return &SynonymTable{entries: copied}
}

// DefaultSynonymTable returns the built-in legal-domain expansion table.
func DefaultSynonymTable() *SynonymTable {
	return NewSynonymTable([]SynonymEntry{
		{Keyword: "entreprise", Synonyms: []string{"société", "sarl", "sa", "constitution"}},
		{Keyword: "société", Synonyms: []string{"entreprise", "statuts", "immatriculation"}},
		{Keyword: "permis", Synonyms: []string{"autorisation", "licence", "agrément"}},
		{Keyword: "impôt", Synonyms: []string{"fiscalité", "taxe", "contribution"}},
		{Keyword: "travail", Synonyms: []string{"emploi", "contrat", "salarié"}},
		{Keyword: "gaz", Synonyms: []string{"hydrocarbures", "exploitation", "concession"}},
	})
}

// Expand appends the synonyms of every matched keyword to the question.
// The input is expected to be normalized already; matched terms already
// present in the question are appended anyway so iteration order alone
// determines the output.
func (t *SynonymTable) Expand(question string) string {
	var sb strings.Builder
	sb.WriteString(question)
	for _, e := range t.entries {
		if strings.Contains(question, e.Keyword) {
			for _, syn := range e.Synonyms {
				sb.WriteString(" ")
				sb.WriteString(syn)
			}
		}
	}
	return sb.String()
}

// PreprocessQuestion normalizes then expands a raw question for embedding.
func (t *SynonymTable) PreprocessQuestion(question string) string {
	return t.Expand(domain.NormalizeQuestion(question))
}
