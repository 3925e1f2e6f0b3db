package usecase

import "strings"

// GuidanceEntry maps a question keyword to the follow-up steps and related
// topics attached to answers mentioning it.
type GuidanceEntry struct {
	Keyword       string
	NextSteps     []string
	RelatedTopics []string
}

// GuidanceTable derives NextSteps and RelatedTopics from simple keyword
// triggers on the original question. Immutable after construction; entries
// are evaluated in declaration order.
type GuidanceTable struct {
	entries          []GuidanceEntry
	defaultSteps     []string
	defaultTopics    []string
}

// NewGuidanceTable builds a table from the given entries and defaults used
// when no keyword matches.
func NewGuidanceTable(entries []GuidanceEntry, defaultSteps, defaultTopics []string) *GuidanceTable {
	copied := make([]GuidanceEntry, len(entries))
	copy(copied, entries)
	return &GuidanceTable{
		entries:       copied,
		defaultSteps:  defaultSteps,
		defaultTopics: defaultTopics,
	}
}

// DefaultGuidanceTable returns the built-in legal guidance triggers.
func DefaultGuidanceTable() *GuidanceTable {
	return NewGuidanceTable(
		[]GuidanceEntry{
			{
				Keyword: "entreprise",
				NextSteps: []string{
					"Rassembler les statuts et pièces d'identité des associés",
					"Déposer le dossier de constitution au centre de formalités des entreprises",
					"Procéder à l'immatriculation au registre du commerce",
				},
				RelatedTopics: []string{
					"Constitution de société",
					"Capital social minimum",
					"Régime fiscal des sociétés",
				},
			},
			{
				Keyword: "permis",
				NextSteps: []string{
					"Identifier l'autorité compétente pour la délivrance du permis",
					"Constituer le dossier de demande d'autorisation",
					"Suivre l'instruction du dossier auprès de l'administration",
				},
				RelatedTopics: []string{
					"Autorisations administratives",
					"Licences d'exploitation",
					"Recours en cas de refus",
				},
			},
			{
				Keyword: "impôt",
				NextSteps: []string{
					"Vérifier le régime d'imposition applicable",
					"Préparer les déclarations fiscales requises",
				},
				RelatedTopics: []string{
					"Obligations déclaratives",
					"Exonérations fiscales",
				},
			},
		},
		[]string{
			"Consulter un professionnel du droit pour valider votre situation",
			"Rassembler les documents justificatifs pertinents",
		},
		[]string{
			"Droit des affaires",
			"Procédures administratives",
		},
	)
}

// For returns the steps and topics triggered by the question. All matching
// entries contribute, in table order; defaults apply when nothing matches.
func (t *GuidanceTable) For(question string) (steps, topics []string) {
	lower := strings.ToLower(question)
	for _, e := range t.entries {
		if strings.Contains(lower, e.Keyword) {
			steps = append(steps, e.NextSteps...)
			topics = append(topics, e.RelatedTopics...)
		}
	}
	if len(steps) == 0 {
		steps = append(steps, t.defaultSteps...)
	}
	if len(topics) == 0 {
		topics = append(topics, t.defaultTopics...)
	}
	return steps, topics
}
