package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"legal-rag/internal/domain"
)

const (
	systemName    = "legal-rag"
	systemVersion = "1.0.0"

	// excerptLength bounds the cited excerpt taken from each source.
	excerptLength = 300

	// articleSourceLabel is the fixed source attribution on templated
	// article citations.
	articleSourceLabel = "Pinecone"

	disclaimer = "Ces informations sont fournies à titre indicatif et ne constituent pas un avis juridique. Consultez un avocat pour toute décision engageant votre responsabilité."
)

// AnswerSynthesizer turns a ranked source set and the original question
// into a structured answer. Implementations never return an error: a
// failed generation degrades to the deterministic template.
type AnswerSynthesizer interface {
	Synthesize(ctx context.Context, question string, sources []domain.RankedSource) *domain.FormattedAnswer
}

// questionKind classifies a question into one of five template branches.
type questionKind int

const (
	kindGeneral questionKind = iota
	kindDocuments
	kindProcedure
	kindTimeline
	kindCost
)

var kindKeywords = []struct {
	kind     questionKind
	keywords []string
}{
	{kindDocuments, []string{"document", "pièce", "dossier", "justificatif"}},
	{kindProcedure, []string{"procédure", "démarche", "étape", "comment"}},
	{kindTimeline, []string{"délai", "durée", "combien de temps", "quand"}},
	{kindCost, []string{"coût", "prix", "tarif", "frais", "combien coûte"}},
}

var kindTemplates = map[questionKind]struct {
	title string
	intro string
}{
	kindDocuments: {
		title: "Documents requis",
		intro: "Voici les documents mentionnés dans les textes applicables à votre situation.",
	},
	kindProcedure: {
		title: "Procédure à suivre",
		intro: "Les textes consultés décrivent les démarches suivantes.",
	},
	kindTimeline: {
		title: "Délais applicables",
		intro: "Les délais suivants ressortent des textes consultés.",
	},
	kindCost: {
		title: "Coûts et frais",
		intro: "Les frais suivants sont prévus par les textes consultés.",
	},
	kindGeneral: {
		title: "Informations juridiques",
		intro: "Voici les éléments pertinents trouvés dans la documentation juridique.",
	},
}

func classifyQuestion(question string) questionKind {
	lower := strings.ToLower(question)
	for _, entry := range kindKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.kind
			}
		}
	}
	return kindGeneral
}

// TemplateSynthesizer is the deterministic, always-available fallback. It
// classifies the question by keyword and assembles a fixed-format answer
// from the top sources. Never fails, including on empty input.
type TemplateSynthesizer struct{}

// NewTemplateSynthesizer creates the rule-based synthesizer.
func NewTemplateSynthesizer() *TemplateSynthesizer {
	return &TemplateSynthesizer{}
}

func (s *TemplateSynthesizer) Synthesize(_ context.Context, question string, sources []domain.RankedSource) *domain.FormattedAnswer {
	tmpl := kindTemplates[classifyQuestion(question)]

	answer := &domain.FormattedAnswer{
		Title:      tmpl.title,
		Content:    tmpl.intro,
		Disclaimer: disclaimer,
		Meta: domain.GenerationMeta{
			System:    systemName,
			Version:   systemVersion,
			Mode:      domain.ModeTemplate,
			Timestamp: time.Now(),
		},
	}

	if len(sources) == 0 {
		answer.Content = "Aucune source pertinente n'a été trouvée pour cette question. Reformulez votre question ou consultez directement un professionnel du droit."
		answer.Summary = "Aucune source trouvée."
		return answer
	}

	limit := len(sources)
	if limit > 3 {
		limit = 3
	}
	for i := 0; i < limit; i++ {
		src := sources[i]
		answer.Articles = append(answer.Articles, domain.Article{
			Number:    fmt.Sprintf("Document %d", i+1),
			Title:     fmt.Sprintf("Source: %s", src.SourceLabel),
			Content:   excerpt(src.Content),
			Highlight: i == 0,
			Source:    articleSourceLabel,
		})
	}

	answer.Summary = fmt.Sprintf("%d source(s) pertinente(s) trouvée(s) dans la documentation juridique.", len(sources))
	return answer
}

func excerpt(content string) string {
	cleaned := domain.FormatDocumentText(content)
	runes := []rune(cleaned)
	if len(runes) <= excerptLength {
		return cleaned
	}
	return string(runes[:excerptLength]) + "..."
}

// GeneratorSynthesizer delegates to a generation provider and degrades to
// the template path on any failure. The failure is logged, never surfaced.
type GeneratorSynthesizer struct {
	generator domain.AnswerGenerator
	fallback  *TemplateSynthesizer
	logger    *slog.Logger
}

// NewGeneratorSynthesizer wraps a generation provider with the template
// fallback.
func NewGeneratorSynthesizer(generator domain.AnswerGenerator, logger *slog.Logger) *GeneratorSynthesizer {
	return &GeneratorSynthesizer{
		generator: generator,
		fallback:  NewTemplateSynthesizer(),
		logger:    logger,
	}
}

func (s *GeneratorSynthesizer) Synthesize(ctx context.Context, question string, sources []domain.RankedSource) *domain.FormattedAnswer {
	if len(sources) == 0 {
		return s.fallback.Synthesize(ctx, question, sources)
	}

	generated, err := s.generator.Generate(ctx, question, sources)
	if err != nil || generated == nil || strings.TrimSpace(generated.Content) == "" {
		reason := "empty generation output"
		if err != nil {
			reason = err.Error()
		}
		s.logger.Warn("generation_failed_using_template",
			slog.String("reason", reason),
			slog.Int("source_count", len(sources)))
		return s.fallback.Synthesize(ctx, question, sources)
	}

	answer := s.fallback.Synthesize(ctx, question, sources)
	answer.Title = generated.Title
	answer.Content = generated.Content
	if strings.TrimSpace(generated.Summary) != "" {
		answer.Summary = generated.Summary
	}
	answer.Meta.Mode = domain.ModeGenerated
	answer.Meta.Model = s.generator.ModelName()
	return answer
}

var (
	_ AnswerSynthesizer = (*TemplateSynthesizer)(nil)
	_ AnswerSynthesizer = (*GeneratorSynthesizer)(nil)
)
