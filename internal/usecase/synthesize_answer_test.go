package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"legal-rag/internal/domain"
	"legal-rag/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, question string, sources []domain.RankedSource) (*domain.GeneratedAnswer, error) {
	args := m.Called(ctx, question, sources)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GeneratedAnswer), args.Error(1)
}

func (m *mockGenerator) ModelName() string { return "llm-test" }

func rankedSource(id, label, content string, score float64) domain.RankedSource {
	return domain.RankedSource{
		SourceCandidate: domain.SourceCandidate{
			ID:          id,
			Content:     content,
			RawScore:    score,
			Origin:      domain.OriginIndex,
			SourceLabel: label,
		},
		FinalScore: score,
	}
}

func TestTemplateSynthesizer_EmptySources(t *testing.T) {
	s := usecase.NewTemplateSynthesizer()

	answer := s.Synthesize(context.Background(), "Comment créer une SARL?", nil)

	require.NotNil(t, answer)
	assert.Empty(t, answer.Articles)
	assert.Equal(t, "Aucune source trouvée.", answer.Summary)
	assert.NotEmpty(t, answer.Disclaimer)
	assert.Equal(t, domain.ModeTemplate, answer.Meta.Mode)
}

func TestTemplateSynthesizer_ArticleConstruction(t *testing.T) {
	s := usecase.NewTemplateSynthesizer()

	long := strings.Repeat("a", 350)
	sources := []domain.RankedSource{
		rankedSource("1", "Code civil", long, 0.9),
		rankedSource("2", "Code du travail", "court", 0.8),
	}

	answer := s.Synthesize(context.Background(), "Quels documents fournir?", sources)

	require.Len(t, answer.Articles, 2)

	first := answer.Articles[0]
	assert.Equal(t, "Document 1", first.Number)
	assert.Equal(t, "Source: Code civil", first.Title)
	assert.True(t, strings.HasSuffix(first.Content, "..."))
	assert.Len(t, []rune(strings.TrimSuffix(first.Content, "...")), 300)
	assert.True(t, first.Highlight, "only the first article is highlighted")
	assert.Equal(t, "Pinecone", first.Source)

	second := answer.Articles[1]
	assert.False(t, second.Highlight)
	assert.Equal(t, "court", second.Content, "short content is kept intact")

	assert.Contains(t, answer.Summary, "2 source(s)")
}

func TestTemplateSynthesizer_ArticleCountCappedAtThree(t *testing.T) {
	s := usecase.NewTemplateSynthesizer()

	var sources []domain.RankedSource
	for i := 0; i < 5; i++ {
		sources = append(sources, rankedSource(fmt.Sprintf("%d", i), "Code", "texte", 0.9))
	}

	answer := s.Synthesize(context.Background(), "question", sources)

	assert.Len(t, answer.Articles, 3)
	assert.Contains(t, answer.Summary, "5 source(s)")
}

func TestTemplateSynthesizer_TitleBranches(t *testing.T) {
	s := usecase.NewTemplateSynthesizer()
	sources := []domain.RankedSource{rankedSource("1", "Code", "texte", 0.9)}

	cases := []struct {
		question string
		title    string
	}{
		{"Quels documents sont nécessaires pour créer une entreprise gazière?", "Documents requis"},
		{"Quelle est la procédure d'immatriculation?", "Procédure à suivre"},
		{"Quel est le délai d'obtention?", "Délais applicables"},
		{"Quels sont les frais de dossier?", "Coûts et frais"},
		{"Parlez-moi du droit des sociétés", "Informations juridiques"},
	}

	for _, tc := range cases {
		t.Run(tc.title, func(t *testing.T) {
			answer := s.Synthesize(context.Background(), tc.question, sources)
			assert.Equal(t, tc.title, answer.Title)
		})
	}
}

func TestGeneratorSynthesizer_Success(t *testing.T) {
	gen := new(mockGenerator)
	s := usecase.NewGeneratorSynthesizer(gen, testLogger())

	sources := []domain.RankedSource{rankedSource("1", "Code", "texte", 0.9)}
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return(&domain.GeneratedAnswer{
		Title:   "Titre généré",
		Content: "Réponse détaillée.",
		Summary: "Résumé généré.",
	}, nil)

	answer := s.Synthesize(context.Background(), "question", sources)

	assert.Equal(t, "Titre généré", answer.Title)
	assert.Equal(t, "Réponse détaillée.", answer.Content)
	assert.Equal(t, "Résumé généré.", answer.Summary)
	assert.Equal(t, domain.ModeGenerated, answer.Meta.Mode)
	assert.Equal(t, "llm-test", answer.Meta.Model)
	assert.Len(t, answer.Articles, 1, "citations are still attached")
}

func TestGeneratorSynthesizer_FailureFallsBackToTemplate(t *testing.T) {
	gen := new(mockGenerator)
	s := usecase.NewGeneratorSynthesizer(gen, testLogger())

	sources := []domain.RankedSource{
		rankedSource("1", "Code", "texte", 0.9),
		rankedSource("2", "Code", "texte", 0.8),
	}
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("provider timeout"))

	answer := s.Synthesize(context.Background(), "Quels documents?", sources)

	require.NotNil(t, answer)
	assert.Equal(t, domain.ModeTemplate, answer.Meta.Mode)
	assert.Len(t, answer.Articles, 2)
	assert.Contains(t, answer.Summary, "2 source(s)")
}

func TestGeneratorSynthesizer_EmptyOutputFallsBack(t *testing.T) {
	gen := new(mockGenerator)
	s := usecase.NewGeneratorSynthesizer(gen, testLogger())

	sources := []domain.RankedSource{rankedSource("1", "Code", "texte", 0.9)}
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return(&domain.GeneratedAnswer{}, nil)

	answer := s.Synthesize(context.Background(), "question", sources)

	assert.Equal(t, domain.ModeTemplate, answer.Meta.Mode)
}

func TestGeneratorSynthesizer_EmptySourcesSkipsProvider(t *testing.T) {
	gen := new(mockGenerator)
	s := usecase.NewGeneratorSynthesizer(gen, testLogger())

	answer := s.Synthesize(context.Background(), "question", nil)

	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, domain.ModeTemplate, answer.Meta.Mode)
}
