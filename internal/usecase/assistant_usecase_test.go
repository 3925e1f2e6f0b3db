package usecase_test

import (
	"context"
	"testing"

	"legal-rag/internal/domain"
	"legal-rag/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPipeline struct {
	mock.Mock
}

func (m *mockPipeline) ProcessQuery(ctx context.Context, query domain.Query) (*domain.RAGResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RAGResult), args.Error(1)
}

func newAssistant(pipeline usecase.ProcessQueryUsecase, encoder *mockEncoder, index *mockIndex) usecase.LegalAssistantUsecase {
	return usecase.NewLegalAssistantUsecase(pipeline, encoder, index, usecase.DefaultAssistantConfig(), testLogger())
}

func TestAskQuestion_CachesResult(t *testing.T) {
	pipeline := new(mockPipeline)
	assistant := newAssistant(pipeline, new(mockEncoder), new(mockIndex))

	result := &domain.RAGResult{Confidence: 0.9}
	pipeline.On("ProcessQuery", mock.Anything, mock.Anything).Return(result, nil)

	first, err := assistant.AskQuestion(context.Background(), "Quels documents?", "", 0, 0)
	require.NoError(t, err)
	second, err := assistant.AskQuestion(context.Background(), "quels documents", "", 0, 0)
	require.NoError(t, err)

	assert.Same(t, first, second, "normalized question hits the facade cache")
	pipeline.AssertNumberOfCalls(t, "ProcessQuery", 1)
}

func TestAskQuestion_CategoryIsPartOfTheKey(t *testing.T) {
	pipeline := new(mockPipeline)
	assistant := newAssistant(pipeline, new(mockEncoder), new(mockIndex))

	pipeline.On("ProcessQuery", mock.Anything, mock.Anything).Return(&domain.RAGResult{}, nil)

	_, err := assistant.AskQuestion(context.Background(), "question", "fiscal", 0, 0)
	require.NoError(t, err)
	_, err = assistant.AskQuestion(context.Background(), "question", "travail", 0, 0)
	require.NoError(t, err)

	pipeline.AssertNumberOfCalls(t, "ProcessQuery", 2)
}

func TestAskQuestion_PipelineErrorNotCached(t *testing.T) {
	pipeline := new(mockPipeline)
	assistant := newAssistant(pipeline, new(mockEncoder), new(mockIndex))

	pipeline.On("ProcessQuery", mock.Anything, mock.Anything).
		Return(nil, &domain.UpstreamError{Component: "embedding"})

	_, err := assistant.AskQuestion(context.Background(), "question", "", 0, 0)
	require.Error(t, err)
	_, err = assistant.AskQuestion(context.Background(), "question", "", 0, 0)
	require.Error(t, err)

	pipeline.AssertNumberOfCalls(t, "ProcessQuery", 2)
}

func TestSearchByCategory(t *testing.T) {
	encoder := new(mockEncoder)
	index := new(mockIndex)
	assistant := newAssistant(new(mockPipeline), encoder, index)

	encoder.On("Encode", mock.Anything, "contrats de travail").Return([]float32{0.1}, nil)
	index.On("Search", mock.Anything, mock.Anything, 3, map[string]string{"category": "travail"}).
		Return([]domain.IndexMatch{indexMatch("c-1", 0.9)}, nil)

	ranked, err := assistant.SearchByCategory(context.Background(), "travail", "Contrats de travail?", 3)
	require.NoError(t, err)

	require.Len(t, ranked, 1)
	assert.Equal(t, "c-1", ranked[0].ID)
	assert.InDelta(t, 0.9, ranked[0].FinalScore, 1e-9)
	assert.Equal(t, domain.OriginIndex, ranked[0].Origin)
}

func TestSearchByCategory_EmptyQueryUsesCategory(t *testing.T) {
	encoder := new(mockEncoder)
	index := new(mockIndex)
	assistant := newAssistant(new(mockPipeline), encoder, index)

	encoder.On("Encode", mock.Anything, "fiscal").Return([]float32{0.1}, nil)
	index.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.IndexMatch{}, nil)

	_, err := assistant.SearchByCategory(context.Background(), "fiscal", "", 0)
	require.NoError(t, err)

	encoder.AssertExpectations(t)
}

func TestSearchByCategory_RequiresCategory(t *testing.T) {
	assistant := newAssistant(new(mockPipeline), new(mockEncoder), new(mockIndex))

	_, err := assistant.SearchByCategory(context.Background(), "", "query", 5)
	assert.Error(t, err)
}

func TestGetStats(t *testing.T) {
	index := new(mockIndex)
	assistant := newAssistant(new(mockPipeline), new(mockEncoder), index)

	index.On("Stats", mock.Anything).Return(&domain.IndexStats{
		TotalCount: 1200,
		Dimension:  1024,
		Namespaces: []string{"legal"},
	}, nil)

	stats, err := assistant.GetStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1200), stats.Index.TotalCount)
	assert.Equal(t, 1024, stats.Index.Dimension)
	assert.Equal(t, 0, stats.QueryCache.Size)
}
