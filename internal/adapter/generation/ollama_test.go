package generation

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legal-rag/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func sampleSources() []domain.RankedSource {
	return []domain.RankedSource{
		{
			SourceCandidate: domain.SourceCandidate{
				ID:          "doc-1",
				Content:     "La constitution d'une SARL requiert des statuts signés.",
				RawScore:    0.91,
				Origin:      domain.OriginIndex,
				SourceLabel: "registre",
			},
			FinalScore: 0.91,
		},
	}
}

func TestOllamaGenerator_Generate(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		answer := structuredAnswer{
			Title:   "Documents requis",
			Content: "Les statuts signés sont obligatoires.",
			Summary: "Statuts obligatoires.",
		}
		payload, err := json.Marshal(answer)
		require.NoError(t, err)
		resp := map[string]interface{}{
			"message": map[string]string{"content": string(payload)},
			"done":    true,
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	gen := NewOllamaGenerator(server.URL, "gemma3:4b", server.Client(), testLogger())

	got, err := gen.Generate(context.Background(), "Quels documents pour créer une SARL", sampleSources())
	require.NoError(t, err)
	assert.Equal(t, "Documents requis", got.Title)
	assert.Equal(t, "Les statuts signés sont obligatoires.", got.Content)
	assert.Equal(t, "Statuts obligatoires.", got.Summary)

	assert.Equal(t, "gemma3:4b", captured.Model)
	assert.False(t, captured.Stream)
	require.Len(t, captured.Messages, 1)
	assert.Contains(t, captured.Messages[0].Content, "Quels documents pour créer une SARL")
	assert.Contains(t, captured.Messages[0].Content, "La constitution d'une SARL")
	assert.NotNil(t, captured.Format)
}

func TestOllamaGenerator_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	gen := NewOllamaGenerator(server.URL, "gemma3:4b", server.Client(), testLogger())

	_, err := gen.Generate(context.Background(), "question", sampleSources())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "returned status")
}

func TestOllamaGenerator_MalformedOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"message": map[string]string{"content": "not json at all"},
			"done":    true,
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	gen := NewOllamaGenerator(server.URL, "gemma3:4b", server.Client(), testLogger())

	_, err := gen.Generate(context.Background(), "question", sampleSources())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "malformed generation output")
}

func TestOllamaGenerator_IncompleteResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"message": map[string]string{"content": ""},
			"done":    false,
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	gen := NewOllamaGenerator(server.URL, "gemma3:4b", server.Client(), testLogger())

	_, err := gen.Generate(context.Background(), "question", sampleSources())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "generation incomplete")
}

func TestOllamaGenerator_ModelName(t *testing.T) {
	gen := NewOllamaGenerator("http://localhost:11434", "gemma3:4b", nil, testLogger())
	assert.Equal(t, "gemma3:4b", gen.ModelName())
}
