package embedder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"legal-rag/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func embedServer(t *testing.T, dimensions int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/embed", r.URL.Path)

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		embeddings := make([][]float32, len(req.Input))
		for i := range req.Input {
			embeddings[i] = make([]float32, dimensions)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(embedResponse{Embeddings: embeddings})
	}))
}

func TestOllamaEmbedder_Encode(t *testing.T) {
	server := embedServer(t, 1024)
	defer server.Close()

	e := NewOllamaEmbedder(server.URL, "embed-model", 1024, nil)

	vector, err := e.Encode(context.Background(), "quels documents")
	require.NoError(t, err)
	assert.Len(t, vector, 1024)
}

func TestOllamaEmbedder_EncodeBatch(t *testing.T) {
	server := embedServer(t, 8)
	defer server.Close()

	e := NewOllamaEmbedder(server.URL, "embed-model", 8, nil)

	vectors, err := e.EncodeBatch(context.Background(), []string{"un", "deux", "trois"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	assert.Len(t, vectors[0], 8)
}

func TestOllamaEmbedder_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	e := NewOllamaEmbedder(server.URL, "embed-model", 1024, nil)

	_, err := e.Encode(context.Background(), "texte")
	assert.Error(t, err)
}

func TestOllamaEmbedder_VerifyDimensions(t *testing.T) {
	t.Run("Matching dimensionality passes", func(t *testing.T) {
		server := embedServer(t, 16)
		defer server.Close()

		e := NewOllamaEmbedder(server.URL, "embed-model", 16, nil)
		assert.NoError(t, e.VerifyDimensions(context.Background()))
	})

	t.Run("Mismatch is a configuration error", func(t *testing.T) {
		server := embedServer(t, 16)
		defer server.Close()

		e := NewOllamaEmbedder(server.URL, "embed-model", 1024, nil)
		err := e.VerifyDimensions(context.Background())
		require.Error(t, err)

		var cfgErr *domain.ConfigurationError
		assert.ErrorAs(t, err, &cfgErr)
	})

	t.Run("Unreachable provider is an upstream error", func(t *testing.T) {
		e := NewOllamaEmbedder("http://127.0.0.1:1", "embed-model", 16, nil)
		err := e.VerifyDimensions(context.Background())
		require.Error(t, err)

		var upErr *domain.UpstreamError
		assert.ErrorAs(t, err, &upErr)
	})
}

func TestOllamaEmbedder_Metadata(t *testing.T) {
	e := NewOllamaEmbedder("http://localhost", "embed-model", 1536, nil)
	assert.Equal(t, 1536, e.Dimensions())
	assert.Equal(t, "embed-model", e.Version())
}
