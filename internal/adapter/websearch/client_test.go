package websearch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"legal-rag/internal/adapter/websearch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/search", r.URL.Path)
		assert.Equal(t, "permis de construire", r.URL.Query().Get("q"))

		_, _ = w.Write([]byte(`{"results":[
			{"content":"Le permis de construire est délivré par la mairie.","source":"service-public.fr","score":0.82}
		]}`))
	}))
	defer server.Close()

	c := websearch.NewClient(server.URL, nil)

	results, err := c.Search(context.Background(), "permis de construire")
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "service-public.fr", results[0].SourceLabel)
	assert.InDelta(t, 0.82, results[0].Score, 1e-9)
}

func TestClient_SearchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := websearch.NewClient(server.URL, nil)

	_, err := c.Search(context.Background(), "question")
	assert.Error(t, err)
}

func TestClient_SearchUnreachable(t *testing.T) {
	c := websearch.NewClient("http://127.0.0.1:1", nil)

	_, err := c.Search(context.Background(), "question")
	assert.Error(t, err)
}
