package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newModelServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "healthy", "models_operational": {"hallucination_detector": true, "zero_shot_classifier": false, "ner_pipeline": true}}`))
	})
	mux.HandleFunc("POST /v1/judge", func(w http.ResponseWriter, r *http.Request) {
		var req modelServerJudgeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "reference text", req.Context)
		_, _ = w.Write([]byte(`{"contradiction": 0.7, "neutral": 0.2, "entailment": 0.1}`))
	})
	mux.HandleFunc("POST /v1/classify", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"labels": ["opinion or speculation", "factual statement"], "scores": [0.8, 0.2]}`))
	})
	mux.HandleFunc("POST /v1/entities", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"entities": [{"word": "Geneva", "entity_group": "LOC", "score": 0.97}]}`))
	})
	return httptest.NewServer(mux)
}

func TestModelServerProvider(t *testing.T) {
	server := newModelServer(t)
	defer server.Close()

	provider, err := NewModelServerProvider(Config{BaseURL: server.URL})
	require.NoError(t, err)
	ctx := context.Background()

	caps, err := provider.Capabilities(ctx)
	require.NoError(t, err)
	assert.Equal(t, Capabilities{Judge: true, Classifier: false, Entities: true}, caps)
	assert.True(t, provider.IsAvailable(ctx))

	j, err := provider.Judge(ctx, "claim", "reference text")
	require.NoError(t, err)
	assert.Equal(t, 0.7, j.Contradiction)

	scores, err := provider.ClassifyType(ctx, "claim", []string{"factual statement", "opinion or speculation"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"opinion or speculation": 0.8, "factual statement": 0.2}, scores)

	entities, err := provider.ExtractEntities(ctx, "Geneva is in Switzerland")
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "Geneva", entities[0].Text)
	assert.Equal(t, "LOC", entities[0].Type)
}

func TestModelServerProvider_MismatchedScores(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"labels": ["a", "b"], "scores": [1.0]}`))
	}))
	defer server.Close()

	provider, err := NewModelServerProvider(Config{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = provider.ClassifyType(context.Background(), "x", []string{"a", "b"})
	assert.ErrorContains(t, err, "2 labels and 1 scores")
}

func TestModelServerProvider_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	provider, err := NewModelServerProvider(Config{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = provider.Judge(context.Background(), "x", "")
	assert.ErrorContains(t, err, "status 503")
	assert.False(t, provider.IsAvailable(context.Background()))
}

func TestNewModelServerProvider_RequiresBaseURL(t *testing.T) {
	_, err := NewModelServerProvider(Config{})
	assert.Error(t, err)
}
