package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newOpenAIServer answers every chat completion with content
func newOpenAIServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/models":
			_ = json.NewEncoder(w).Encode(openai.ModelsList{Models: []openai.Model{{ID: "gpt-4o-mini"}}})
		case "/chat/completions":
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

			var req openai.ChatCompletionRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.NotNil(t, req.ResponseFormat)
			assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, req.ResponseFormat.Type)
			assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)

			_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
				Model: req.Model,
				Choices: []openai.ChatCompletionChoice{{
					Message: openai.ChatCompletionMessage{Role: "assistant", Content: content},
				}},
			})
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestOpenAIProvider_Judge(t *testing.T) {
	server := newOpenAIServer(t, `{"contradiction": 0.8, "neutral": 0.1, "entailment": 0.1}`)
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	j, err := provider.Judge(context.Background(), "The moon is made of cheese", "")
	require.NoError(t, err)
	assert.InDelta(t, 0.8, j.Contradiction, 1e-9)
	assert.True(t, provider.IsAvailable(context.Background()))
	assert.Equal(t, "openai", provider.Name())
}

func TestOpenAIProvider_ClassifyType(t *testing.T) {
	server := newOpenAIServer(t, "```json\n{\"Opinion or speculation\": 0.9, \"factual statement\": 0.1, \"invented\": 0.5}\n```")
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	scores, err := provider.ClassifyType(context.Background(), "I think it will rain", []string{"factual statement", "opinion or speculation"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"factual statement": 0.1, "opinion or speculation": 0.9}, scores)
}

func TestOpenAIProvider_ExtractEntities(t *testing.T) {
	server := newOpenAIServer(t, `{"entities": [{"text": "Marie Curie", "type": "per", "score": 0.98765}]}`)
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	entities, err := provider.ExtractEntities(context.Background(), "Marie Curie won twice")
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "PER", entities[0].Type)
	assert.Equal(t, 0.988, entities[0].Score)
}

func TestOpenAIProvider_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "bad key", "type": "invalid_request_error"}}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = provider.Judge(context.Background(), "x", "")
	assert.ErrorContains(t, err, "OpenAI API error")
	assert.False(t, provider.IsAvailable(context.Background()))
}

func TestNewOpenAIProvider_RequiresKey(t *testing.T) {
	_, err := NewOpenAIProvider(Config{})
	assert.Error(t, err)
}
