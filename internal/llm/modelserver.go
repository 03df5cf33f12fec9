package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/trustscan/internal/model"
)

// ModelServerProvider talks to an inference sidecar that hosts dedicated
// models: an NLI cross-encoder for judgment, a zero-shot classifier and a
// NER pipeline. Any of the three may be missing on the server.
type ModelServerProvider struct {
	baseURL    string
	httpClient *http.Client
}

type modelServerJudgeRequest struct {
	Text    string `json:"text"`
	Context string `json:"context,omitempty"`
}

type modelServerClassifyRequest struct {
	Text   string   `json:"text"`
	Labels []string `json:"labels"`
}

// modelServerClassifyResponse mirrors the zero-shot pipeline output:
// parallel label and score lists sorted by score
type modelServerClassifyResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

type modelServerEntity struct {
	Word        string  `json:"word"`
	EntityGroup string  `json:"entity_group"`
	Score       float64 `json:"score"`
}

type modelServerEntitiesResponse struct {
	Entities []modelServerEntity `json:"entities"`
}

type modelServerHealth struct {
	Status            string       `json:"status"`
	ModelsOperational Capabilities `json:"models_operational"`
}

// NewModelServerProvider creates a model server client
func NewModelServerProvider(config Config) (*ModelServerProvider, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("model server base_url is required")
	}

	return &ModelServerProvider{
		baseURL:    strings.TrimSuffix(config.BaseURL, "/"),
		httpClient: newHTTPClient(config, 30*time.Second),
	}, nil
}

// Name returns the provider name
func (p *ModelServerProvider) Name() string {
	return "modelserver"
}

// IsAvailable reports whether the server answers its health check
func (p *ModelServerProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.Capabilities(ctx)
	return err == nil
}

// Capabilities reports which models the server has loaded
func (p *ModelServerProvider) Capabilities(ctx context.Context) (Capabilities, error) {
	var health modelServerHealth
	if err := p.do(ctx, http.MethodGet, "/health", nil, &health); err != nil {
		return Capabilities{}, err
	}
	return health.ModelsOperational, nil
}

// Judge implements Provider
func (p *ModelServerProvider) Judge(ctx context.Context, text, reference string) (*Judgment, error) {
	var j Judgment
	if err := p.do(ctx, http.MethodPost, "/v1/judge", modelServerJudgeRequest{Text: text, Context: reference}, &j); err != nil {
		return nil, err
	}
	return &j, nil
}

// ClassifyType implements Provider
func (p *ModelServerProvider) ClassifyType(ctx context.Context, text string, labels []string) (map[string]float64, error) {
	var resp modelServerClassifyResponse
	if err := p.do(ctx, http.MethodPost, "/v1/classify", modelServerClassifyRequest{Text: text, Labels: labels}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Labels) != len(resp.Scores) {
		return nil, fmt.Errorf("model server returned %d labels and %d scores", len(resp.Labels), len(resp.Scores))
	}

	scores := make(map[string]float64, len(resp.Labels))
	for i, label := range resp.Labels {
		scores[label] = resp.Scores[i]
	}
	return scores, nil
}

// ExtractEntities implements Provider
func (p *ModelServerProvider) ExtractEntities(ctx context.Context, text string) ([]model.Entity, error) {
	var resp modelServerEntitiesResponse
	if err := p.do(ctx, http.MethodPost, "/v1/entities", modelServerJudgeRequest{Text: text}, &resp); err != nil {
		return nil, err
	}

	entities := make([]model.Entity, 0, len(resp.Entities))
	for _, e := range resp.Entities {
		entities = append(entities, model.Entity{Text: e.Word, Type: e.EntityGroup, Score: e.Score})
	}
	return entities, nil
}

func (p *ModelServerProvider) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("model server returned status %d: %s", resp.StatusCode, string(data))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
