package llm

import (
	"context"
	"net/http"
	"time"

	"github.com/ppiankov/trustscan/internal/model"
	"github.com/ppiankov/trustscan/internal/util"
)

// Provider backs the semantic collaborator capabilities: natural-language
// inference judgment, zero-shot claim-type classification and named entity
// extraction. Implementations return errors; Models turns them into neutral
// answers.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Judge scores text against an optional reference context
	Judge(ctx context.Context, text, reference string) (*Judgment, error)

	// ClassifyType scores text against each label
	ClassifyType(ctx context.Context, text string, labels []string) (map[string]float64, error)

	// ExtractEntities returns the named entities found in text
	ExtractEntities(ctx context.Context, text string) ([]model.Entity, error)

	// IsAvailable checks if the provider is properly configured and reachable
	IsAvailable(ctx context.Context) bool
}

// CapabilityReporter is implemented by providers that may serve only some
// capabilities, such as a model server with a model that failed to load
type CapabilityReporter interface {
	Capabilities(ctx context.Context) (Capabilities, error)
}

// Capabilities records which collaborator capabilities are operational
type Capabilities struct {
	Judge      bool `json:"hallucination_detector"`
	Classifier bool `json:"zero_shot_classifier"`
	Entities   bool `json:"ner_pipeline"`
}

// Judgment holds natural-language inference class probabilities.
// Contradiction is the probability that the text is hallucinated.
type Judgment struct {
	Contradiction float64 `json:"contradiction"`
	Neutral       float64 `json:"neutral"`
	Entailment    float64 `json:"entailment"`
}

// Config holds provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", "modelserver", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (Ollama, model server, OpenAI-compatible gateways)
	BaseURL string

	// Timeout for a single capability call
	Timeout time.Duration

	// MaxTokens for chat responses
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// ConfigFromModel builds provider configuration from the application config
func ConfigFromModel(sem model.SemanticConfig, httpCfg model.HTTPConfig) Config {
	return Config{
		Provider:   sem.Provider,
		Model:      sem.Model,
		APIKey:     sem.APIKey,
		BaseURL:    sem.BaseURL,
		Timeout:    sem.Timeout,
		MaxTokens:  sem.MaxTokens,
		HTTPProxy:  httpCfg.HTTPProxy,
		HTTPSProxy: httpCfg.HTTPSProxy,
		NoProxy:    httpCfg.NoProxy,
	}
}

func (c Config) timeout(fallback time.Duration) time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return fallback
}

func (c Config) maxTokens() int {
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return 512
}

// newHTTPClient builds the HTTP client shared by the HTTP-based providers
func newHTTPClient(config Config, fallback time.Duration) *http.Client {
	client := &http.Client{
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
		},
	}
	if fallback > 0 {
		client.Timeout = config.timeout(fallback)
	}
	return client
}
