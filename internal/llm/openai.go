package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/trustscan/internal/model"
)

// OpenAIProvider serves the semantic capabilities with OpenAI chat models
// (or any OpenAI-compatible endpoint) in JSON mode
type OpenAIProvider struct {
	client *openai.Client
	config Config
	model  string
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	clientConfig.HTTPClient = newHTTPClient(config, 0)

	modelName := config.Model
	if modelName == "" {
		modelName = openai.GPT4oMini
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		model:  modelName,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable lists models as a lightweight credential check
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	return err == nil
}

// Judge implements Provider
func (p *OpenAIProvider) Judge(ctx context.Context, text, reference string) (*Judgment, error) {
	return judgeWith(ctx, p, text, reference)
}

// ClassifyType implements Provider
func (p *OpenAIProvider) ClassifyType(ctx context.Context, text string, labels []string) (map[string]float64, error) {
	return classifyWith(ctx, p, text, labels)
}

// ExtractEntities implements Provider
func (p *OpenAIProvider) ExtractEntities(ctx context.Context, text string) ([]model.Entity, error) {
	return entitiesWith(ctx, p, text)
}

func (p *OpenAIProvider) complete(ctx context.Context, system, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.timeout(30*time.Second))
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   p.config.maxTokens(),
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
