package llm

import (
	"fmt"
	"strings"
)

// NewProvider creates a provider based on configuration.
// An empty provider name disables the semantic capabilities and returns nil.
func NewProvider(config Config) (Provider, error) {
	var (
		provider Provider
		err      error
	)

	switch strings.ToLower(config.Provider) {
	case "openai":
		var p *OpenAIProvider
		p, err = NewOpenAIProvider(config)
		provider = p

	case "anthropic", "claude":
		var p *AnthropicProvider
		p, err = NewAnthropicProvider(config)
		provider = p

	case "ollama":
		var p *OllamaProvider
		p, err = NewOllamaProvider(config)
		provider = p

	case "modelserver", "huggingface":
		var p *ModelServerProvider
		p, err = NewModelServerProvider(config)
		provider = p

	case "", "none":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown semantic provider: %s (supported: openai, anthropic, ollama, modelserver)", config.Provider)
	}

	// A typed nil pointer must not escape as a non-nil interface
	if err != nil {
		return nil, err
	}
	return provider, nil
}
