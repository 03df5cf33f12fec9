package model

import "time"

// Config is the complete trustscan configuration.
// Loaded from ~/.trustscan/config.yaml, TRUSTSCAN_* env vars and CLI flags.
type Config struct {
	HTTP      HTTPConfig      `mapstructure:"http" yaml:"http"`
	LinkCheck LinkCheckConfig `mapstructure:"link_check" yaml:"link_check"`
	Semantic  SemanticConfig  `mapstructure:"semantic" yaml:"semantic"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline" yaml:"pipeline"`
	Authority AuthorityConfig `mapstructure:"authority" yaml:"authority"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

// HTTPConfig controls fetching of remote documents
type HTTPConfig struct {
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
	UserAgent     string        `mapstructure:"user_agent" yaml:"user_agent"`
	MaxBodyBytes  int64         `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
	HTTPProxy     string        `mapstructure:"http_proxy" yaml:"http_proxy,omitempty"`
	HTTPSProxy    string        `mapstructure:"https_proxy" yaml:"https_proxy,omitempty"`
	NoProxy       string        `mapstructure:"no_proxy" yaml:"no_proxy,omitempty"`
	RespectRobots bool          `mapstructure:"respect_robots" yaml:"respect_robots"` // Batch only
}

// LinkCheckConfig controls citation URL reachability checks
type LinkCheckConfig struct {
	Timeout           time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxRedirects      int           `mapstructure:"max_redirects" yaml:"max_redirects"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" yaml:"requests_per_second"` // Per domain, 0 = unlimited
	Burst             int           `mapstructure:"burst" yaml:"burst"`
}

// SemanticConfig selects the provider backing the semantic judgment,
// claim-type classification and entity extraction capabilities
type SemanticConfig struct {
	Provider  string        `mapstructure:"provider" yaml:"provider"` // openai, anthropic, ollama, modelserver, "" (disabled)
	Model     string        `mapstructure:"model" yaml:"model,omitempty"`
	APIKey    string        `mapstructure:"api_key" yaml:"-"`
	BaseURL   string        `mapstructure:"base_url" yaml:"base_url,omitempty"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxTokens int           `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// PipelineConfig tunes the verification pipeline
type PipelineConfig struct {
	MinClaimLength int `mapstructure:"min_claim_length" yaml:"min_claim_length"` // Sentences at or below this length are skipped
	MaxClaims      int `mapstructure:"max_claims" yaml:"max_claims"`             // 0 = analyze every retained sentence
	Workers        int `mapstructure:"workers" yaml:"workers"`                   // Concurrent per-item evaluations
}

// ServerConfig controls the HTTP service
type ServerConfig struct {
	Addr           string        `mapstructure:"addr" yaml:"addr"`
	AllowedOrigins []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
}

// LogConfig controls structured logging
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // console, json
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "trustscan/0.1 (+https://github.com/ppiankov/trustscan)",
			MaxBodyBytes:  2_000_000,
			RespectRobots: true,
		},
		LinkCheck: LinkCheckConfig{
			Timeout:           5 * time.Second,
			MaxRedirects:      10,
			RequestsPerSecond: 0,
			Burst:             5,
		},
		Semantic: SemanticConfig{
			Provider:  "",
			Timeout:   30 * time.Second,
			MaxTokens: 512,
		},
		Pipeline: PipelineConfig{
			MinClaimLength: 20,
			MaxClaims:      0,
			Workers:        8,
		},
		Authority: AuthorityConfig{
			PrimaryDomains: []string{
				"gov", "gov.uk", "europa.eu", "legislation.gov.uk",
				"doi.org", "arxiv.org", "pubmed.ncbi.nlm.nih.gov", "nih.gov",
				"who.int", "un.org", "nature.com", "science.org",
			},
			SecondaryDomains: []string{
				"wikipedia.org", "britannica.com", "reuters.com", "apnews.com",
				"bbc.co.uk", "bbc.com", "nytimes.com", "theguardian.com",
			},
		},
		Server: ServerConfig{
			Addr:           ":8000",
			AllowedOrigins: []string{"*"},
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   2 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
