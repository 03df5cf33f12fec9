package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/trustscan/internal/metrics"
	"github.com/ppiankov/trustscan/internal/model"
)

const (
	flagThreshold       = 0.5
	defaultProbeTimeout = 10 * time.Second

	reasonUnavailable = "Semantic judgment unavailable - operating in fallback mode"
)

// Models is the process-wide handle to the semantic collaborators. It is
// built once at startup, is read-only afterwards and is shared by every
// verification. Calls never fail: errors become neutral answers.
type Models struct {
	provider  Provider
	modelName string
	caps      Capabilities
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// Info describes the loaded collaborators
type Info struct {
	Provider   string       `json:"provider"`
	Model      string       `json:"model,omitempty"`
	Loaded     bool         `json:"models_loaded"`
	Operations Capabilities `json:"models_operational"`
}

// LoadModels creates the configured provider and probes which capabilities
// it can serve. An unreachable provider degrades to fallback mode rather
// than failing startup; only an invalid configuration is an error.
func LoadModels(ctx context.Context, config Config, logger *zap.Logger, m *metrics.Metrics) (*Models, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		logger.Info("semantic judgment disabled, no provider configured")
		return NewModels(nil, Capabilities{}, logger, m), nil
	}

	probeCtx, cancel := context.WithTimeout(ctx, config.timeout(defaultProbeTimeout))
	defer cancel()

	caps, err := probe(probeCtx, provider)
	if err != nil {
		logger.Warn("semantic provider unavailable, operating in fallback mode",
			zap.String("provider", provider.Name()),
			zap.Error(err))
	} else {
		logger.Info("semantic provider loaded",
			zap.String("provider", provider.Name()),
			zap.String("model", config.Model),
			zap.Bool("judge", caps.Judge),
			zap.Bool("classifier", caps.Classifier),
			zap.Bool("entities", caps.Entities))
	}

	models := NewModels(provider, caps, logger, m)
	models.modelName = config.Model
	return models, nil
}

// NewModels wraps a provider with known capabilities. provider may be nil.
func NewModels(provider Provider, caps Capabilities, logger *zap.Logger, m *metrics.Metrics) *Models {
	if logger == nil {
		logger = zap.NewNop()
	}
	if provider == nil {
		caps = Capabilities{}
	}
	return &Models{provider: provider, caps: caps, logger: logger, metrics: m}
}

func probe(ctx context.Context, provider Provider) (Capabilities, error) {
	if reporter, ok := provider.(CapabilityReporter); ok {
		return reporter.Capabilities(ctx)
	}
	if !provider.IsAvailable(ctx) {
		return Capabilities{}, fmt.Errorf("%s availability check failed", provider.Name())
	}
	return Capabilities{Judge: true, Classifier: true, Entities: true}, nil
}

// JudgeAvailable reports whether semantic judgment is operational
func (m *Models) JudgeAvailable() bool {
	return m != nil && m.caps.Judge
}

// ClassifierAvailable reports whether claim-type classification is operational
func (m *Models) ClassifierAvailable() bool {
	return m != nil && m.caps.Classifier
}

// EntitiesAvailable reports whether entity extraction is operational
func (m *Models) EntitiesAvailable() bool {
	return m != nil && m.caps.Entities
}

// Info describes the handle for status endpoints
func (m *Models) Info() Info {
	if m == nil || m.provider == nil {
		return Info{Provider: "none"}
	}
	return Info{
		Provider:   m.provider.Name(),
		Model:      m.modelName,
		Loaded:     m.caps.Judge || m.caps.Classifier || m.caps.Entities,
		Operations: m.caps,
	}
}

// Judge returns a verdict for text. It never fails: when judgment is
// unavailable or errors, the neutral verdict names the reason.
func (m *Models) Judge(ctx context.Context, text, reference string) model.SemanticVerdict {
	if !m.JudgeAvailable() {
		return model.NeutralVerdict(reasonUnavailable)
	}

	j, err := m.provider.Judge(ctx, text, reference)
	m.metrics.ObserveSemanticCall("judge", err == nil)
	if err != nil {
		m.logger.Debug("semantic judgment failed", zap.Error(err))
		return model.NeutralVerdict(fmt.Sprintf("Semantic judgment error: %v", err))
	}

	return VerdictFromJudgment(*j)
}

// VerdictFromJudgment converts NLI probabilities into a verdict.
// Text is flagged when contradiction is the likelier reading.
func VerdictFromJudgment(j Judgment) model.SemanticVerdict {
	flagged := j.Contradiction > flagThreshold

	reasoning := fmt.Sprintf("Model suggests factual content (entailment: %.1f%%)", j.Entailment*100)
	if flagged {
		reasoning = fmt.Sprintf("Model detected potential hallucination (contradiction: %.1f%%)", j.Contradiction*100)
	}

	return model.SemanticVerdict{
		IsFlagged:  flagged,
		Confidence: max(j.Contradiction, j.Entailment),
		RawScore:   j.Contradiction,
		Reasoning:  reasoning,
	}
}

// ClassifyType scores text against labels, or returns an empty map
func (m *Models) ClassifyType(ctx context.Context, text string, labels []string) map[string]float64 {
	if !m.ClassifierAvailable() {
		return map[string]float64{}
	}

	scores, err := m.provider.ClassifyType(ctx, text, labels)
	m.metrics.ObserveSemanticCall("classify", err == nil)
	if err != nil {
		m.logger.Debug("claim classification failed", zap.Error(err))
		return map[string]float64{}
	}
	return scores
}

// ExtractEntities returns the entities in text, or an empty slice
func (m *Models) ExtractEntities(ctx context.Context, text string) []model.Entity {
	if !m.EntitiesAvailable() {
		return []model.Entity{}
	}

	entities, err := m.provider.ExtractEntities(ctx, text)
	m.metrics.ObserveSemanticCall("entities", err == nil)
	if err != nil {
		m.logger.Debug("entity extraction failed", zap.Error(err))
		return []model.Entity{}
	}
	return entities
}
