package score

import (
	"fmt"

	"github.com/ppiankov/trustscan/internal/model"
)

const (
	citationFloor      = 0.3
	citationWeight     = 0.7
	highRiskWeight     = 0.5
	semanticFlagFactor = 0.6
)

// Scorer computes the document trust score from a verification summary
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Calculate applies each factor in turn to a running score that starts at 1.0.
// Only factors whose condition holds are applied and reported.
func (s *Scorer) Calculate(summary model.Summary) model.TrustScore {
	value := 1.0
	factors := []model.TrustFactor{}

	for _, factor := range []func(model.Summary) (model.TrustFactor, bool){
		citationFactor,
		claimFactor,
		semanticFactor,
	} {
		f, ok := factor(summary)
		if !ok {
			continue
		}
		value *= f.Value
		factors = append(factors, f)
	}

	return model.TrustScore{
		Value:   clamp(value),
		Factors: factors,
	}
}

// citationFactor rewards verified citations; with none verified it bottoms out at 0.3
func citationFactor(s model.Summary) (model.TrustFactor, bool) {
	if s.TotalCitations <= 0 {
		return model.TrustFactor{}, false
	}
	ratio := float64(s.VerifiedCitations) / float64(s.TotalCitations)
	return model.TrustFactor{
		Name:    "citations",
		Value:   citationFloor + citationWeight*ratio,
		Formula: fmt.Sprintf("0.3 + 0.7 * %d/%d", s.VerifiedCitations, s.TotalCitations),
	}, true
}

// claimFactor halves at most the score when every claim is high risk
func claimFactor(s model.Summary) (model.TrustFactor, bool) {
	if s.TotalClaims <= 0 {
		return model.TrustFactor{}, false
	}
	ratio := float64(s.HighRiskClaims) / float64(s.TotalClaims)
	return model.TrustFactor{
		Name:    "claims",
		Value:   1.0 - ratio*highRiskWeight,
		Formula: fmt.Sprintf("1 - %d/%d * 0.5", s.HighRiskClaims, s.TotalClaims),
	}, true
}

func semanticFactor(s model.Summary) (model.TrustFactor, bool) {
	if s.SemanticFlagged <= 0 {
		return model.TrustFactor{}, false
	}
	return model.TrustFactor{
		Name:    "semantic_flags",
		Value:   semanticFlagFactor,
		Formula: fmt.Sprintf("0.6 (%d flagged)", s.SemanticFlagged),
	}, true
}

func clamp(v float64) float64 {
	return min(max(v, 0.0), 1.0)
}
