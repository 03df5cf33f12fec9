package model

// RiskLevel categorizes how likely a claim is to be hallucinated
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// NoIndicatorsFlag is the sole flag of a claim that triggered no rule
const NoIndicatorsFlag = "No obvious hallucination indicators"

// ClaimResult is the risk analysis of one candidate sentence
type ClaimResult struct {
	Claim           string           `json:"claim"`
	Confidence      float64          `json:"confidence"` // Hallucination risk confidence in [0,1]
	RiskLevel       RiskLevel        `json:"risk_level"`
	Flags           []string         `json:"flags"`
	SemanticVerdict *SemanticVerdict `json:"semantic_verdict,omitempty"`
}

// RiskFromConfidence maps a clamped confidence onto a risk level
func RiskFromConfidence(confidence float64) RiskLevel {
	switch {
	case confidence >= 0.7:
		return RiskHigh
	case confidence >= 0.5:
		return RiskMedium
	default:
		return RiskLow
	}
}

// ClaimLabels is the fixed label set used for claim-type classification
var ClaimLabels = []string{
	LabelFactual,
	LabelOpinion,
	LabelStatistical,
	LabelCitation,
	LabelGeneralKnowledge,
}

const (
	LabelFactual          = "factual statement"
	LabelOpinion          = "opinion or speculation"
	LabelStatistical      = "statistical claim"
	LabelCitation         = "citation or reference"
	LabelGeneralKnowledge = "general knowledge"
)
