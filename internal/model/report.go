package model

// Request is a document verification request
type Request struct {
	Content             string `json:"content"`
	CheckCitations      bool   `json:"check_citations"`
	CheckClaims         bool   `json:"check_claims"`
	UseSemanticJudgment bool   `json:"use_semantic_judgment"`
}

// NewRequest returns a request with every check enabled
func NewRequest(content string) Request {
	return Request{
		Content:             content,
		CheckCitations:      true,
		CheckClaims:         true,
		UseSemanticJudgment: true,
	}
}

// Summary holds the document-level verification counters
type Summary struct {
	TotalCitations        int `json:"total_citations"`
	VerifiedCitations     int `json:"verified_citations"`
	BrokenCitations       int `json:"broken_citations"`
	SuspiciousCitations   int `json:"suspicious_citations"`
	HallucinatedCitations int `json:"hallucinated_citations"`
	TotalClaims           int `json:"total_claims"`
	HighRiskClaims        int `json:"high_risk_claims"`
	SemanticFlagged       int `json:"semantic_flagged"`
}

// TallyCitation counts one citation result into its status bucket.
// FAKE and UNVERIFIED have no bucket of their own.
func (s *Summary) TallyCitation(r CitationResult) {
	switch r.Status {
	case StatusVerified:
		s.VerifiedCitations++
	case StatusBroken:
		s.BrokenCitations++
	case StatusSuspicious:
		s.SuspiciousCitations++
	case StatusHallucinated:
		s.HallucinatedCitations++
		s.SemanticFlagged++
	}
}

// TallyClaim counts one claim result
func (s *Summary) TallyClaim(r ClaimResult) {
	if r.RiskLevel == RiskHigh {
		s.HighRiskClaims++
	}
	if r.SemanticVerdict != nil && r.SemanticVerdict.IsFlagged {
		s.SemanticFlagged++
	}
}

// TrustScore is the aggregate trust score with its transparent breakdown
type TrustScore struct {
	Value   float64       `json:"value"`
	Factors []TrustFactor `json:"factors"`
}

// TrustFactor is one multiplicative factor applied to the trust score
type TrustFactor struct {
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Formula string  `json:"formula"`
}

// Report is the complete result of verifying one document
type Report struct {
	ID              string           `json:"id"`
	Summary         Summary          `json:"summary"`
	Citations       []CitationResult `json:"citations"`
	Claims          []ClaimResult    `json:"claims"`
	TrustScore      float64          `json:"trust_score"`
	TrustFactors    []TrustFactor    `json:"trust_factors"`
	SemanticEnabled bool             `json:"semantic_enabled"`
	Timestamp       string           `json:"timestamp"`
}
