package model

// SemanticVerdict is the output of the semantic judgment capability.
// A verdict is produced fresh for every call and never cached.
type SemanticVerdict struct {
	IsFlagged  bool    `json:"is_flagged"`
	Confidence float64 `json:"confidence"`
	RawScore   float64 `json:"raw_score"` // Probability of the flagged class
	Reasoning  string  `json:"reasoning"`
}

// NeutralVerdict is the inert verdict returned when judgment is unavailable
// or fails. It never flags and sits at the midpoint.
func NeutralVerdict(reasoning string) SemanticVerdict {
	return SemanticVerdict{
		IsFlagged:  false,
		Confidence: 0.5,
		RawScore:   0.5,
		Reasoning:  reasoning,
	}
}

// LinkCheck is the result of a URL reachability check
type LinkCheck struct {
	URL        string `json:"url"`
	Accessible bool   `json:"accessible"`
	StatusCode int    `json:"status_code,omitempty"`
	FinalURL   string `json:"final_url,omitempty"`
	Error      string `json:"error,omitempty"`
}
