package model

// Citation represents a span of text believed to reference an external source
type Citation struct {
	Text     string   `json:"text"`               // Raw matched span
	URL      string   `json:"url,omitempty"`      // Source URL, if any
	Author   string   `json:"author,omitempty"`   // Author(s) as written
	Year     int      `json:"year,omitempty"`     // Publication year (0 = absent)
	Title    string   `json:"title,omitempty"`    // Title as written
	Entities []Entity `json:"entities,omitempty"` // Named entities found in the span
}

// HasURL reports whether the citation carries a URL
func (c Citation) HasURL() bool {
	return c.URL != ""
}

// HasYear reports whether the citation carries a year
func (c Citation) HasYear() bool {
	return c.Year != 0
}

// Entity is a named entity extracted from text
type Entity struct {
	Text  string  `json:"text"`
	Type  string  `json:"type"` // PER, ORG, LOC, MISC
	Score float64 `json:"score"`
}

// EntityTypePerson is the entity type used for people
const EntityTypePerson = "PER"

// VerificationStatus is the outcome of citation validation
type VerificationStatus string

const (
	StatusVerified     VerificationStatus = "verified"
	StatusUnverified   VerificationStatus = "unverified"
	StatusSuspicious   VerificationStatus = "suspicious"
	StatusBroken       VerificationStatus = "broken"
	StatusFake         VerificationStatus = "fake"
	StatusHallucinated VerificationStatus = "hallucinated"
)

// CitationResult is the validation result for one citation
type CitationResult struct {
	Citation           Citation           `json:"citation"`
	Status             VerificationStatus `json:"status"`
	Reasons            []string           `json:"reasons"`
	AccessibilityScore float64            `json:"accessibility_score"`
	SemanticVerdict    *SemanticVerdict   `json:"semantic_verdict,omitempty"`
	Authority          AuthorityTier      `json:"authority,omitempty"` // Informational, never affects status
}
