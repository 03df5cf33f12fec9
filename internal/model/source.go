package model

// AuthorityTier represents the classification of source authority
type AuthorityTier int

const (
	TierUnknown   AuthorityTier = 0 // Not yet classified
	TierPrimary   AuthorityTier = 1 // Laws, statutes, academic papers, official documents
	TierSecondary AuthorityTier = 2 // Encyclopedias, major publishers, reputable media
	TierTertiary  AuthorityTier = 3 // Blogs, personal websites, everything else
)

func (t AuthorityTier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}

// MarshalText renders the tier by name in JSON and YAML output
func (t AuthorityTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// AuthorityConfig configures URL authority classification
type AuthorityConfig struct {
	PrimaryDomains   []string          `mapstructure:"primary_domains" yaml:"primary_domains"`
	SecondaryDomains []string          `mapstructure:"secondary_domains" yaml:"secondary_domains"`
	DomainMap        map[string]string `mapstructure:"domain_map" yaml:"domain_map,omitempty"`
	PathPatterns     []PathPattern     `mapstructure:"path_patterns" yaml:"path_patterns,omitempty"`
}

// PathPattern assigns a tier to URLs whose path matches a regular expression
type PathPattern struct {
	Pattern string `mapstructure:"pattern" yaml:"pattern"`
	Tier    string `mapstructure:"tier" yaml:"tier"`
}
