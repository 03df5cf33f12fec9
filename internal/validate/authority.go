package validate

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/ppiankov/trustscan/internal/model"
)

// AuthorityClassifier places citation URLs into authority tiers.
// The tier is reported alongside a citation result and never changes its status.
type AuthorityClassifier struct {
	domainMap        map[string]model.AuthorityTier
	primaryDomains   []string
	secondaryDomains []string
	pathPatterns     []compiledPattern
}

type compiledPattern struct {
	pattern *regexp.Regexp
	tier    model.AuthorityTier
}

// NewAuthorityClassifier creates a classifier. Invalid path patterns are skipped.
func NewAuthorityClassifier(config *model.AuthorityConfig) *AuthorityClassifier {
	if config == nil {
		config = &model.DefaultConfig().Authority
	}

	classifier := &AuthorityClassifier{
		domainMap:        make(map[string]model.AuthorityTier, len(config.DomainMap)),
		primaryDomains:   normalizeDomains(config.PrimaryDomains),
		secondaryDomains: normalizeDomains(config.SecondaryDomains),
	}

	for host, tier := range config.DomainMap {
		classifier.domainMap[strings.ToLower(host)] = ParseTier(tier)
	}

	for _, pp := range config.PathPatterns {
		re, err := regexp.Compile(pp.Pattern)
		if err != nil {
			continue
		}
		classifier.pathPatterns = append(classifier.pathPatterns, compiledPattern{
			pattern: re,
			tier:    ParseTier(pp.Tier),
		})
	}

	return classifier
}

// Classify returns the authority tier of rawURL, or TierUnknown when it has no host
func (a *AuthorityClassifier) Classify(rawURL string) model.AuthorityTier {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return model.TierUnknown
	}

	host := strings.ToLower(parsed.Hostname())
	host = strings.TrimPrefix(host, "www.")

	if tier, ok := a.domainMap[host]; ok {
		return tier
	}
	if matchesDomain(host, a.primaryDomains) {
		return model.TierPrimary
	}
	if matchesDomain(host, a.secondaryDomains) {
		return model.TierSecondary
	}

	for _, cp := range a.pathPatterns {
		if cp.pattern.MatchString(parsed.Path) {
			return cp.tier
		}
	}

	// Government and academic hosts
	if strings.HasSuffix(host, ".gov") || strings.HasSuffix(host, ".edu") || strings.HasSuffix(host, ".ac.uk") {
		return model.TierPrimary
	}

	return model.TierTertiary
}

// matchesDomain reports whether host equals, or is a subdomain of, any domain
func matchesDomain(host string, domains []string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func normalizeDomains(domains []string) []string {
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.TrimSpace(strings.ToLower(d))
		if d != "" {
			out = append(out, d)
		}
	}
	return out
}

// ParseTier converts a configured tier name or number to an AuthorityTier
func ParseTier(tier string) model.AuthorityTier {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case "primary", "1":
		return model.TierPrimary
	case "secondary", "2":
		return model.TierSecondary
	default:
		return model.TierTertiary
	}
}
