package validate

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/trustscan/internal/model"
)

// Judge is the semantic judgment capability
type Judge interface {
	JudgeAvailable() bool
	Judge(ctx context.Context, text, reference string) model.SemanticVerdict
}

// LinkChecker reports whether a URL is reachable
type LinkChecker interface {
	Check(ctx context.Context, rawURL string) model.LinkCheck
}

// Penalties subtracted from a citation's accessibility score
const (
	penaltyHallucinated = 0.4
	penaltyBroken       = 0.5
	penaltyNoURL        = 0.3
	penaltyFutureYear   = 0.4
	penaltyAncientYear  = 0.2

	oldestPlausibleYear = 1800
)

// ruleState is threaded through the citation rules in order
type ruleState struct {
	status  model.VerificationStatus
	reasons []string
	score   float64
	verdict *model.SemanticVerdict
}

// citationRule inspects a citation and returns the updated state.
// A later rule may overwrite the status set by an earlier one.
type citationRule func(ctx context.Context, c model.Citation, useSemantic bool, st ruleState) ruleState

// CitationValidator resolves a citation's verification status
type CitationValidator struct {
	judge     Judge
	links     LinkChecker
	authority *AuthorityClassifier
	now       func() time.Time
}

// NewCitationValidator creates a validator. judge and authority may be nil.
func NewCitationValidator(judge Judge, links LinkChecker, authority *AuthorityClassifier) *CitationValidator {
	return &CitationValidator{
		judge:     judge,
		links:     links,
		authority: authority,
		now:       time.Now,
	}
}

// WithLinkChecker returns a copy of the validator that checks URLs with links
func (v *CitationValidator) WithLinkChecker(links LinkChecker) *CitationValidator {
	cp := *v
	cp.links = links
	return &cp
}

// rules returns the rule sequence. The order is significant.
func (v *CitationValidator) rules() []citationRule {
	return []citationRule{
		v.checkSemantic,
		v.checkReachability,
		v.checkYear,
		annotateEntities,
	}
}

// Validate runs every rule over c and returns the final result
func (v *CitationValidator) Validate(ctx context.Context, c model.Citation, useSemantic bool) model.CitationResult {
	st := ruleState{
		status:  model.StatusVerified,
		reasons: []string{},
		score:   1.0,
	}

	for _, rule := range v.rules() {
		st = rule(ctx, c, useSemantic, st)
	}

	result := model.CitationResult{
		Citation:           c,
		Status:             st.status,
		Reasons:            st.reasons,
		AccessibilityScore: max(0.0, st.score),
		SemanticVerdict:    st.verdict,
	}
	if v.authority != nil && c.HasURL() {
		result.Authority = v.authority.Classify(c.URL)
	}
	return result
}

func (v *CitationValidator) checkSemantic(ctx context.Context, c model.Citation, useSemantic bool, st ruleState) ruleState {
	if !useSemantic || v.judge == nil || !v.judge.JudgeAvailable() {
		return st
	}

	verdict := v.judge.Judge(ctx, c.Text, "")
	st.verdict = &verdict
	if verdict.IsFlagged {
		st.status = model.StatusHallucinated
		st.reasons = append(st.reasons, "Semantic check: "+verdict.Reasoning)
		st.score -= penaltyHallucinated
	}
	return st
}

func (v *CitationValidator) checkReachability(ctx context.Context, c model.Citation, _ bool, st ruleState) ruleState {
	if !c.HasURL() {
		if st.status != model.StatusHallucinated {
			st.status = model.StatusSuspicious
		}
		st.reasons = append(st.reasons, "No URL provided for verification")
		st.score -= penaltyNoURL
		return st
	}

	check := v.links.Check(ctx, c.URL)
	if !check.Accessible {
		st.status = model.StatusBroken
		st.reasons = append(st.reasons, "URL not accessible: "+check.Error)
		st.score -= penaltyBroken
		return st
	}

	st.reasons = append(st.reasons, "URL is accessible")
	return st
}

// checkYear overrides any earlier status. An implausibly old year demotes
// even BROKEN and HALLUCINATED citations to SUSPICIOUS.
func (v *CitationValidator) checkYear(_ context.Context, c model.Citation, _ bool, st ruleState) ruleState {
	if !c.HasYear() {
		return st
	}

	switch currentYear := v.now().Year(); {
	case c.Year > currentYear:
		st.status = model.StatusFake
		st.reasons = append(st.reasons, fmt.Sprintf("Future year detected: %d", c.Year))
		st.score -= penaltyFutureYear
	case c.Year < oldestPlausibleYear:
		st.status = model.StatusSuspicious
		st.reasons = append(st.reasons, fmt.Sprintf("Unusually old year: %d", c.Year))
		st.score -= penaltyAncientYear
	}
	return st
}

func annotateEntities(_ context.Context, c model.Citation, _ bool, st ruleState) ruleState {
	persons := 0
	for _, e := range c.Entities {
		if e.Type == model.EntityTypePerson {
			persons++
		}
	}
	if persons > 0 {
		st.reasons = append(st.reasons, fmt.Sprintf("Detected %d person entities", persons))
	}
	return st
}
