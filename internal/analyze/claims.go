package analyze

import (
	"context"
	"fmt"
	"regexp"

	"github.com/ppiankov/trustscan/internal/model"
)

// Judge is the semantic judgment capability
type Judge interface {
	JudgeAvailable() bool
	Judge(ctx context.Context, text, reference string) model.SemanticVerdict
}

// Classifier scores text against a set of labels
type Classifier interface {
	ClassifierAvailable() bool
	ClassifyType(ctx context.Context, text string, labels []string) map[string]float64
}

const (
	baseConfidence     = 0.5
	opinionThreshold   = 0.7
	opinionBump        = 0.15
	overconfidenceBump = 0.1
	unsourcedStatBump  = 0.1

	flagOverconfident = "Overconfident language detected"
	flagUnsourcedStat = "Specific statistics without source"
)

// overconfidencePatterns are tried in order; only the first match counts
var overconfidencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(definitely|certainly|absolutely|undoubtedly)\b`),
	regexp.MustCompile(`(?i)\b(all|every|always|never)\b`),
	regexp.MustCompile(`\b\d{1,3}(?:\.\d+)?%`),
	regexp.MustCompile(`(?i)\b(?:studies show|research proves|scientists confirm)\b`),
}

var (
	statisticPattern = regexp.MustCompile(`\b\d+(?:\.\d+)?%|\b\d+(?:,\d{3})*(?:\.\d+)?\b`)
	sourcedPattern   = regexp.MustCompile(`(?i)https?://|according to`)
)

// ClaimAnalyzer scores how likely a sentence is to be a hallucinated claim
type ClaimAnalyzer struct {
	judge      Judge
	classifier Classifier
}

// NewClaimAnalyzer creates an analyzer. Either collaborator may be nil.
func NewClaimAnalyzer(judge Judge, classifier Classifier) *ClaimAnalyzer {
	return &ClaimAnalyzer{judge: judge, classifier: classifier}
}

// Analyze scores one sentence
func (a *ClaimAnalyzer) Analyze(ctx context.Context, sentence string, useSemantic bool) model.ClaimResult {
	var flags []string
	confidence := baseConfidence
	var verdict *model.SemanticVerdict

	if useSemantic && a.judge != nil && a.judge.JudgeAvailable() {
		v := a.judge.Judge(ctx, sentence, "")
		verdict = &v

		// The verdict replaces the baseline in either direction
		if v.IsFlagged {
			flags = append(flags, "Semantic check: "+v.Reasoning)
			confidence = v.RawScore
		} else {
			confidence = 1.0 - v.RawScore
		}

		if label, score, ok := a.topLabel(ctx, sentence); ok && label == model.LabelOpinion && score > opinionThreshold {
			flags = append(flags, fmt.Sprintf("Likely opinion/speculation (%.1f%%)", score*100))
			confidence += opinionBump
		}
	}

	for _, p := range overconfidencePatterns {
		if p.MatchString(sentence) {
			flags = append(flags, flagOverconfident)
			confidence += overconfidenceBump
			break
		}
	}

	if statisticPattern.MatchString(sentence) && !sourcedPattern.MatchString(sentence) {
		flags = append(flags, flagUnsourcedStat)
		confidence += unsourcedStatBump
	}

	confidence = min(confidence, 1.0)

	if len(flags) == 0 {
		flags = []string{model.NoIndicatorsFlag}
	}

	return model.ClaimResult{
		Claim:           sentence,
		Confidence:      confidence,
		RiskLevel:       model.RiskFromConfidence(confidence),
		Flags:           flags,
		SemanticVerdict: verdict,
	}
}

// topLabel returns the highest-scoring claim type. Ties go to the label
// listed first in model.ClaimLabels.
func (a *ClaimAnalyzer) topLabel(ctx context.Context, sentence string) (string, float64, bool) {
	if a.classifier == nil || !a.classifier.ClassifierAvailable() {
		return "", 0, false
	}

	scores := a.classifier.ClassifyType(ctx, sentence, model.ClaimLabels)
	if len(scores) == 0 {
		return "", 0, false
	}

	best, bestScore, found := "", 0.0, false
	for _, label := range model.ClaimLabels {
		score, ok := scores[label]
		if !ok {
			continue
		}
		if !found || score > bestScore {
			best, bestScore, found = label, score, true
		}
	}
	return best, bestScore, found
}
