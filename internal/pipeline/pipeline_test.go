package pipeline

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/trustscan/internal/llm"
	"github.com/ppiankov/trustscan/internal/metrics"
	"github.com/ppiankov/trustscan/internal/model"
)

// fakeLinks marks URLs in broken as unreachable and counts checks per URL
type fakeLinks struct {
	mu     sync.Mutex
	broken map[string]bool
	calls  map[string]int
}

func newFakeLinks(broken ...string) *fakeLinks {
	f := &fakeLinks{broken: map[string]bool{}, calls: map[string]int{}}
	for _, u := range broken {
		f.broken[u] = true
	}
	return f
}

func (f *fakeLinks) Check(_ context.Context, rawURL string) model.LinkCheck {
	f.mu.Lock()
	f.calls[rawURL]++
	f.mu.Unlock()

	if f.broken[rawURL] {
		return model.LinkCheck{URL: rawURL, StatusCode: 404, Error: "HTTP 404"}
	}
	return model.LinkCheck{URL: rawURL, Accessible: true, StatusCode: 200, FinalURL: rawURL}
}

// contradictingProvider flags everything it is asked to judge
type contradictingProvider struct{}

func (contradictingProvider) Name() string { return "fake" }
func (contradictingProvider) IsAvailable(context.Context) bool { return true }

func (contradictingProvider) Judge(context.Context, string, string) (*llm.Judgment, error) {
	return &llm.Judgment{Contradiction: 0.9, Neutral: 0.05, Entailment: 0.05}, nil
}

func (contradictingProvider) ClassifyType(_ context.Context, _ string, labels []string) (map[string]float64, error) {
	return map[string]float64{model.LabelFactual: 0.9, model.LabelOpinion: 0.1}, nil
}

func (contradictingProvider) ExtractEntities(context.Context, string) ([]model.Entity, error) {
	return nil, nil
}

func newTestPipeline(links *fakeLinks, models *llm.Models, cfg model.PipelineConfig) *Pipeline {
	return New(cfg, models, links, nil, nil, metrics.New())
}

func defaultPipelineConfig() model.PipelineConfig {
	return model.DefaultConfig().Pipeline
}

func TestVerify_EmptyDocument(t *testing.T) {
	p := newTestPipeline(newFakeLinks(), nil, defaultPipelineConfig())

	report, err := p.Verify(context.Background(), model.NewRequest(""))
	require.NoError(t, err)

	assert.Equal(t, 1.0, report.TrustScore)
	assert.Empty(t, report.TrustFactors)
	assert.NotNil(t, report.Citations)
	assert.NotNil(t, report.Claims)
	assert.Equal(t, model.Summary{}, report.Summary)
	assert.NotEmpty(t, report.ID)
	assert.NotEmpty(t, report.Timestamp)
	assert.False(t, report.SemanticEnabled)
}

func TestVerify_OverlappingCitationsShareLinkChecks(t *testing.T) {
	links := newFakeLinks()
	p := newTestPipeline(links, nil, defaultPipelineConfig())

	report, err := p.Verify(context.Background(),
		model.NewRequest("According to https://a.com, Smith, J. (2020). A Study. https://b.com"))
	require.NoError(t, err)

	require.Len(t, report.Citations, 3)
	assert.Equal(t, "Smith, J.", report.Citations[0].Citation.Author)
	assert.Equal(t, "https://a.com", report.Citations[1].Citation.URL)
	assert.Equal(t, 3, report.Summary.TotalCitations)
	assert.Equal(t, 3, report.Summary.VerifiedCitations)
	assert.Equal(t, 1.0, report.TrustScore)

	// b.com is matched twice but checked once within the request
	assert.Equal(t, map[string]int{"https://a.com": 1, "https://b.com": 1}, links.calls)
}

func TestVerify_HalfVerifiedCitations(t *testing.T) {
	links := newFakeLinks("https://bad1.example", "https://bad2.example")
	p := newTestPipeline(links, nil, defaultPipelineConfig())

	req := model.NewRequest("See https://ok1.example see https://ok2.example see https://bad1.example see https://bad2.example")
	req.CheckClaims = false

	report, err := p.Verify(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 4, report.Summary.TotalCitations)
	assert.Equal(t, 2, report.Summary.VerifiedCitations)
	assert.Equal(t, 2, report.Summary.BrokenCitations)
	assert.InDelta(t, 0.65, report.TrustScore, 1e-9)
	require.Len(t, report.TrustFactors, 1)
	assert.Equal(t, "citations", report.TrustFactors[0].Name)

	// Output order follows extraction order
	assert.Equal(t, "https://ok1.example", report.Citations[0].Citation.URL)
	assert.Equal(t, model.StatusBroken, report.Citations[3].Status)
}

func TestVerify_FakeCitationNotTallied(t *testing.T) {
	p := newTestPipeline(newFakeLinks(), nil, defaultPipelineConfig())

	req := model.NewRequest("[Nobody, 2999, Papers From The Future]")
	req.CheckClaims = false

	report, err := p.Verify(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, report.Citations, 1)
	assert.Equal(t, model.StatusFake, report.Citations[0].Status)
	s := report.Summary
	assert.Equal(t, 1, s.TotalCitations)
	assert.Zero(t, s.VerifiedCitations+s.BrokenCitations+s.SuspiciousCitations+s.HallucinatedCitations)
	assert.InDelta(t, 0.3, report.TrustScore, 1e-9)
}

func TestVerify_MaxClaims(t *testing.T) {
	cfg := defaultPipelineConfig()
	cfg.MaxClaims = 2
	p := newTestPipeline(newFakeLinks(), nil, cfg)

	req := model.NewRequest("The first sentence is long enough to count. " +
		"The second sentence is also long enough. " +
		"And a third sentence that is retained too.")
	req.CheckCitations = false

	report, err := p.Verify(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Summary.TotalClaims)
	require.Len(t, report.Claims, 2)
	assert.Equal(t, "The first sentence is long enough to count", report.Claims[0].Claim)
	assert.Equal(t, model.RiskMedium, report.Claims[0].RiskLevel)
	assert.Equal(t, []string{model.NoIndicatorsFlag}, report.Claims[0].Flags)
	assert.Equal(t, 1.0, report.TrustScore)
}

func TestVerify_HighRiskClaim(t *testing.T) {
	p := newTestPipeline(newFakeLinks(), nil, defaultPipelineConfig())

	report, err := p.Verify(context.Background(), model.NewRequest("Studies show that absolutely 95% of people agree with this"))
	require.NoError(t, err)

	require.Len(t, report.Claims, 1)
	assert.Equal(t, model.RiskHigh, report.Claims[0].RiskLevel)
	assert.Equal(t, 1, report.Summary.HighRiskClaims)
	assert.InDelta(t, 0.5, report.TrustScore, 1e-9)
}

func TestVerify_SemanticFlags(t *testing.T) {
	caps := llm.Capabilities{Judge: true, Classifier: true, Entities: true}
	models := llm.NewModels(contradictingProvider{}, caps, nil, nil)
	p := newTestPipeline(newFakeLinks(), models, defaultPipelineConfig())

	report, err := p.Verify(context.Background(), model.NewRequest("The Eiffel Tower was moved to Berlin last spring"))
	require.NoError(t, err)

	assert.True(t, report.SemanticEnabled)
	require.Len(t, report.Claims, 1)
	require.NotNil(t, report.Claims[0].SemanticVerdict)
	assert.True(t, report.Claims[0].SemanticVerdict.IsFlagged)
	assert.Equal(t, 1, report.Summary.SemanticFlagged)
	assert.InDelta(t, 0.3, report.TrustScore, 1e-9)

	names := make([]string, 0, len(report.TrustFactors))
	for _, f := range report.TrustFactors {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"claims", "semantic_flags"}, names)
}

func TestVerify_SemanticRequestedButUnavailable(t *testing.T) {
	models := llm.NewModels(contradictingProvider{}, llm.Capabilities{}, nil, nil)
	p := newTestPipeline(newFakeLinks(), models, defaultPipelineConfig())

	report, err := p.Verify(context.Background(), model.NewRequest("The Eiffel Tower was moved to Berlin last spring"))
	require.NoError(t, err)

	assert.False(t, report.SemanticEnabled)
	assert.Nil(t, report.Claims[0].SemanticVerdict)
	assert.Zero(t, report.Summary.SemanticFlagged)
}

func TestVerify_Cancelled(t *testing.T) {
	p := newTestPipeline(newFakeLinks(), nil, defaultPipelineConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := p.Verify(ctx, model.NewRequest("See https://a.example and this sentence is long enough."))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, report)
}

// cancellingLinks cancels the request on its nth check
type cancellingLinks struct {
	mu     sync.Mutex
	n      int
	calls  int
	cancel context.CancelFunc
}

func (c *cancellingLinks) Check(_ context.Context, rawURL string) model.LinkCheck {
	c.mu.Lock()
	c.calls++
	if c.calls == c.n {
		c.cancel()
	}
	c.mu.Unlock()
	return model.LinkCheck{URL: rawURL, Accessible: true, StatusCode: 200, FinalURL: rawURL}
}

func TestVerify_CancelledMidway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	links := &cancellingLinks{n: 2, cancel: cancel}
	cfg := defaultPipelineConfig()
	cfg.Workers = 1
	p := New(cfg, nil, links, nil, nil, metrics.New())

	text := "See https://a.example and https://b.example and https://c.example. " +
		"Also https://d.example plus one more claim sentence that is long enough."
	report, err := p.Verify(ctx, model.NewRequest(text))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, report)
	links.mu.Lock()
	defer links.mu.Unlock()
	assert.GreaterOrEqual(t, links.calls, 2)
}

func TestVerify_Idempotent(t *testing.T) {
	p := newTestPipeline(newFakeLinks("https://gone.example"), nil, defaultPipelineConfig())
	req := model.NewRequest("Source: https://gone.example. Brown (1999). Old Findings. Everyone always agrees with 80% of this.")

	first, err := p.Verify(context.Background(), req)
	require.NoError(t, err)
	second, err := p.Verify(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Citations, second.Citations)
	assert.Equal(t, first.Claims, second.Claims)
	assert.Equal(t, first.TrustScore, second.TrustScore)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestCheckURLAndAnalyzeClaim(t *testing.T) {
	p := newTestPipeline(newFakeLinks("https://down.example"), nil, defaultPipelineConfig())

	check := p.CheckURL(context.Background(), "https://down.example")
	assert.False(t, check.Accessible)
	assert.Equal(t, "HTTP 404", check.Error)

	claim := p.AnalyzeClaim(context.Background(), "This is definitely the best approach", true)
	assert.Contains(t, claim.Flags, "Overconfident language detected")
	assert.InDelta(t, 0.6, claim.Confidence, 1e-9)
}
