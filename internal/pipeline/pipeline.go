package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/trustscan/internal/analyze"
	"github.com/ppiankov/trustscan/internal/extract"
	"github.com/ppiankov/trustscan/internal/llm"
	"github.com/ppiankov/trustscan/internal/metrics"
	"github.com/ppiankov/trustscan/internal/model"
	"github.com/ppiankov/trustscan/internal/score"
	"github.com/ppiankov/trustscan/internal/util"
	"github.com/ppiankov/trustscan/internal/validate"
	"github.com/ppiankov/trustscan/internal/worker"
)

const defaultWorkers = 8

// Pipeline orchestrates the verification of one document at a time.
// It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	models    *llm.Models
	extractor *extract.CitationExtractor
	validator *validate.CitationValidator
	analyzer  *analyze.ClaimAnalyzer
	scorer    *score.Scorer
	links     validate.LinkChecker
	fetcher   *Fetcher
	robots    *util.RobotsChecker
	metrics   *metrics.Metrics
	logger    *zap.Logger
	config    model.PipelineConfig
	now       func() time.Time
}

// NewPipeline wires a pipeline from configuration. models is the shared
// collaborator handle built once at startup and may be nil.
func NewPipeline(cfg *model.Config, models *llm.Models, logger *zap.Logger, m *metrics.Metrics) *Pipeline {
	limiter := worker.NewLimiter(cfg.LinkCheck.RequestsPerSecond, cfg.LinkCheck.Burst)
	links := validate.NewHTTPChecker(cfg.LinkCheck, cfg.HTTP, limiter, m)

	p := New(cfg.Pipeline, models, links, validate.NewAuthorityClassifier(&cfg.Authority), logger, m)
	p.fetcher = NewFetcher(cfg.HTTP)
	if cfg.HTTP.RespectRobots {
		p.robots = util.NewRobotsChecker(cfg.HTTP)
	}
	return p
}

// New creates a pipeline from its collaborators. links is the shared
// reachability checker; each Verify call memoizes it separately.
func New(cfg model.PipelineConfig, models *llm.Models, links validate.LinkChecker, authority *validate.AuthorityClassifier, logger *zap.Logger, m *metrics.Metrics) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Pipeline{
		models:    models,
		extractor: extract.NewCitationExtractor(models),
		validator: validate.NewCitationValidator(models, links, authority),
		analyzer:  analyze.NewClaimAnalyzer(models, models),
		scorer:    score.NewScorer(),
		links:     links,
		fetcher:   NewFetcher(model.HTTPConfig{}),
		metrics:   m,
		logger:    logger,
		config:    cfg,
		now:       time.Now,
	}
}

// Models returns the collaborator handle
func (p *Pipeline) Models() *llm.Models {
	return p.models
}

func (p *Pipeline) workers() int {
	if p.config.Workers > 0 {
		return p.config.Workers
	}
	return defaultWorkers
}

// Verify runs the full verification of one document. The report is
// complete or absent: on cancellation Verify returns the context error.
func (p *Pipeline) Verify(ctx context.Context, req model.Request) (*model.Report, error) {
	start := p.now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers())

	var summary model.Summary

	// Each task writes only its own slot, so ordering follows extraction
	citations := make([]model.CitationResult, 0)
	if req.CheckCitations {
		found := p.extractor.Extract(gctx, req.Content)
		summary.TotalCitations = len(found)
		citations = make([]model.CitationResult, len(found))

		validator := p.validator.WithLinkChecker(validate.NewMemoChecker(p.links))
		for i, c := range found {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				citations[i] = validator.Validate(gctx, c, req.UseSemanticJudgment)
				return nil
			})
		}
	}

	claims := make([]model.ClaimResult, 0)
	if req.CheckClaims {
		sentences := extract.SplitSentences(req.Content, p.config.MinClaimLength)
		summary.TotalClaims = len(sentences)
		if p.config.MaxClaims > 0 && len(sentences) > p.config.MaxClaims {
			sentences = sentences[:p.config.MaxClaims]
		}
		claims = make([]model.ClaimResult, len(sentences))

		for i, s := range sentences {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				claims[i] = p.analyzer.Analyze(gctx, s, req.UseSemanticJudgment)
				return nil
			})
		}
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		p.metrics.ObserveFailure("cancelled")
		p.logger.Debug("verification abandoned", zap.Error(err))
		return nil, err
	}

	for _, r := range citations {
		summary.TallyCitation(r)
	}
	for _, r := range claims {
		summary.TallyClaim(r)
	}

	trust := p.scorer.Calculate(summary)

	report := &model.Report{
		ID:              uuid.NewString(),
		Summary:         summary,
		Citations:       citations,
		Claims:          claims,
		TrustScore:      trust.Value,
		TrustFactors:    trust.Factors,
		SemanticEnabled: req.UseSemanticJudgment && p.models.JudgeAvailable(),
		Timestamp:       p.now().UTC().Format(time.RFC3339),
	}

	p.metrics.ObserveReport(report)
	p.logger.Debug("verification complete",
		zap.String("id", report.ID),
		zap.Int("citations", summary.TotalCitations),
		zap.Int("claims", summary.TotalClaims),
		zap.Float64("trust_score", report.TrustScore),
		zap.Duration("elapsed", p.now().Sub(start)))

	return report, nil
}

// CheckURL reports whether a single URL is reachable
func (p *Pipeline) CheckURL(ctx context.Context, rawURL string) model.LinkCheck {
	return p.links.Check(ctx, rawURL)
}

// AnalyzeClaim scores a single sentence
func (p *Pipeline) AnalyzeClaim(ctx context.Context, text string, useSemantic bool) model.ClaimResult {
	return p.analyzer.Analyze(ctx, text, useSemantic)
}
