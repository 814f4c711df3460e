// Package pipeline composes fetching, normalization, and the two-stage AI
// evaluation into the screening entry points exposed to callers.
package pipeline

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jonathan/repo-screener/internal/evaluator"
	"github.com/jonathan/repo-screener/internal/gemini"
	"github.com/jonathan/repo-screener/internal/github"
	"github.com/jonathan/repo-screener/internal/normalizer"
	"github.com/jonathan/repo-screener/internal/types"
)

// Config holds the explicit configuration for a Pipeline. The GitHub token
// is caller-supplied per request and deliberately absent here.
type Config struct {
	GeminiAPIKey  string
	GeminiModel   string
	GitHubBaseURL string
	GitHubTimeout time.Duration
}

// evaluatorClient is the model client slice an evaluation needs, plus
// resource cleanup.
type evaluatorClient interface {
	evaluator.StructuredGenerator
	Close() error
}

// Pipeline is the stateless orchestrator. All state is request-scoped; the
// same Pipeline can serve concurrent calls.
type Pipeline struct {
	cfg      Config
	logger   *zap.Logger
	validate *validator.Validate

	// newEvaluatorClient is a construction seam so tests can substitute a
	// fake model client.
	newEvaluatorClient func(ctx context.Context) (evaluatorClient, error)
}

// New builds a Pipeline from explicit configuration.
func New(cfg Config, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pipeline{
		cfg:      cfg,
		logger:   logger,
		validate: validator.New(),
	}
	p.newEvaluatorClient = func(ctx context.Context) (evaluatorClient, error) {
		return gemini.NewClient(ctx, gemini.Config{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.GeminiModel,
		}, logger)
	}
	return p
}

// ExtractAndNormalize fetches raw repository data and normalizes it into an
// ArtifactBundle. Callable independently because extraction happens once at
// submission time while evaluation may be deferred or repeated.
func (p *Pipeline) ExtractAndNormalize(ctx context.Context, token, repoRef string, opts types.ExtractOptions) (*types.ArtifactBundle, error) {
	client := github.NewClient(github.ClientConfig{
		Token:   token,
		BaseURL: p.cfg.GitHubBaseURL,
		Timeout: p.cfg.GitHubTimeout,
	}, p.logger)

	raw, err := github.NewFetcher(client, p.logger).FetchRepoArtifacts(ctx, repoRef, opts)
	if err != nil {
		return nil, wrap("extraction failed", err)
	}

	bundle := normalizer.Normalize(raw, repoRef, opts.CandidateGithub)

	p.logger.Info("extracted artifact bundle",
		zap.String("bundleId", bundle.ID),
		zap.String("repo", bundle.RepoMeta.FullName),
		zap.Int("commits", len(bundle.Commits)),
		zap.Int("pullRequests", len(bundle.PullRequests)),
		zap.Int("issues", len(bundle.Issues)),
		zap.Int("enrichmentFailures", raw.Enrichment.CommitsFailed+raw.Enrichment.PRsFailed),
	)
	return bundle, nil
}

// EvaluateCandidate runs the two-stage evaluation of a bundle against a job
// description. Both stages share one model client so construction cost is
// amortized across the calls.
func (p *Pipeline) EvaluateCandidate(ctx context.Context, bundle *types.ArtifactBundle, jd *types.JobDescription) (*types.EvaluationResult, error) {
	if err := p.validate.Struct(jd); err != nil {
		return nil, &Error{Message: "invalid job description", Cause: err}
	}

	client, err := p.newEvaluatorClient(ctx)
	if err != nil {
		return nil, wrap("evaluation failed", err)
	}
	defer func() { _ = client.Close() }()

	analysis, err := evaluator.AnalyzeArtifacts(ctx, client, bundle)
	if err != nil {
		return nil, wrap("evaluation failed", err)
	}

	score, err := evaluator.ScoreCandidate(ctx, client, analysis.Signals, jd, bundle.ID)
	if err != nil {
		return nil, wrap("evaluation failed", err)
	}

	p.logger.Info("evaluated candidate",
		zap.String("evaluationId", score.Evaluation.ID),
		zap.String("bundleId", bundle.ID),
		zap.String("jobId", jd.ID),
		zap.Int("overallScore", score.Evaluation.OverallScore),
		zap.String("confidence", string(score.Evaluation.Confidence)),
		zap.Int("analysisTokens", analysis.TokensUsed.Total),
		zap.Int("scoringTokens", score.TokensUsed.Total),
	)
	return score.Evaluation, nil
}

// RunScreeningPipeline runs the full pipeline: fetch, normalize, analyze,
// score.
func (p *Pipeline) RunScreeningPipeline(ctx context.Context, token, repoRef string, jd *types.JobDescription, opts types.ExtractOptions) (*types.PipelineResult, error) {
	bundle, err := p.ExtractAndNormalize(ctx, token, repoRef, opts)
	if err != nil {
		return nil, err
	}

	evaluation, err := p.EvaluateCandidate(ctx, bundle, jd)
	if err != nil {
		return nil, err
	}

	return &types.PipelineResult{
		ArtifactBundle: bundle,
		Evaluation:     evaluation,
	}, nil
}
