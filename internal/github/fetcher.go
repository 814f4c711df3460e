package github

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/repo-screener/internal/types"
)

// Enrichment caps. Only the most recent items get per-item detail calls, to
// bound API usage and rate-limit exposure.
const (
	enrichCommitLimit = 20
	enrichPRLimit     = 15
)

// List caps for PRs and issues.
const (
	maxPRs    = 30
	maxIssues = 30
)

// RepoRef is a parsed repository reference.
type RepoRef struct {
	Owner string
	Repo  string
}

// ParseRepoURL parses a repository reference into owner and repo. Accepted
// forms:
//   - https://github.com/owner/repo
//   - https://github.com/owner/repo.git
//   - github.com/owner/repo
//   - owner/repo
func ParseRepoURL(ref string) (RepoRef, error) {
	cleaned := strings.TrimSpace(ref)
	cleaned = strings.TrimRight(cleaned, "/")
	cleaned = strings.TrimSuffix(cleaned, ".git")

	if strings.HasPrefix(cleaned, "http://") || strings.HasPrefix(cleaned, "https://") {
		parsed, err := url.Parse(cleaned)
		if err != nil {
			return RepoRef{}, &InvalidRepoURLError{Ref: ref}
		}
		parts := splitPath(parsed.Path)
		if len(parts) >= 2 {
			return RepoRef{Owner: parts[0], Repo: parts[1]}, nil
		}
		return RepoRef{}, &InvalidRepoURLError{Ref: ref}
	}

	parts := splitPath(cleaned)
	switch {
	case len(parts) == 2:
		return RepoRef{Owner: parts[0], Repo: parts[1]}, nil
	case len(parts) == 3 && strings.Contains(parts[0], "."):
		// Schemeless host/owner/repo form.
		return RepoRef{Owner: parts[1], Repo: parts[2]}, nil
	}
	return RepoRef{}, &InvalidRepoURLError{Ref: ref}
}

func splitPath(p string) []string {
	var parts []string
	for _, part := range strings.Split(p, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

// Fetcher orchestrates the API calls that gather raw evidence for one
// repository.
type Fetcher struct {
	client *Client
	logger *zap.Logger
}

// NewFetcher builds a Fetcher around a Client.
func NewFetcher(client *Client, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{client: client, logger: logger}
}

// FetchRepoArtifacts gathers all raw artifact data for a repository
// reference. Repository metadata, languages, and the commit list are fetched
// concurrently; PR and issue lists follow concurrently per the options; a
// capped subset of commits and PRs is then enriched with per-item detail.
// Enrichment failures for individual items degrade to the item's base record
// and are reported in the result's EnrichmentStats.
func (f *Fetcher) FetchRepoArtifacts(ctx context.Context, repoRef string, opts types.ExtractOptions) (*RawArtifactData, error) {
	opts = opts.Normalized()

	ref, err := ParseRepoURL(repoRef)
	if err != nil {
		return nil, err
	}

	since := time.Now().UTC().AddDate(0, 0, -opts.SinceDays)

	var (
		repoInfo *RawRepoInfo
		langs    RawLanguages
		commits  []RawCommit
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		repoInfo, err = f.client.GetRepoInfo(gctx, ref.Owner, ref.Repo)
		return err
	})
	g.Go(func() error {
		var err error
		langs, err = f.client.GetLanguages(gctx, ref.Owner, ref.Repo)
		return err
	})
	g.Go(func() error {
		var err error
		commits, err = f.client.GetCommits(gctx, ref.Owner, ref.Repo, CommitListOptions{
			MaxCommits: opts.MaxCommits,
			Since:      since,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var (
		prs    []RawPullRequest
		issues []RawIssue
	)

	g, gctx = errgroup.WithContext(ctx)
	if *opts.IncludePRs {
		g.Go(func() error {
			var err error
			prs, err = f.client.GetPullRequests(gctx, ref.Owner, ref.Repo, PullRequestListOptions{
				State:  "all",
				MaxPRs: maxPRs,
			})
			return err
		})
	}
	if *opts.IncludeIssues {
		g.Go(func() error {
			var err error
			issues, err = f.client.GetIssues(gctx, ref.Owner, ref.Repo, IssueListOptions{
				State:     "all",
				MaxIssues: maxIssues,
			})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := EnrichmentStats{}
	commits = f.enrichCommits(ctx, ref, commits, &stats)
	prs = f.enrichPRs(ctx, ref, prs, &stats)

	f.logger.Debug("fetched repository artifacts",
		zap.String("repo", ref.Owner+"/"+ref.Repo),
		zap.Int("commits", len(commits)),
		zap.Int("pullRequests", len(prs)),
		zap.Int("issues", len(issues)),
		zap.Int("commitsFailed", stats.CommitsFailed),
		zap.Int("prsFailed", stats.PRsFailed),
	)

	return &RawArtifactData{
		RepoInfo:     *repoInfo,
		Languages:    langs,
		Commits:      commits,
		PullRequests: prs,
		Issues:       issues,
		Enrichment:   stats,
	}, nil
}

// enrichCommits fetches detail for the first enrichCommitLimit commits
// concurrently. A failed detail call leaves that commit's base record in
// place; relative order is preserved, with any remaining un-enriched
// commits following.
func (f *Fetcher) enrichCommits(ctx context.Context, ref RepoRef, commits []RawCommit, stats *EnrichmentStats) []RawCommit {
	n := min(len(commits), enrichCommitLimit)
	details := make([]*CommitDetail, n)

	g := new(errgroup.Group)
	for i := 0; i < n; i++ {
		i := i // pre-Go 1.22 loop variable semantics
		g.Go(func() error {
			detail, err := f.client.GetCommitDetail(ctx, ref.Owner, ref.Repo, commits[i].SHA)
			if err != nil {
				f.logger.Debug("commit enrichment failed",
					zap.String("sha", commits[i].SHA), zap.Error(err))
				return nil
			}
			details[i] = detail
			return nil
		})
	}
	_ = g.Wait()

	out := make([]RawCommit, len(commits))
	copy(out, commits)
	for i := 0; i < n; i++ {
		if details[i] == nil {
			stats.CommitsFailed++
			continue
		}
		stats.CommitsEnriched++
		statsCopy := details[i].Stats
		out[i].Stats = &statsCopy
		out[i].Files = details[i].Files
	}
	return out
}

// enrichPRs fetches detail for the first enrichPRLimit pull requests
// concurrently, with the same degrade-to-base behavior as enrichCommits.
func (f *Fetcher) enrichPRs(ctx context.Context, ref RepoRef, prs []RawPullRequest, stats *EnrichmentStats) []RawPullRequest {
	n := min(len(prs), enrichPRLimit)
	details := make([]*RawPullRequest, n)

	g := new(errgroup.Group)
	for i := 0; i < n; i++ {
		i := i // pre-Go 1.22 loop variable semantics
		g.Go(func() error {
			detail, err := f.client.GetPullRequestDetail(ctx, ref.Owner, ref.Repo, prs[i].Number)
			if err != nil {
				f.logger.Debug("PR enrichment failed",
					zap.Int("number", prs[i].Number), zap.Error(err))
				return nil
			}
			details[i] = detail
			return nil
		})
	}
	_ = g.Wait()

	out := make([]RawPullRequest, len(prs))
	copy(out, prs)
	for i := 0; i < n; i++ {
		if details[i] == nil {
			stats.PRsFailed++
			continue
		}
		stats.PRsEnriched++
		out[i] = *details[i]
	}
	return out
}
