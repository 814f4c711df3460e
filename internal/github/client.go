// Package github provides a typed client for the GitHub REST v3 API and the
// fetch orchestration that gathers raw repository evidence.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is the public GitHub REST API endpoint.
const DefaultBaseURL = "https://api.github.com"

// DefaultTimeout bounds every outbound API call.
const DefaultTimeout = 30 * time.Second

const userAgent = "repo-screener/1.0"

// maxPerPage is the GitHub API page size ceiling.
const maxPerPage = 100

// ClientConfig configures a Client. Token is required; the rest default to
// production values when zero.
type ClientConfig struct {
	Token   string
	BaseURL string
	Timeout time.Duration
}

// Client is a typed wrapper over the GitHub REST API. All methods translate
// HTTP failures into the package's typed error taxonomy; raw transport
// errors never leak upward.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient builds a Client from explicit configuration.
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		token:   cfg.Token,
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// GetRepoInfo fetches repository metadata.
func (c *Client) GetRepoInfo(ctx context.Context, owner, repo string) (*RawRepoInfo, error) {
	var info RawRepoInfo
	path := fmt.Sprintf("/repos/%s/%s", owner, repo)
	if err := c.get(ctx, path, nil, owner, repo, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// GetLanguages fetches the byte count of code per language.
func (c *Client) GetLanguages(ctx context.Context, owner, repo string) (RawLanguages, error) {
	var langs RawLanguages
	path := fmt.Sprintf("/repos/%s/%s/languages", owner, repo)
	if err := c.get(ctx, path, nil, owner, repo, &langs); err != nil {
		return nil, err
	}
	return langs, nil
}

// CommitListOptions bounds a commit listing.
type CommitListOptions struct {
	MaxCommits int
	Since      time.Time
}

// GetCommits lists commits, newest first, stopping once MaxCommits entries
// have been collected.
func (c *Client) GetCommits(ctx context.Context, owner, repo string, opts CommitListOptions) ([]RawCommit, error) {
	if opts.MaxCommits <= 0 {
		opts.MaxCommits = 50
	}
	perPage := min(opts.MaxCommits, maxPerPage)

	q := url.Values{}
	q.Set("per_page", strconv.Itoa(perPage))
	if !opts.Since.IsZero() {
		q.Set("since", opts.Since.UTC().Format(time.RFC3339))
	}

	path := fmt.Sprintf("/repos/%s/%s/commits", owner, repo)
	commits := make([]RawCommit, 0, opts.MaxCommits)
	for page := 1; len(commits) < opts.MaxCommits; page++ {
		q.Set("page", strconv.Itoa(page))

		var pageCommits []RawCommit
		if err := c.get(ctx, path, q, owner, repo, &pageCommits); err != nil {
			return nil, err
		}
		for _, commit := range pageCommits {
			commits = append(commits, commit)
			if len(commits) >= opts.MaxCommits {
				break
			}
		}
		if len(pageCommits) < perPage {
			break
		}
	}
	return commits, nil
}

// CommitDetail holds the diff stats and changed files of a single commit.
type CommitDetail struct {
	Stats RawCommitStats
	Files []RawFileChange
}

// GetCommitDetail fetches diff stats and changed files for one commit.
func (c *Client) GetCommitDetail(ctx context.Context, owner, repo, sha string) (*CommitDetail, error) {
	var payload struct {
		Stats *RawCommitStats `json:"stats"`
		Files []RawFileChange `json:"files"`
	}
	path := fmt.Sprintf("/repos/%s/%s/commits/%s", owner, repo, sha)
	if err := c.get(ctx, path, nil, owner, repo, &payload); err != nil {
		return nil, err
	}

	detail := &CommitDetail{Files: payload.Files}
	if payload.Stats != nil {
		detail.Stats = *payload.Stats
	}
	return detail, nil
}

// PullRequestListOptions bounds a pull request listing.
type PullRequestListOptions struct {
	State  string // "open", "closed", or "all"
	MaxPRs int
}

// GetPullRequests lists pull requests sorted by most recent update. List
// entries carry no size or review counts; those come from
// GetPullRequestDetail.
func (c *Client) GetPullRequests(ctx context.Context, owner, repo string, opts PullRequestListOptions) ([]RawPullRequest, error) {
	if opts.State == "" {
		opts.State = "closed"
	}
	if opts.MaxPRs <= 0 {
		opts.MaxPRs = 30
	}
	perPage := min(opts.MaxPRs, maxPerPage)

	q := url.Values{}
	q.Set("state", opts.State)
	q.Set("sort", "updated")
	q.Set("direction", "desc")
	q.Set("per_page", strconv.Itoa(perPage))

	path := fmt.Sprintf("/repos/%s/%s/pulls", owner, repo)
	prs := make([]RawPullRequest, 0, opts.MaxPRs)
	for page := 1; len(prs) < opts.MaxPRs; page++ {
		q.Set("page", strconv.Itoa(page))

		var pagePRs []RawPullRequest
		if err := c.get(ctx, path, q, owner, repo, &pagePRs); err != nil {
			return nil, err
		}
		for _, pr := range pagePRs {
			prs = append(prs, pr)
			if len(prs) >= opts.MaxPRs {
				break
			}
		}
		if len(pagePRs) < perPage {
			break
		}
	}
	return prs, nil
}

// GetPullRequestDetail fetches one PR with additions, deletions, changed
// file count, and review comment count populated.
func (c *Client) GetPullRequestDetail(ctx context.Context, owner, repo string, number int) (*RawPullRequest, error) {
	var pr RawPullRequest
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d", owner, repo, number)
	if err := c.get(ctx, path, nil, owner, repo, &pr); err != nil {
		return nil, err
	}
	return &pr, nil
}

// IssueListOptions bounds an issue listing.
type IssueListOptions struct {
	State     string // "open", "closed", or "all"
	MaxIssues int
}

// GetIssues lists issues sorted by most recent update. The GitHub API
// returns pull requests on this endpoint too; those are skipped and do not
// count against MaxIssues.
func (c *Client) GetIssues(ctx context.Context, owner, repo string, opts IssueListOptions) ([]RawIssue, error) {
	if opts.State == "" {
		opts.State = "closed"
	}
	if opts.MaxIssues <= 0 {
		opts.MaxIssues = 30
	}
	perPage := min(opts.MaxIssues, maxPerPage)

	q := url.Values{}
	q.Set("state", opts.State)
	q.Set("sort", "updated")
	q.Set("direction", "desc")
	q.Set("per_page", strconv.Itoa(perPage))

	path := fmt.Sprintf("/repos/%s/%s/issues", owner, repo)
	issues := make([]RawIssue, 0, opts.MaxIssues)
	for page := 1; len(issues) < opts.MaxIssues; page++ {
		q.Set("page", strconv.Itoa(page))

		var pageIssues []RawIssue
		if err := c.get(ctx, path, q, owner, repo, &pageIssues); err != nil {
			return nil, err
		}
		for _, issue := range pageIssues {
			if issue.PullRequest != nil {
				continue
			}
			issues = append(issues, issue)
			if len(issues) >= opts.MaxIssues {
				break
			}
		}
		if len(pageIssues) < perPage {
			break
		}
	}
	return issues, nil
}

// get issues a GET request and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, owner, repo string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &APIError{Message: "failed to create request", Cause: err}
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return c.mapStatus(resp, owner, repo)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Message: "failed to decode response body", Cause: err}
	}
	return nil
}

// mapStatus converts a non-200 response into the typed error taxonomy.
func (c *Client) mapStatus(resp *http.Response, owner, repo string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var apiMsg struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &apiMsg)
	cause := fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiMsg.Message)

	c.logger.Debug("GitHub API error response",
		zap.Int("status", resp.StatusCode),
		zap.String("repo", owner+"/"+repo),
		zap.String("message", apiMsg.Message),
	)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Owner: owner, Repo: repo, Cause: cause}
	case http.StatusNotFound:
		return &NotFoundError{Owner: owner, Repo: repo, Cause: cause}
	case http.StatusTooManyRequests:
		return &RateLimitError{Cause: cause}
	default:
		return &APIError{Message: fmt.Sprintf("unexpected status %d", resp.StatusCode), Cause: cause}
	}
}
