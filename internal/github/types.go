package github

import "time"

// Raw payload shapes mirroring the GitHub REST v3 API. These are ephemeral:
// they exist only between a fetch call and normalization.

// RawRepoInfo is the subset of the repository resource the pipeline needs.
type RawRepoInfo struct {
	Name            string    `json:"name"`
	FullName        string    `json:"full_name"`
	Description     string    `json:"description"`
	StargazersCount int       `json:"stargazers_count"`
	ForksCount      int       `json:"forks_count"`
	DefaultBranch   string    `json:"default_branch"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Language        string    `json:"language"`
}

// RawLanguages maps language name to bytes of code.
type RawLanguages map[string]int64

// RawCommitAuthor is the git-level author record inside a commit.
type RawCommitAuthor struct {
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Date  time.Time `json:"date"`
}

// RawCommitInner holds the git commit data nested in a list entry.
type RawCommitInner struct {
	Message string          `json:"message"`
	Author  RawCommitAuthor `json:"author"`
}

// RawUser is a GitHub account reference.
type RawUser struct {
	Login string `json:"login"`
}

// RawCommitStats holds diff totals, present only on enriched commits.
type RawCommitStats struct {
	Additions int `json:"additions"`
	Deletions int `json:"deletions"`
	Total     int `json:"total"`
}

// RawFileChange describes one changed file in a commit detail response.
type RawFileChange struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Changes   int    `json:"changes"`
	Patch     string `json:"patch,omitempty"`
}

// RawCommit is a commit list entry, optionally enriched with stats and
// files from the commit detail endpoint.
type RawCommit struct {
	SHA    string          `json:"sha"`
	Commit RawCommitInner  `json:"commit"`
	Author *RawUser        `json:"author"`
	Stats  *RawCommitStats `json:"stats,omitempty"`
	Files  []RawFileChange `json:"files,omitempty"`
}

// RawLabel is a label reference on a PR or issue.
type RawLabel struct {
	Name string `json:"name"`
}

// RawPullRequest is a pull request, with size and review fields populated
// only when fetched from the PR detail endpoint.
type RawPullRequest struct {
	Number         int        `json:"number"`
	Title          string     `json:"title"`
	Body           string     `json:"body"`
	User           RawUser    `json:"user"`
	State          string     `json:"state"`
	CreatedAt      time.Time  `json:"created_at"`
	MergedAt       *time.Time `json:"merged_at"`
	Additions      int        `json:"additions"`
	Deletions      int        `json:"deletions"`
	ChangedFiles   int        `json:"changed_files"`
	ReviewComments int        `json:"review_comments"`
	Labels         []RawLabel `json:"labels"`
}

// RawIssue is an issue list entry. Entries carrying a pull_request link are
// pull requests in disguise and are filtered out by the client.
type RawIssue struct {
	Number      int        `json:"number"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	User        RawUser    `json:"user"`
	State       string     `json:"state"`
	CreatedAt   time.Time  `json:"created_at"`
	ClosedAt    *time.Time `json:"closed_at"`
	Labels      []RawLabel `json:"labels"`
	PullRequest *struct {
		URL string `json:"url"`
	} `json:"pull_request,omitempty"`
}

// EnrichmentStats reports per-item enrichment outcomes for one fetch, so
// partial failures are observable instead of silently indistinguishable
// from full success.
type EnrichmentStats struct {
	CommitsEnriched int `json:"commitsEnriched"`
	CommitsFailed   int `json:"commitsFailed"`
	PRsEnriched     int `json:"prsEnriched"`
	PRsFailed       int `json:"prsFailed"`
}

// RawArtifactData is everything fetched for one repository.
type RawArtifactData struct {
	RepoInfo     RawRepoInfo
	Languages    RawLanguages
	Commits      []RawCommit
	PullRequests []RawPullRequest
	Issues       []RawIssue
	Enrichment   EnrichmentStats
}
