// Package types defines the shared domain types for the screening pipeline.
package types

import "time"

// NormalizedCommit is a trimmed, size-bounded projection of a raw commit.
// Only the first line of the commit message is retained.
type NormalizedCommit struct {
	SHA          string    `json:"sha"`
	Message      string    `json:"message"`
	Author       string    `json:"author"`
	Date         time.Time `json:"date"`
	Additions    int       `json:"additions"`
	Deletions    int       `json:"deletions"`
	FilesChanged int       `json:"filesChanged"`
	Languages    []string  `json:"languages"`
}

// NormalizedPR is a trimmed projection of a raw pull request.
// The description is truncated to a fixed character cap.
type NormalizedPR struct {
	Number         int        `json:"number"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Author         string     `json:"author"`
	CreatedAt      time.Time  `json:"createdAt"`
	MergedAt       *time.Time `json:"mergedAt"`
	State          string     `json:"state"`
	Additions      int        `json:"additions"`
	Deletions      int        `json:"deletions"`
	FilesChanged   int        `json:"filesChanged"`
	ReviewComments int        `json:"reviewComments"`
	Labels         []string   `json:"labels"`
}

// NormalizedIssue is a trimmed projection of a raw issue. LinkedPRNumbers
// holds PR numbers referenced as "#<n>" in the issue body that also appear
// in the bundle's PR list.
type NormalizedIssue struct {
	Number          int        `json:"number"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Author          string     `json:"author"`
	CreatedAt       time.Time  `json:"createdAt"`
	ClosedAt        *time.Time `json:"closedAt"`
	State           string     `json:"state"`
	Labels          []string   `json:"labels"`
	LinkedPRNumbers []int      `json:"linkedPRNumbers"`
}

// RepoMeta holds normalized repository metadata. Languages maps language
// name to its share of the codebase as a percentage (0-100, one decimal).
type RepoMeta struct {
	Name          string             `json:"name"`
	FullName      string             `json:"fullName"`
	Description   string             `json:"description"`
	Languages     map[string]float64 `json:"languages"`
	Stars         int                `json:"stars"`
	Forks         int                `json:"forks"`
	DefaultBranch string             `json:"defaultBranch"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// ActivitySignals are derived metrics computed from the normalized lists.
// All values are pure functions of the bundle contents.
type ActivitySignals struct {
	CommitFrequency      float64            `json:"commitFrequency"`      // commits per week over the extracted window
	AvgPRSize            int                `json:"avgPRSize"`            // average additions+deletions per PR
	AvgCommitSize        int                `json:"avgCommitSize"`        // average additions+deletions per commit
	PRMergeRate          float64            `json:"prMergeRate"`          // fraction of PRs merged, two decimals
	ReviewParticipation  float64            `json:"reviewParticipation"`  // average review comments per PR
	LanguageDistribution map[string]float64 `json:"languageDistribution"` // language -> percentage (0-100)
	ActiveDays           int                `json:"activeDays"`           // unique UTC days with commits
}

// ArtifactBundle is the canonical evidence record for one repository
// extraction. It is immutable once built; a new bundle is produced per
// extraction request.
type ArtifactBundle struct {
	ID              string            `json:"id"`
	CandidateGithub string            `json:"candidateGithub"`
	RepoURL         string            `json:"repoUrl"`
	ExtractedAt     time.Time         `json:"extractedAt"`
	RepoMeta        RepoMeta          `json:"repoMeta"`
	Commits         []NormalizedCommit `json:"commits"`
	PullRequests    []NormalizedPR    `json:"pullRequests"`
	Issues          []NormalizedIssue `json:"issues"`
	ActivitySignals ActivitySignals   `json:"activitySignals"`
}

// Default extraction limits.
const (
	DefaultMaxCommits = 50
	DefaultSinceDays  = 90
)

// ExtractOptions configures an extraction request. The zero value is not
// usable directly; call Normalized to apply defaults.
type ExtractOptions struct {
	MaxCommits      int    `json:"maxCommits,omitempty"`
	SinceDays       int    `json:"sinceDays,omitempty"`
	IncludeIssues   *bool  `json:"includeIssues,omitempty"`
	IncludePRs      *bool  `json:"includePRs,omitempty"`
	CandidateGithub string `json:"candidateGithub,omitempty"`
}

// Normalized returns a copy with defaults applied: 50 commits, a 90 day
// lookback, and both PRs and issues included.
func (o ExtractOptions) Normalized() ExtractOptions {
	out := o
	if out.MaxCommits <= 0 {
		out.MaxCommits = DefaultMaxCommits
	}
	if out.SinceDays <= 0 {
		out.SinceDays = DefaultSinceDays
	}
	if out.IncludeIssues == nil {
		out.IncludeIssues = boolPtr(true)
	}
	if out.IncludePRs == nil {
		out.IncludePRs = boolPtr(true)
	}
	return out
}

func boolPtr(b bool) *bool { return &b }
