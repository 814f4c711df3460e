package normalizer

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/repo-screener/internal/github"
)

func rawCommit(sha, message, login string, date time.Time) github.RawCommit {
	c := github.RawCommit{
		SHA: sha,
		Commit: github.RawCommitInner{
			Message: message,
			Author:  github.RawCommitAuthor{Name: "Some Name", Date: date},
		},
	}
	if login != "" {
		c.Author = &github.RawUser{Login: login}
	}
	return c
}

func TestIsTrivialCommit(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		commit  github.RawCommit
		trivial bool
	}{
		{name: "merge commit", commit: rawCommit("a", "Merge pull request #3 from fork/main", "octocat", now), trivial: true},
		{name: "merge branch", commit: rawCommit("a", "merge branch 'dev'", "octocat", now), trivial: true},
		{name: "bot author", commit: rawCommit("a", "Bump lodash", "dependabot[bot]", now), trivial: true},
		{name: "renovate author", commit: rawCommit("a", "Update deps", "renovate-bot", now), trivial: true},
		{name: "auto-generated message", commit: rawCommit("a", "Auto-update generated files", "octocat", now), trivial: true},
		{name: "chore deps message", commit: rawCommit("a", "chore(deps): bump axios", "octocat", now), trivial: true},
		{name: "regular commit", commit: rawCommit("a", "Add retry logic to the worker", "octocat", now), trivial: false},
		{name: "merged mentioned mid-message", commit: rawCommit("a", "Fix merge conflict handling", "octocat", now), trivial: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.trivial, isTrivialCommit(tt.commit))
		})
	}
}

func TestNormalize_CommitFiltering(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	raw := &github.RawArtifactData{
		RepoInfo: github.RawRepoInfo{Name: "hello-world", FullName: "octocat/hello-world"},
		Commits: []github.RawCommit{
			rawCommit("s1", "Add feature X\n\nDetailed body here.", "octocat", now),
			rawCommit("s2", "Merge pull request #3 from fork/main", "octocat", now),
			rawCommit("s3", "Bump deps", "dependabot[bot]", now),
			rawCommit("s4", "Fix panic in parser", "octocat", now),
		},
	}

	bundle := Normalize(raw, "octocat/hello-world", "")
	require.Len(t, bundle.Commits, 2)
	assert.Equal(t, "Add feature X", bundle.Commits[0].Message)
	assert.Equal(t, "Fix panic in parser", bundle.Commits[1].Message)
}

func TestNormalize_CommitEnrichedFields(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := rawCommit("s1", "Add handler", "octocat", now)
	c.Stats = &github.RawCommitStats{Additions: 12, Deletions: 4, Total: 16}
	c.Files = []github.RawFileChange{
		{Filename: "server.go", Status: "modified"},
		{Filename: "web/app.tsx", Status: "added"},
	}

	raw := &github.RawArtifactData{Commits: []github.RawCommit{c}}
	bundle := Normalize(raw, "octocat/hello-world", "octocat")

	require.Len(t, bundle.Commits, 1)
	got := bundle.Commits[0]
	assert.Equal(t, 12, got.Additions)
	assert.Equal(t, 4, got.Deletions)
	assert.Equal(t, 2, got.FilesChanged)
	assert.Equal(t, []string{"Go", "TypeScript"}, got.Languages)
}

func TestNormalize_TruncatesBodies(t *testing.T) {
	longPRBody := strings.Repeat("x", 600)
	longIssueBody := strings.Repeat("y", 400)

	raw := &github.RawArtifactData{
		PullRequests: []github.RawPullRequest{
			{Number: 1, Title: "Big PR", Body: longPRBody, User: github.RawUser{Login: "octocat"}},
		},
		Issues: []github.RawIssue{
			{Number: 2, Title: "Big issue", Body: longIssueBody, User: github.RawUser{Login: "octocat"}},
		},
	}

	bundle := Normalize(raw, "octocat/hello-world", "octocat")

	require.Len(t, bundle.PullRequests, 1)
	assert.Len(t, bundle.PullRequests[0].Description, 500)
	assert.True(t, strings.HasSuffix(bundle.PullRequests[0].Description, "..."))

	require.Len(t, bundle.Issues, 1)
	assert.Len(t, bundle.Issues[0].Description, 300)
	assert.True(t, strings.HasSuffix(bundle.Issues[0].Description, "..."))
}

func TestTruncate_RuneBoundaries(t *testing.T) {
	// Rune count under the cap even though the byte length is over: kept
	// intact.
	under := strings.Repeat("a", 496) + "日本語"
	assert.Equal(t, under, truncate(under, 500))

	// A multibyte character spanning the cut survives whole and the result
	// stays valid UTF-8.
	over := strings.Repeat("a", 494) + strings.Repeat("語", 10)
	got := truncate(over, 500)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 500, utf8.RuneCountInString(got))
	assert.Equal(t, strings.Repeat("a", 494)+strings.Repeat("語", 3)+"...", got)
}

func TestNormalize_ShortBodiesUntouched(t *testing.T) {
	raw := &github.RawArtifactData{
		PullRequests: []github.RawPullRequest{
			{Number: 1, Body: "short body", User: github.RawUser{Login: "octocat"}},
		},
	}
	bundle := Normalize(raw, "octocat/hello-world", "octocat")
	assert.Equal(t, "short body", bundle.PullRequests[0].Description)
}

func TestNormalize_IssuePRLinkage(t *testing.T) {
	merged := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	raw := &github.RawArtifactData{
		PullRequests: []github.RawPullRequest{
			{Number: 10, Title: "Fix crash", User: github.RawUser{Login: "octocat"}, MergedAt: &merged},
			{Number: 12, Title: "Refactor", User: github.RawUser{Login: "octocat"}},
		},
		Issues: []github.RawIssue{
			{Number: 5, Title: "Crash on start", Body: "Fixed by #10, see also #12 and #99.", User: github.RawUser{Login: "reporter"}},
			{Number: 6, Title: "No references", Body: "Just text.", User: github.RawUser{Login: "reporter"}},
		},
	}

	bundle := Normalize(raw, "octocat/hello-world", "octocat")
	require.Len(t, bundle.Issues, 2)
	assert.Equal(t, []int{10, 12}, bundle.Issues[0].LinkedPRNumbers)
	assert.Empty(t, bundle.Issues[1].LinkedPRNumbers)
}

func TestNormalize_LanguagePercentages(t *testing.T) {
	raw := &github.RawArtifactData{
		Languages: github.RawLanguages{"Go": 7500, "Shell": 2500},
	}
	bundle := Normalize(raw, "octocat/hello-world", "octocat")

	assert.Equal(t, 75.0, bundle.RepoMeta.Languages["Go"])
	assert.Equal(t, 25.0, bundle.RepoMeta.Languages["Shell"])
}

func TestNormalize_LanguagePercentagesRounding(t *testing.T) {
	raw := &github.RawArtifactData{
		Languages: github.RawLanguages{"Go": 1, "Rust": 2},
	}
	bundle := Normalize(raw, "octocat/hello-world", "octocat")

	assert.Equal(t, 33.3, bundle.RepoMeta.Languages["Go"])
	assert.Equal(t, 66.7, bundle.RepoMeta.Languages["Rust"])
}

func TestNormalize_BundleIDFormat(t *testing.T) {
	raw := &github.RawArtifactData{}
	bundle := Normalize(raw, "octocat/hello-world", "octocat")

	assert.True(t, strings.HasPrefix(bundle.ID, "artifact_"))
	parts := strings.Split(bundle.ID, "_")
	require.Len(t, parts, 3)
	assert.NotEmpty(t, parts[1])
	assert.NotEmpty(t, parts[2])
}

func TestNormalize_InfersCandidate(t *testing.T) {
	now := time.Now()

	t.Run("from newest commit author", func(t *testing.T) {
		raw := &github.RawArtifactData{
			RepoInfo: github.RawRepoInfo{FullName: "orgname/hello-world"},
			Commits:  []github.RawCommit{rawCommit("s1", "Add thing", "realdev", now)},
		}
		bundle := Normalize(raw, "orgname/hello-world", "")
		assert.Equal(t, "realdev", bundle.CandidateGithub)
	})

	t.Run("falls back to repo owner", func(t *testing.T) {
		raw := &github.RawArtifactData{
			RepoInfo: github.RawRepoInfo{FullName: "orgname/hello-world"},
		}
		bundle := Normalize(raw, "orgname/hello-world", "")
		assert.Equal(t, "orgname", bundle.CandidateGithub)
	})

	t.Run("explicit handle wins", func(t *testing.T) {
		raw := &github.RawArtifactData{
			RepoInfo: github.RawRepoInfo{FullName: "orgname/hello-world"},
			Commits:  []github.RawCommit{rawCommit("s1", "Add thing", "realdev", now)},
		}
		bundle := Normalize(raw, "orgname/hello-world", "chosen")
		assert.Equal(t, "chosen", bundle.CandidateGithub)
	})
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "Subject", firstLine("Subject\n\nBody text"))
	assert.Equal(t, "Single", firstLine("Single"))
	assert.Equal(t, "Trimmed", firstLine("Trimmed  \nrest"))
}

func TestLanguagesFromFiles(t *testing.T) {
	langs := languagesFromFiles([]string{"cmd/main.go", "web/app.tsx", "util.go", "README.md", "docker/Dockerfile", "LICENSE"})
	assert.Equal(t, []string{"Docker", "Go", "Markdown", "TypeScript"}, langs)
}
