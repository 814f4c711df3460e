// Package normalizer converts raw GitHub payloads into a canonical,
// immutable ArtifactBundle. Every function here is a pure, deterministic
// transform with no external effects.
package normalizer

import (
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/repo-screener/internal/github"
	"github.com/jonathan/repo-screener/internal/types"
)

// Body truncation caps.
const (
	prBodyMaxLen    = 500
	issueBodyMaxLen = 300
)

// Normalize builds an ArtifactBundle from raw fetched data. When
// candidateGithub is empty the handle is inferred from the newest commit
// author, falling back to the repository owner.
func Normalize(raw *github.RawArtifactData, repoURL, candidateGithub string) *types.ArtifactBundle {
	commits := normalizeCommits(raw.Commits)
	pullRequests := normalizePRs(raw.PullRequests)
	issues := normalizeIssues(raw.Issues, pullRequests)

	if candidateGithub == "" {
		candidateGithub = inferCandidate(raw)
	}

	return &types.ArtifactBundle{
		ID:              generateBundleID(repoURL),
		CandidateGithub: candidateGithub,
		RepoURL:         repoURL,
		ExtractedAt:     time.Now().UTC(),
		RepoMeta:        normalizeRepoMeta(raw),
		Commits:         commits,
		PullRequests:    pullRequests,
		Issues:          issues,
		ActivitySignals: computeActivitySignals(commits, pullRequests, raw.Languages),
	}
}

func normalizeRepoMeta(raw *github.RawArtifactData) types.RepoMeta {
	return types.RepoMeta{
		Name:          raw.RepoInfo.Name,
		FullName:      raw.RepoInfo.FullName,
		Description:   raw.RepoInfo.Description,
		Languages:     languagePercentages(raw.Languages),
		Stars:         raw.RepoInfo.StargazersCount,
		Forks:         raw.RepoInfo.ForksCount,
		DefaultBranch: raw.RepoInfo.DefaultBranch,
		CreatedAt:     raw.RepoInfo.CreatedAt,
		UpdatedAt:     raw.RepoInfo.UpdatedAt,
	}
}

// languagePercentages converts byte counts into percentages rounded to one
// decimal place.
func languagePercentages(langs github.RawLanguages) map[string]float64 {
	var total int64
	for _, bytes := range langs {
		total += bytes
	}

	percentages := make(map[string]float64, len(langs))
	for lang, bytes := range langs {
		if total > 0 {
			percentages[lang] = math.Round(float64(bytes)/float64(total)*1000) / 10
		} else {
			percentages[lang] = 0
		}
	}
	return percentages
}

func normalizeCommits(rawCommits []github.RawCommit) []types.NormalizedCommit {
	commits := make([]types.NormalizedCommit, 0, len(rawCommits))
	for _, c := range rawCommits {
		if isTrivialCommit(c) {
			continue
		}

		filenames := make([]string, len(c.Files))
		for i, f := range c.Files {
			filenames[i] = f.Filename
		}

		nc := types.NormalizedCommit{
			SHA:          c.SHA,
			Message:      firstLine(c.Commit.Message),
			Author:       commitAuthor(c),
			Date:         c.Commit.Author.Date,
			FilesChanged: len(c.Files),
			Languages:    languagesFromFiles(filenames),
		}
		if c.Stats != nil {
			nc.Additions = c.Stats.Additions
			nc.Deletions = c.Stats.Deletions
		}
		commits = append(commits, nc)
	}
	return commits
}

// isTrivialCommit reports whether a commit should be excluded from
// evidence: merge commits, bot or dependency-bot authors, and
// auto-generated or chore-dependency commits.
func isTrivialCommit(c github.RawCommit) bool {
	msg := strings.ToLower(c.Commit.Message)
	if strings.HasPrefix(msg, "merge ") {
		return true
	}

	author := commitAuthor(c)
	if strings.Contains(author, "[bot]") ||
		strings.Contains(author, "dependabot") ||
		strings.Contains(author, "renovate") {
		return true
	}

	if strings.HasPrefix(msg, "auto-") || strings.HasPrefix(msg, "chore(deps)") {
		return true
	}
	return false
}

func commitAuthor(c github.RawCommit) string {
	if c.Author != nil && c.Author.Login != "" {
		return c.Author.Login
	}
	return c.Commit.Author.Name
}

func firstLine(message string) string {
	line, _, _ := strings.Cut(message, "\n")
	return strings.TrimSpace(line)
}

func normalizePRs(rawPRs []github.RawPullRequest) []types.NormalizedPR {
	prs := make([]types.NormalizedPR, 0, len(rawPRs))
	for _, pr := range rawPRs {
		prs = append(prs, types.NormalizedPR{
			Number:         pr.Number,
			Title:          pr.Title,
			Description:    truncate(pr.Body, prBodyMaxLen),
			Author:         pr.User.Login,
			CreatedAt:      pr.CreatedAt,
			MergedAt:       pr.MergedAt,
			State:          pr.State,
			Additions:      pr.Additions,
			Deletions:      pr.Deletions,
			FilesChanged:   pr.ChangedFiles,
			ReviewComments: pr.ReviewComments,
			Labels:         labelNames(pr.Labels),
		})
	}
	return prs
}

func normalizeIssues(rawIssues []github.RawIssue, prs []types.NormalizedPR) []types.NormalizedIssue {
	knownPRs := make(map[int]bool, len(prs))
	for _, pr := range prs {
		knownPRs[pr.Number] = true
	}

	issues := make([]types.NormalizedIssue, 0, len(rawIssues))
	for _, issue := range rawIssues {
		issues = append(issues, types.NormalizedIssue{
			Number:          issue.Number,
			Title:           issue.Title,
			Description:     truncate(issue.Body, issueBodyMaxLen),
			Author:          issue.User.Login,
			CreatedAt:       issue.CreatedAt,
			ClosedAt:        issue.ClosedAt,
			State:           issue.State,
			Labels:          labelNames(issue.Labels),
			LinkedPRNumbers: findLinkedPRNumbers(issue.Body, knownPRs),
		})
	}
	return issues
}

var issueRefPattern = regexp.MustCompile(`#(\d+)`)

// findLinkedPRNumbers scans issue body text for "#<number>" references and
// keeps the ones matching a PR already in the normalized PR list. The
// linkage is one-directional and purely textual.
func findLinkedPRNumbers(body string, knownPRs map[int]bool) []int {
	var linked []int
	for _, match := range issueRefPattern.FindAllStringSubmatch(body, -1) {
		num, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		if knownPRs[num] {
			linked = append(linked, num)
		}
	}
	return linked
}

func labelNames(labels []github.RawLabel) []string {
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = l.Name
	}
	return names
}

// truncate caps text at maxLen characters, replacing the tail with an
// ellipsis marker when truncated. Cuts land on rune boundaries so a
// multibyte character is never split.
func truncate(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen-3]) + "..."
}

// generateBundleID derives a bundle identity from a hash of the source
// reference plus a creation timestamp. Uniqueness, not cryptographic
// strength, is the goal.
func generateBundleID(repoURL string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(repoURL))
	return fmt.Sprintf("artifact_%s_%s",
		strconv.FormatUint(uint64(h.Sum32()), 36),
		strconv.FormatInt(time.Now().UnixMilli(), 36),
	)
}

func inferCandidate(raw *github.RawArtifactData) string {
	if len(raw.Commits) > 0 {
		return commitAuthor(raw.Commits[0])
	}
	owner, _, _ := strings.Cut(raw.RepoInfo.FullName, "/")
	return owner
}
