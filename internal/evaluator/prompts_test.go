package evaluator

import (
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/repo-screener/internal/types"
)

func bigBundle() *types.ArtifactBundle {
	bundle := &types.ArtifactBundle{
		ID:              "artifact_abc_def",
		CandidateGithub: "octocat",
		RepoURL:         "octocat/hello-world",
		RepoMeta: types.RepoMeta{
			FullName:  "octocat/hello-world",
			Languages: map[string]float64{"Go": 75.0, "Shell": 25.0},
			Stars:     7,
		},
		ActivitySignals: types.ActivitySignals{
			CommitFrequency: 5.0,
			PRMergeRate:     0.67,
		},
	}
	for i := 0; i < 30; i++ {
		bundle.Commits = append(bundle.Commits, types.NormalizedCommit{
			SHA:     fmt.Sprintf("abcdef%04d", i),
			Message: fmt.Sprintf("Commit number %d", i),
			Author:  "octocat",
			Date:    time.Now(),
		})
	}
	for i := 1; i <= 20; i++ {
		bundle.PullRequests = append(bundle.PullRequests, types.NormalizedPR{
			Number: i,
			Title:  fmt.Sprintf("PR number %d", i),
		})
	}
	for i := 1; i <= 20; i++ {
		bundle.Issues = append(bundle.Issues, types.NormalizedIssue{
			Number: 100 + i,
			Title:  fmt.Sprintf("Issue number %d", i),
		})
	}
	return bundle
}

func TestBuildAnalysisPrompt_SamplingCaps(t *testing.T) {
	prompt := buildAnalysisPrompt(bigBundle())

	assert.Contains(t, prompt, "Recent Commits (30 total, showing top 15)")
	assert.Contains(t, prompt, "Commit number 14")
	assert.NotContains(t, prompt, "Commit number 15")

	assert.Contains(t, prompt, "Pull Requests (20 total, showing top 10)")
	assert.Contains(t, prompt, "PR number 10")
	assert.NotContains(t, prompt, "PR number 11")

	assert.Contains(t, prompt, "Issues (20 total, showing top 10)")
	assert.Contains(t, prompt, "Issue number 10")
	assert.NotContains(t, prompt, "Issue number 11")
}

func TestBuildAnalysisPrompt_EmptySectionsOmitted(t *testing.T) {
	prompt := buildAnalysisPrompt(testBundle())

	assert.NotContains(t, prompt, "Recent Commits")
	assert.NotContains(t, prompt, "Pull Requests")
	assert.NotContains(t, prompt, "### Issues")
	assert.Contains(t, prompt, "octocat/hello-world")
}

func TestBuildAnalysisPrompt_FormatsMetadata(t *testing.T) {
	prompt := buildAnalysisPrompt(bigBundle())

	assert.Contains(t, prompt, "Languages: Go (75.0%), Shell (25.0%)")
	assert.Contains(t, prompt, "Commit frequency: 5.0 per week")
	assert.Contains(t, prompt, "PR merge rate: 67%")
}

func TestBuildScoringPrompt_IncludesSignalsAndJob(t *testing.T) {
	signals := &ArtifactSignals{
		TechnicalSkills: []SkillSignal{
			{Skill: "Go", ProficiencyLevel: "advanced", Confidence: 0.9},
		},
		OverallSummary: "Capable backend developer.",
	}
	jd := testJob()
	jd.TechStack = []string{"Go", "PostgreSQL"}
	jd.ExperienceLevel = "mid"

	prompt, err := buildScoringPrompt(signals, jd)
	require.NoError(t, err)

	assert.Contains(t, prompt, `"skill": "Go"`)
	assert.Contains(t, prompt, "Capable backend developer.")
	assert.Contains(t, prompt, "### Backend Engineer at Acme")
	assert.Contains(t, prompt, "**Tech Stack:** Go, PostgreSQL")
	assert.Contains(t, prompt, "**Experience Level:** mid")

	// The rubric names every category with its weight.
	assert.Contains(t, prompt, "skills_alignment")
	assert.Contains(t, prompt, "weight: 35%")
	assert.Contains(t, prompt, "work_style")
	assert.Contains(t, prompt, "weight: 15%")
}

func TestBuildScoringPrompt_OmitsEmptyJobFields(t *testing.T) {
	prompt, err := buildScoringPrompt(testSignals(), testJob())
	require.NoError(t, err)

	assert.NotContains(t, prompt, "**Daily Tasks:**")
	assert.NotContains(t, prompt, "**Tech Stack:**")
}

func TestShortSHA(t *testing.T) {
	assert.Equal(t, "abcdef0", shortSHA("abcdef0123456789"))
	assert.Equal(t, "abc", shortSHA("abc"))
}

func TestTruncateForPrompt(t *testing.T) {
	long := strings.Repeat("z", 300)
	assert.Len(t, truncateForPrompt(long, 200), 200)
	assert.Equal(t, "short", truncateForPrompt("short", 200))

	multibyte := strings.Repeat("a", 196) + strings.Repeat("語", 10)
	got := truncateForPrompt(multibyte, 200)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", 196)+strings.Repeat("語", 4), got)
}
