package evaluator

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/repo-screener/internal/types"
)

// Prompt sampling caps. The prompts carry a bounded, representative sample
// of the bundle, never the full lists, to bound prompt size and cost.
const (
	promptMaxCommits = 15
	promptMaxPRs     = 10
	promptMaxIssues  = 10
)

// buildAnalysisPrompt constructs the Stage-1 prompt from a bounded sample
// of the artifact bundle.
func buildAnalysisPrompt(bundle *types.ArtifactBundle) string {
	var sb strings.Builder

	sb.WriteString(`You are a senior technical recruiter's AI assistant. Your task is to analyze a software developer's GitHub repository artifacts and extract structured signals about their technical abilities, code quality, and working style.

## Artifact Data

`)
	sb.WriteString(serializeBundle(bundle))
	sb.WriteString(`

## Instructions

Analyze the above repository data and produce a JSON response with the following structure. Be evidence-based: every assessment must reference specific artifacts (commits, PRs, issues).

Respond with ONLY valid JSON matching this exact schema:

{
  "technicalSkills": [
    {
      "skill": "Name of skill/technology",
      "proficiencyLevel": "beginner | intermediate | advanced | expert",
      "evidence": "Brief description of where this was demonstrated",
      "confidence": 0.0 to 1.0
    }
  ],
  "codeQualityIndicators": [
    {
      "aspect": "e.g. commit message clarity, PR documentation, code organization",
      "rating": "poor | fair | good | excellent",
      "evidence": "Brief supporting evidence"
    }
  ],
  "workComplexity": {
    "averageTaskComplexity": "low | medium | high",
    "scopeOfWork": "Summary of what the candidate built or changed",
    "technicalDepth": "Summary of technical depth demonstrated",
    "estimatedExperienceYears": number
  },
  "communicationQuality": {
    "commitMessageQuality": "poor | fair | good | excellent",
    "prDescriptionQuality": "poor | fair | good | excellent",
    "issueEngagement": "none | minimal | moderate | active",
    "overallCommunication": "Summary of communication patterns"
  },
  "overallSummary": "2-3 sentence summary of the candidate's profile based on artifacts"
}

Important guidelines:
- If data is insufficient for a particular signal, note low confidence.
- Do not invent skills not evidenced in the artifacts.
- Consider both quantity and quality of contributions.
- Evaluate commit messages for clarity, PR descriptions for thoroughness.
- Assess code complexity from file change patterns and languages used.`)

	return sb.String()
}

// buildScoringPrompt constructs the Stage-2 prompt combining Stage-1
// signals verbatim with the job description.
func buildScoringPrompt(signals *ArtifactSignals, jd *types.JobDescription) (string, error) {
	signalsJSON, err := json.MarshalIndent(signals, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize signals: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(`You are a senior technical recruiter's AI assistant. Your task is to score a software developer candidate against a specific job description, based on their analyzed artifact signals.

## Candidate's Artifact Analysis

`)
	sb.Write(signalsJSON)
	sb.WriteString("\n\n## Job Description\n\n")
	sb.WriteString(serializeJobDescription(jd))
	sb.WriteString(`

## Instructions

Score the candidate across 4 components, each 0-100. Then produce an overall weighted score and a concise explanation.

Scoring rubric:
- **skills_alignment** (weight: 35%): How well do the candidate's demonstrated technical skills match the job requirements? Consider both direct matches and transferable skills.
- **code_quality** (weight: 25%): Based on code quality indicators, how does their craftsmanship compare to what this role expects?
- **experience_relevance** (weight: 25%): Does the scope and complexity of their work match the seniority and domain of this role?
- **work_style** (weight: 15%): Do their communication patterns (PRs, commits, issues) suggest they'd work well in this team/role?

Confidence levels:
- "high": Sufficient artifact data and clear alignment/misalignment
- "medium": Some data gaps but reasonable assessment possible
- "low": Insufficient data for reliable scoring

Respond with ONLY valid JSON matching this exact schema:

{
  "overallScore": number (0-100, weighted average of components),
  "componentScores": [
    {
      "category": "skills_alignment",
      "score": number (0-100),
      "reasoning": "One sentence explaining this score"
    },
    {
      "category": "code_quality",
      "score": number (0-100),
      "reasoning": "One sentence explaining this score"
    },
    {
      "category": "experience_relevance",
      "score": number (0-100),
      "reasoning": "One sentence explaining this score"
    },
    {
      "category": "work_style",
      "score": number (0-100),
      "reasoning": "One sentence explaining this score"
    }
  ],
  "explanation": "2-3 sentence summary: key strengths, gaps, and overall fit",
  "flaggedConcerns": ["Array of specific concerns or caveats, e.g. 'Limited commit history', 'No evidence of backend experience'"],
  "confidence": "high | medium | low"
}

Important guidelines:
- Be calibrated: 70+ is a strong match, 50-69 is partial, below 50 is weak.
- Justify each score with specific evidence from the artifact signals.
- Flag any data gaps that limit confidence.
- The explanation should be useful for a recruiter making a hiring decision.`)

	return sb.String(), nil
}

// serializeBundle renders the bundle sections used as Stage-1 evidence.
func serializeBundle(bundle *types.ArtifactBundle) string {
	var sections []string

	meta := bundle.RepoMeta
	sections = append(sections, fmt.Sprintf(`### Repository: %s
- Description: %s
- Stars: %d | Forks: %d
- Languages: %s
- Created: %s | Updated: %s`,
		meta.FullName,
		orDefault(meta.Description, "No description"),
		meta.Stars, meta.Forks,
		formatLanguages(meta.Languages),
		meta.CreatedAt.Format(time.RFC3339),
		meta.UpdatedAt.Format(time.RFC3339),
	))

	s := bundle.ActivitySignals
	sections = append(sections, fmt.Sprintf(`### Activity Signals
- Commit frequency: %.1f per week
- Active days: %d
- Average PR size: %d lines changed
- Average commit size: %d lines changed
- PR merge rate: %d%%
- Review participation: %.1f comments per PR`,
		s.CommitFrequency, s.ActiveDays, s.AvgPRSize, s.AvgCommitSize,
		int(s.PRMergeRate*100+0.5), s.ReviewParticipation,
	))

	if n := min(len(bundle.Commits), promptMaxCommits); n > 0 {
		var lines []string
		for _, c := range bundle.Commits[:n] {
			lines = append(lines, fmt.Sprintf("- [%s] %s (by %s, +%d/-%d, %d files, %s)",
				shortSHA(c.SHA), c.Message, c.Author, c.Additions, c.Deletions,
				c.FilesChanged, strings.Join(c.Languages, "/")))
		}
		sections = append(sections, fmt.Sprintf("### Recent Commits (%d total, showing top %d)\n%s",
			len(bundle.Commits), n, strings.Join(lines, "\n")))
	}

	if n := min(len(bundle.PullRequests), promptMaxPRs); n > 0 {
		var lines []string
		for _, pr := range bundle.PullRequests[:n] {
			status := pr.State
			if pr.MergedAt != nil {
				status += ", merged"
			}
			desc := "  No description"
			if pr.Description != "" {
				desc = "  Description: " + truncateForPrompt(pr.Description, 200)
			}
			lines = append(lines, fmt.Sprintf("- PR #%d: %q (%s) +%d/-%d, %d files, %d reviews\n%s",
				pr.Number, pr.Title, status, pr.Additions, pr.Deletions,
				pr.FilesChanged, pr.ReviewComments, desc))
		}
		sections = append(sections, fmt.Sprintf("### Pull Requests (%d total, showing top %d)\n%s",
			len(bundle.PullRequests), n, strings.Join(lines, "\n")))
	}

	if n := min(len(bundle.Issues), promptMaxIssues); n > 0 {
		var lines []string
		for _, issue := range bundle.Issues[:n] {
			line := fmt.Sprintf("- Issue #%d: %q (%s) labels: [%s]",
				issue.Number, issue.Title, issue.State, strings.Join(issue.Labels, ", "))
			if len(issue.LinkedPRNumbers) > 0 {
				line += " linked to PR " + formatPRRefs(issue.LinkedPRNumbers)
			}
			lines = append(lines, line)
		}
		sections = append(sections, fmt.Sprintf("### Issues (%d total, showing top %d)\n%s",
			len(bundle.Issues), n, strings.Join(lines, "\n")))
	}

	return strings.Join(sections, "\n\n")
}

func serializeJobDescription(jd *types.JobDescription) string {
	parts := []string{
		fmt.Sprintf("### %s at %s", jd.Title, jd.Company),
		"**Description:** " + jd.Description,
		"**Requirements:** " + jd.Requirements,
	}
	if jd.DailyTasks != "" {
		parts = append(parts, "**Daily Tasks:** "+jd.DailyTasks)
	}
	if jd.ExpectedOutcomes != "" {
		parts = append(parts, "**Expected Outcomes:** "+jd.ExpectedOutcomes)
	}
	if len(jd.TechStack) > 0 {
		parts = append(parts, "**Tech Stack:** "+strings.Join(jd.TechStack, ", "))
	}
	if jd.ExperienceLevel != "" {
		parts = append(parts, "**Experience Level:** "+jd.ExperienceLevel)
	}
	return strings.Join(parts, "\n")
}

func formatLanguages(langs map[string]float64) string {
	names := make([]string, 0, len(langs))
	for name := range langs {
		names = append(names, name)
	}
	// Largest share first for readability.
	sort.Slice(names, func(i, j int) bool {
		if langs[names[i]] != langs[names[j]] {
			return langs[names[i]] > langs[names[j]]
		}
		return names[i] < names[j]
	})

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s (%.1f%%)", name, langs[name])
	}
	return strings.Join(parts, ", ")
}

func formatPRRefs(numbers []int) string {
	parts := make([]string, len(numbers))
	for i, n := range numbers {
		parts[i] = fmt.Sprintf("#%d", n)
	}
	return strings.Join(parts, ", ")
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

func truncateForPrompt(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen])
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
