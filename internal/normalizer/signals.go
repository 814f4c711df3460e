package normalizer

import (
	"math"
	"sort"
	"time"

	"github.com/jonathan/repo-screener/internal/github"
	"github.com/jonathan/repo-screener/internal/types"
)

// computeActivitySignals derives behavioral metrics from the normalized
// lists. All metrics are pure functions of their inputs.
func computeActivitySignals(commits []types.NormalizedCommit, prs []types.NormalizedPR, langs github.RawLanguages) types.ActivitySignals {
	return types.ActivitySignals{
		CommitFrequency:      commitFrequency(commits),
		AvgPRSize:            avgPRSize(prs),
		AvgCommitSize:        avgCommitSize(commits),
		PRMergeRate:          prMergeRate(prs),
		ReviewParticipation:  reviewParticipation(prs),
		LanguageDistribution: languagePercentages(langs),
		ActiveDays:           activeDays(commits),
	}
}

// commitFrequency is commits per week over the span between the earliest
// and latest retained commit, rounded to one decimal. The span is floored
// at one week, which damps frequency blow-up for very short histories at
// the cost of under-counting dense short-window activity.
func commitFrequency(commits []types.NormalizedCommit) float64 {
	if len(commits) < 2 {
		return 0
	}

	dates := make([]time.Time, len(commits))
	for i, c := range commits {
		dates[i] = c.Date
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	span := dates[len(dates)-1].Sub(dates[0])
	weeks := math.Max(span.Hours()/(7*24), 1)
	return math.Round(float64(len(commits))/weeks*10) / 10
}

// avgPRSize is the mean of additions+deletions over PRs with nonzero size.
func avgPRSize(prs []types.NormalizedPR) int {
	var total, count int
	for _, pr := range prs {
		if size := pr.Additions + pr.Deletions; size > 0 {
			total += size
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return int(math.Round(float64(total) / float64(count)))
}

// avgCommitSize is the mean of additions+deletions over commits with
// nonzero size.
func avgCommitSize(commits []types.NormalizedCommit) int {
	var total, count int
	for _, c := range commits {
		if size := c.Additions + c.Deletions; size > 0 {
			total += size
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return int(math.Round(float64(total) / float64(count)))
}

// prMergeRate is the merged fraction of all PRs, rounded to two decimals.
func prMergeRate(prs []types.NormalizedPR) float64 {
	if len(prs) == 0 {
		return 0
	}
	merged := 0
	for _, pr := range prs {
		if pr.MergedAt != nil {
			merged++
		}
	}
	return math.Round(float64(merged)/float64(len(prs))*100) / 100
}

// reviewParticipation is the mean review-comment count per PR, rounded to
// one decimal.
func reviewParticipation(prs []types.NormalizedPR) float64 {
	if len(prs) == 0 {
		return 0
	}
	total := 0
	for _, pr := range prs {
		total += pr.ReviewComments
	}
	return math.Round(float64(total)/float64(len(prs))*10) / 10
}

// activeDays counts distinct UTC calendar dates with at least one retained
// commit.
func activeDays(commits []types.NormalizedCommit) int {
	days := make(map[string]bool)
	for _, c := range commits {
		days[c.Date.UTC().Format("2006-01-02")] = true
	}
	return len(days)
}
