package evaluator

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/repo-screener/internal/gemini"
	"github.com/jonathan/repo-screener/internal/types"
)

func testJob() *types.JobDescription {
	return &types.JobDescription{
		ID:           "job-2024-001",
		Title:        "Backend Engineer",
		Company:      "Acme",
		Description:  "Build APIs.",
		Requirements: "Go, PostgreSQL.",
	}
}

func testSignals() *ArtifactSignals {
	return &ArtifactSignals{OverallSummary: "Capable backend developer."}
}

func scoringJSON(components string) string {
	return `{
		"overallScore": 99,
		"componentScores": ` + components + `,
		"explanation": "Strong match.",
		"flaggedConcerns": ["Short history"],
		"confidence": "high"
	}`
}

const fullComponents = `[
	{"category": "skills_alignment", "score": 80, "reasoning": "Good overlap"},
	{"category": "code_quality", "score": 60, "reasoning": "Decent"},
	{"category": "experience_relevance", "score": 70, "reasoning": "Relevant"},
	{"category": "work_style", "score": 90, "reasoning": "Collaborative"}
]`

func TestScoreCandidate_RecomputesOverallScore(t *testing.T) {
	gen := &fakeGenerator{data: scoringJSON(fullComponents)}

	result, err := ScoreCandidate(context.Background(), gen, testSignals(), testJob(), "artifact_abc_def")
	require.NoError(t, err)

	// 80*0.35 + 60*0.25 + 70*0.25 + 90*0.15 = 74, not the model's 99.
	assert.Equal(t, 74, result.Evaluation.OverallScore)
	assert.Equal(t, "Strong match.", result.Evaluation.Explanation)
	assert.Equal(t, []string{"Short history"}, result.Evaluation.FlaggedConcerns)
	assert.Equal(t, types.ConfidenceHigh, result.Evaluation.Confidence)
	assert.Equal(t, 300, result.TokensUsed.Total)
}

func TestScoreCandidate_FillsMissingCategory(t *testing.T) {
	gen := &fakeGenerator{data: scoringJSON(`[
		{"category": "skills_alignment", "score": 80, "reasoning": "Good"},
		{"category": "code_quality", "score": 60, "reasoning": "Decent"},
		{"category": "experience_relevance", "score": 70, "reasoning": "Relevant"}
	]`)}

	result, err := ScoreCandidate(context.Background(), gen, testSignals(), testJob(), "bundle")
	require.NoError(t, err)

	components := result.Evaluation.ComponentScores
	require.Len(t, components, 4)
	assert.Equal(t, types.CategoryWorkStyle, components[3].Category)
	assert.Equal(t, 50, components[3].Score)
	assert.Equal(t, "Insufficient data to evaluate this component.", components[3].Reasoning)

	// 80*0.35 + 60*0.25 + 70*0.25 + 50*0.15 = 68
	assert.Equal(t, 68, result.Evaluation.OverallScore)
}

func TestScoreCandidate_UnknownCategoryIgnored(t *testing.T) {
	gen := &fakeGenerator{data: scoringJSON(`[
		{"category": "vibes", "score": 100, "reasoning": "Great vibes"},
		{"category": "skills_alignment", "score": 80, "reasoning": "Good"}
	]`)}

	result, err := ScoreCandidate(context.Background(), gen, testSignals(), testJob(), "bundle")
	require.NoError(t, err)

	components := result.Evaluation.ComponentScores
	require.Len(t, components, 4)
	for _, cs := range components {
		assert.True(t, cs.Category.Valid())
	}
	assert.Equal(t, 80, components[0].Score)
	assert.Equal(t, 50, components[1].Score)
}

func TestScoreCandidate_ClampsScores(t *testing.T) {
	gen := &fakeGenerator{data: scoringJSON(`[
		{"category": "skills_alignment", "score": 140, "reasoning": "x"},
		{"category": "code_quality", "score": -10, "reasoning": "x"},
		{"category": "experience_relevance", "score": 70.6, "reasoning": "x"},
		{"category": "work_style", "score": 90, "reasoning": "x"}
	]`)}

	result, err := ScoreCandidate(context.Background(), gen, testSignals(), testJob(), "bundle")
	require.NoError(t, err)

	components := result.Evaluation.ComponentScores
	assert.Equal(t, 100, components[0].Score)
	assert.Equal(t, 0, components[1].Score)
	assert.Equal(t, 71, components[2].Score)
}

func TestScoreCandidate_MissingComponentScoresIsParseError(t *testing.T) {
	gen := &fakeGenerator{data: `{"overallScore": 80, "explanation": "ok"}`}

	_, err := ScoreCandidate(context.Background(), gen, testSignals(), testJob(), "bundle")
	require.Error(t, err)

	var parseErr *gemini.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, parseErr.Message, "componentScores")
}

func TestScoreCandidate_Defaults(t *testing.T) {
	gen := &fakeGenerator{data: `{"componentScores": ` + fullComponents + `}`}

	result, err := ScoreCandidate(context.Background(), gen, testSignals(), testJob(), "bundle")
	require.NoError(t, err)

	assert.Equal(t, "No explanation provided.", result.Evaluation.Explanation)
	assert.Equal(t, []string{}, result.Evaluation.FlaggedConcerns)
	assert.Equal(t, types.ConfidenceMedium, result.Evaluation.Confidence)
}

func TestScoreCandidate_MalformedOptionalFieldsDegrade(t *testing.T) {
	gen := &fakeGenerator{data: `{
		"componentScores": ` + fullComponents + `,
		"flaggedConcerns": "not an array",
		"confidence": "certain"
	}`}

	result, err := ScoreCandidate(context.Background(), gen, testSignals(), testJob(), "bundle")
	require.NoError(t, err)

	assert.Equal(t, []string{}, result.Evaluation.FlaggedConcerns)
	assert.Equal(t, types.ConfidenceMedium, result.Evaluation.Confidence)
}

func TestScoreCandidate_EvaluationIDFormat(t *testing.T) {
	gen := &fakeGenerator{data: scoringJSON(fullComponents)}

	result, err := ScoreCandidate(context.Background(), gen, testSignals(), testJob(), "artifact_abc_def")
	require.NoError(t, err)

	id := result.Evaluation.ID
	assert.True(t, strings.HasPrefix(id, "eval_artifact_"))
	assert.Equal(t, "artifact_abc_def", result.Evaluation.ArtifactBundleID)
	assert.Equal(t, "job-2024-001", result.Evaluation.JobID)
}
