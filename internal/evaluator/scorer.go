package evaluator

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/jonathan/repo-screener/internal/gemini"
	"github.com/jonathan/repo-screener/internal/types"
)

// Component weights for the overall score. The model's own reported
// aggregate is always discarded and recomputed from these.
var componentWeights = map[types.ScoreCategory]float64{
	types.CategorySkillsAlignment:     0.35,
	types.CategoryCodeQuality:         0.25,
	types.CategoryExperienceRelevance: 0.25,
	types.CategoryWorkStyle:           0.15,
}

// neutralScore fills a category the model failed to report.
const neutralScore = 50

const insufficientDataNote = "Insufficient data to evaluate this component."

// rawScoringResponse mirrors the Stage-2 model output before validation
// and repair. FlaggedConcerns and Confidence stay raw so malformed values
// degrade to defaults instead of failing the decode.
type rawScoringResponse struct {
	OverallScore    json.RawMessage     `json:"overallScore"`
	ComponentScores []rawComponentScore `json:"componentScores"`
	Explanation     string              `json:"explanation"`
	FlaggedConcerns json.RawMessage     `json:"flaggedConcerns"`
	Confidence      json.RawMessage     `json:"confidence"`
}

type rawComponentScore struct {
	Category  string  `json:"category"`
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
}

// ScoreResult pairs the evaluation with the token usage of the call.
type ScoreResult struct {
	Evaluation *types.EvaluationResult
	TokensUsed gemini.TokenUsage
}

// ScoreCandidate scores Stage-1 signals against a job description. This is
// Stage 2 of the two-stage evaluation. Missing categories are filled with
// a neutral score, every score is rounded and clamped into [0, 100], and
// the overall score is recomputed locally from fixed weights.
func ScoreCandidate(ctx context.Context, client StructuredGenerator, signals *ArtifactSignals, jd *types.JobDescription, bundleID string) (*ScoreResult, error) {
	prompt, err := buildScoringPrompt(signals, jd)
	if err != nil {
		return nil, &gemini.APIError{Message: "failed to build scoring prompt", Cause: err}
	}

	resp, err := client.GenerateStructured(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var raw rawScoringResponse
	if err := json.Unmarshal(resp.Data, &raw); err != nil {
		return nil, &gemini.ParseError{
			Message: "failed to decode scoring response",
			RawText: string(resp.Data),
			Cause:   err,
		}
	}
	if raw.ComponentScores == nil {
		return nil, &gemini.ParseError{
			Message: "scoring response missing componentScores array",
			RawText: string(resp.Data),
		}
	}

	components := repairComponentScores(raw.ComponentScores)

	evaluation := &types.EvaluationResult{
		ID:               generateEvaluationID(bundleID, jd.ID),
		ArtifactBundleID: bundleID,
		JobID:            jd.ID,
		OverallScore:     computeOverallScore(components),
		ComponentScores:  components,
		Explanation:      orDefault(raw.Explanation, "No explanation provided."),
		FlaggedConcerns:  decodeConcerns(raw.FlaggedConcerns),
		EvaluatedAt:      time.Now().UTC(),
		Confidence:       decodeConfidence(raw.Confidence),
	}

	return &ScoreResult{Evaluation: evaluation, TokensUsed: resp.TokensUsed}, nil
}

// repairComponentScores maps reported scores onto the closed category set,
// fills missing categories with the neutral default, and clamps every
// score into [0, 100]. The result always holds exactly four entries in
// canonical order.
func repairComponentScores(reported []rawComponentScore) []types.ComponentScore {
	byCategory := make(map[types.ScoreCategory]rawComponentScore)
	for _, cs := range reported {
		category := types.ScoreCategory(cs.Category)
		if category.Valid() {
			byCategory[category] = cs
		}
	}

	components := make([]types.ComponentScore, 0, len(componentWeights))
	for _, category := range types.ScoreCategories() {
		cs, ok := byCategory[category]
		if !ok {
			components = append(components, types.ComponentScore{
				Category:  category,
				Score:     neutralScore,
				Reasoning: insufficientDataNote,
			})
			continue
		}
		components = append(components, types.ComponentScore{
			Category:  category,
			Score:     clampScore(cs.Score),
			Reasoning: cs.Reasoning,
		})
	}
	return components
}

// computeOverallScore is the locally recomputed weighted sum, rounded to
// the nearest integer.
func computeOverallScore(components []types.ComponentScore) int {
	var sum float64
	for _, cs := range components {
		sum += float64(cs.Score) * componentWeights[cs.Category]
	}
	return int(math.Round(sum))
}

func clampScore(v float64) int {
	rounded := int(math.Round(v))
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}

func decodeConcerns(raw json.RawMessage) []string {
	var concerns []string
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &concerns); err != nil {
			return []string{}
		}
	}
	if concerns == nil {
		return []string{}
	}
	return concerns
}

func decodeConfidence(raw json.RawMessage) types.Confidence {
	var value string
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &value)
	}
	if c := types.Confidence(value); c.Valid() {
		return c
	}
	return types.ConfidenceMedium
}

// generateEvaluationID derives an identifier from the bundle id, job id,
// and a timestamp.
func generateEvaluationID(bundleID, jobID string) string {
	return fmt.Sprintf("eval_%s_%s_%s",
		prefix(bundleID, 8), prefix(jobID, 8),
		strconv.FormatInt(time.Now().UnixMilli(), 36),
	)
}

func prefix(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
