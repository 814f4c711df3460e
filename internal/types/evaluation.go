package types

import "time"

// ScoreCategory identifies one of the four fixed evaluation components.
type ScoreCategory string

// The closed set of scoring categories. Every evaluation carries exactly
// these four, in this order.
const (
	CategorySkillsAlignment     ScoreCategory = "skills_alignment"
	CategoryCodeQuality         ScoreCategory = "code_quality"
	CategoryExperienceRelevance ScoreCategory = "experience_relevance"
	CategoryWorkStyle           ScoreCategory = "work_style"
)

// ScoreCategories returns the canonical ordered category list.
func ScoreCategories() []ScoreCategory {
	return []ScoreCategory{
		CategorySkillsAlignment,
		CategoryCodeQuality,
		CategoryExperienceRelevance,
		CategoryWorkStyle,
	}
}

// Valid reports whether c is one of the four known categories.
func (c ScoreCategory) Valid() bool {
	switch c {
	case CategorySkillsAlignment, CategoryCodeQuality, CategoryExperienceRelevance, CategoryWorkStyle:
		return true
	}
	return false
}

// ComponentScore is one 0-100 sub-score with its reasoning.
type ComponentScore struct {
	Category  ScoreCategory `json:"category"`
	Score     int           `json:"score"`
	Reasoning string        `json:"reasoning"`
}

// Confidence is the model's self-reported reliability of an evaluation.
type Confidence string

// Allowed confidence levels.
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Valid reports whether c is one of the three allowed levels.
func (c Confidence) Valid() bool {
	return c == ConfidenceHigh || c == ConfidenceMedium || c == ConfidenceLow
}

// EvaluationResult is the final output of the two-stage evaluation. The
// overall score is always recomputed locally from the component scores;
// the model's own aggregate is discarded.
type EvaluationResult struct {
	ID               string           `json:"id"`
	ArtifactBundleID string           `json:"artifactBundleId"`
	JobID            string           `json:"jobId"`
	OverallScore     int              `json:"overallScore"`
	ComponentScores  []ComponentScore `json:"componentScores"`
	Explanation      string           `json:"explanation"`
	FlaggedConcerns  []string         `json:"flaggedConcerns"`
	EvaluatedAt      time.Time        `json:"evaluatedAt"`
	Confidence       Confidence       `json:"confidence"`
}

// PipelineResult bundles the outputs of a full screening run.
type PipelineResult struct {
	ArtifactBundle *ArtifactBundle   `json:"artifactBundle"`
	Evaluation     *EvaluationResult `json:"evaluation"`
}
