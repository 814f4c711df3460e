// Package evaluator implements the two-stage AI evaluation: signal
// extraction from an artifact bundle, then job-fit scoring against a job
// description.
package evaluator

import (
	"context"

	"github.com/jonathan/repo-screener/internal/gemini"
)

// StructuredGenerator is the slice of the model client the evaluator
// needs. Both stages of one evaluation share a single instance.
type StructuredGenerator interface {
	GenerateStructured(ctx context.Context, prompt string) (*gemini.StructuredResponse, error)
}

// SkillSignal is one extracted skill with its supporting evidence.
type SkillSignal struct {
	Skill            string  `json:"skill"`
	ProficiencyLevel string  `json:"proficiencyLevel"` // beginner | intermediate | advanced | expert
	Evidence         string  `json:"evidence"`
	Confidence       float64 `json:"confidence"` // clamped to [0, 1]
}

// QualityIndicator rates one aspect of craftsmanship.
type QualityIndicator struct {
	Aspect   string `json:"aspect"`
	Rating   string `json:"rating"` // poor | fair | good | excellent
	Evidence string `json:"evidence"`
}

// ComplexitySignal summarizes the scope and depth of the candidate's work.
type ComplexitySignal struct {
	AverageTaskComplexity    string  `json:"averageTaskComplexity"` // low | medium | high
	ScopeOfWork              string  `json:"scopeOfWork"`
	TechnicalDepth           string  `json:"technicalDepth"`
	EstimatedExperienceYears float64 `json:"estimatedExperienceYears"`
}

// CommunicationSignal summarizes communication patterns across commits,
// PRs, and issues.
type CommunicationSignal struct {
	CommitMessageQuality string `json:"commitMessageQuality"`
	PRDescriptionQuality string `json:"prDescriptionQuality"`
	IssueEngagement      string `json:"issueEngagement"` // none | minimal | moderate | active
	OverallCommunication string `json:"overallCommunication"`
}

// ArtifactSignals is the Stage-1 output: structured technical signals
// extracted from an artifact bundle.
type ArtifactSignals struct {
	TechnicalSkills       []SkillSignal       `json:"technicalSkills"`
	CodeQualityIndicators []QualityIndicator  `json:"codeQualityIndicators"`
	WorkComplexity        ComplexitySignal    `json:"workComplexity"`
	CommunicationQuality  CommunicationSignal `json:"communicationQuality"`
	OverallSummary        string              `json:"overallSummary"`
}

// AnalysisResult pairs Stage-1 signals with the token usage of the call.
type AnalysisResult struct {
	Signals    *ArtifactSignals
	TokensUsed gemini.TokenUsage
}
