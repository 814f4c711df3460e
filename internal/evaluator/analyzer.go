package evaluator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/repo-screener/internal/gemini"
	"github.com/jonathan/repo-screener/internal/types"
)

// artifactSignalsSchema encodes the structural contract for Stage-1
// responses: the required arrays, nested objects, and summary string must
// be present with the right JSON types, and every skill entry must carry
// its fields including a numeric confidence. Field-level repair
// (confidence clamping) happens after this check.
const artifactSignalsSchema = `{
  "type": "object",
  "required": [
    "technicalSkills",
    "codeQualityIndicators",
    "workComplexity",
    "communicationQuality",
    "overallSummary"
  ],
  "properties": {
    "technicalSkills": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["skill", "proficiencyLevel", "confidence"],
        "properties": {
          "skill": {"type": "string"},
          "proficiencyLevel": {"type": "string"},
          "confidence": {"type": "number"}
        }
      }
    },
    "codeQualityIndicators": {"type": "array"},
    "workComplexity": {"type": "object"},
    "communicationQuality": {"type": "object"},
    "overallSummary": {"type": "string"}
  }
}`

var signalsSchemaLoader = gojsonschema.NewStringLoader(artifactSignalsSchema)

// AnalyzeArtifacts extracts structured technical signals from an artifact
// bundle. This is Stage 1 of the two-stage evaluation. Structural
// violations in the model response raise a parse error carrying the
// offending payload; the only repaired field is per-skill confidence,
// clamped into [0, 1].
func AnalyzeArtifacts(ctx context.Context, client StructuredGenerator, bundle *types.ArtifactBundle) (*AnalysisResult, error) {
	prompt := buildAnalysisPrompt(bundle)

	resp, err := client.GenerateStructured(ctx, prompt)
	if err != nil {
		return nil, err
	}

	signals, err := validateArtifactSignals(resp.Data)
	if err != nil {
		return nil, err
	}

	return &AnalysisResult{
		Signals:    signals,
		TokensUsed: resp.TokensUsed,
	}, nil
}

// validateArtifactSignals checks the response against the structural
// schema, decodes it, and validates each skill entry.
func validateArtifactSignals(data json.RawMessage) (*ArtifactSignals, error) {
	result, err := gojsonschema.Validate(signalsSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, &gemini.ParseError{
			Message: "failed to validate artifact signals",
			RawText: string(data),
			Cause:   err,
		}
	}
	if !result.Valid() {
		var violations []string
		for _, desc := range result.Errors() {
			violations = append(violations, desc.String())
		}
		return nil, &gemini.ParseError{
			Message: "artifact signals missing required structure: " + strings.Join(violations, "; "),
			RawText: string(data),
		}
	}

	var signals ArtifactSignals
	if err := json.Unmarshal(data, &signals); err != nil {
		return nil, &gemini.ParseError{
			Message: "failed to decode artifact signals",
			RawText: string(data),
			Cause:   err,
		}
	}

	for i := range signals.TechnicalSkills {
		skill := &signals.TechnicalSkills[i]
		if skill.Skill == "" || skill.ProficiencyLevel == "" {
			return nil, &gemini.ParseError{
				Message: fmt.Sprintf("invalid skill entry at index %d", i),
				RawText: string(data),
			}
		}
		skill.Confidence = clamp01(skill.Confidence)
	}

	return &signals, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
