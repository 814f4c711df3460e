package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractOptions_Normalized(t *testing.T) {
	t.Run("zero value gets defaults", func(t *testing.T) {
		opts := ExtractOptions{}.Normalized()
		assert.Equal(t, DefaultMaxCommits, opts.MaxCommits)
		assert.Equal(t, DefaultSinceDays, opts.SinceDays)
		require.NotNil(t, opts.IncludeIssues)
		require.NotNil(t, opts.IncludePRs)
		assert.True(t, *opts.IncludeIssues)
		assert.True(t, *opts.IncludePRs)
	})

	t.Run("explicit values survive", func(t *testing.T) {
		off := false
		opts := ExtractOptions{
			MaxCommits:    10,
			SinceDays:     30,
			IncludeIssues: &off,
		}.Normalized()
		assert.Equal(t, 10, opts.MaxCommits)
		assert.Equal(t, 30, opts.SinceDays)
		assert.False(t, *opts.IncludeIssues)
		assert.True(t, *opts.IncludePRs)
	})

	t.Run("original is not mutated", func(t *testing.T) {
		opts := ExtractOptions{}
		_ = opts.Normalized()
		assert.Nil(t, opts.IncludeIssues)
	})
}

func TestScoreCategory_Valid(t *testing.T) {
	for _, category := range ScoreCategories() {
		assert.True(t, category.Valid(), string(category))
	}
	assert.False(t, ScoreCategory("vibes").Valid())
	assert.False(t, ScoreCategory("").Valid())
}

func TestScoreCategories_Order(t *testing.T) {
	assert.Equal(t, []ScoreCategory{
		CategorySkillsAlignment,
		CategoryCodeQuality,
		CategoryExperienceRelevance,
		CategoryWorkStyle,
	}, ScoreCategories())
}

func TestConfidence_Valid(t *testing.T) {
	assert.True(t, ConfidenceHigh.Valid())
	assert.True(t, ConfidenceMedium.Valid())
	assert.True(t, ConfidenceLow.Valid())
	assert.False(t, Confidence("certain").Valid())
}
