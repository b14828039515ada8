package tiebreak

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectHazards_FindsSpacedLetters(t *testing.T) {
	hazards := DetectHazards("please spell N A S A now", nil)
	require.Len(t, hazards, 1)
	assert.Equal(t, "spaced_letters", hazards[0].Reason)
}

func TestDetectHazards_SkipsWhitelistedAcronym(t *testing.T) {
	hazards := DetectHazards("NASA launched it", map[string]bool{"NASA": true})
	assert.Empty(t, hazards)
}

func TestDetectHazards_FlagsNonAcronymShouting(t *testing.T) {
	hazards := DetectHazards("STOPYELLING now please", nil)
	require.Len(t, hazards, 1)
	assert.Equal(t, "shouting_upper", hazards[0].Reason)
}

func TestMergeStage_AppliesSafeEdit(t *testing.T) {
	logger := NewDecisionLogger(nil)
	out, _ := mergeStage("hello world", "hello there", "grammar", nil, logger, nil)
	assert.Equal(t, "hello there", out)
	assert.Equal(t, 2, logger.Summary()["grammar"]["applied"])
}

func TestMergeStage_SkipsEditInsideHazard(t *testing.T) {
	base := "please spell N A S A now"
	hazards := DetectHazards(base, nil)
	logger := NewDecisionLogger(nil)
	out, _ := mergeStage(base, "please spell NASA today", "tts", hazards, logger, nil)
	assert.Contains(t, out, "N A S A")
	assert.True(t, logger.Summary()["tts"]["skipped"] > 0)
}

func TestTieBreak_MergesGrammarThenFixer(t *testing.T) {
	var buf bytes.Buffer
	logger := NewDecisionLogger(&buf)
	out, summary := TieBreak("hello world", "hello  world fixed", "hello world fixed final", nil, logger, nil)
	assert.NotEmpty(t, out)
	assert.NotNil(t, summary.DecisionCounts)
	assert.True(t, buf.Len() > 0)
}

func TestPostCheck_DetectsUnbalancedFence(t *testing.T) {
	result := PostCheck("```go\ncode", nil)
	assert.False(t, result.OK)
	assert.Contains(t, result.Errors, "unbalanced_code_fences")
}

func TestPostCheck_DetectsUnbalancedBrackets(t *testing.T) {
	result := PostCheck("some [text", nil)
	assert.False(t, result.OK)
	assert.Contains(t, result.Errors, "unbalanced_brackets")
}

func TestPostCheck_PassesCleanText(t *testing.T) {
	result := PostCheck("Just some plain clean prose.", nil)
	assert.True(t, result.OK)
	assert.Empty(t, result.Errors)
}

func TestDecisionLogger_WritesNDJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewDecisionLogger(&buf)
	require.NoError(t, logger.Log(Decision{Stage: "grammar", Rule: "apply", Before: "a", After: "b"}))
	assert.Contains(t, buf.String(), `"stage":"grammar"`)
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\n")))
}
