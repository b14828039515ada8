package applier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdproof/mdp/internal/detector"
)

func plan(items ...detector.Item) detector.Plan {
	return detector.Plan{Items: items}
}

func TestFindAllMatches_NonOverlappingScan(t *testing.T) {
	text := "aa aa aa"
	matches := FindAllMatches(text, plan(detector.Item{Find: "aa", Replace: "bb"}), 0)
	require.Len(t, matches, 3)
	assert.Equal(t, 0, matches[0].Offset)
	assert.Equal(t, 3, matches[1].Offset)
	assert.Equal(t, 6, matches[2].Offset)
}

func TestApplyPlanToText_AppliesReplacement(t *testing.T) {
	out, report := ApplyPlanToText("Please spell T T S slowly.", plan(
		detector.Item{Find: "T T S", Replace: "TTS"},
	))
	assert.Equal(t, "Please spell TTS slowly.", out)
	assert.Equal(t, 1, report.ReplacementsApplied)
}

func TestApplyPlanToText_RemovesOverlappingMatches(t *testing.T) {
	// "abcabc" with two items whose occurrences overlap at offset 0..3 vs 0..6
	out, report := ApplyPlanToText("abcabc", plan(
		detector.Item{Find: "abcabc", Replace: "X"},
		detector.Item{Find: "abc", Replace: "Y"},
	))
	assert.Equal(t, "X", out)
	assert.Equal(t, 1, report.ReplacementsApplied)
	assert.True(t, report.SkippedOverlap > 0)
}

func TestApplyPlanToText_NoMatchReported(t *testing.T) {
	_, report := ApplyPlanToText("hello world", plan(
		detector.Item{Find: "absent", Replace: "x"},
	))
	assert.Equal(t, 1, report.SkippedNoMatch)
	assert.Equal(t, 0, report.ReplacementsApplied)
}

func TestCheckIdempotence_HoldsWhenNoFurtherMatches(t *testing.T) {
	p := plan(detector.Item{Find: "T T S", Replace: "TTS"})
	assert.True(t, CheckIdempotence("say T T S now", p))
}

func TestSortMatches_OrdersByOffsetThenLongestFirst(t *testing.T) {
	matches := []Match{
		{Offset: 5, Find: "ab"},
		{Offset: 0, Find: "a"},
		{Offset: 0, Find: "abc"},
	}
	sorted := SortMatches(matches)
	assert.Equal(t, "abc", sorted[0].Find)
	assert.Equal(t, "a", sorted[1].Find)
	assert.Equal(t, 5, sorted[2].Offset)
}
