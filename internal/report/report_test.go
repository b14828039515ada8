package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGrowthRatio(t *testing.T) {
	r := Run{OriginalLen: 100, ResultLen: 110}
	assert.InDelta(t, 0.10, r.GrowthRatio(), 0.0001)
}

func TestGrowthRatio_ZeroOriginal(t *testing.T) {
	r := Run{OriginalLen: 0, ResultLen: 5}
	assert.Equal(t, 0.0, r.GrowthRatio())
}

func TestRenderPretty_IncludesKeyFields(t *testing.T) {
	r := Run{
		Document:    "doc.md",
		Duration:    2500 * time.Millisecond,
		ExitCode:    0,
		OriginalLen: 100,
		ResultLen:   101,
		PostCheckOK: true,
		Stages:      []StageResult{{Name: "mask", DurationMs: 5, InputChars: 100, OutputChars: 100}},
		Rejections:  []Rejection{{Reason: "no_match_in_span", Count: 3}},
	}
	out := RenderPretty(r)
	assert.Contains(t, out, "mdp run report")
	assert.Contains(t, out, "doc.md")
	assert.Contains(t, out, "no_match_in_span")
	assert.Contains(t, out, "mask")
}

func TestRenderPretty_ShowsPostCheckErrorsWhenFailed(t *testing.T) {
	r := Run{PostCheckOK: false, PostCheckErrors: []string{"unbalanced_brackets"}}
	out := RenderPretty(r)
	assert.Contains(t, out, "unbalanced_brackets")
}

func TestRenderPretty_ShowsPerStageDiffWhenSnapshotsRetained(t *testing.T) {
	r := Run{
		Document:         "doc.md",
		OriginalLen:      10,
		ResultLen:        8,
		OriginalSnapshot: "hello   world",
		Stages: []StageResult{
			{Name: "mask", DurationMs: 1, InputChars: 13, OutputChars: 13, Snapshot: "hello   world"},
			{Name: "prepass-basic", DurationMs: 1, InputChars: 13, OutputChars: 11, Snapshot: "hello world"},
		},
	}
	out := RenderPretty(r)
	assert.Contains(t, out, "-hello   world")
	assert.Contains(t, out, "+hello world")
}

func TestRenderPretty_OmitsDiffWhenSnapshotsNotRetained(t *testing.T) {
	r := Run{
		Stages: []StageResult{{Name: "mask", DurationMs: 1, InputChars: 13, OutputChars: 13}},
	}
	out := RenderPretty(r)
	assert.NotContains(t, out, "---")
}

func TestFormatPercentage_SignsCorrectly(t *testing.T) {
	assert.Equal(t, "+1.00%", formatPercentage(0.01))
	assert.Equal(t, "-1.00%", formatPercentage(-0.01))
}
