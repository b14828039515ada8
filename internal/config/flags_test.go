package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRunFlags_DefaultsToFullStepChain(t *testing.T) {
	rf, _, err := BuildRunFlags([]string{"doc.md"})
	require.NoError(t, err)
	assert.Equal(t, "doc.md", rf.Input)
	assert.Equal(t, DefaultSteps, rf.Steps)
	assert.False(t, rf.DryRun)
}

func TestBuildRunFlags_ParsesOverrides(t *testing.T) {
	rf, _, err := BuildRunFlags([]string{
		"--glob", "**/*.md",
		"--steps", "mask,prepass-basic",
		"--dry-run",
		"--workers", "4",
		"--scrub-dry-run",
	})
	require.NoError(t, err)
	assert.Equal(t, "**/*.md", rf.Glob)
	assert.Equal(t, []string{"mask", "prepass-basic"}, rf.Steps)
	assert.True(t, rf.DryRun)
	assert.Equal(t, 4, rf.Workers)
	assert.True(t, rf.ScrubDryRun)
}

func TestBuildRunFlags_ParsesReportStages(t *testing.T) {
	rf, _, err := BuildRunFlags([]string{"doc.md", "--report-stages"})
	require.NoError(t, err)
	assert.True(t, rf.RetainSnapshots)
}

func TestBuildRunFlags_RejectsUnknownFlag(t *testing.T) {
	_, _, err := BuildRunFlags([]string{"--not-a-flag"})
	assert.Error(t, err)
}
