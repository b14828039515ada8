package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mdproof/mdp/internal/config"
	"github.com/mdproof/mdp/internal/llmclient"
	"github.com/mdproof/mdp/internal/markdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_MaskOnly_RoundTripsProtectedSpans(t *testing.T) {
	doc := "See `fmt.Println` and visit [docs](https://example.com/path) now."

	result, err := Run(context.Background(), doc, Options{
		Config: config.DefaultConfig(),
		Steps:  []string{StepMask},
	})
	require.NoError(t, err)

	assert.Equal(t, doc, result.Output)
	assert.True(t, result.Run.PostCheckOK)
	assert.Len(t, result.Run.Stages, 2)
	assert.Equal(t, StepMask, result.Run.Stages[0].Name)
}

func TestRun_FullDeterministicChain_NoOptionalStages(t *testing.T) {
	doc := "He said “hello”---world. See `code()` here. Visit [site](https://x.test) please."

	cfg := config.DefaultConfig()
	result, err := Run(context.Background(), doc, Options{
		Config: cfg,
		Steps: []string{
			StepMask, StepPrepassBasic, StepPrepassAdvanced, StepScrubber,
		},
	})
	require.NoError(t, err)

	assert.True(t, result.Run.PostCheckOK)
	assert.Contains(t, result.Output, "`code()`")
	assert.Contains(t, result.Output, "[site](https://x.test)")
	assert.Equal(t, len(doc), result.Run.OriginalLen)
	assert.Equal(t, len(result.Output), result.Run.ResultLen)
	assert.NotEmpty(t, result.Run.OriginalSHA1)
	assert.NotEmpty(t, result.Run.ResultSHA1)
}

func TestRun_SkippingDetectAndFix_LeavesClientsUnused(t *testing.T) {
	doc := "Plain prose with no hazards at all."

	result, err := Run(context.Background(), doc, Options{
		Config: config.DefaultConfig(),
		Steps:  []string{StepMask, StepPrepassBasic},
	})
	require.NoError(t, err)

	assert.Empty(t, result.PlanItems)
	assert.True(t, result.Run.PostCheckOK)
}

func TestRun_NilConfigFallsBackToDefaults(t *testing.T) {
	result, err := Run(context.Background(), "hello world", Options{
		Steps: []string{StepMask},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello world", result.Output)
}

func TestRun_FixerStage_LeavesMaskSentinelsUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "This is some polished prose text."}},
			},
		})
	}))
	defer srv.Close()

	cfg := config.DefaultConfig()
	cfg.Fixer.Enabled = true
	lc := llmclient.DefaultFixerConfig()
	lc.APIBase = srv.URL
	lc.Timeout = time.Second

	doc := "Some unpolished prose here. See `fmt.Println` for details. More prose follows after that."
	result, err := Run(context.Background(), doc, Options{
		Config:      cfg,
		Steps:       []string{StepMask, StepFix},
		FixerClient: llmclient.New(lc),
	})
	require.NoError(t, err)
	assert.Contains(t, result.Output, "`fmt.Println`")
	assert.False(t, markdown.ContainsSentinel(result.Output))
}

func TestRun_RetainSnapshots_PopulatesStageSnapshot(t *testing.T) {
	result, err := Run(context.Background(), "some `code` text", Options{
		Config:          config.DefaultConfig(),
		Steps:           []string{StepMask},
		RetainSnapshots: true,
	})
	require.NoError(t, err)
	require.Len(t, result.Run.Stages, 2)
	assert.NotEmpty(t, result.Run.Stages[0].Snapshot)
}
