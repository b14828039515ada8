package scrubber

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdproof/mdp/internal/markdown"
)

func TestScrub_RemovesEdgeNavigationBlock(t *testing.T) {
	doc := "Next Chapter | Previous Chapter\n\nThe story begins here with real prose about a dragon.\n\nMore prose follows about the dragon's journey onward."
	out, candidates, report := Scrub(doc, DefaultConfig())
	require.Len(t, candidates, 1)
	assert.Equal(t, CategoryNavigation, candidates[0].Category)
	assert.NotContains(t, out, "Next Chapter")
	assert.Equal(t, 1, report.BlocksToRemove)
}

func TestScrub_KeepsMiddleBlockDespiteLowConfidenceMatch(t *testing.T) {
	var blocks []string
	for i := 0; i < 20; i++ {
		blocks = append(blocks, "Ordinary paragraph number about the plot and characters.")
	}
	blocks[10] = "Subscribe to our newsletter for more."
	doc := strings.Join(blocks, "\n\n")
	out, _, report := Scrub(doc, DefaultConfig())
	assert.Contains(t, out, "Subscribe to our newsletter")
	assert.True(t, report.KeptMiddleBias >= 1)
}

func TestScrub_HeadingsKeepWhitelistOverridesDetection(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HeadingsKeep = []string{"Table of Contents"}
	doc := "Table of Contents\n\nStory prose about a journey through the mountains to find treasure."
	out, candidates, _ := Scrub(doc, cfg)
	assert.Empty(t, candidates)
	assert.Contains(t, out, "Table of Contents")
}

func TestScrub_DisabledIsNoOp(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false
	doc := "Subscribe now!\n\nStory prose."
	out, candidates, _ := Scrub(doc, cfg)
	assert.Equal(t, doc, out)
	assert.Empty(t, candidates)
}

func TestScrub_DetectsLinkFarm(t *testing.T) {
	doc := "Intro prose paragraph about the village and its people living peacefully.\n\n[Link1](http://a) [Link2](http://b) [Link3](http://c)\n\nClosing prose paragraph about the village elder's final decision."
	_, candidates, _ := Scrub(doc, DefaultConfig())
	var found bool
	for _, c := range candidates {
		if c.Category == CategoryLinkFarm {
			found = true
		}
	}
	assert.True(t, found)
}

// Masking narrows a link's protected span to just its URL (see
// markdown.MaskProtected), leaving "[Link1](", "[Link2](" etc. visible, so a
// link-farm block still reads as link-dense once the sentinel replaces only
// the URL — the real pipeline's Mask-then-Scrub order must not blind this
// detector the way masking the whole "[text](url)" construct would.
func TestScrub_DetectsLinkFarmAfterMasking(t *testing.T) {
	doc := "Intro prose paragraph about the village and its people living peacefully.\n\n[Link1](http://a) [Link2](http://b) [Link3](http://c)\n\nClosing prose paragraph about the village elder's final decision."
	masked, _ := markdown.MaskProtected(doc)
	_, candidates, _ := Scrub(masked, DefaultConfig())
	var found bool
	for _, c := range candidates {
		if c.Category == CategoryLinkFarm {
			found = true
		}
	}
	assert.True(t, found)
}

func TestFormatDryRunTable_ListsCandidates(t *testing.T) {
	doc := "Next Chapter | Previous Chapter\n\nThe story begins here with real prose about a dragon.\n\nMore prose follows about the dragon's journey onward."
	_, candidates, _ := Scrub(doc, DefaultConfig())
	require.Len(t, candidates, 1)
	table := FormatDryRunTable(candidates)
	assert.Contains(t, table, "CATEGORY")
	assert.Contains(t, table, "navigation")
	assert.Contains(t, table, "Next Chapter")
}
