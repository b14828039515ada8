package grammarassist

import (
	"testing"

	"github.com/mdproof/mdp/internal/markdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	suggestions []Suggestion
	err         error
}

func (f fakeEngine) Check(text string) ([]Suggestion, error) {
	return f.suggestions, f.err
}

func alwaysValid(before, after string) bool { return true }
func alwaysInvalid(before, after string) bool { return false }

func TestAssist_AppliesSafeCategory(t *testing.T) {
	text := "teh cat sat"
	engine := fakeEngine{suggestions: []Suggestion{
		{Offset: 0, Length: 3, Replacement: "the", Category: CategoryTypos},
	}}
	out, report := Assist(engine, text, nil, alwaysValid)
	assert.Equal(t, "the cat sat", out)
	assert.Equal(t, 1, report.Applied)
}

func TestAssist_FiltersUnsafeCategory(t *testing.T) {
	text := "this is fine"
	engine := fakeEngine{suggestions: []Suggestion{
		{Offset: 0, Length: 4, Replacement: "That", Category: "REWRITE"},
	}}
	out, report := Assist(engine, text, nil, alwaysValid)
	assert.Equal(t, text, out)
	assert.Equal(t, 1, report.FilteredUnsafe)
	assert.Equal(t, 0, report.Applied)
}

func TestAssist_FiltersMaskIntersection(t *testing.T) {
	masked, table := markdown.MaskProtected("run `{{code}}` now")
	require.NotNil(t, table)

	idx := -1
	for i := 0; i+10 <= len(masked); i++ {
		if masked[i:i+5] == "{{MAS" {
			idx = i
			break
		}
	}
	require.GreaterOrEqual(t, idx, 0)

	engine := fakeEngine{suggestions: []Suggestion{
		{Offset: idx, Length: 5, Replacement: "XXXXX", Category: CategoryCasing},
	}}
	out, report := Assist(engine, masked, table, alwaysValid)
	assert.Equal(t, masked, out)
	assert.Equal(t, 1, report.FilteredMasked)
}

func TestAssist_RevertsOnValidationFailure(t *testing.T) {
	text := "teh cat"
	engine := fakeEngine{suggestions: []Suggestion{
		{Offset: 0, Length: 3, Replacement: "the", Category: CategoryTypos},
	}}
	out, report := Assist(engine, text, nil, alwaysInvalid)
	assert.Equal(t, text, out)
	assert.True(t, report.RevertedInvalid)
}

func TestAssist_ReverseOrderPreservesEarlierOffsets(t *testing.T) {
	text := "aaa bbb ccc"
	engine := fakeEngine{suggestions: []Suggestion{
		{Offset: 0, Length: 3, Replacement: "XXX", Category: CategoryTypos},
		{Offset: 8, Length: 3, Replacement: "ZZZ", Category: CategoryTypos},
	}}
	out, report := Assist(engine, text, nil, alwaysValid)
	assert.Equal(t, "XXX bbb ZZZ", out)
	assert.Equal(t, 2, report.Applied)
}

func TestAssist_NilEngineIsNoOp(t *testing.T) {
	out, report := Assist(nil, "text", nil, alwaysValid)
	assert.Equal(t, "text", out)
	assert.Equal(t, 0, report.Proposed)
}

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, CategoryTypos, NormalizeCategory("typos"))
	assert.Equal(t, CategorySpacing, NormalizeCategory("Spacing"))
	assert.Equal(t, Category("UNSAFE_REWRITE"), NormalizeCategory("rewrite"))
}
