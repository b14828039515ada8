package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAll_PassesOnIdentity(t *testing.T) {
	text := "Hello `code` [link](http://x) world."
	ok, failures := ValidateAll(text, text, DefaultConfig())
	assert.True(t, ok)
	assert.Empty(t, failures)
}

func TestValidateMaskParity_DetectsLostSentinel(t *testing.T) {
	before := "a {{MASK_INLINE_CODE_0}} b"
	after := "a b"
	assert.False(t, ValidateMaskParity(before, after))
}

func TestValidateBacktickParity_DetectsUnbalanced(t *testing.T) {
	assert.True(t, ValidateBacktickParity("a `b` c", "a `b` c"))
	assert.False(t, ValidateBacktickParity("a `b` c", "a `b c"))
}

func TestValidateBracketBalance_DetectsImbalance(t *testing.T) {
	assert.True(t, ValidateBracketBalance("[a](b) {c}"))
	assert.False(t, ValidateBracketBalance("[a](b"))
	assert.False(t, ValidateBracketBalance("a) (b"))
}

func TestValidateLinkSanity_DetectsChangedLinkCount(t *testing.T) {
	assert.True(t, ValidateLinkSanity("[a](b)", "[a](b) still one"))
	assert.False(t, ValidateLinkSanity("[a](b)", "[a](b) [c](d)"))
}

func TestValidateFenceParity_DetectsOddFences(t *testing.T) {
	assert.True(t, ValidateFenceParity("```go\ncode\n```"))
	assert.False(t, ValidateFenceParity("```go\ncode"))
}

func TestValidateNoNewMarkdownTokens_DetectsInventedToken(t *testing.T) {
	assert.True(t, ValidateNoNewMarkdownTokens("plain text", "plain text still"))
	assert.False(t, ValidateNoNewMarkdownTokens("plain text", "plain *text*"))
}

func TestValidateLengthDeltaBudget_RejectsOverBudgetGrowth(t *testing.T) {
	before := "0123456789"
	after := before + "this is far too much new content for the budget"
	assert.False(t, ValidateLengthDeltaBudget(before, after, 0.01))
}

func TestValidateLengthDeltaBudget_AllowsUnboundedShrinkage(t *testing.T) {
	before := "this document has a lot of boilerplate that a scrubber pass removes entirely"
	after := "this document"
	assert.True(t, ValidateLengthDeltaBudget(before, after, 0.01))
}

func TestValidateLengthDeltaBudget_EmptyBeforeAllowsAnyChange(t *testing.T) {
	assert.True(t, ValidateLengthDeltaBudget("", "anything at all", 0.01))
}

func TestValidateAll_ReportsMultipleFailures(t *testing.T) {
	before := "short text here"
	after := "[unterminated bracket and `unterminated tick"
	ok, failures := ValidateAll(before, after, DefaultConfig())
	assert.False(t, ok)
	assert.Contains(t, failures, FailureBracket)
	assert.Contains(t, failures, FailureBacktick)
}
