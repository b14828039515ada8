// Package validator implements the seven fixed structural invariants every
// stage output must satisfy before the pipeline accepts it: mask parity,
// backtick parity, bracket balance, link sanity, fence parity, the
// markdown-token guard, and the length-delta budget.
package validator

import (
	"fmt"
	"strings"

	"github.com/mdproof/mdp/internal/markdown"
)

// Failure names one failed invariant.
type Failure string

const (
	FailureMaskParity    Failure = "mask_parity"
	FailureBacktick      Failure = "backtick_parity"
	FailureBracket       Failure = "bracket_balance"
	FailureLinkSanity    Failure = "link_sanity"
	FailureFenceParity   Failure = "fence_parity"
	FailureMarkdownToken Failure = "markdown_token_guard"
	FailureLengthBudget  Failure = "length_delta_budget"
)

// Config bounds the length-delta budget validator.
type Config struct {
	MaxLengthDeltaRatio float64
}

// DefaultConfig mirrors validate_all's max_ratio=0.01 default.
func DefaultConfig() Config {
	return Config{MaxLengthDeltaRatio: 0.01}
}

var markdownTokens = "*_[]()`~<>"

// ValidateMaskParity checks that before and after contain the same number
// of mask sentinels — a stage must never create, destroy, or duplicate a
// protected-span placeholder.
func ValidateMaskParity(before, after string) bool {
	return markdown.CountSentinels(before) == markdown.CountSentinels(after)
}

// ValidateBacktickParity checks that the total backtick count is even in
// both before and after, i.e. no inline-code span was left unclosed.
func ValidateBacktickParity(before, after string) bool {
	return strings.Count(before, "`")%2 == 0 && strings.Count(after, "`")%2 == 0
}

// ValidateBracketBalance checks that [, (, and { each remain balanced
// (same open/close counts, never closing before opening) in after.
func ValidateBracketBalance(after string) bool {
	pairs := []struct{ open, close rune }{{'[', ']'}, {'(', ')'}, {'{', '}'}}
	for _, p := range pairs {
		depth := 0
		for _, r := range after {
			switch r {
			case p.open:
				depth++
			case p.close:
				depth--
				if depth < 0 {
					return false
				}
			}
		}
		if depth != 0 {
			return false
		}
	}
	return true
}

// ValidateLinkSanity checks that the "](" link-opener token count is
// unchanged between before and after.
func ValidateLinkSanity(before, after string) bool {
	return strings.Count(before, "](") == strings.Count(after, "](")
}

// ValidateFenceParity checks that the number of ``` fence markers in after
// is even.
func ValidateFenceParity(after string) bool {
	return strings.Count(after, "```")%2 == 0
}

// ValidateNoNewMarkdownTokens checks that no markdown-significant
// character appears in after that wasn't already present in before, at
// least as often — it guards against a stage inventing new structure.
func ValidateNoNewMarkdownTokens(before, after string) bool {
	for _, tok := range markdownTokens {
		if strings.Count(after, string(tok)) > strings.Count(before, string(tok)) {
			return false
		}
	}
	return true
}

// ValidateLengthDeltaBudget checks that after has not grown by more than
// maxRatio of before's length. Shrinkage is always allowed: a TTS-cleanup
// pass that removes boilerplate or hazard text is expected to make the
// document shorter, and that is never itself a failure.
func ValidateLengthDeltaBudget(before, after string, maxRatio float64) bool {
	if len(before) == 0 {
		return true
	}
	delta := len(after) - len(before)
	growthRatio := float64(delta) / float64(len(before))
	return growthRatio <= maxRatio
}

// ValidateAll runs all seven validators in the fixed order above and
// returns whether all passed along with the list of ones that failed.
func ValidateAll(before, after string, cfg Config) (bool, []Failure) {
	var failures []Failure
	if !ValidateMaskParity(before, after) {
		failures = append(failures, FailureMaskParity)
	}
	if !ValidateBacktickParity(before, after) {
		failures = append(failures, FailureBacktick)
	}
	if !ValidateBracketBalance(after) {
		failures = append(failures, FailureBracket)
	}
	if !ValidateLinkSanity(before, after) {
		failures = append(failures, FailureLinkSanity)
	}
	if !ValidateFenceParity(after) {
		failures = append(failures, FailureFenceParity)
	}
	if !ValidateNoNewMarkdownTokens(before, after) {
		failures = append(failures, FailureMarkdownToken)
	}
	if !ValidateLengthDeltaBudget(before, after, cfg.MaxLengthDeltaRatio) {
		failures = append(failures, FailureLengthBudget)
	}
	return len(failures) == 0, failures
}

// Error renders a list of failures as a single error, or nil if empty.
func Error(failures []Failure) error {
	if len(failures) == 0 {
		return nil
	}
	names := make([]string, len(failures))
	for i, f := range failures {
		names[i] = string(f)
	}
	return fmt.Errorf("structural validation failed: %s", strings.Join(names, ", "))
}
