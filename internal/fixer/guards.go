// Package fixer runs a larger LLM over long text spans to polish grammar
// and clarity, guarded so it can never introduce markdown structure or
// grow/shrink a span beyond what the pipeline's budget allows.
package fixer

import "strings"

var forbiddenTokens = []string{
	"```", "`", "*", "_", "[", "]", "(", ")", "<", ">",
	"http://", "https://", "##", "---", "~~~",
}

// RejectionReason names why a fixer output was discarded.
type RejectionReason string

const (
	RejectionNone           RejectionReason = ""
	RejectionEmptyOrNonText RejectionReason = "empty_or_non_text"
	RejectionForbiddenToken RejectionReason = "forbidden_tokens"
	RejectionGrowthLimit    RejectionReason = "growth_limit"
)

// GuardConfig bounds what fixer output is acceptable.
type GuardConfig struct {
	MaxGrowthRatio   float64
	MaxShrinkRatio   float64
}

// DefaultGuardConfig mirrors fixer/guards.py's check_length_delta defaults.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{MaxGrowthRatio: 0.10, MaxShrinkRatio: 0.5}
}

func checkForbiddenTokens(output string) bool {
	for _, tok := range forbiddenTokens {
		if strings.Contains(output, tok) {
			return false
		}
	}
	return true
}

func checkLengthDelta(original, output string, cfg GuardConfig) bool {
	if len(original) == 0 {
		return true
	}
	ratio := float64(len(output)-len(original)) / float64(len(original))
	if ratio > cfg.MaxGrowthRatio {
		return false
	}
	if ratio < -cfg.MaxShrinkRatio {
		return false
	}
	return true
}

func checkIsText(output string) bool {
	return strings.TrimSpace(output) != ""
}

// ValidateOutput applies the fixed guard chain to a candidate fixer
// output: non-empty, no forbidden markdown/code/link tokens, and within
// the growth/shrink budget relative to original. On rejection it returns
// original unchanged alongside the reason.
func ValidateOutput(original, output string, cfg GuardConfig) (string, RejectionReason) {
	cleaned := strings.TrimSpace(output)
	if !checkIsText(cleaned) {
		return original, RejectionEmptyOrNonText
	}
	if !checkForbiddenTokens(cleaned) {
		return original, RejectionForbiddenToken
	}
	if !checkLengthDelta(original, cleaned, cfg) {
		return original, RejectionGrowthLimit
	}
	return cleaned, RejectionNone
}

// CheckFileGrowth applies the same growth check at whole-file scope, used
// as the final safety net after all spans in a document have been fixed.
func CheckFileGrowth(original, fixed string, cfg GuardConfig) bool {
	return checkLengthDelta(original, fixed, cfg)
}
