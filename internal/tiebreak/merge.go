package tiebreak

import (
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"
)

func toRuneStrings(s string) []string {
	runes := []rune(s)
	out := make([]string, len(runes))
	for i, r := range runes {
		out[i] = string(r)
	}
	return out
}

// shouldSkip decides whether replacing before with after is safe: it is
// not if after itself contains a hazard, or if before is a short
// whitelisted acronym that after would de-capitalize.
func shouldSkip(before, after string, acronyms map[string]bool) string {
	if hazards := DetectHazards(after, acronyms); len(hazards) > 0 {
		return "hazard_detected"
	}
	upperBefore := before != "" && before == strings.ToUpper(before) && hasLetter(before)
	if upperBefore && acronyms[before] {
		return "preserve_acronym"
	}
	if upperBefore && len(before) <= 5 && after != strings.ToUpper(after) {
		return "preserve_acronym"
	}
	return ""
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// mergeStage merges targetText onto baseText opcode by opcode using a
// rune-level sequence match, skipping any replace/delete/insert opcode
// whose baseText region intersects a hazard span or whose own content
// looks unsafe, and shifting the hazard mask forward by each accepted
// edit's length delta so subsequent opcodes are still checked against
// correct offsets.
func mergeStage(baseText, targetText, stage string, hazards []HazardSpan, logger *DecisionLogger, acronyms map[string]bool) (string, []HazardSpan) {
	a := toRuneStrings(baseText)
	b := toRuneStrings(targetText)
	matcher := difflib.NewMatcher(a, b)
	opcodes := matcher.GetOpCodes()

	var result strings.Builder
	mask := hazards
	shiftAccum := 0

	for _, op := range opcodes {
		beforeSeg := strings.Join(a[op.I1:op.I2], "")
		afterSeg := strings.Join(b[op.J1:op.J2], "")

		if op.Tag == 'e' {
			result.WriteString(beforeSeg)
			continue
		}

		i1Byte := len(strings.Join(a[:op.I1], ""))
		i2Byte := len(strings.Join(a[:op.I2], ""))

		var skipReason string
		if intersectsAny(i1Byte, i2Byte, mask) {
			skipReason = "protected_span"
		} else {
			skipReason = shouldSkip(beforeSeg, afterSeg, acronyms)
		}

		if skipReason != "" {
			result.WriteString(beforeSeg)
			if logger != nil {
				logger.Log(Decision{
					Stage:  stage,
					Rule:   "skip:" + skipReason,
					Before: beforeSeg,
					After:  afterSeg,
					Span:   [2]int{i1Byte, i2Byte},
				})
			}
			continue
		}

		result.WriteString(afterSeg)
		delta := len(afterSeg) - len(beforeSeg)
		mask = shiftSpans(mask, i2Byte+shiftAccum, delta)
		shiftAccum += delta
		if logger != nil {
			logger.Log(Decision{
				Stage:  stage,
				Rule:   "apply",
				Before: beforeSeg,
				After:  afterSeg,
				Span:   [2]int{i1Byte, i2Byte},
			})
		}
	}

	return result.String(), mask
}

// StatsSummary reports the outcome of a TieBreak run.
type StatsSummary struct {
	HazardSpansProtected int
	DecisionCounts        map[string]map[string]int
}

// TieBreak sequentially merges grammarText then fixerText onto
// prepassText, skipping any edit that would land on a masked span or
// reintroduce a hazard, and returns the merged text plus a summary.
func TieBreak(prepassText, grammarText, fixerText string, hazards []HazardSpan, logger *DecisionLogger, acronyms map[string]bool) (string, StatsSummary) {
	current := prepassText
	mask := hazards

	if grammarText != "" && grammarText != current {
		current, mask = mergeStage(current, grammarText, "grammar", mask, logger, acronyms)
	}
	if fixerText != "" && fixerText != current {
		current, mask = mergeStage(current, fixerText, "tts", mask, logger, acronyms)
	}

	summary := StatsSummary{HazardSpansProtected: len(mask)}
	if logger != nil {
		summary.DecisionCounts = logger.Summary()
	}
	return current, summary
}
