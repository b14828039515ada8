// Package tiebreak merges the grammar-assist and fixer outputs back onto
// the pre-pass baseline opcode by opcode, skipping any edit that would
// touch a masked span or a detected TTS hazard, and performs the final
// hazard/structural audit (Post-Check) before a document is unmasked.
package tiebreak

import (
	"regexp"
	"sort"
	"unicode"
)

// HazardSpan is a byte range flagged as risky for TTS: spaced-out
// letters, non-acronym uppercase runs, or stylized Unicode letterforms.
type HazardSpan struct {
	Start  int
	End    int
	Reason string
}

var (
	spacedPattern = regexp.MustCompile(`(?i)\b\w(?:[\s,\-]\w){3,}\b`)
	upperPattern  = regexp.MustCompile(`\b[A-Z]{6,}\b`)
)

func isStylized(r rune) bool {
	switch {
	case r >= 0x1D00 && r <= 0x1D7F:
		return true
	case r >= 0x1D80 && r <= 0x1DBF:
		return true
	case r >= 0x1E00 && r <= 0x1EFF:
		return true
	}
	return unicode.Is(unicode.Lm, r) || unicode.Is(unicode.Sk, r)
}

// DetectHazards scans text for hazard spans, skipping uppercase tokens
// present in acronyms, and merges overlapping spans into one.
func DetectHazards(text string, acronyms map[string]bool) []HazardSpan {
	var spans []HazardSpan

	for _, loc := range spacedPattern.FindAllStringIndex(text, -1) {
		spans = append(spans, HazardSpan{Start: loc[0], End: loc[1], Reason: "spaced_letters"})
	}

	for _, loc := range upperPattern.FindAllStringIndex(text, -1) {
		word := text[loc[0]:loc[1]]
		if acronyms[word] {
			continue
		}
		spans = append(spans, HazardSpan{Start: loc[0], End: loc[1], Reason: "shouting_upper"})
	}

	runes := []rune(text)
	runStart := -1
	byteOffset := 0
	offsets := make([]int, len(runes)+1)
	for i, r := range runes {
		offsets[i] = byteOffset
		byteOffset += len(string(r))
	}
	offsets[len(runes)] = byteOffset

	for i, r := range runes {
		if isStylized(r) {
			if runStart < 0 {
				runStart = i
			}
		} else if runStart >= 0 {
			spans = append(spans, HazardSpan{Start: offsets[runStart], End: offsets[i], Reason: "stylized_unicode"})
			runStart = -1
		}
	}
	if runStart >= 0 {
		spans = append(spans, HazardSpan{Start: offsets[runStart], End: offsets[len(runes)], Reason: "stylized_unicode"})
	}

	return mergeSpans(spans)
}

func mergeSpans(spans []HazardSpan) []HazardSpan {
	if len(spans) == 0 {
		return nil
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	merged := []HazardSpan{spans[0]}
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.Start <= last.End {
			if s.End > last.End {
				last.End = s.End
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

func intersectsAny(start, end int, spans []HazardSpan) bool {
	for _, s := range spans {
		if start < s.End && s.Start < end {
			return true
		}
	}
	return false
}

// shiftSpans shifts every span starting at or after pivot by delta,
// keeping the hazard mask correct as text before pivot grows or shrinks.
func shiftSpans(spans []HazardSpan, pivot, delta int) []HazardSpan {
	out := make([]HazardSpan, len(spans))
	for i, s := range spans {
		if s.Start >= pivot {
			s.Start += delta
			s.End += delta
		}
		out[i] = s
	}
	return out
}
