package prepass

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	whitespaceSplitRe   = regexp.MustCompile(`(\s+)`)
	runPunctRe          = regexp.MustCompile(`[!?]+`)
	multiDotRe          = regexp.MustCompile(`\.{2,}`)
	multiDotThreeRe     = regexp.MustCompile(`\.{3,}`)
	doubleSpaceAfterRe  = regexp.MustCompile(`([.!?;:])(\s{2,})`)
	singleSpaceBeforeUp = regexp.MustCompile(`(\.)(\s+)([A-Z])`)
	spaceBeforePunctRe  = regexp.MustCompile(`(\s+)([.!?;:,])`)
	percentRe           = regexp.MustCompile(`(\d)\s+%`)
	unitsRe             = regexp.MustCompile(`(\d)\s*(°[CF]|km|m|cm|mm|kg|g|mg|ms|s|mph|kph)\b`)
	timeRe              = regexp.MustCompile(`\b(\d{1,2}(?::\d{2})?)\s*(am|pm|AM|PM|a\.m\.|p\.m\.)\b`)
	inlineFootnoteRe    = regexp.MustCompile(`\[\^\d+\](?:[^:]|$)|\[\d+\](?:[^:]|$)|\(\d+\)(?:[^:]|$)`)

	curlyQuoteRunes = map[rune]rune{'“': '"', '”': '"', '‘': '\'', '’': '\''}
)

// RunAdvanced applies casing, punctuation-run collapse, ellipsis,
// quote, sentence-spacing, number/unit, time, and footnote-marker
// normalization, in that fixed order, mirroring apply_policies in the
// Python original.
func RunAdvanced(text string, cfg AdvancedConfig) (string, *Report) {
	report := newReport()
	if !cfg.Enabled {
		return text, report
	}

	text, r := normalizeCasing(text, cfg)
	report.merge(r)

	text, r = collapsePunctuationRuns(text, cfg)
	report.merge(r)

	text, r = normalizeEllipsis(text, cfg)
	report.merge(r)

	text, r = normalizeQuotes(text, cfg)
	report.merge(r)

	text, r = normalizeSentenceSpacing(text, cfg)
	report.merge(r)

	text, r = normalizeNumbersUnits(text, cfg)
	report.merge(r)

	text, r = normalizeTimeFormat(text, cfg)
	report.merge(r)

	text, r = removeInlineFootnotes(text, cfg)
	report.merge(r)

	return text, report
}

func normalizeCasing(text string, cfg AdvancedConfig) (string, *Report) {
	report := newReport()
	if !cfg.NormalizeShouting {
		return text, report
	}
	tokens := whitespaceSplitRe.Split(text, -1)
	seps := whitespaceSplitRe.FindAllString(text, -1)

	var b strings.Builder
	for i, tok := range tokens {
		core := strings.TrimFunc(tok, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
		if core != "" {
			idx := strings.Index(tok, core)
			prefix := tok[:idx]
			suffix := tok[idx+len(core):]
			if len(core) >= cfg.ShoutingMinLen && isShouting(core) &&
				!cfg.AcronymWhitelist[strings.ToUpper(core)] && !cfg.ProtectedLexicon[strings.ToUpper(core)] {
				b.WriteString(prefix)
				b.WriteString(titleCase(core))
				b.WriteString(suffix)
				report.add("shouting_normalized", 1)
			} else {
				b.WriteString(tok)
			}
		} else {
			b.WriteString(tok)
		}
		if i < len(seps) {
			b.WriteString(seps[i])
		}
	}
	return b.String(), report
}

func isShouting(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func collapsePunctuationRuns(text string, cfg AdvancedConfig) (string, *Report) {
	report := newReport()
	if !cfg.CollapseRuns {
		return text, report
	}
	out := runPunctRe.ReplaceAllStringFunc(text, func(run string) string {
		if len(run) <= 1 {
			return run
		}
		report.add("punctuation_runs_collapsed", 1)
		switch cfg.RunsPolicy {
		case "first-of-each":
			seen := map[byte]bool{}
			var b strings.Builder
			for i := 0; i < len(run); i++ {
				if !seen[run[i]] {
					seen[run[i]] = true
					b.WriteByte(run[i])
				}
			}
			return b.String()
		default: // "first-only"
			return string(run[0])
		}
	})
	return out, report
}

func normalizeEllipsis(text string, cfg AdvancedConfig) (string, *Report) {
	report := newReport()
	switch cfg.Ellipsis {
	case "unicode":
		out := multiDotThreeRe.ReplaceAllString(text, "…")
		if out != text {
			report.add("ellipsis_normalized", strings.Count(text, "...")+1)
		}
		return out, report
	default: // three-dots
		text = strings.ReplaceAll(text, "…", "...")
		out := multiDotRe.ReplaceAllString(text, "...")
		return out, report
	}
}

func normalizeQuotes(text string, cfg AdvancedConfig) (string, *Report) {
	report := newReport()
	if cfg.Quotes != "straight" {
		return text, report
	}
	var b strings.Builder
	changed := 0
	for _, r := range text {
		if repl, ok := curlyQuoteRunes[r]; ok {
			b.WriteRune(repl)
			changed++
			continue
		}
		b.WriteRune(r)
	}
	report.add("quotes_straightened", changed)
	return b.String(), report
}

func normalizeSentenceSpacing(text string, cfg AdvancedConfig) (string, *Report) {
	report := newReport()
	text = spaceBeforePunctRe.ReplaceAllString(text, "$2")
	switch cfg.SpaceAfterSentence {
	case "double":
		text = singleSpaceBeforeUp.ReplaceAllString(text, "$1  $3")
	default: // single
		text = doubleSpaceAfterRe.ReplaceAllString(text, "$1 ")
	}
	return text, report
}

func normalizeNumbersUnits(text string, cfg AdvancedConfig) (string, *Report) {
	report := newReport()
	if cfg.JoinPercent {
		text = percentRe.ReplaceAllString(text, "$1%")
	}
	switch cfg.SpaceBeforeUnit {
	case "none":
		text = unitsRe.ReplaceAllString(text, "$1$2")
	case "normal":
		text = unitsRe.ReplaceAllString(text, "$1 $2")
	}
	return text, report
}

func normalizeTimeFormat(text string, cfg AdvancedConfig) (string, *Report) {
	report := newReport()
	var style string
	switch cfg.TimeStyle {
	case "p.m.":
		style = "p.m."
	case "PM":
		style = "PM"
	default:
		style = "pm"
	}
	out := timeRe.ReplaceAllStringFunc(text, func(m string) string {
		groups := timeRe.FindStringSubmatch(m)
		suffix := style
		if strings.ToLower(groups[2])[0] == 'a' {
			suffix = strings.Replace(style, "pm", "am", 1)
			suffix = strings.Replace(suffix, "PM", "AM", 1)
			suffix = strings.Replace(suffix, "p.m.", "a.m.", 1)
		}
		report.add("time_format_normalized", 1)
		return groups[1] + suffix
	})
	return out, report
}

func removeInlineFootnotes(text string, cfg AdvancedConfig) (string, *Report) {
	report := newReport()
	if !cfg.RemoveInlineMarkers {
		return text, report
	}
	out := inlineFootnoteRe.ReplaceAllStringFunc(text, func(m string) string {
		report.add("inline_footnotes_removed", 1)
		// preserve the trailing char the regex had to consume to assert
		// "not followed by a colon" (it's not part of the marker itself).
		if len(m) > 0 {
			last := m[len(m)-1]
			if last != ']' && last != ')' {
				return string(last)
			}
		}
		return ""
	})
	return out, report
}
