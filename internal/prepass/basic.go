package prepass

import (
	"regexp"
	"strings"
)

var (
	zeroWidthChars = map[rune]bool{
		'​': true, '‌': true, '‍': true, '\U0000FEFF': true,
	}
	bidiControls = func() map[rune]bool {
		m := map[rune]bool{}
		for r := '‪'; r <= '‮'; r++ {
			m[r] = true
		}
		for r := '⁦'; r <= '⁩'; r++ {
			m[r] = true
		}
		return m
	}()
	softHyphen = '­'
	nbsp       = " "

	spacedLettersRe = regexp.MustCompile(`\b([a-zA-Z](?:[\s.,]+[a-zA-Z])+)\b`)
	lettersOnlyRe   = regexp.MustCompile(`[a-zA-Z]`)
	hyphenationRe   = regexp.MustCompile(`([a-zA-Z])-\n\s*([a-zA-Z])`)

	ellipsisRe    = regexp.MustCompile(`…`)
	curlyQuoteMap = map[string]string{
		"“": `"`, "”": `"`, "‘": "'", "’": "'",
	}
	emDashChars  = []string{"–", "—", "―"}
)

// RunBasic applies control-character stripping, NBSP handling, punctuation
// standardization, spaced-letter joining, and hyphenation healing, in that
// fixed order, returning the normalized text and a per-kind count report.
func RunBasic(text string, cfg BasicConfig) (string, *Report) {
	report := newReport()

	text, stripped := stripControlChars(text)
	report.add("control_chars_stripped", stripped)

	if cfg.NBSPHandling == "space" {
		n := strings.Count(text, nbsp)
		text = strings.ReplaceAll(text, nbsp, " ")
		report.add("nbsp_converted_to_space", n)
	}

	text, punctReport := standardizePunctuation(text, cfg)
	report.merge(punctReport)

	text, joined := joinSpacedLetters(text)
	report.add("spaced_letters_joined", joined)

	text, healed := healHyphenation(text)
	report.add("hyphenation_healed", healed)

	return text, report
}

func stripControlChars(text string) (string, int) {
	var b strings.Builder
	count := 0
	for _, r := range text {
		if zeroWidthChars[r] || bidiControls[r] || r == softHyphen {
			count++
			continue
		}
		b.WriteRune(r)
	}
	return b.String(), count
}

func standardizePunctuation(text string, cfg BasicConfig) (string, *Report) {
	report := newReport()
	if !cfg.NormalizePunctuation {
		return text, report
	}

	if n := ellipsisRe.FindAllStringIndex(text, -1); len(n) > 0 {
		text = ellipsisRe.ReplaceAllString(text, "...")
		report.add("ellipsis_normalized", len(n))
	}

	if cfg.QuotesPolicy == "straight" {
		for curly, straight := range curlyQuoteMap {
			if c := strings.Count(text, curly); c > 0 {
				text = strings.ReplaceAll(text, curly, straight)
				report.add("quotes_straightened", c)
			}
		}
	}

	switch cfg.DashesPolicy {
	case "em":
		for _, d := range []string{"–", "―"} {
			if c := strings.Count(text, d); c > 0 {
				text = strings.ReplaceAll(text, d, "—")
				report.add("dashes_normalized", c)
			}
		}
	case "en":
		for _, d := range []string{"—", "―"} {
			if c := strings.Count(text, d); c > 0 {
				text = strings.ReplaceAll(text, d, "–")
				report.add("dashes_normalized", c)
			}
		}
	case "hyphen":
		for _, d := range emDashChars {
			if c := strings.Count(text, d); c > 0 {
				text = strings.ReplaceAll(text, d, "-")
				report.add("dashes_normalized", c)
			}
		}
	}

	return text, report
}

// joinSpacedLetters collapses runs of letter-space-letter-... sequences
// ("T T S" -> "TTS") used to defeat naive TTS pronunciation. A run of
// exactly 3 letters separated only by plain spaces is left alone, since
// that shape is indistinguishable from ordinary short words.
func joinSpacedLetters(text string) (string, int) {
	count := 0
	out := spacedLettersRe.ReplaceAllStringFunc(text, func(match string) string {
		letters := lettersOnlyRe.FindAllString(match, -1)
		if len(letters) < 3 {
			return match
		}
		onlyPlainSpaces := !strings.ContainsAny(match, ".,")
		if onlyPlainSpaces && len(letters) < 4 {
			return match
		}
		count++
		return strings.Join(letters, "")
	})
	return out, count
}

func healHyphenation(text string) (string, int) {
	count := 0
	out := hyphenationRe.ReplaceAllStringFunc(text, func(match string) string {
		count++
		groups := hyphenationRe.FindStringSubmatch(match)
		return groups[1] + groups[2]
	})
	return out, count
}
