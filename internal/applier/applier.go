package applier

import (
	"strings"

	"github.com/mdproof/mdp/internal/detector"
)

// Report summarizes one apply pass over a single node's text.
type Report struct {
	ReplacementsApplied int
	SkippedOverlap      int
	SkippedNoMatch      int
	GrowthRatio         float64
}

// ApplyMatchesToText stitches text together from non-overlapping matches,
// applying each replacement in offset order via a moving cursor.
func ApplyMatchesToText(text string, matches []Match) string {
	kept, _ := RemoveOverlapping(matches)
	ordered := SortMatches(kept)

	var b strings.Builder
	cursor := 0
	for _, m := range ordered {
		if m.Offset < cursor {
			continue
		}
		b.WriteString(text[cursor:m.Offset])
		b.WriteString(m.Replace)
		cursor = m.EndOffset()
	}
	b.WriteString(text[cursor:])
	return b.String()
}

// ApplyPlanToText is the single-node convenience entry point: it finds
// every match for plan within text, applies the non-overlapping subset,
// and returns the result alongside a Report describing what happened.
func ApplyPlanToText(text string, plan detector.Plan) (string, Report) {
	matches := FindAllMatches(text, plan, 0)

	noMatchCount := 0
	for _, item := range plan.Items {
		if !strings.Contains(text, item.Find) {
			noMatchCount++
		}
	}

	kept, removedOverlap := RemoveOverlapping(matches)
	result := ApplyMatchesToText(text, matches)

	report := Report{
		ReplacementsApplied: len(kept),
		SkippedOverlap:      removedOverlap,
		SkippedNoMatch:      noMatchCount,
	}
	if len(text) > 0 {
		report.GrowthRatio = float64(len(result)-len(text)) / float64(len(text))
	}
	return result, report
}

// CheckIdempotence reports whether re-applying the same plan to an
// already-applied result produces no further change — a structural
// property every applier run must satisfy once a plan contains no more
// matching occurrences.
func CheckIdempotence(original string, plan detector.Plan) bool {
	once, _ := ApplyPlanToText(original, plan)
	twice, _ := ApplyPlanToText(once, plan)
	return once == twice
}
