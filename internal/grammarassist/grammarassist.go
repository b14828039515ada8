// Package grammarassist applies suggestions from a deterministic external
// grammar engine, restricted to a whitelist of semantically-safe categories
// and reverted atomically if the result fails structural validation.
package grammarassist

import (
	"sort"
	"strings"

	"github.com/mdproof/mdp/internal/markdown"
)

// Category is one kind of grammar-engine suggestion.
type Category string

const (
	CategoryTypos       Category = "TYPOS"
	CategoryPunctuation Category = "PUNCTUATION"
	CategoryCasing      Category = "CASING"
	CategorySpacing     Category = "SPACING"
	CategoryAgreement   Category = "SIMPLE_AGREEMENT"
)

var safeCategories = map[Category]bool{
	CategoryTypos:       true,
	CategoryPunctuation: true,
	CategoryCasing:      true,
	CategorySpacing:     true,
	CategoryAgreement:   true,
}

// Suggestion is one correction proposed by an external grammar engine.
type Suggestion struct {
	Offset      int
	Length      int
	Replacement string
	Category    Category
	Message     string
}

// Engine is the contract a deterministic external grammar checker must
// satisfy. languagetool.go provides one implementation (NewLanguageTool);
// callers may wire any other checker behind this interface.
type Engine interface {
	Check(text string) ([]Suggestion, error)
}

// Report summarizes one Grammar Assist pass.
type Report struct {
	Proposed        int
	FilteredUnsafe  int
	FilteredMasked  int
	Applied         int
	RevertedInvalid bool
}

func (s Suggestion) end() int { return s.Offset + s.Length }

func filterSafe(suggestions []Suggestion, report *Report) []Suggestion {
	var out []Suggestion
	for _, s := range suggestions {
		if !safeCategories[s.Category] {
			report.FilteredUnsafe++
			continue
		}
		out = append(out, s)
	}
	return out
}

func filterMaskIntersections(suggestions []Suggestion, table *markdown.MaskTable, masked string, report *Report) []Suggestion {
	if table == nil || table.Len() == 0 {
		return suggestions
	}
	var out []Suggestion
	for _, s := range suggestions {
		hit := false
		for _, e := range table.Entries() {
			i := strings.Index(masked, e.Sentinel)
			hit = hit || (i >= 0 && s.Offset < i+len(e.Sentinel) && i < s.end())
		}
		if hit {
			report.FilteredMasked++
			continue
		}
		out = append(out, s)
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// applyReverseOrder applies survivors in descending offset order so that
// earlier, unapplied suggestions keep valid offsets.
func applyReverseOrder(text string, suggestions []Suggestion) (string, int) {
	sorted := make([]Suggestion, len(suggestions))
	copy(sorted, suggestions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset > sorted[j].Offset })

	applied := 0
	out := text
	for _, s := range sorted {
		start := clamp(s.Offset, 0, len(out))
		end := clamp(s.end(), 0, len(out))
		if start >= end {
			continue
		}
		out = out[:start] + s.Replacement + out[end:]
		applied++
	}
	return out, applied
}

// Validator is the subset of the Structural Validator needed here, kept as
// an interface so this package does not import internal/validator directly
// and create a cycle; internal/pipeline wires the real implementation.
type Validator func(before, after string) bool

// Assist runs one Grammar Assist pass: fetch suggestions, filter to the
// safe-category whitelist, drop any that intersect a mask sentinel, apply
// survivors in reverse offset order, and revert atomically on validation
// failure.
func Assist(engine Engine, masked string, table *markdown.MaskTable, validate Validator) (string, Report) {
	report := Report{}
	if engine == nil {
		return masked, report
	}

	suggestions, err := engine.Check(masked)
	if err != nil {
		return masked, report
	}
	report.Proposed = len(suggestions)

	suggestions = filterSafe(suggestions, &report)
	suggestions = filterMaskIntersections(suggestions, table, masked, &report)

	result, applied := applyReverseOrder(masked, suggestions)
	report.Applied = applied

	if validate != nil && !validate(masked, result) {
		report.RevertedInvalid = true
		return masked, report
	}
	return result, report
}

// NormalizeCategory maps a free-form category string from an external
// engine onto the fixed Category enum, defaulting to an unsafe sentinel
// that Assist will filter out.
func NormalizeCategory(raw string) Category {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	switch Category(upper) {
	case CategoryTypos, CategoryPunctuation, CategoryCasing, CategorySpacing, CategoryAgreement:
		return Category(upper)
	default:
		return Category("UNSAFE_" + upper)
	}
}
