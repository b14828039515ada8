// Package markdown implements the mask adapter: it partitions a Markdown
// document into protected spans (code, links, math, html) and editable
// text spans, and provides the sentinel substitution that lets every later
// pipeline stage operate on prose without ever touching protected content.
package markdown

import (
	"sort"

	"github.com/mdproof/mdp/internal/matcher"
)

// Kind identifies the category of a protected span.
type Kind string

const (
	KindCodeFence   Kind = "CODE_FENCE"
	KindInlineCode  Kind = "INLINE_CODE"
	KindHTMLBlock   Kind = "HTML_BLOCK"
	KindLinkURL     Kind = "LINK_URL"
	KindImageURL    Kind = "IMAGE_URL"
	KindAutolink    Kind = "AUTOLINK"
	KindMathBlock   Kind = "MATH_BLOCK"
	KindInlineMath  Kind = "INLINE_MATH"
)

// protectedPatterns lists, in the priority order used to break ties when
// two patterns match the same region (earlier wins), the matcher.Matcher
// backing each protected-span kind. Every kind is matched through the
// matcher.Matcher interface, so a future non-regex detector (e.g. a proper HTML tokenizer) can replace
// one entry without touching findProtectedSpans itself. Code fences are
// matched before inline code so a fence's backticks are never re-matched
// as an inline span.
var protectedPatterns = []struct {
	kind Kind
	m    matcher.Matcher
}{
	{KindCodeFence, mustRegexMatcher("(?s)```.*?```|~~~.*?~~~")},
	{KindMathBlock, mustRegexMatcher(`(?s)\$\$.*?\$\$`)},
	{KindHTMLBlock, mustRegexMatcher(`(?s)<[a-zA-Z!][^>]*>.*?</[a-zA-Z]+>|<[a-zA-Z!][^>]*/?>`)},
	{KindInlineCode, mustRegexMatcher("`[^`\n]+`")},
	{KindImageURL, mustRegexGroupMatcher(`!\[[^\]]*\]\(([^)]+)\)`, 1)},
	{KindLinkURL, mustRegexGroupMatcher(`\[[^\]]*\]\(([^)]+)\)`, 1)},
	{KindAutolink, mustRegexMatcher(`<(?:https?://|mailto:)[^>\s]+>`)},
	{KindInlineMath, mustRegexMatcher(`\$[^$\n]+\$`)},
}

func mustRegexMatcher(pattern string) matcher.Matcher {
	m, err := matcher.NewRegex(pattern)
	if err != nil {
		panic(err)
	}
	return m
}

// mustRegexGroupMatcher masks only the captured URL, not the surrounding
// `[text](...)`/`![alt](...)` markup — mirroring the Python adapter's
// match.start(1)/match.end(1) masking for LINK_URL and IMAGE_URL, so the
// link text and brackets stay visible to the Scrubber's link-density and
// link-farm detection instead of disappearing behind a sentinel first.
func mustRegexGroupMatcher(pattern string, group int) matcher.Matcher {
	m, err := matcher.NewRegexGroup(pattern, group)
	if err != nil {
		panic(err)
	}
	return m
}

// Span is a byte range [Start, End) in the original document, tagged with
// the protected Kind it belongs to.
type Span struct {
	Kind  Kind
	Start int
	End   int
}

func (s Span) overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// findProtectedSpans scans doc for every protected-span pattern and
// resolves overlaps by keeping the earliest-starting, then longest, match
// — mirroring the Python adapter's sort-then-first-winner filter.
func findProtectedSpans(doc string) []Span {
	var all []Span
	src := []byte(doc)
	for _, p := range protectedPatterns {
		// LINK_URL's pattern also matches the "[alt](url)" tail of an
		// IMAGE_URL match, but both now report only the URL capture
		// group, so they produce the identical span for the same image.
		// protectedPatterns lists KindImageURL first, and SliceStable
		// below preserves that as the tie-breaker, so KindImageURL wins.
		matches, err := p.m.Find(src)
		if err != nil {
			continue
		}
		for _, r := range matches {
			all = append(all, Span{Kind: p.kind, Start: r.Start, End: r.End})
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Start != all[j].Start {
			return all[i].Start < all[j].Start
		}
		return all[i].End-all[i].Start > all[j].End-all[j].Start
	})
	var kept []Span
	for _, s := range all {
		overlap := false
		for _, k := range kept {
			if s.overlaps(k) {
				overlap = true
				break
			}
		}
		if !overlap {
			kept = append(kept, s)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })
	return kept
}

// TextSpan is an editable region of the document, i.e. the complement of
// the protected spans. Whitespace-only spans are retained for document
// reconstruction but excluded from text extracted for downstream prose
// stages by ExtractTextSpans.
type TextSpan struct {
	Start int
	End   int
	Text  string
}

// ExtractTextSpans returns every gap between protected spans, in document
// order, skipping spans that are empty or contain only whitespace.
func ExtractTextSpans(doc string) []TextSpan {
	protected := findProtectedSpans(doc)
	var spans []TextSpan
	cursor := 0
	emit := func(start, end int) {
		if start >= end {
			return
		}
		text := doc[start:end]
		if isBlank(text) {
			return
		}
		spans = append(spans, TextSpan{Start: start, End: end, Text: text})
	}
	for _, p := range protected {
		emit(cursor, p.Start)
		cursor = p.End
	}
	emit(cursor, len(doc))
	return spans
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
