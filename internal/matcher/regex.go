package matcher

import "regexp"

// RegexMatcher implements Matcher using a compiled *regexp.Regexp. By
// default it reports the whole match (group 0); NewRegexGroup reports a
// specific capture group's span instead, for patterns where the match as
// a whole is wider than the region that should actually be treated as a
// found span (e.g. a link's surrounding `[text](...)` versus just its URL).
type RegexMatcher struct {
	re    *regexp.Regexp
	group int
}

// NewRegex returns a RegexMatcher with the given pattern already compiled,
// reporting the whole match span. Caller is responsible for adding flags
// like (?m) or (?s) beforehand.
func NewRegex(pattern string) (*RegexMatcher, error) {
	return NewRegexGroup(pattern, 0)
}

// NewRegexGroup is like NewRegex but reports the span of capture group
// group instead of the whole match. group must be 0 (whole match) or a
// group that always participates in every match the pattern produces.
func NewRegexGroup(pattern string, group int) (*RegexMatcher, error) {
	r, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &RegexMatcher{re: r, group: group}, nil
}

// Find returns all match spans for the compiled expression, narrowed to
// r.group when it is non-zero.
func (r *RegexMatcher) Find(src []byte) ([]Result, error) {
	idx := r.re.FindAllSubmatchIndex(src, -1)
	out := make([]Result, 0, len(idx))
	for _, m := range idx {
		lo, hi := m[2*r.group], m[2*r.group+1]
		if lo < 0 || hi < 0 {
			continue
		}
		out = append(out, Result{Start: lo, End: hi})
	}
	return out, nil
}
