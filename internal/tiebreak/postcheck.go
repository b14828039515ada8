package tiebreak

import "strings"

// PostCheckResult reports whether a final document passed the audit and,
// if not, why.
type PostCheckResult struct {
	OK     bool
	Errors []string
}

func checkBackticks(text string) string {
	if strings.Count(text, "```")%2 != 0 {
		return "unbalanced_code_fences"
	}
	return ""
}

func checkBrackets(text string) string {
	var stack []rune
	pairs := map[rune]rune{')': '(', ']': '[', '}': '{'}
	for _, r := range text {
		switch r {
		case '(', '[', '{':
			stack = append(stack, r)
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != pairs[r] {
				return "unbalanced_brackets"
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) != 0 {
		return "unbalanced_brackets"
	}
	return ""
}

// PostCheck runs the final hazard/structural audit on text before it is
// unmasked: any surviving hazard span, unbalanced code fence, or
// unbalanced bracket fails the run.
func PostCheck(text string, acronyms map[string]bool) PostCheckResult {
	var errs []string

	if hazards := DetectHazards(text, acronyms); len(hazards) > 0 {
		errs = append(errs, "hazard_spans_remaining")
	}
	if reason := checkBackticks(text); reason != "" {
		errs = append(errs, reason)
	}
	if reason := checkBrackets(text); reason != "" {
		errs = append(errs, reason)
	}

	return PostCheckResult{OK: len(errs) == 0, Errors: errs}
}
