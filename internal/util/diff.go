package util

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const (
	colorReset = "\x1b[0m"
	colorRed   = "\x1b[31m"
	colorGreen = "\x1b[32m"
	colorCyan  = "\x1b[36m"
)

// UnifiedDiff renders a unified diff between orig and mod using
// pmezard/go-difflib (the same library Tie-Breaker uses for its opcode
// merge), optionally ANSI-colored for interactive terminals — used by
// `mdp run --diff` and Report/Pretty's diff preview.
func UnifiedDiff(orig, mod, filename string, context int, color bool) string {
	if orig == mod {
		return ""
	}
	d := difflib.UnifiedDiff{
		A:        difflib.SplitLines(orig),
		B:        difflib.SplitLines(mod),
		FromFile: filename,
		ToFile:   filename + " (modified)",
		Context:  context,
	}
	text, err := difflib.GetUnifiedDiffString(d)
	if err != nil {
		return "(diff error: " + err.Error() + ")"
	}

	if !color {
		return text
	}

	var sb strings.Builder
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		if i == len(lines)-1 && l == "" {
			continue
		}
		switch {
		case strings.HasPrefix(l, "+"):
			sb.WriteString(colorGreen + l + colorReset + "\n")
		case strings.HasPrefix(l, "-"):
			sb.WriteString(colorRed + l + colorReset + "\n")
		case strings.HasPrefix(l, "@"):
			sb.WriteString(colorCyan + l + colorReset + "\n")
		default:
			sb.WriteString(l + "\n")
		}
	}
	return sb.String()
}
