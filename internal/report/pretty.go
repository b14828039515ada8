package report

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mdproof/mdp/internal/util"
)

func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	base := filepath.Base(path)
	dir := filepath.Dir(path)
	parts := strings.Split(dir, string(filepath.Separator))

	kept := base
	for i := len(parts) - 1; i >= 0; i-- {
		candidate := filepath.Join(parts[i], kept)
		if len(candidate) > maxLen {
			break
		}
		kept = candidate
	}
	if len(kept) >= len(path) {
		return path
	}
	if len(kept)+4 > maxLen {
		if len(base)+4 <= maxLen {
			return ".../" + base
		}
		return base[:maxLen-3] + "..."
	}
	return ".../" + kept
}

// indentLines prefixes every line of text with prefix, used to nest a
// stage's unified diff under its bullet in the stage list.
func indentLines(text, prefix string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n") + "\n"
}

func formatPercentage(value float64) string {
	sign := "+"
	if value < 0 {
		sign = ""
	}
	return fmt.Sprintf("%s%.2f%%", sign, value*100)
}

func formatDuration(d float64) string {
	switch {
	case d < 1:
		return fmt.Sprintf("%.0fms", d*1000)
	case d < 60:
		return fmt.Sprintf("%.2fs", d)
	default:
		m := int(d) / 60
		s := d - float64(m*60)
		return fmt.Sprintf("%dm%.1fs", m, s)
	}
}

func renderSectionHeader(title string, width int) string {
	if width <= 0 {
		width = 100
	}
	border := strings.Repeat("=", width)
	pad := (width - len(title)) / 2
	if pad < 0 {
		pad = 0
	}
	centered := strings.Repeat(" ", pad) + title
	return border + "\n" + centered + "\n" + border
}

func renderKVTable(items [][2]string, indent string) string {
	maxKey := 0
	for _, kv := range items {
		if len(kv[0]) > maxKey {
			maxKey = len(kv[0])
		}
	}
	var b strings.Builder
	for _, kv := range items {
		b.WriteString(fmt.Sprintf("%s%-*s  %s\n", indent, maxKey, kv[0], kv[1]))
	}
	return b.String()
}

func renderRejectionsTable(rejections []Rejection, indent string) string {
	filtered := make([]Rejection, 0, len(rejections))
	for _, r := range rejections {
		if r.Count > 0 {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) == 0 {
		return indent + "(none)\n"
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Count > filtered[j].Count })

	var rows [][2]string
	for _, r := range filtered {
		rows = append(rows, [2]string{r.Reason, fmt.Sprintf("%d", r.Count)})
	}
	return renderKVTable(rows, indent)
}

// RenderPretty renders a Run as the human-readable CLI report.
func RenderPretty(r Run) string {
	var b strings.Builder
	b.WriteString(renderSectionHeader("mdp run report", 80))
	b.WriteString("\n\n")

	b.WriteString(renderKVTable([][2]string{
		{"document", truncatePath(r.Document, 60)},
		{"duration", formatDuration(r.Duration.Seconds())},
		{"exit_code", fmt.Sprintf("%d", r.ExitCode)},
		{"length_delta", formatPercentage(r.GrowthRatio())},
		{"post_check", fmt.Sprintf("%v", r.PostCheckOK)},
		{"hazard_spans_protected", fmt.Sprintf("%d", r.HazardSpans)},
	}, "  "))

	b.WriteString("\nstages:\n")
	prevSnapshot := r.OriginalSnapshot
	for _, s := range r.Stages {
		b.WriteString(fmt.Sprintf("  - %s (%s): %d -> %d chars\n", s.Name, formatDuration(float64(s.DurationMs)/1000), s.InputChars, s.OutputChars))
		if s.Snapshot != "" {
			if diff := util.UnifiedDiff(prevSnapshot, s.Snapshot, s.Name, 2, false); diff != "" {
				b.WriteString(indentLines(diff, "      "))
			}
			prevSnapshot = s.Snapshot
		}
	}

	b.WriteString("\nrejections:\n")
	b.WriteString(renderRejectionsTable(r.Rejections, "  "))

	if !r.PostCheckOK {
		b.WriteString("\npost-check errors:\n")
		for _, e := range r.PostCheckErrors {
			b.WriteString("  - " + e + "\n")
		}
	}

	return b.String()
}
