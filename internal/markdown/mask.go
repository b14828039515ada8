package markdown

import (
	"fmt"
	"sort"
	"strings"
)

// MaskEntry records what a single sentinel stands for.
type MaskEntry struct {
	Sentinel string
	Kind     Kind
	Content  string
}

// MaskTable maps every sentinel inserted into a masked document back to
// the original protected content it replaced. Entries preserve insertion
// order so Unmask can apply the longest-sentinel-first rule deterministically.
type MaskTable struct {
	entries []MaskEntry
}

// Entries returns the table's entries in insertion order.
func (t *MaskTable) Entries() []MaskEntry {
	return append([]MaskEntry(nil), t.entries...)
}

// Len reports how many spans were masked.
func (t *MaskTable) Len() int { return len(t.entries) }

func sentinel(kind Kind, index int) string {
	return fmt.Sprintf("{{MASK_%s_%d}}", kind, index)
}

// MaskProtected replaces every protected span in doc with a sentinel and
// returns the masked document alongside the table needed to reverse it.
// The round-trip law Unmask(MaskProtected(d)) == d holds for any doc.
func MaskProtected(doc string) (string, *MaskTable) {
	spans := findProtectedSpans(doc)
	table := &MaskTable{}
	if len(spans) == 0 {
		return doc, table
	}

	counters := map[Kind]int{}
	var b strings.Builder
	cursor := 0
	for _, s := range spans {
		b.WriteString(doc[cursor:s.Start])
		idx := counters[s.Kind]
		counters[s.Kind] = idx + 1
		sent := sentinel(s.Kind, idx)
		table.entries = append(table.entries, MaskEntry{
			Sentinel: sent,
			Kind:     s.Kind,
			Content:  doc[s.Start:s.End],
		})
		b.WriteString(sent)
		cursor = s.End
	}
	b.WriteString(doc[cursor:])
	return b.String(), table
}

// Unmask restores every sentinel in masked to its original content. Longer
// sentinels are replaced first so that no sentinel is accidentally matched
// as a prefix of another (e.g. MASK_INLINE_CODE_1 vs MASK_INLINE_CODE_10).
func Unmask(masked string, table *MaskTable) string {
	if table == nil || len(table.entries) == 0 {
		return masked
	}
	entries := table.Entries()
	sort.Slice(entries, func(i, j int) bool {
		return len(entries[i].Sentinel) > len(entries[j].Sentinel)
	})
	out := masked
	for _, e := range entries {
		out = strings.ReplaceAll(out, e.Sentinel, e.Content)
	}
	return out
}

// ContainsSentinel reports whether s contains any MASK_<KIND>_<N> token,
// used by the Fixer to pass spans that hold a masked region through
// unchanged.
func ContainsSentinel(s string) bool {
	return strings.Contains(s, "{{MASK_")
}

// CountSentinels counts all well-formed mask sentinels appearing in s,
// used by the mask-parity structural validator.
func CountSentinels(s string) int {
	count := 0
	rest := s
	for {
		i := strings.Index(rest, "{{MASK_")
		if i < 0 {
			break
		}
		j := strings.Index(rest[i:], "}}")
		if j < 0 {
			break
		}
		count++
		rest = rest[i+j+2:]
	}
	return count
}
