// Package applier finds and applies the literal find/replace edits a
// Detector plan proposes, deterministically and without overlap.
package applier

import (
	"strings"

	"github.com/mdproof/mdp/internal/detector"
)

// Match is one located occurrence of a plan Item within a node's text.
type Match struct {
	Find      string
	Replace   string
	Reason    string
	Offset    int
	NodeIndex int
}

// EndOffset returns the exclusive end of the match.
func (m Match) EndOffset() int { return m.Offset + len(m.Find) }

// Overlaps reports whether m and o cover any common byte.
func (m Match) Overlaps(o Match) bool {
	return m.Offset < o.EndOffset() && o.Offset < m.EndOffset()
}

// FindAllMatches scans text left to right for every non-overlapping
// occurrence of each plan item's Find string, advancing the scan cursor
// past each match so the same occurrence is never claimed twice.
func FindAllMatches(text string, plan detector.Plan, nodeIndex int) []Match {
	var matches []Match
	for _, item := range plan.Items {
		if item.Find == "" {
			continue
		}
		cursor := 0
		for {
			idx := strings.Index(text[cursor:], item.Find)
			if idx < 0 {
				break
			}
			offset := cursor + idx
			matches = append(matches, Match{
				Find:      item.Find,
				Replace:   item.Replace,
				Reason:    item.Reason,
				Offset:    offset,
				NodeIndex: nodeIndex,
			})
			cursor = offset + len(item.Find)
		}
	}
	return matches
}

// SortMatches orders matches by (NodeIndex asc, Offset asc, length desc),
// the maximal-munch tie-break order used before overlap resolution.
func SortMatches(matches []Match) []Match {
	out := append([]Match(nil), matches...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0; j-- {
			a, b := out[j-1], out[j]
			if less(b, a) {
				out[j-1], out[j] = out[j], out[j-1]
			} else {
				break
			}
		}
	}
	return out
}

func less(a, b Match) bool {
	if a.NodeIndex != b.NodeIndex {
		return a.NodeIndex < b.NodeIndex
	}
	if a.Offset != b.Offset {
		return a.Offset < b.Offset
	}
	return len(a.Find) > len(b.Find)
}

// RemoveOverlapping keeps the first match (by sort order) among any group
// of mutually overlapping matches, returning the surviving matches and a
// count of how many were dropped.
func RemoveOverlapping(matches []Match) ([]Match, int) {
	sorted := SortMatches(matches)
	var kept []Match
	removed := 0
	for _, m := range sorted {
		conflict := false
		for _, k := range kept {
			if k.NodeIndex == m.NodeIndex && k.Overlaps(m) {
				conflict = true
				break
			}
		}
		if conflict {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	return kept, removed
}
