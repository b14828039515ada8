// Package scrubber removes boilerplate blocks (author notes, navigation,
// promos, watermarks, link farms) from a document before prose stages run,
// biased toward keeping anything that isn't clearly boilerplate.
package scrubber

import (
	"fmt"
	"regexp"
	"strings"
	"text/tabwriter"

	"github.com/mdproof/mdp/internal/util"
)

// Category classifies why a block was flagged for removal.
type Category string

const (
	CategoryNotes      Category = "notes"
	CategoryNavigation Category = "navigation"
	CategoryPromo      Category = "promo"
	CategoryWatermark  Category = "watermark"
	CategoryLinkFarm   Category = "link_farm"
)

// Candidate is a block flagged as likely boilerplate.
type Candidate struct {
	BlockID    int
	Category   Category
	Reason     string
	Content    string
	Position   string // "edge-top" | "edge-bottom" | "middle"
	Confidence float64
}

// Config controls scrubbing behavior.
type Config struct {
	Enabled             bool
	HeadingsKeep        []string
	EdgeBlockWindow     int
	LinkDensityThresh   float64
}

// DefaultConfig mirrors the Python scrubber's defaults.
func DefaultConfig() Config {
	return Config{
		Enabled:           true,
		EdgeBlockWindow:   6,
		LinkDensityThresh: 0.50,
	}
}

var blankLinesRe = regexp.MustCompile(`\n\n+`)

var (
	noteKeywords = map[string][]string{
		"translator's note": {"translator's note", "translator note"},
		"editor's note":     {"editor's note", "editor note"},
		"author's note":     {"author's note", "author note"},
	}
	navKeywords = []string{
		"next chapter", "previous chapter", "table of contents",
		"back to top", "next page", "previous page",
	}
	promoKeywords = []string{
		"subscribe", "follow us", "like and share", "patreon",
		"buy me a coffee", "sponsored by", "advertisement",
	}
	watermarkKeywords = []string{
		"all rights reserved", "unauthorized reproduction", "this translation belongs to",
	}
	linkRe = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
)

// Report summarizes a scrub pass.
type Report struct {
	TotalBlocks     int
	BlocksToRemove  int
	BlocksToKeep    int
	KeptMiddleBias  int
	ByCategory      map[Category]int
}

// Counts flattens the report into a string-keyed map for the pipeline's
// generic per-stage telemetry.
func (r *Report) Counts() map[string]int {
	out := map[string]int{
		"total_blocks":     r.TotalBlocks,
		"blocks_removed":   r.BlocksToRemove,
		"blocks_kept":      r.BlocksToKeep,
		"kept_middle_bias": r.KeptMiddleBias,
	}
	for cat, n := range r.ByCategory {
		out["category_"+string(cat)] = n
	}
	return out
}

func splitIntoBlocks(text string) []string {
	parts := blankLinesRe.Split(text, -1)
	var out []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

func linkDensity(block string) float64 {
	matches := linkRe.FindAllStringSubmatch(block, -1)
	linkChars := 0
	for _, m := range matches {
		linkChars += len(m[1])
	}
	nonWS := 0
	for _, r := range linkRe.ReplaceAllString(block, "$1") {
		if !strings.ContainsRune(" \t\n\r", r) {
			nonWS++
		}
	}
	if nonWS == 0 {
		return 0
	}
	return float64(linkChars) / float64(nonWS)
}

func countLinks(block string) int {
	return len(linkRe.FindAllString(block, -1))
}

// containsAny matches needles against a whitespace-normalized, lowercased
// copy of haystack: scraped TTS source routinely mangles spacing inside
// boilerplate phrases ("follow   us", "subscribe\nnow"), and a plain
// strings.Contains would miss those runs.
func containsAny(haystack string, needles []string) (string, bool) {
	normalized, _, _ := util.NormalizeWhitespace(strings.ToLower(haystack))
	for _, n := range needles {
		if strings.Contains(normalized, n) {
			return n, true
		}
	}
	return "", false
}

func detectCategory(block string, blockID int, position string, cfg Config) *Candidate {
	lower := strings.ToLower(block)
	for _, heading := range cfg.HeadingsKeep {
		if strings.Contains(lower, strings.ToLower(heading)) {
			return nil
		}
	}

	for label, keywords := range noteKeywords {
		if kw, ok := containsAny(block, keywords); ok {
			return &Candidate{BlockID: blockID, Category: CategoryNotes, Reason: label + ":" + kw, Content: block, Position: position, Confidence: 0.9}
		}
	}
	if kw, ok := containsAny(block, navKeywords); ok {
		return &Candidate{BlockID: blockID, Category: CategoryNavigation, Reason: kw, Content: block, Position: position, Confidence: 0.85}
	}
	if kw, ok := containsAny(block, promoKeywords); ok {
		return &Candidate{BlockID: blockID, Category: CategoryPromo, Reason: kw, Content: block, Position: position, Confidence: 0.8}
	}
	if kw, ok := containsAny(block, watermarkKeywords); ok {
		return &Candidate{BlockID: blockID, Category: CategoryWatermark, Reason: kw, Content: block, Position: position, Confidence: 0.75}
	}
	if density := linkDensity(block); density >= cfg.LinkDensityThresh && countLinks(block) >= 2 {
		return &Candidate{BlockID: blockID, Category: CategoryLinkFarm, Reason: "link_density", Content: block, Position: position, Confidence: 0.7}
	}
	return nil
}

func blockPosition(idx, total, window int) string {
	if idx < window {
		return "edge-top"
	}
	if idx >= total-window {
		return "edge-bottom"
	}
	return "middle"
}

// Scrub removes boilerplate blocks from text. Candidates found in the
// document's middle with confidence below 0.95 are kept anyway (the edge
// bias): boilerplate reliably clusters at document edges, so a mid-document
// match is more likely a false positive than a true navigation/promo block.
func Scrub(text string, cfg Config) (string, []Candidate, *Report) {
	report := &Report{ByCategory: map[Category]int{}}
	if !cfg.Enabled {
		return text, nil, report
	}

	blocks := splitIntoBlocks(text)
	report.TotalBlocks = len(blocks)

	var kept []string
	var candidates []Candidate
	for i, block := range blocks {
		pos := blockPosition(i, len(blocks), cfg.EdgeBlockWindow)
		cand := detectCategory(block, i, pos, cfg)
		if cand == nil {
			kept = append(kept, block)
			continue
		}
		if pos == "middle" && cand.Confidence < 0.95 {
			report.KeptMiddleBias++
			kept = append(kept, block)
			continue
		}
		candidates = append(candidates, *cand)
		report.ByCategory[cand.Category]++
	}

	report.BlocksToRemove = len(candidates)
	report.BlocksToKeep = len(kept)
	return strings.Join(kept, "\n\n"), candidates, report
}

// FormatDryRunTable renders the blocks Scrub would have removed as a table,
// for --scrub-dry-run: one line per candidate, with enough of its content to
// identify the block without printing the whole thing.
func FormatDryRunTable(candidates []Candidate) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "BLOCK\tCATEGORY\tPOSITION\tCONFIDENCE\tREASON\tPREVIEW")
	for _, c := range candidates {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%s\t%s\n",
			c.BlockID, c.Category, c.Position, c.Confidence, c.Reason, previewLine(c.Content))
	}
	w.Flush()
	return b.String()
}

func previewLine(content string) string {
	line := strings.TrimSpace(strings.SplitN(content, "\n", 2)[0])
	const maxLen = 60
	if len(line) > maxLen {
		return line[:maxLen] + "..."
	}
	return line
}
