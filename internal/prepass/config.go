// Package prepass implements the two deterministic normalization stages
// that run before any LLM is consulted: Pre-pass Basic (control-character
// and encoding cleanup) and Pre-pass Advanced (casing, punctuation, units,
// and footnote normalization).
package prepass

// BasicConfig controls Pre-pass Basic.
type BasicConfig struct {
	NormalizePunctuation bool
	QuotesPolicy         string // "straight" | "curly"
	DashesPolicy         string // "em" | "en" | "hyphen"
	NBSPHandling         string // "space" | "keep"
}

// DefaultBasicConfig mirrors mdp's DEFAULT_CONFIG.
func DefaultBasicConfig() BasicConfig {
	return BasicConfig{
		NormalizePunctuation: true,
		QuotesPolicy:         "straight",
		DashesPolicy:         "em",
		NBSPHandling:         "space",
	}
}

// AdvancedConfig controls Pre-pass Advanced.
type AdvancedConfig struct {
	NormalizeShouting bool
	ShoutingMinLen    int
	AcronymWhitelist  map[string]bool
	ProtectedLexicon  map[string]bool

	CollapseRuns bool
	RunsPolicy   string // "first-only" | "first-of-each"

	Ellipsis string // "three-dots" | "unicode"
	Quotes   string // "straight" | "curly"

	SpaceAfterSentence string // "single" | "double"

	JoinPercent    bool
	SpaceBeforeUnit string // "none" | "normal" | "nbsp"

	TimeStyle string // "p.m." | "PM" | "pm"

	RemoveInlineMarkers bool

	Enabled bool
}

// DefaultAdvancedConfig mirrors the defaults implied by mdp/prepass_advanced.py.
func DefaultAdvancedConfig() AdvancedConfig {
	return AdvancedConfig{
		NormalizeShouting:   true,
		ShoutingMinLen:      4,
		AcronymWhitelist:    map[string]bool{},
		ProtectedLexicon:    map[string]bool{},
		CollapseRuns:        true,
		RunsPolicy:          "first-only",
		Ellipsis:            "three-dots",
		Quotes:              "straight",
		SpaceAfterSentence:  "single",
		JoinPercent:         true,
		SpaceBeforeUnit:     "normal",
		TimeStyle:           "pm",
		RemoveInlineMarkers: true,
		Enabled:             true,
	}
}

// Report tallies how many transformations of each kind were applied,
// mirroring the Python passes' dict-of-counters report.
type Report struct {
	Counts map[string]int
}

func newReport() *Report {
	return &Report{Counts: map[string]int{}}
}

func (r *Report) add(key string, n int) {
	if n == 0 {
		return
	}
	r.Counts[key] += n
}

func (r *Report) merge(other *Report) {
	for k, v := range other.Counts {
		r.add(k, v)
	}
}
