// Package report defines the per-run telemetry structure every pipeline
// invocation produces, and renders it either as JSON or as a human-
// readable summary.
package report

import "time"

// StageResult records what one pipeline stage did to the document.
type StageResult struct {
	Name        string         `json:"name"`
	DurationMs  int64          `json:"duration_ms"`
	InputChars  int            `json:"input_chars"`
	OutputChars int            `json:"output_chars"`
	Counts      map[string]int `json:"counts,omitempty"`
	// Snapshot holds the document text as it stood right after this stage
	// ran. Only populated when the run requested per-stage retention.
	Snapshot string `json:"-"`
}

// Rejection tallies how many times a given Structural Validator check
// failed in this run.
type Rejection struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

// Run is the top-level, per-invocation report.
type Run struct {
	Document        string        `json:"document"`
	StartedAt       time.Time     `json:"started_at"`
	Duration        time.Duration `json:"duration"`
	ExitCode        int           `json:"exit_code"`
	OriginalSHA1    string        `json:"original_sha1"`
	ResultSHA1      string        `json:"result_sha1"`
	OriginalLen     int           `json:"original_len"`
	ResultLen       int           `json:"result_len"`
	Stages          []StageResult `json:"stages"`
	Rejections      []Rejection   `json:"rejections,omitempty"`
	HazardSpans     int           `json:"hazard_spans_protected"`
	PostCheckOK     bool          `json:"post_check_ok"`
	PostCheckErrors []string      `json:"post_check_errors,omitempty"`
	// OriginalSnapshot holds the document text before any stage ran, so the
	// first retained stage has something to diff against. Only set when the
	// run requested per-stage snapshot retention.
	OriginalSnapshot string `json:"-"`
}

// GrowthRatio returns the fractional change in document length.
func (r Run) GrowthRatio() float64 {
	if r.OriginalLen == 0 {
		return 0
	}
	return float64(r.ResultLen-r.OriginalLen) / float64(r.OriginalLen)
}
