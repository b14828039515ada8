package config

import (
	"github.com/spf13/pflag"
)

// RunFlags holds the per-invocation CLI flags for `mdp run`, layered over
// a loaded Config the same way morfx's BuildConfigFromFlags layers CLI
// flags over its model.Config.
type RunFlags struct {
	Input           string
	Glob            string
	Steps           []string
	Output          string
	ConfigPath      string
	ReportPath      string
	PlanPath        string
	ReportPretty    bool
	DryRun          bool
	RejectDir       string
	Verbose         bool
	Workers         int
	ScrubDryRun     bool
	ShowDiff        bool
	DiffContext     int
	ColorDiff       bool
	RetainSnapshots bool
}

// DefaultSteps lists all eight selectable stages in spec order, used when
// --steps is not given.
var DefaultSteps = []string{
	"mask", "prepass-basic", "prepass-advanced", "scrubber",
	"grammar", "detect", "apply", "fix",
}

// BuildRunFlags registers and parses the `mdp run` flag set, returning the
// populated RunFlags plus remaining positional arguments.
func BuildRunFlags(args []string) (*RunFlags, []string, error) {
	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)

	globPattern := fs.String("glob", "", "Glob pattern expanding to multiple input documents (e.g. '**/*.md').")
	steps := fs.StringSlice("steps", DefaultSteps, "Comma-separated pipeline stages to run, in order.")
	output := fs.StringP("output", "o", "", "Output file path (defaults to in-place).")
	cfgPath := fs.StringP("config", "c", "", "Path to a YAML config file.")
	reportPath := fs.String("report", "", "Write a JSON run report to this path.")
	planPath := fs.String("plan", "", "Write the detector's merged plan to this path.")
	reportPretty := fs.Bool("report-pretty", false, "Print a human-readable report to stdout.")
	dryRun := fs.Bool("dry-run", false, "Do not write output; report what would change.")
	rejectDir := fs.String("reject-dir", "", "Directory to write rejected edits when validation fails.")
	verbose := fs.BoolP("verbose", "v", false, "Enable verbose stage-by-stage logging.")
	workers := fs.Int("workers", 0, "Number of parallel workers for batch mode, 0 means runtime.NumCPU().")
	scrubDryRun := fs.Bool("scrub-dry-run", false, "Print the scrubber's candidate-block table instead of removing blocks.")
	showDiff := fs.BoolP("diff", "D", false, "Show a unified diff of the changes.")
	diffContext := fs.IntP("diff-context", "C", 3, "Lines of context for the diff.")
	colorDiff := fs.Bool("color", true, "Colorize the diff output.")
	retainSnapshots := fs.Bool("report-stages", false, "Retain a text snapshot after every stage and include per-stage diffs in --report-pretty output.")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	rf := &RunFlags{
		Glob:            *globPattern,
		Steps:           *steps,
		Output:          *output,
		ConfigPath:      *cfgPath,
		ReportPath:      *reportPath,
		PlanPath:        *planPath,
		ReportPretty:    *reportPretty,
		DryRun:          *dryRun,
		RejectDir:       *rejectDir,
		Verbose:         *verbose,
		Workers:         *workers,
		ScrubDryRun:     *scrubDryRun,
		ShowDiff:        *showDiff,
		DiffContext:     *diffContext,
		ColorDiff:       *colorDiff,
		RetainSnapshots: *retainSnapshots,
	}

	remaining := fs.Args()
	if len(remaining) > 0 {
		rf.Input = remaining[0]
	}
	return rf, remaining, nil
}
