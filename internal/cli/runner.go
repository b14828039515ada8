// Package cli implements mdp's batch-processing entry point: a worker pool
// that pushes each input document through internal/pipeline, then writes,
// diffs, reports, and persists the result. Adapted from the teacher's
// internal/cli/runner.go worker-pool-over-files shape, generalized from
// one-rule-per-file AST manipulation to the twelve-stage text pipeline.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/mdproof/mdp/internal/atomicio"
	"github.com/mdproof/mdp/internal/config"
	"github.com/mdproof/mdp/internal/exitcode"
	"github.com/mdproof/mdp/internal/grammarassist"
	"github.com/mdproof/mdp/internal/llmclient"
	"github.com/mdproof/mdp/internal/mdperrors"
	"github.com/mdproof/mdp/internal/pipeline"
	"github.com/mdproof/mdp/internal/report"
	"github.com/mdproof/mdp/internal/runstore"
	"github.com/mdproof/mdp/internal/util"
	"github.com/mdproof/mdp/internal/writer"
)

// Runner drives one `mdp run` invocation across one or more documents.
type Runner struct {
	Config  *config.Config
	Flags   *config.RunFlags
	Steps   []string
	Workers int

	DetectorClient *llmclient.Client
	FixerClient    *llmclient.Client
	GrammarEngine  grammarassist.Engine
	Store          *runstore.Store

	Stdout io.Writer
	Stderr io.Writer
}

// Outcome is one file's result: either a completed pipeline.Result or an
// error that stopped processing before a report could be produced.
type Outcome struct {
	Path   string
	Result pipeline.Result
	Err    error
}

// New builds a Runner from a loaded Config and parsed RunFlags.
func New(cfg *config.Config, flags *config.RunFlags) *Runner {
	return &Runner{
		Config: cfg,
		Flags:  flags,
		Steps:  flags.Steps,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run pushes every path in files through the pipeline with a bounded
// worker pool, in the teacher's jobs-channel-plus-waitgroup shape, and
// returns one Outcome per file plus the process's aggregate exit code —
// the least lenient code across every file, the highest-numbered exit
// code winning.
func (r *Runner) Run(ctx context.Context, files []string) ([]Outcome, int) {
	if len(files) == 0 {
		return nil, exitcode.For(mdperrors.ErrNoInputFiles)
	}

	numW := r.Workers
	if numW < 1 {
		numW = runtime.NumCPU()
	}
	if numW > len(files) {
		numW = len(files)
	}

	jobs := make(chan string)
	results := make([]Outcome, 0, len(files))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < numW; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				out := r.processFile(ctx, path)
				mu.Lock()
				results = append(results, out)
				mu.Unlock()
			}
		}()
	}

	for _, f := range files {
		jobs <- f
	}
	close(jobs)
	wg.Wait()

	code := exitcode.OK
	for _, out := range results {
		c := out.Result.Run.ExitCode
		if out.Err != nil {
			c = exitcode.For(out.Err)
		}
		if c > code {
			code = c
		}
	}
	return results, code
}

func (r *Runner) processFile(ctx context.Context, path string) Outcome {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return Outcome{Path: path, Err: fmt.Errorf("reading %s: %w", path, err)}
	}

	result, err := pipeline.Run(ctx, string(data), pipeline.Options{
		Config:          r.Config,
		Steps:           r.Steps,
		DetectorClient:  r.DetectorClient,
		FixerClient:     r.FixerClient,
		GrammarEngine:   r.GrammarEngine,
		RetainSnapshots: r.Flags != nil && r.Flags.RetainSnapshots,
	})
	if err != nil {
		return Outcome{Path: path, Err: err}
	}

	result.Run.Document = path
	result.Run.ExitCode = exitcode.For(firstRejection(result.Run))

	outPath := path
	if r.Flags != nil && r.Flags.Output != "" {
		outPath = r.Flags.Output
	}

	if path != "-" && (r.Flags == nil || !r.Flags.DryRun) {
		if err := r.write(outPath, result.Output); err != nil {
			return Outcome{Path: path, Result: result, Err: err}
		}
	}

	r.emit(path, string(data), result)

	if r.Store != nil {
		_ = r.persist(path, result)
	}

	return Outcome{Path: path, Result: result}
}

func firstRejection(run report.Run) error {
	if len(run.Rejections) > 0 {
		return mdperrors.ErrStructuralCheck
	}
	if !run.PostCheckOK {
		return mdperrors.ErrHazardRemaining
	}
	return nil
}

func (r *Runner) write(path, content string) error {
	cfg := atomicio.DefaultConfig()
	dw := writer.NewDiskWriter(cfg)
	defer dw.Cleanup()
	return dw.WriteFile(path, []byte(content), 0o644)
}

func (r *Runner) emit(path, original string, result pipeline.Result) {
	out := r.Stdout
	if out == nil {
		out = os.Stdout
	}

	if r.Flags != nil && r.Flags.ShowDiff {
		diff := util.UnifiedDiff(original, result.Output, path, r.diffContext(), r.Flags.ColorDiff)
		if diff != "" {
			fmt.Fprint(out, diff)
		}
	}

	switch {
	case r.Flags != nil && r.Flags.ReportPretty:
		fmt.Fprintln(out, report.RenderPretty(result.Run))
	case r.Flags != nil && r.Flags.ReportPath != "":
		b, _ := json.MarshalIndent(result.Run, "", "  ")
		_ = os.WriteFile(r.Flags.ReportPath, b, 0o644)
	}

	if r.Flags != nil && r.Flags.Verbose {
		fmt.Fprintf(out, "%s: %d -> %d chars, exit %d\n", path, result.Run.OriginalLen, result.Run.ResultLen, result.Run.ExitCode)
	}
}

func (r *Runner) diffContext() int {
	if r.Flags != nil && r.Flags.DiffContext > 0 {
		return r.Flags.DiffContext
	}
	return 3
}

func (r *Runner) persist(path string, result pipeline.Result) error {
	stages := make([]runstore.StageInput, 0, len(result.Run.Stages))
	for _, s := range result.Run.Stages {
		stages = append(stages, runstore.StageInput{
			Name:        s.Name,
			Duration:    time.Duration(s.DurationMs) * time.Millisecond,
			InputChars:  s.InputChars,
			OutputChars: s.OutputChars,
			Counts:      s.Counts,
		})
	}
	rejections := make(map[string]int, len(result.Run.Rejections))
	for _, rj := range result.Run.Rejections {
		rejections[rj.Reason] += rj.Count
	}

	return r.Store.SaveRun(runstore.RunInput{
		ID:              util.SHA1Hex([]byte(fmt.Sprintf("%s-%d", path, result.Run.StartedAt.UnixNano()))),
		Document:        path,
		StartedAt:       result.Run.StartedAt,
		Duration:        result.Run.Duration,
		ExitCode:        result.Run.ExitCode,
		OriginalSHA1:    result.Run.OriginalSHA1,
		ResultSHA1:      result.Run.ResultSHA1,
		OriginalLen:     result.Run.OriginalLen,
		ResultLen:       result.Run.ResultLen,
		PostCheckOK:     result.Run.PostCheckOK,
		PostCheckErrors: result.Run.PostCheckErrors,
		Rejections:      rejections,
		Stages:          stages,
	})
}
