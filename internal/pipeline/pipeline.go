// Package pipeline orchestrates the twelve fixed stages — Mask Adapter,
// Pre-pass Basic, Pre-pass Advanced, Scrubber, Grammar Assist, Detector,
// Applier, Structural Validator, Fixer, Tie-Breaker, Post-Check, and
// Unmask — in strict forward order, generalizing the teacher's
// `internal/core/pipeline.go` step-by-step Apply() into a document-level
// driver for this domain.
package pipeline

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/mdproof/mdp/internal/applier"
	"github.com/mdproof/mdp/internal/config"
	"github.com/mdproof/mdp/internal/detector"
	"github.com/mdproof/mdp/internal/fixer"
	"github.com/mdproof/mdp/internal/grammarassist"
	"github.com/mdproof/mdp/internal/llmclient"
	"github.com/mdproof/mdp/internal/markdown"
	"github.com/mdproof/mdp/internal/mdperrors"
	"github.com/mdproof/mdp/internal/prepass"
	"github.com/mdproof/mdp/internal/report"
	"github.com/mdproof/mdp/internal/scrubber"
	"github.com/mdproof/mdp/internal/tiebreak"
	"github.com/mdproof/mdp/internal/validator"
)

// Step names the eight selectable stages by the CLI's stage vocabulary
// (spec.md §6); Structural Validator, Tie-Breaker, Post-Check and Unmask
// always run and have no step name. The
// fix/detect/apply pair is additionally gated by prerequisite ordering.
const (
	StepMask            = "mask"
	StepPrepassBasic    = "prepass-basic"
	StepPrepassAdvanced = "prepass-advanced"
	StepScrubber        = "scrubber"
	StepGrammar         = "grammar"
	StepDetect          = "detect"
	StepApply           = "apply"
	StepFix             = "fix"
)

// Options bundles everything one Run needs beyond the document text.
type Options struct {
	Config          *config.Config
	Steps           []string
	DetectorClient  *llmclient.Client
	FixerClient     *llmclient.Client
	GrammarEngine   grammarassist.Engine
	DecisionWriter  io.Writer
	RetainSnapshots bool
}

func stepSet(steps []string) map[string]bool {
	set := make(map[string]bool, len(steps))
	for _, s := range steps {
		set[s] = true
	}
	return set
}

// Result is everything a single pipeline run produced.
type Result struct {
	Output    string
	Run       report.Run
	PlanItems []detector.Item
}

func sha1Hex(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:])
}

// Run executes the requested steps, in pipeline order, over document.
func Run(ctx context.Context, document string, opts Options) (Result, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	steps := stepSet(opts.Steps)
	started := time.Now()

	acronyms := cfg.AcronymSet()
	vcfg := validator.DefaultConfig()
	vcfg.MaxLengthDeltaRatio = cfg.Apply.MaxFileGrowthRatio

	run := report.Run{
		StartedAt:    started,
		OriginalLen:  len(document),
		OriginalSHA1: sha1Hex(document),
	}
	if opts.RetainSnapshots {
		run.OriginalSnapshot = document
	}

	recordStage := func(name string, skipped bool, start time.Time, before, after string, counts map[string]int) {
		sr := report.StageResult{
			Name:        name,
			DurationMs:  time.Since(start).Milliseconds(),
			InputChars:  len(before),
			OutputChars: len(after),
			Counts:      counts,
		}
		if opts.RetainSnapshots {
			sr.Snapshot = after
		}
		_ = skipped
		run.Stages = append(run.Stages, sr)
	}

	// Stage 1: Mask Adapter (always runs; everything downstream depends on
	// mask-sentinel offsets being stable).
	stageStart := time.Now()
	masked, table := markdown.MaskProtected(document)
	recordStage(StepMask, false, stageStart, document, masked, nil)

	text := masked

	// Stage 2: Pre-pass Basic.
	if steps[StepPrepassBasic] {
		stageStart = time.Now()
		before := text
		bcfg := prepass.DefaultBasicConfig()
		bcfg.QuotesPolicy = cfg.QuotesPolicy
		bcfg.DashesPolicy = cfg.DashesPolicy
		bcfg.NBSPHandling = cfg.NBSPHandling
		bcfg.NormalizePunctuation = cfg.NormalizePunctuation
		var rep *prepass.Report
		text, rep = prepass.RunBasic(text, bcfg)
		recordStage(StepPrepassBasic, false, stageStart, before, text, rep.Counts)
	}

	// Stage 3: Pre-pass Advanced.
	if steps[StepPrepassAdvanced] {
		stageStart = time.Now()
		before := text
		acfg := prepass.DefaultAdvancedConfig()
		acfg.Enabled = true
		acfg.NormalizeShouting = cfg.PrepassAdvanced.Casing
		acfg.CollapseRuns = cfg.PrepassAdvanced.Punctuation
		acfg.JoinPercent = cfg.PrepassAdvanced.NumbersUnits
		acfg.RemoveInlineMarkers = cfg.PrepassAdvanced.Footnotes
		acfg.AcronymWhitelist = acronyms
		var rep *prepass.Report
		text, rep = prepass.RunAdvanced(text, acfg)
		recordStage(StepPrepassAdvanced, false, stageStart, before, text, rep.Counts)
	}

	// Hazard mask is captured right after pre-pass, before any stage that
	// could introduce new hazard-shaped text, and carried through grammar
	// and fixer merging.
	hazards := tiebreak.DetectHazards(text, acronyms)
	prepassText := text

	// Stage 4: Scrubber.
	if steps[StepScrubber] {
		stageStart = time.Now()
		before := text
		scfg := scrubber.DefaultConfig()
		scfg.EdgeBlockWindow = cfg.Scrubber.EdgeBlockWindow
		if cfg.Scrubber.LinkDensityThresh > 0 {
			scfg.LinkDensityThresh = cfg.Scrubber.LinkDensityThresh
		}
		scfg.HeadingsKeep = cfg.Scrubber.Whitelist.HeadingsKeep
		var srep *scrubber.Report
		text, _, srep = scrubber.Scrub(text, scfg)
		recordStage(StepScrubber, false, stageStart, before, text, srep.Counts())
	}

	// Stage 5: Grammar Assist (optional).
	grammarText := text
	if steps[StepGrammar] && cfg.GrammarAssist.Enabled && opts.GrammarEngine != nil {
		stageStart = time.Now()
		before := text
		validate := func(b, a string) bool {
			ok, _ := validator.ValidateAll(b, a, vcfg)
			return ok
		}
		result, grep := grammarassist.Assist(opts.GrammarEngine, text, table, validate)
		text = result
		grammarText = text
		recordStage(StepGrammar, false, stageStart, before, text, map[string]int{
			"proposed": grep.Proposed,
			"applied":  grep.Applied,
		})
	}

	// Stages 6-7: Detector + Applier run per text span so match offsets
	// stay node-local, as spec.md's Applier contract requires.
	var planItems []detector.Item
	if steps[StepDetect] && steps[StepApply] && cfg.Detector.Enabled && opts.DetectorClient != nil {
		stageStart := time.Now()
		before := text
		dcfg := detector.DefaultConfig()
		dcfg.MaxItems = cfg.Detector.JSONMaxItems
		chunkCfg := detector.DefaultChunkConfig()
		chunkCfg.MaxChunkSize = cfg.Detector.MaxChunkSize
		chunkCfg.OverlapSize = cfg.Detector.OverlapSize

		det := detector.New(opts.DetectorClient, dcfg, chunkCfg, cfg.Detector.Locale)
		spans := markdown.ExtractTextSpans(text)
		nodeTexts := make([]string, len(spans))
		for i, s := range spans {
			nodeTexts[i] = s.Text
		}

		plans, stats, err := det.Run(ctx, nodeTexts)
		if err != nil {
			return Result{}, err
		}

		for _, plan := range plans {
			planItems = append(planItems, plan.Items...)
		}

		text = rebuildFromNodeEdits(text, spans, plans)
		recordStage(StepDetect, false, stageStart, before, text, map[string]int{
			"model_calls":          stats.ModelCalls,
			"suggestions_valid":    stats.SuggestionsValid,
			"suggestions_rejected": stats.SuggestionsRejected,
		})
	}

	// Stage 8: Structural Validator. The baseline is the text immediately
	// before the Applier ran (grammarText), not the pristine masked
	// document — comparing against Stage 1's output would treat the
	// Scrubber's and Grammar Assist's already-accepted shrinkage as if
	// the Applier had caused it, and reject safe Detector/Applier edits.
	validatorFailures := []string{}
	if ok, failures := validator.ValidateAll(grammarText, text, vcfg); !ok {
		for _, f := range failures {
			validatorFailures = append(validatorFailures, string(f))
		}
		// Revert to the pre-detect baseline; this stage is the hard stop.
		text = grammarText
	}

	// Stage 9: Fixer (optional).
	fixerText := text
	if steps[StepFix] && cfg.Fixer.Enabled && opts.FixerClient != nil {
		stageStart := time.Now()
		before := text
		gcfg := fixer.DefaultGuardConfig()
		gcfg.MaxGrowthRatio = cfg.Fixer.NodeMaxGrowthRatio
		fx := fixer.New(opts.FixerClient, gcfg, cfg.Fixer.Locale)
		spans := markdown.ExtractTextSpans(text)
		nodes := interleaveGaps(text, spans)
		fixed, err := fx.ApplySpans(ctx, text, nodes)
		if err != nil {
			return Result{}, fmt.Errorf("%w: %v", mdperrors.ErrModelUnreachable, err)
		}
		fileGuard := gcfg
		fileGuard.MaxGrowthRatio = cfg.Fixer.FileMaxGrowthRatio
		if fixer.CheckFileGrowth(before, fixed, fileGuard) {
			text = fixed
		}
		fixerText = text
		recordStage(StepFix, false, stageStart, before, text, nil)
	}

	// Stage 10: Tie-Breaker.
	stageStart = time.Now()
	logger := tiebreak.NewDecisionLogger(opts.DecisionWriter)
	merged, _ := tiebreak.TieBreak(prepassText, grammarText, fixerText, hazards, logger, acronyms)
	text = merged
	recordStage("tie-breaker", false, stageStart, prepassText, text, nil)

	// Stage 11: Post-Check.
	postCheck := tiebreak.PostCheck(text, acronyms)
	run.PostCheckOK = postCheck.OK
	run.PostCheckErrors = postCheck.Errors
	run.HazardSpans = len(hazards)

	// Stage 12: Unmask.
	final := markdown.Unmask(text, table)

	for _, f := range validatorFailures {
		run.Rejections = append(run.Rejections, report.Rejection{Reason: f, Count: 1})
	}

	run.Duration = time.Since(started)
	run.ResultLen = len(final)
	run.ResultSHA1 = sha1Hex(final)
	run.Document = ""

	return Result{
		Output:    final,
		Run:       run,
		PlanItems: planItems,
	}, nil
}

// interleaveGaps turns spans (the editable text regions ExtractTextSpans
// found) plus the protected/sentinel gaps between them into one ordered
// node list covering fullText end to end, for fixer.ApplySpans — which
// skips any node carrying a mask sentinel regardless of length, so the
// gaps it receives here pass through untouched while only the spans are
// ever sent to the model.
func interleaveGaps(fullText string, spans []markdown.TextSpan) []string {
	var nodes []string
	cursor := 0
	for _, s := range spans {
		if s.Start > cursor {
			nodes = append(nodes, fullText[cursor:s.Start])
		}
		nodes = append(nodes, s.Text)
		cursor = s.End
	}
	if cursor < len(fullText) {
		nodes = append(nodes, fullText[cursor:])
	}
	return nodes
}

// rebuildFromNodeEdits applies each node's plan to that node's own text
// span and stitches the full masked document back together, preserving
// every protected span and every other text span untouched.
func rebuildFromNodeEdits(fullText string, spans []markdown.TextSpan, plans []detector.Plan) string {
	var b []byte
	cursor := 0
	for i, s := range spans {
		b = append(b, fullText[cursor:s.Start]...)
		if i < len(plans) {
			out, _ := applier.ApplyPlanToText(s.Text, plans[i])
			b = append(b, out...)
		} else {
			b = append(b, s.Text...)
		}
		cursor = s.End
	}
	b = append(b, fullText[cursor:]...)
	return string(b)
}
