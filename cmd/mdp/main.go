// Command mdp rewrites Markdown documents into TTS-safe text through the
// twelve-stage pipeline in internal/pipeline. Adapted from the teacher's
// cmd/fileman/main.go entrypoint shape, split into cobra subcommands per
// mdp's run/check/history surface.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/mdproof/mdp/internal/cli"
	"github.com/mdproof/mdp/internal/config"
	"github.com/mdproof/mdp/internal/exitcode"
	"github.com/mdproof/mdp/internal/fsutil"
	"github.com/mdproof/mdp/internal/grammarassist"
	"github.com/mdproof/mdp/internal/llmclient"
	"github.com/mdproof/mdp/internal/markdown"
	"github.com/mdproof/mdp/internal/mdperrors"
	"github.com/mdproof/mdp/internal/runstore"
	"github.com/mdproof/mdp/internal/scrubber"
	"github.com/mdproof/mdp/internal/tiebreak"
	"github.com/mdproof/mdp/internal/validator"
	"github.com/spf13/cobra"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run builds the cobra command tree and dispatches args, returning the
// process exit code. Only main is allowed to call os.Exit; every
// subcommand handler below returns an int or an error instead.
func run(args []string) int {
	code := exitcode.OK

	root := &cobra.Command{
		Use:           "mdp",
		Short:         "Rewrite Markdown into TTS-safe narration text",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(&code))
	root.AddCommand(newCheckCmd(&code))
	root.AddCommand(newHistoryCmd(&code))

	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "mdp:", err)
		if code == exitcode.OK {
			code = exitcode.GenericFailure
		}
	}
	return code
}

func newRunCmd(code *int) *cobra.Command {
	return &cobra.Command{
		Use:                "run [file]",
		Short:              "Run the full pipeline over one or more documents",
		DisableFlagParsing: true,
		RunE: func(_ *cobra.Command, args []string) error {
			flags, _, err := config.BuildRunFlags(args)
			if err != nil {
				*code = exitcode.GenericFailure
				return err
			}

			cfg, err := config.LoadFile(flags.ConfigPath)
			if err != nil {
				*code = exitcode.GenericFailure
				return err
			}

			files, err := resolveInputs(flags)
			if err != nil {
				*code = exitcode.For(err)
				return err
			}

			if flags.ScrubDryRun {
				return runScrubDryRun(cfg, files, code)
			}

			runner := cli.New(cfg, flags)
			runner.Workers = flags.Workers

			if cfg.Detector.Enabled {
				runner.DetectorClient = llmclient.New(detectorClientConfig(cfg))
			}
			if cfg.Fixer.Enabled {
				runner.FixerClient = llmclient.New(fixerClientConfig(cfg))
			}
			if cfg.GrammarAssist.Enabled {
				runner.GrammarEngine = grammarassist.NewLanguageTool(cfg.GrammarAssist.APIBase, cfg.GrammarAssist.Language)
			}

			// Fail fast, before spawning workers, if a configured model
			// endpoint is unreachable rather than discovering it mid-batch.
			for _, client := range []*llmclient.Client{runner.DetectorClient, runner.FixerClient} {
				if client == nil {
					continue
				}
				if err := client.CheckHealth(context.Background()); err != nil {
					*code = exitcode.ModelUnreachable
					return fmt.Errorf("%w: %v", mdperrors.ErrModelUnreachable, err)
				}
			}

			store, err := runstore.Connect(runStoreDSN(), false)
			if err != nil {
				log.Printf("mdp: run history disabled, could not open store: %v", err)
			} else {
				runner.Store = store
				defer store.Close()
			}

			outcomes, exit := runner.Run(context.Background(), files)
			for _, out := range outcomes {
				if out.Err != nil {
					fmt.Fprintf(os.Stderr, "mdp: %s: %v\n", out.Path, out.Err)
				}
			}
			*code = exit
			return nil
		},
	}
}

// newCheckCmd wires a lint-only path: Mask Adapter, Structural Validator,
// and Post-Check, with no network calls and no file writes.
func newCheckCmd(code *int) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Validate a document without rewriting it (no model calls)",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				*code = exitcode.GenericFailure
				return fmt.Errorf("reading %s: %w", path, err)
			}

			cfg := config.DefaultConfig()
			doc := string(data)
			masked, table := markdown.MaskProtected(doc)

			ok, failures := validator.ValidateAll(masked, masked, validator.Config{
				MaxLengthDeltaRatio: cfg.Apply.MaxFileGrowthRatio,
			})
			if !ok {
				*code = exitcode.StructuralCheckFailed
				for _, f := range failures {
					fmt.Fprintf(os.Stderr, "%s: structural check failed: %s\n", path, f)
				}
				return mdperrors.ErrStructuralCheck
			}

			// Post-check runs on masked text, before Unmask, same as the run
			// path: unmasking first would let hazard detection scan restored
			// code fences/links/HTML/math it was never meant to see.
			post := tiebreak.PostCheck(masked, cfg.AcronymSet())
			if !post.OK {
				*code = exitcode.StructuralCheckFailed
				for _, e := range post.Errors {
					fmt.Fprintf(os.Stderr, "%s: post-check: %s\n", path, e)
				}
				return mdperrors.ErrHazardRemaining
			}
			_ = markdown.Unmask(masked, table)

			fmt.Printf("%s: ok\n", path)
			*code = exitcode.OK
			return nil
		},
	}
}

func newHistoryCmd(code *int) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past pipeline runs",
		RunE: func(_ *cobra.Command, _ []string) error {
			store, err := runstore.Connect(runStoreDSN(), false)
			if err != nil {
				*code = exitcode.GenericFailure
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(limit)
			if err != nil {
				*code = exitcode.GenericFailure
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
			fmt.Fprintln(w, "DOCUMENT\tSTARTED\tEXIT\tPOST-CHECK\tDURATION")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%d\t%v\t%dms\n",
					r.Document, r.StartedAt.Format("2006-01-02 15:04:05"),
					r.ExitCode, r.PostCheckOK, r.DurationMs)
			}
			w.Flush()

			*code = exitcode.OK
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list.")
	return cmd
}

// runScrubDryRun masks and scrubs each file without writing anything,
// printing the candidate-block table Scrub would otherwise have removed.
func runScrubDryRun(cfg *config.Config, files []string, code *int) error {
	scfg := scrubber.DefaultConfig()
	scfg.EdgeBlockWindow = cfg.Scrubber.EdgeBlockWindow
	if cfg.Scrubber.LinkDensityThresh > 0 {
		scfg.LinkDensityThresh = cfg.Scrubber.LinkDensityThresh
	}
	scfg.HeadingsKeep = cfg.Scrubber.Whitelist.HeadingsKeep

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			*code = exitcode.GenericFailure
			return fmt.Errorf("reading %s: %w", path, err)
		}
		masked, _ := markdown.MaskProtected(string(data))
		_, candidates, _ := scrubber.Scrub(masked, scfg)

		fmt.Printf("%s:\n", path)
		if len(candidates) == 0 {
			fmt.Println("  (no blocks would be removed)")
			continue
		}
		fmt.Print(scrubber.FormatDryRunTable(candidates))
	}
	*code = exitcode.OK
	return nil
}

// resolveInputs expands flags.Glob or flags.Input into a concrete file
// list, preferring the glob when both are given.
func resolveInputs(flags *config.RunFlags) ([]string, error) {
	if flags.Glob != "" {
		files, err := fsutil.ExpandGlobs([]string{flags.Glob})
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, mdperrors.ErrNoInputFiles
		}
		return files, nil
	}
	if flags.Input == "" {
		return nil, mdperrors.ErrNoInputFiles
	}
	return []string{flags.Input}, nil
}

func detectorClientConfig(cfg *config.Config) llmclient.Config {
	c := llmclient.DefaultDetectorConfig()
	c.APIBase = cfg.Detector.APIBase
	c.Model = cfg.Detector.Model
	c.MaxContextTokens = cfg.Detector.MaxContextTokens
	c.Retries = cfg.Detector.Retries
	c.Temperature = cfg.Detector.Temperature
	c.TopP = cfg.Detector.TopP
	c.MaxOutputChars = cfg.Detector.MaxOutputChars
	return c
}

func fixerClientConfig(cfg *config.Config) llmclient.Config {
	c := llmclient.DefaultFixerConfig()
	c.APIBase = cfg.Fixer.APIBase
	c.Model = cfg.Fixer.Model
	return c
}

// runStoreDSN resolves the run-history database location, a local sqlite
// file beside the working directory unless MDP_RUNSTORE_DSN overrides it
// for a remote libsql/Turso target.
func runStoreDSN() string {
	if dsn := os.Getenv("MDP_RUNSTORE_DSN"); dsn != "" {
		return dsn
	}
	return "mdp_runs.db"
}
