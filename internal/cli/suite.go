package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/molsim/internal/harness"
)

// SuiteOptions holds flags for the suite command.
type SuiteOptions struct {
	*RootOptions
	Update    bool
	GoldenDir string
	Runs      int
	Filter    string
}

// SuiteResult is the output of the suite command.
type SuiteResult struct {
	Suite   string               `json:"suite"`
	Passed  int                  `json:"passed"`
	Failed  int                  `json:"failed"`
	Results []harness.CaseResult `json:"results"`
}

// NewSuiteCommand creates the suite command.
func NewSuiteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SuiteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "suite <suite.yaml>",
		Short: "Run a golden-table suite",
		Long: `Run every case of a YAML suite. Compare cases check their golden table;
write cases (or every case with --update) regenerate it.

Exit codes:
  0 - All cases passed
  1 - One or more cases mismatched
  2 - Command error (invalid suite, unknown mode, etc.)

Examples:
  molsim suite testdata/suites/molineaux.yaml
  molsim suite testdata/suites/molineaux.yaml --filter 'Orig*'
  molsim suite testdata/suites/molineaux.yaml --update`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuite(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "rewrite every golden table")
	cmd.Flags().StringVar(&opts.GoldenDir, "golden-dir", rootOpts.Env.GoldenDir, "override the suite's golden directory (env MOLSIM_GOLDEN_DIR)")
	cmd.Flags().IntVarP(&opts.Runs, "runs", "n", 0, "override every case's run count")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "only run cases matching this glob")

	return cmd
}

func runSuite(opts *SuiteOptions, path string, cmd *cobra.Command) error {
	s, err := harness.LoadSuite(path)
	if err != nil {
		return configExitError("failed to load suite", err)
	}
	formatter(opts.RootOptions, cmd).VerboseLog("suite %s: %d case(s)", s.Name, len(s.Cases))

	results, err := harness.RunSuite(commandContext(cmd), s, harness.SuiteOptions{
		GoldenDir: opts.GoldenDir,
		Update:    opts.Update,
		Runs:      opts.Runs,
		Filter:    opts.Filter,
		Logger:    newLogger(opts.RootOptions, cmd.ErrOrStderr()),
	})
	if err != nil {
		return configExitError("suite failed", err)
	}

	out := SuiteResult{Suite: s.Name, Results: results}
	for _, r := range results {
		if r.Pass() {
			out.Passed++
		} else {
			out.Failed++
		}
	}

	if opts.Format == "json" {
		if err := formatter(opts.RootOptions, cmd).Success(out); err != nil {
			return err
		}
	} else {
		printSuiteText(cmd, out)
	}

	if out.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d case(s) failed", out.Failed, len(results)))
	}
	return nil
}

func printSuiteText(cmd *cobra.Command, out SuiteResult) {
	w := cmd.OutOrStdout()
	for _, r := range out.Results {
		switch {
		case r.Action == harness.ActionWrite:
			fmt.Fprintf(w, "WROTE  %s -> %s\n", r.Name, r.Path)
		case r.Pass():
			fmt.Fprintf(w, "PASS   %s\n", r.Name)
		default:
			fmt.Fprintf(w, "FAIL   %s\n", r.Name)
			for _, m := range r.Report.Mismatches {
				fmt.Fprintf(w, "       %s\n", m)
			}
		}
	}
	fmt.Fprintf(w, "\n%s: %d passed, %d failed\n", out.Suite, out.Passed, out.Failed)
}
