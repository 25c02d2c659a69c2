package cli

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/molsim/internal/harness"
	"github.com/roach88/molsim/internal/store"
)

// CompareOptions holds flags for the compare command.
type CompareOptions struct {
	*RootOptions
	Model    ModelFlags
	Runs     int
	Archived string
	Database string
}

// CompareResult is the output of the compare command.
type CompareResult struct {
	Mode   string          `json:"mode"`
	Seed   uint64          `json:"seed"`
	Runs   int             `json:"runs"`
	Pass   bool            `json:"pass"`
	Report *harness.Report `json:"report"`
}

// NewCompareCommand creates the compare command.
func NewCompareCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompareOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compare [golden-file]",
		Short: "Capture and compare against a golden percentile table",
		Long: `Capture percentile statistics and compare them with a golden table,
either a tab-separated file or the latest archived capture of a name.

Every mismatch is reported; an unreadable file is reported once.

Exit codes:
  0 - All values within tolerance
  1 - One or more mismatches
  2 - Command error (invalid flags, unknown mode, etc.)

Examples:
  molsim compare testdata/golden/MolineauxStatsOrig.golden --mode original
  molsim compare --db ./molsim.db --archived nightly-orig --mode original`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(opts, args, cmd)
		},
	}

	opts.Model.bind(cmd, rootOpts.Env)
	cmd.Flags().IntVarP(&opts.Runs, "runs", "n", harness.DefaultRuns, "number of infections")
	cmd.Flags().StringVar(&opts.Archived, "archived", "", "compare against the latest archived capture with this name")
	cmd.Flags().StringVar(&opts.Database, "db", rootOpts.Env.Database, "SQLite archive for --archived (env MOLSIM_DB)")

	return cmd
}

func runCompare(opts *CompareOptions, args []string, cmd *cobra.Command) error {
	if (len(args) == 1) == (opts.Archived != "") {
		return NewExitError(ExitCommandError, "give exactly one of a golden file or --archived")
	}
	if opts.Archived != "" && opts.Database == "" {
		return NewExitError(ExitCommandError, "--archived requires --db")
	}

	ctx := commandContext(cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	model, src, _, table, err := captureSample(ctx, &opts.Model, opts.Runs, logger)
	if err != nil {
		return err
	}

	var rep *harness.Report
	if len(args) == 1 {
		rep = table.CompareFile(args[0])
	} else {
		rep, err = compareArchived(cmd, opts, table)
		if err != nil {
			return err
		}
	}

	result := CompareResult{
		Mode:   model.Mode().String(),
		Seed:   src.CurrentSeed(),
		Runs:   opts.Runs,
		Pass:   rep.OK(),
		Report: rep,
	}

	if opts.Format == "json" {
		if err := formatter(opts.RootOptions, cmd).Success(result); err != nil {
			return err
		}
	} else {
		fmt.Fprint(cmd.OutOrStdout(), rep.String())
		if rep.OK() {
			fmt.Fprintln(cmd.OutOrStdout())
		}
	}

	if !rep.OK() {
		return NewExitError(ExitFailure, fmt.Sprintf("%d mismatch(es) against %s", len(rep.Mismatches), rep.Source))
	}
	return nil
}

func compareArchived(cmd *cobra.Command, opts *CompareOptions, table *harness.Table) (*harness.Report, error) {
	ctx := commandContext(cmd)
	st, err := store.Open(opts.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	c, err := st.LatestCapture(ctx, opts.Archived)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to find archived capture", err)
	}
	archived, err := st.ReadPercentiles(ctx, c)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read archived percentiles", err)
	}

	rep := table.Compare(bytes.NewReader(archived.Bytes()))
	rep.Source = fmt.Sprintf("%s (capture %s)", opts.Archived, c.ID)
	return rep, nil
}
