package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/molsim/internal/harness"
	"github.com/roach88/molsim/internal/infection"
	"github.com/roach88/molsim/internal/random"
	"github.com/roach88/molsim/internal/store"
)

// CaptureOptions holds flags for the capture command.
type CaptureOptions struct {
	*RootOptions
	Model    ModelFlags
	Runs     int
	Name     string
	Out      string
	Database string

	// IDGenerator allows overriding capture IDs (for testing).
	// If nil, the store default (UUIDv7) is used.
	IDGenerator store.IDGenerator
}

// CaptureResult is the output of the capture command.
type CaptureResult struct {
	Name             string         `json:"name"`
	Mode             string         `json:"mode"`
	ReplicationGamma bool           `json:"replication_gamma"`
	Seed             uint64         `json:"seed"`
	Runs             int            `json:"runs"`
	Draws            int64          `json:"draws"`
	CaptureID        string         `json:"capture_id,omitempty"`
	Out              string         `json:"out,omitempty"`
	Table            *harness.Table `json:"table"`
}

// NewCaptureCommand creates the capture command.
func NewCaptureCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CaptureOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Run many infections and report percentile statistics",
		Long: `Run infections from inoculation to extinction, reduce each to nine
statistics and print their percentile table.

The table can be written as a golden file (--out) and archived in a SQLite
database (--db, env MOLSIM_DB).

Examples:
  molsim capture --mode original --runs 200
  molsim capture --mode pairwise --replication-gamma --out MolineauxStatsPairwiseRG.golden
  molsim capture --db ./molsim.db --name nightly-orig --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCapture(opts, cmd)
		},
	}

	opts.Model.bind(cmd, rootOpts.Env)
	cmd.Flags().IntVarP(&opts.Runs, "runs", "n", harness.DefaultRuns, "number of infections")
	cmd.Flags().StringVar(&opts.Name, "name", "", "capture name for the archive (default: mode name)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write the percentile table to this file")
	cmd.Flags().StringVar(&opts.Database, "db", rootOpts.Env.Database, "archive the capture in this SQLite database (env MOLSIM_DB)")

	return cmd
}

// captureSample runs the capture shared by capture and compare.
func captureSample(ctx context.Context, flags *ModelFlags, runs int, logger *slog.Logger) (*infection.Model, *random.Source, *harness.Sample, *harness.Table, error) {
	if runs <= 0 {
		return nil, nil, nil, nil, NewExitError(ExitCommandError, fmt.Sprintf("--runs must be positive, got %d", runs))
	}
	model, src, err := flags.build()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	sample, err := harness.NewCapturer(model, src, harness.WithLogger(logger)).Capture(ctx, runs)
	if err != nil {
		return nil, nil, nil, nil, WrapExitError(ExitCommandError, "capture failed", err)
	}
	table, err := sample.Percentiles()
	if err != nil {
		return nil, nil, nil, nil, WrapExitError(ExitCommandError, "capture failed", err)
	}
	return model, src, sample, table, nil
}

func runCapture(opts *CaptureOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	model, src, sample, table, err := captureSample(ctx, &opts.Model, opts.Runs, logger)
	if err != nil {
		return err
	}

	result := CaptureResult{
		Name:             opts.Name,
		Mode:             model.Mode().String(),
		ReplicationGamma: model.ReplicationGamma(),
		Seed:             src.CurrentSeed(),
		Runs:             opts.Runs,
		Draws:            src.Draws(),
		Out:              opts.Out,
		Table:            table,
	}
	if result.Name == "" {
		result.Name = result.Mode
	}

	if opts.Out != "" {
		if err := table.WriteFile(opts.Out); err != nil {
			return WrapExitError(ExitCommandError, "failed to write table", err)
		}
		logger.Info("table written", "path", opts.Out)
	}

	if opts.Database != "" {
		id, err := archiveCapture(ctx, opts, model, sample, table, result)
		if err != nil {
			return err
		}
		result.CaptureID = id
	}

	if opts.Format == "json" {
		return formatter(opts.RootOptions, cmd).Success(result)
	}
	printCaptureText(cmd, result)
	return nil
}

func archiveCapture(ctx context.Context, opts *CaptureOptions, model *infection.Model, sample *harness.Sample, table *harness.Table, result CaptureResult) (string, error) {
	var storeOpts []store.Option
	if opts.IDGenerator != nil {
		storeOpts = append(storeOpts, store.WithIDGenerator(opts.IDGenerator))
	}
	st, err := store.Open(opts.Database, storeOpts...)
	if err != nil {
		return "", WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	c, err := st.WriteCapture(ctx, store.Capture{
		Name:             result.Name,
		Mode:             result.Mode,
		ReplicationGamma: result.ReplicationGamma,
		Seed:             result.Seed,
		Runs:             result.Runs,
		Params:           model.Params().Map(),
	}, sample, table)
	if err != nil {
		return "", WrapExitError(ExitCommandError, "failed to archive capture", err)
	}
	return c.ID, nil
}

func printCaptureText(cmd *cobra.Command, r CaptureResult) {
	w := cmd.OutOrStdout()
	p := message.NewPrinter(language.English)

	p.Fprintf(w, "%s: mode %s, replication gamma %v, seed %s\n",
		r.Name, r.Mode, r.ReplicationGamma, strconv.FormatUint(r.Seed, 10))
	p.Fprintf(w, "%d runs, %d random draws\n", r.Runs, r.Draws)
	if r.CaptureID != "" {
		fmt.Fprintf(w, "Archived as %s\n", r.CaptureID)
	}
	if r.Out != "" {
		fmt.Fprintf(w, "Table written to %s\n", r.Out)
	}
	fmt.Fprintln(w)
	fmt.Fprint(w, r.Table.String())
}

// commandContext returns the command's context, or Background when unset.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
