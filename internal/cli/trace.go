package cli

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/molsim/internal/harness"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Model   ModelFlags
	Out     string
	PNG     string
	Compare string
}

// TraceResult is the output of the trace command.
type TraceResult struct {
	Mode      string          `json:"mode"`
	Seed      uint64          `json:"seed"`
	Days      int             `json:"days"`
	Truncated bool            `json:"truncated"`
	Stats     map[string]any  `json:"stats"`
	Out       string          `json:"out,omitempty"`
	PNG       string          `json:"png,omitempty"`
	Report    *harness.Report `json:"report,omitempty"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Trace one infection day by day",
		Long: `Run a single infection and emit its daily blood-stage densities.

The series can be written to a file (--out, "-" for stdout), plotted as a PNG
(--png) or compared with an expected series (--compare).

Examples:
  molsim trace --mode pairwise --seed 7 --out -
  molsim trace --mode original --png infection.png
  molsim trace --compare testdata/orig_seed1095.series`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	opts.Model.bind(cmd, rootOpts.Env)
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", `write the series to this file ("-" for stdout)`)
	cmd.Flags().StringVar(&opts.PNG, "png", "", "plot log10 density to this PNG file")
	cmd.Flags().StringVar(&opts.Compare, "compare", "", "compare with an expected series file")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	model, src, err := opts.Model.build()
	if err != nil {
		return err
	}
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	tr := harness.NewCapturer(model, src, harness.WithLogger(logger)).Run()
	if tr.Truncated {
		logger.Warn("infection truncated", "days", len(tr.Densities))
	}

	stats := tr.Stats()
	result := TraceResult{
		Mode:      model.Mode().String(),
		Seed:      src.CurrentSeed(),
		Days:      len(tr.Densities),
		Truncated: tr.Truncated,
		Stats:     make(map[string]any, len(stats)),
		Out:       opts.Out,
		PNG:       opts.PNG,
	}
	for _, st := range harness.Stats() {
		result.Stats[st.String()] = jsonFloat(stats.Get(st))
	}

	if opts.Out != "" {
		if err := writeSeries(cmd, opts.Out, tr.Densities); err != nil {
			return err
		}
	}
	if opts.PNG != "" {
		if err := writePlot(opts.PNG, model.Mode().String(), tr.Densities); err != nil {
			return err
		}
		logger.Info("plot written", "path", opts.PNG)
	}
	if opts.Compare != "" {
		want, err := readSeriesFile(opts.Compare)
		if err != nil {
			return err
		}
		result.Report = harness.CompareSeries(want, tr.Densities)
		result.Report.Source = opts.Compare
	}

	// The series already went to stdout.
	if opts.Out != "-" {
		if opts.Format == "json" {
			if err := formatter(opts.RootOptions, cmd).Success(result); err != nil {
				return err
			}
		} else {
			printTraceText(cmd, result, stats)
		}
	}

	if result.Report != nil && !result.Report.OK() {
		return NewExitError(ExitFailure, fmt.Sprintf("series drifted from %s", opts.Compare))
	}
	return nil
}

func writeSeries(cmd *cobra.Command, path string, dens []float64) error {
	if path == "-" {
		return harness.WriteSeries(cmd.OutOrStdout(), dens)
	}
	f, err := os.Create(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create series file", err)
	}
	defer f.Close()
	if err := harness.WriteSeries(f, dens); err != nil {
		return WrapExitError(ExitCommandError, "failed to write series", err)
	}
	return f.Close()
}

func writePlot(path, title string, dens []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create plot file", err)
	}
	defer f.Close()
	if err := renderDensityPlot(f, title, dens); err != nil {
		return WrapExitError(ExitCommandError, "failed to render plot", err)
	}
	return f.Close()
}

func readSeriesFile(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open expected series", err)
	}
	defer f.Close()
	want, err := harness.ReadSeries(f)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read expected series", err)
	}
	return want, nil
}

func printTraceText(cmd *cobra.Command, r TraceResult, stats harness.RunStats) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s, seed %d: %d blood-stage days", r.Mode, r.Seed, r.Days)
	if r.Truncated {
		fmt.Fprint(w, " (truncated)")
	}
	fmt.Fprintln(w)
	for _, st := range harness.Stats() {
		fmt.Fprintf(w, "  %-14s %s\n", st, formatStat(stats.Get(st)))
	}
	if r.Report != nil {
		fmt.Fprintln(w)
		io.WriteString(w, r.Report.String())
		if r.Report.OK() {
			fmt.Fprintln(w)
		}
	}
}

// jsonFloat maps non-finite values to nil so they encode as null.
func jsonFloat(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func formatStat(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return strconv.FormatFloat(v, 'g', 5, 64)
}
