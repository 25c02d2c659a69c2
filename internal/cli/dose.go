package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/molsim/internal/dosing"
	"github.com/roach88/molsim/internal/harness"
	"github.com/roach88/molsim/internal/sim"
)

// DoseOptions holds flags for the dose command.
type DoseOptions struct {
	*RootOptions
	Model      ModelFlags
	Schedule   string
	Table      string
	Key        float64
	Start      int64
	KillPerMg  float64
	ActiveDays int
	Simulate   bool
}

// DoseView is one scaled dose.
type DoseView struct {
	Drug string  `json:"drug"`
	Mg   float64 `json:"mg"`
	Day  int64   `json:"day"`
	Hour float64 `json:"hour"`
}

// DaySurvival is the drug survival factor of one day.
type DaySurvival struct {
	Day      int64   `json:"day"`
	Survival float64 `json:"survival"`
}

// DoseResult is the output of the dose command.
type DoseResult struct {
	Schedule string        `json:"schedule"`
	Table    string        `json:"table"`
	By       string        `json:"by"`
	Key      float64       `json:"key"`
	Doses    []DoseView    `json:"doses"`
	Survival []DaySurvival `json:"survival"`

	// Set with --simulate.
	UntreatedDays *int `json:"untreated_days,omitempty"`
	TreatedDays   *int `json:"treated_days,omitempty"`
}

// NewDoseCommand creates the dose command.
func NewDoseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DoseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dose <dosing.yaml>",
		Short: "Scale a treatment schedule and show its daily survival factors",
		Long: `Look up the dosage multiplier for an age or body mass, scale a treatment
schedule by it and print the doses with the resulting per-day parasite
survival factor.

With --simulate, one infection is run untreated and then treated from the
same seed, and the number of blood-stage days of each is reported.

Examples:
  molsim dose testdata/artemether_lumefantrine.yaml --schedule al6 --table al_age --key 7
  molsim dose al.yaml --schedule al6 --table al_mass --key 32 --start 20 --simulate`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDose(opts, args[0], cmd)
		},
	}

	opts.Model.bind(cmd, rootOpts.Env)
	cmd.Flags().StringVar(&opts.Schedule, "schedule", "", "treatment schedule name (required)")
	cmd.Flags().StringVar(&opts.Table, "table", "", "dosage table name (required)")
	cmd.Flags().Float64Var(&opts.Key, "key", 0, "age in years or body mass in kg, as the table expects")
	cmd.Flags().Int64Var(&opts.Start, "start", 0, "day of the first dose, counted from inoculation")
	cmd.Flags().Float64Var(&opts.KillPerMg, "kill-per-mg", 0.05, "log kill per mg of drug")
	cmd.Flags().IntVar(&opts.ActiveDays, "active-days", 2, "days each dose stays active")
	cmd.Flags().BoolVar(&opts.Simulate, "simulate", false, "run one infection untreated and treated")
	_ = cmd.MarkFlagRequired("schedule")
	_ = cmd.MarkFlagRequired("table")

	return cmd
}

func runDose(opts *DoseOptions, path string, cmd *cobra.Command) error {
	if opts.KillPerMg < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("--kill-per-mg must not be negative, got %v", opts.KillPerMg))
	}
	if opts.ActiveDays < 1 {
		return NewExitError(ExitCommandError, fmt.Sprintf("--active-days must be at least 1, got %d", opts.ActiveDays))
	}

	lib, err := dosing.LoadFile(path)
	if err != nil {
		return configExitError("failed to load dosing file", err)
	}
	regimen, err := lib.Regimen(opts.Schedule, opts.Table)
	if err != nil {
		return configExitError("invalid regimen", err)
	}
	doses, err := regimen.Doses(opts.Key, sim.Day(opts.Start))
	if err != nil {
		return configExitError("dosage lookup failed", err)
	}
	kill := dosing.NewKillSchedule(doses, opts.KillPerMg, opts.ActiveDays)

	result := DoseResult{
		Schedule: opts.Schedule,
		Table:    opts.Table,
		By:       "age",
		Key:      opts.Key,
		Doses:    make([]DoseView, 0, len(doses)),
	}
	if regimen.Table.UseMass() {
		result.By = "mass"
	}
	days := make(map[sim.Day]bool)
	for _, d := range doses {
		result.Doses = append(result.Doses, DoseView{Drug: d.Drug, Mg: d.Mg, Day: int64(d.Day), Hour: d.Hour})
		for off := 0; off < opts.ActiveDays; off++ {
			days[d.Day+sim.Day(off)] = true
		}
	}
	ordered := make([]sim.Day, 0, len(days))
	for day := range days {
		ordered = append(ordered, day)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })
	for _, day := range ordered {
		result.Survival = append(result.Survival, DaySurvival{Day: int64(day), Survival: kill.Survival(day)})
	}

	if opts.Simulate {
		model, src, err := opts.Model.build()
		if err != nil {
			return err
		}
		logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

		untreated := len(harness.NewCapturer(model, src, harness.WithLogger(logger)).Run().Densities)
		src.Reset()
		treated := len(harness.NewCapturer(model, src,
			harness.WithLogger(logger), harness.WithSurvival(kill)).Run().Densities)
		result.UntreatedDays = &untreated
		result.TreatedDays = &treated
	}

	if opts.Format == "json" {
		return formatter(opts.RootOptions, cmd).Success(result)
	}
	printDoseText(cmd, result)
	return nil
}

func printDoseText(cmd *cobra.Command, r DoseResult) {
	w := cmd.OutOrStdout()
	p := message.NewPrinter(language.English)

	p.Fprintf(w, "%s scaled by %s (%s %v)\n", r.Schedule, r.Table, r.By, r.Key)
	for _, d := range r.Doses {
		p.Fprintf(w, "  day %d %5.1fh  %-4s %8.2f mg\n", d.Day, d.Hour, d.Drug, d.Mg)
	}
	fmt.Fprintln(w, "Survival:")
	for _, s := range r.Survival {
		p.Fprintf(w, "  day %d  %.4g\n", s.Day, s.Survival)
	}
	if r.UntreatedDays != nil {
		p.Fprintf(w, "Blood-stage days: %d untreated, %d treated\n", *r.UntreatedDays, *r.TreatedDays)
	}
}
