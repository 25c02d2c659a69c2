package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/molsim/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Name     string
}

// HistoryResult is the output of the history command.
type HistoryResult struct {
	Captures []store.Capture `json:"captures"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived captures",
		Long: `List the captures archived in a SQLite database, oldest first.

Examples:
  molsim history --db ./molsim.db
  molsim history --db ./molsim.db --name nightly-orig --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", rootOpts.Env.Database, "SQLite archive (env MOLSIM_DB)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "only list captures with this name")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	if opts.Database == "" {
		return NewExitError(ExitCommandError, "--db is required (or set MOLSIM_DB)")
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	all, err := st.ReadCaptures(commandContext(cmd))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read captures", err)
	}
	result := HistoryResult{Captures: make([]store.Capture, 0, len(all))}
	for _, c := range all {
		if opts.Name == "" || c.Name == store.NormalizeName(opts.Name) {
			result.Captures = append(result.Captures, c)
		}
	}

	if opts.Format == "json" {
		return formatter(opts.RootOptions, cmd).Success(result)
	}

	w := cmd.OutOrStdout()
	if len(result.Captures) == 0 {
		fmt.Fprintln(w, "No captures.")
		return nil
	}
	p := message.NewPrinter(language.English)
	for _, c := range result.Captures {
		p.Fprintf(w, "%4d  %-20s %-18s rg=%-5v seed=%s runs=%d  %s\n",
			c.Seq, c.Name, c.Mode, c.ReplicationGamma, strconv.FormatUint(c.Seed, 10), c.Runs, c.ID)
	}
	return nil
}
