package cli

import (
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/molsim/internal/config"
	"github.com/roach88/molsim/internal/infection"
	"github.com/roach88/molsim/internal/random"
)

// ModelFlags select the model a command simulates.
type ModelFlags struct {
	Mode             string
	ReplicationGamma bool
	Seed             uint64
	Params           string
}

func (f *ModelFlags) bind(cmd *cobra.Command, env EnvDefaults) {
	names := make([]string, 0, len(infection.Modes()))
	for _, m := range infection.Modes() {
		names = append(names, m.String())
	}
	cmd.Flags().StringVar(&f.Mode, "mode", infection.ModeOriginal.String(),
		"variant mode ("+strings.Join(names, "|")+")")
	cmd.Flags().BoolVar(&f.ReplicationGamma, "replication-gamma", false, "jitter multiplication factors with Gamma(10, 0.1)")
	cmd.Flags().Uint64Var(&f.Seed, "seed", env.Seed, "random seed (env MOLSIM_SEED)")
	cmd.Flags().StringVar(&f.Params, "params", "", "CUE file with fitted parameters (default: built-in fit)")
}

// parameters loads the parameter file or returns the fitted defaults.
func (f *ModelFlags) parameters() (*config.ParameterSet, error) {
	if f.Params == "" {
		return config.Default(), nil
	}
	return config.LoadFile(f.Params)
}

// build validates the flags and constructs the model and a fresh source.
// All failures are configuration errors.
func (f *ModelFlags) build() (*infection.Model, *random.Source, error) {
	mode, err := infection.ParseMode(f.Mode)
	if err != nil {
		return nil, nil, configExitError("invalid mode", err)
	}
	params, err := f.parameters()
	if err != nil {
		return nil, nil, configExitError("failed to load parameters", err)
	}
	model, err := infection.NewModel(infection.Setup{
		Params:           params,
		Mode:             mode,
		ReplicationGamma: f.ReplicationGamma,
	})
	if err != nil {
		return nil, nil, configExitError("failed to build model", err)
	}
	return model, random.New(f.Seed), nil
}

// newLogger returns a text logger on w; debug level when verbose.
func newLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
