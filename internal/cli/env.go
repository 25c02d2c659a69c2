package cli

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvDefaults are flag defaults taken from the environment.
type EnvDefaults struct {
	Seed      uint64 `env:"MOLSIM_SEED" envDefault:"1095"`
	Database  string `env:"MOLSIM_DB"`
	GoldenDir string `env:"MOLSIM_GOLDEN_DIR"`
}

// LoadEnv parses EnvDefaults from the process environment.
func LoadEnv() (EnvDefaults, error) {
	var e EnvDefaults
	if err := env.Parse(&e); err != nil {
		return e, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}
