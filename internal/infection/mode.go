package infection

import (
	"github.com/roach88/molsim/internal/config"
)

// Mode selects the growth law and how the fitted constants are sampled.
type Mode int

const (
	// ModePairwise is the aggregate log-growth law driven by a drawn first
	// peak and positivity span.
	ModePairwise Mode = iota

	// ModeOriginal is the variant-competition engine with normally
	// distributed first peak and positivity span.
	ModeOriginal

	// ModeFirstMaxGamma draws the first peak from a gamma distribution.
	ModeFirstMaxGamma

	// ModeMeanDurGamma draws the positivity span from a gamma distribution.
	ModeMeanDurGamma

	// ModeBothGamma draws both from gamma distributions.
	ModeBothGamma
)

var modeNames = map[Mode]string{
	ModePairwise:      "pairwise",
	ModeOriginal:      "original",
	ModeFirstMaxGamma: "1st_max_gamma",
	ModeMeanDurGamma:  "mean_dur_gamma",
	ModeBothGamma:     "1st_max_and_mean_dur_gamma",
}

// Modes returns every mode in declaration order.
func Modes() []Mode {
	return []Mode{ModePairwise, ModeOriginal, ModeFirstMaxGamma, ModeMeanDurGamma, ModeBothGamma}
}

// ParseMode maps a mode name to a Mode.
func ParseMode(name string) (Mode, error) {
	for _, m := range Modes() {
		if modeNames[m] == name {
			return m, nil
		}
	}
	return 0, config.NewError(config.ErrCodeUnknownMode, name, "unknown variant mode")
}

// String returns the mode's configuration name.
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// VariantEngine reports whether m uses the variant-competition engine.
func (m Mode) VariantEngine() bool {
	return m != ModePairwise
}

func (m Mode) firstMaxGamma() bool {
	return m == ModeFirstMaxGamma || m == ModeBothGamma
}

func (m Mode) meanDurGamma() bool {
	return m == ModeMeanDurGamma || m == ModeBothGamma
}
