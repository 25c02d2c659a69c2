package infection

import (
	"math"

	"github.com/roach88/molsim/internal/config"
	"github.com/roach88/molsim/internal/random"
	"github.com/roach88/molsim/internal/sim"
)

// Engine constants. Densities are parasites per µL.
const (
	// ExtinctionFloor is the density at or below which a sample counts as zero.
	ExtinctionFloor = 1e-5

	// MaxBloodStageDays bounds an infection's blood stage. An infection still
	// alive after this many days is forced extinct.
	MaxBloodStageDays sim.Day = 3650

	// DetectionLimit is the density above which a blood film reads positive.
	DetectionLimit = 10.0

	// DefaultLatentPeriod is the delay between inoculation and the first
	// meaningful density.
	DefaultLatentPeriod sim.Day = 15

	initialDensity = 0.1
	cycleDays      = 2

	// Multiplication factor per cycle.
	muM    = 16.0
	sigmaM = 10.4

	// Replication gamma jitter: shape 10, scale 0.1 (mean 1).
	replGammaShape = 10.0
	replGammaScale = 0.1
)

// Setup configures a Model.
type Setup struct {
	// Params are the fitted constants. Required.
	Params *config.ParameterSet

	// Mode selects the growth law.
	Mode Mode

	// ReplicationGamma jitters multiplication factors with a mean-one gamma
	// variate drawn per infection.
	ReplicationGamma bool

	// LatentPeriod defaults to DefaultLatentPeriod when zero.
	LatentPeriod sim.Day
}

// Model is the immutable configuration shared by all infections of a run.
// Building a new Model replaces the constants for infections created from it;
// existing infections keep the Model they were built with.
type Model struct {
	params    *config.ParameterSet
	mode      Mode
	replGamma bool
	latent    sim.Day
	switching switchTable
}

// NewModel validates s and returns a Model. Configuration problems are
// reported here, never per step.
func NewModel(s Setup) (*Model, error) {
	if s.Params == nil {
		return nil, config.NewError(config.ErrCodeMissingParameter, "params", "fitted parameter set not initialized")
	}
	if !s.Mode.Valid() {
		return nil, config.NewError(config.ErrCodeUnknownMode, s.Mode.String(), "unknown variant mode %d", int(s.Mode))
	}
	if s.LatentPeriod < 0 {
		return nil, config.NewError(config.ErrCodeInvalidParameter, "latent_period", "must not be negative, got %d", s.LatentPeriod)
	}
	if s.Mode.firstMaxGamma() && s.Params.FirstMaxMean() <= 0 {
		return nil, config.NewError(config.ErrCodeInvalidParameter, config.ParamFirstMaxMean,
			"mode %s needs a positive mean, got %v", s.Mode, s.Params.FirstMaxMean())
	}
	if s.Mode.meanDurGamma() && s.Params.DiffPosDaysMean() <= 0 {
		return nil, config.NewError(config.ErrCodeInvalidParameter, config.ParamDiffPosDaysMean,
			"mode %s needs a positive mean, got %v", s.Mode, s.Params.DiffPosDaysMean())
	}

	latent := s.LatentPeriod
	if latent == 0 {
		latent = DefaultLatentPeriod
	}

	return &Model{
		params:    s.Params,
		mode:      s.Mode,
		replGamma: s.ReplicationGamma,
		latent:    latent,
		switching: newSwitchTable(),
	}, nil
}

// Mode returns the configured mode.
func (m *Model) Mode() Mode { return m.mode }

// ReplicationGamma reports whether replication jitter is enabled.
func (m *Model) ReplicationGamma() bool { return m.replGamma }

// LatentPeriod returns the latent period in days.
func (m *Model) LatentPeriod() sim.Day { return m.latent }

// Params returns the shared fitted constants.
func (m *Model) Params() *config.ParameterSet { return m.params }

// NewInfection creates an infection inoculated on day start. All of its
// stochastic parameters are drawn from src here, in a fixed order: first peak,
// positivity span, growth-law draws, replication jitter.
//
// tag identifies the infection to an external drug model; the engine only
// stores it.
func (m *Model) NewInfection(src *random.Source, tag uint32, start sim.Day) *Infection {
	firstMax := m.drawFirstMax(src)
	diffPos := m.drawDiffPosDays(src)

	var law growthLaw
	if m.mode.VariantEngine() {
		factors := drawMultiplicationFactors(src, m.replGamma)
		law = newVariantEngine(&m.switching, factors, firstMax, diffPos)
	} else {
		jitter := 1.0
		if m.replGamma {
			jitter = src.Gamma(replGammaShape, replGammaScale)
		}
		law = newAggregateLaw(firstMax, diffPos, jitter)
	}

	return &Infection{
		tag:         tag,
		start:       start,
		latent:      m.latent,
		law:         law,
		survival:    1,
		firstMaxLog: firstMax,
		diffPosLog:  diffPos,
	}
}

func (m *Model) drawFirstMax(src *random.Source) float64 {
	if m.mode.firstMaxGamma() {
		return src.GammaMeanSD(m.params.FirstMaxMean(), m.params.FirstMaxSD())
	}
	return src.Normal(m.params.FirstMaxMean(), m.params.FirstMaxSD())
}

func (m *Model) drawDiffPosDays(src *random.Source) float64 {
	if m.mode.meanDurGamma() {
		return src.GammaMeanSD(m.params.DiffPosDaysMean(), m.params.DiffPosDaysSD())
	}
	return src.Normal(m.params.DiffPosDaysMean(), m.params.DiffPosDaysSD())
}

// drawMultiplicationFactors draws one factor per variant, rejecting factors
// below one, then applies the replication jitter if enabled.
func drawMultiplicationFactors(src *random.Source, replGamma bool) []float64 {
	factors := make([]float64, numVariants)
	for i := range factors {
		m := src.Normal(muM, sigmaM)
		for m < 1 {
			m = src.Normal(muM, sigmaM)
		}
		factors[i] = m
	}
	if replGamma {
		for i := range factors {
			factors[i] *= src.Gamma(replGammaShape, replGammaScale)
		}
	}
	return factors
}

// growthLaw advances a density on the two-day replication cycle.
type growthLaw interface {
	// initial returns the total density on blood-stage day 0.
	initial() float64

	// advance moves one cycle forward, applying the survival factor
	// accumulated over the cycle, and returns the new total density.
	advance(survival float64) float64

	// extinctionWindow is the number of consecutive sub-floor days that end
	// the infection.
	extinctionWindow() int
}

func pow10(x float64) float64 {
	return math.Pow(10, x)
}
