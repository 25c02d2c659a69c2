package config

import "math"

// Parameter names as they appear in parameter files.
const (
	ParamFirstMaxMean    = "first_max_mean"
	ParamFirstMaxSD      = "first_max_sd"
	ParamDiffPosDaysMean = "diff_pos_days_mean"
	ParamDiffPosDaysSD   = "diff_pos_days_sd"
)

// ParameterSet holds the externally fitted constants of the Molineaux model.
// Both pairs describe normal distributions in log10 units: the density of the
// first local maximum, and the number of days between the first and last
// positive observation.
//
// A ParameterSet is immutable once constructed; share it by pointer.
type ParameterSet struct {
	firstMaxMean    float64
	firstMaxSD      float64
	diffPosDaysMean float64
	diffPosDaysSD   float64
}

// New validates and returns a ParameterSet.
func New(firstMaxMean, firstMaxSD, diffPosDaysMean, diffPosDaysSD float64) (*ParameterSet, error) {
	checks := []struct {
		name     string
		value    float64
		positive bool
	}{
		{ParamFirstMaxMean, firstMaxMean, false},
		{ParamFirstMaxSD, firstMaxSD, true},
		{ParamDiffPosDaysMean, diffPosDaysMean, false},
		{ParamDiffPosDaysSD, diffPosDaysSD, true},
	}
	for _, c := range checks {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return nil, NewError(ErrCodeInvalidParameter, c.name, "value must be finite, got %v", c.value)
		}
		if c.positive && c.value <= 0 {
			return nil, NewError(ErrCodeInvalidParameter, c.name, "standard deviation must be positive, got %v", c.value)
		}
	}

	return &ParameterSet{
		firstMaxMean:    firstMaxMean,
		firstMaxSD:      firstMaxSD,
		diffPosDaysMean: diffPosDaysMean,
		diffPosDaysSD:   diffPosDaysSD,
	}, nil
}

// Default returns the constants fitted outside the simulator to the
// malariatherapy data.
func Default() *ParameterSet {
	return &ParameterSet{
		firstMaxMean:    4.7601,
		firstMaxSD:      0.5008,
		diffPosDaysMean: 2.2736,
		diffPosDaysSD:   0.2315,
	}
}

// FirstMaxMean is the mean log10 density of the first local maximum.
func (p *ParameterSet) FirstMaxMean() float64 { return p.firstMaxMean }

// FirstMaxSD is the SD of the log10 density of the first local maximum.
func (p *ParameterSet) FirstMaxSD() float64 { return p.firstMaxSD }

// DiffPosDaysMean is the mean log10 span between first and last positive day.
func (p *ParameterSet) DiffPosDaysMean() float64 { return p.diffPosDaysMean }

// DiffPosDaysSD is the SD of the log10 span between first and last positive day.
func (p *ParameterSet) DiffPosDaysSD() float64 { return p.diffPosDaysSD }

// Map returns the constants keyed by parameter file name.
func (p *ParameterSet) Map() map[string]float64 {
	return map[string]float64{
		ParamFirstMaxMean:    p.firstMaxMean,
		ParamFirstMaxSD:      p.firstMaxSD,
		ParamDiffPosDaysMean: p.diffPosDaysMean,
		ParamDiffPosDaysSD:   p.diffPosDaysSD,
	}
}
