package dosing

import (
	"math"
	"sort"

	"github.com/roach88/molsim/internal/config"
)

// Range is one row of a dosage table. Keys below Upper, and at or above the
// previous row's Upper, receive Multiplier.
type Range struct {
	Upper      float64 `yaml:"upper"`
	Multiplier float64 `yaml:"multiplier"`
}

// Table maps an age (years) or body mass (kg) to a dose multiplier.
//
// Doses given orally as pills usually have integer multipliers; doses given
// per kg usually have a multiplier of one.
type Table struct {
	name    string
	useMass bool
	upper   []float64
	mult    []float64
}

// NewTable validates ranges and builds a table. Rows may be given in any
// order; thresholds must be distinct.
func NewTable(name string, useMass bool, ranges []Range) (*Table, error) {
	if len(ranges) == 0 {
		return nil, config.NewError(config.ErrCodeDosageTable, name, "table has no ranges")
	}

	sorted := make([]Range, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Upper < sorted[j].Upper })

	t := &Table{
		name:    name,
		useMass: useMass,
		upper:   make([]float64, len(sorted)),
		mult:    make([]float64, len(sorted)),
	}
	for i, r := range sorted {
		if math.IsNaN(r.Upper) {
			return nil, config.NewError(config.ErrCodeDosageTable, name, "row %d: threshold is NaN", i)
		}
		if i > 0 && r.Upper == sorted[i-1].Upper {
			return nil, config.NewError(config.ErrCodeDosageTable, name, "duplicate threshold %v", r.Upper)
		}
		if math.IsNaN(r.Multiplier) || math.IsInf(r.Multiplier, 0) || r.Multiplier < 0 {
			return nil, config.NewError(config.ErrCodeDosageTable, name, "threshold %v: invalid multiplier %v", r.Upper, r.Multiplier)
		}
		t.upper[i] = r.Upper
		t.mult[i] = r.Multiplier
	}
	return t, nil
}

// Multiplier returns the multiplier of the smallest threshold strictly
// greater than key.
func (t *Table) Multiplier(key float64) (float64, error) {
	idx := sort.Search(len(t.upper), func(i int) bool { return t.upper[i] > key })
	if idx == len(t.upper) || math.IsNaN(key) {
		return 0, config.NewError(config.ErrCodeDosageTable, t.name,
			"key %v is beyond the last threshold %v", key, t.upper[len(t.upper)-1])
	}
	return t.mult[idx], nil
}

// Name returns the table's name.
func (t *Table) Name() string { return t.name }

// UseMass reports whether the table is keyed by body mass rather than age.
func (t *Table) UseMass() bool { return t.useMass }

// Len returns the number of thresholds.
func (t *Table) Len() int { return len(t.upper) }
