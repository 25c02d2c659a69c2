package dosing

import (
	"fmt"
	"math"

	"github.com/roach88/molsim/internal/config"
	"github.com/roach88/molsim/internal/sim"
)

// Medication is one administration within a treatment course.
type Medication struct {
	Drug string  `yaml:"drug"`
	Mg   float64 `yaml:"mg"`
	Hour float64 `yaml:"hour"` // offset from the start of treatment
}

// Schedule is a named treatment course.
type Schedule struct {
	Name        string       `yaml:"name"`
	Medications []Medication `yaml:"medicate"`
}

// Validate checks every medication has a drug, a non-negative amount and a
// non-negative offset.
func (s Schedule) Validate() error {
	if len(s.Medications) == 0 {
		return config.NewError(config.ErrCodeDosageTable, s.Name, "schedule has no medications")
	}
	for i, m := range s.Medications {
		if m.Drug == "" {
			return config.NewError(config.ErrCodeDosageTable, s.Name, "medication %d: drug not set", i)
		}
		if !(m.Mg >= 0) || math.IsInf(m.Mg, 0) {
			return config.NewError(config.ErrCodeDosageTable, s.Name, "medication %d: invalid amount %v mg", i, m.Mg)
		}
		if !(m.Hour >= 0) || math.IsInf(m.Hour, 0) {
			return config.NewError(config.ErrCodeDosageTable, s.Name, "medication %d: invalid hour %v", i, m.Hour)
		}
	}
	return nil
}

// Dose is a medication scaled for one patient and placed on the day grid.
type Dose struct {
	Drug string
	Mg   float64
	Day  sim.Day
	Hour float64 // hour within Day
}

// Regimen pairs a schedule with the dosage table used to scale it.
type Regimen struct {
	Schedule Schedule
	Table    *Table
}

// Doses scales the schedule by the table multiplier for key (age or mass)
// and anchors it at day start.
func (r Regimen) Doses(key float64, start sim.Day) ([]Dose, error) {
	if r.Table == nil {
		return nil, config.NewError(config.ErrCodeDosageTable, r.Schedule.Name, "regimen has no dosage table")
	}
	mult, err := r.Table.Multiplier(key)
	if err != nil {
		return nil, fmt.Errorf("regimen %s: %w", r.Schedule.Name, err)
	}

	doses := make([]Dose, 0, len(r.Schedule.Medications))
	for _, m := range r.Schedule.Medications {
		whole := math.Floor(m.Hour / 24)
		doses = append(doses, Dose{
			Drug: m.Drug,
			Mg:   m.Mg * mult,
			Day:  start + sim.Day(whole),
			Hour: m.Hour - whole*24,
		})
	}
	return doses, nil
}
