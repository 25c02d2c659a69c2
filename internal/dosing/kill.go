package dosing

import (
	"math"

	"github.com/roach88/molsim/internal/sim"
)

// SurvivalFactor yields the fraction of parasites surviving external
// pressure on a given day.
type SurvivalFactor interface {
	Survival(day sim.Day) float64
}

// NoDrug is the survival factor of an untreated host.
type NoDrug struct{}

// Survival always returns 1.
func (NoDrug) Survival(sim.Day) float64 { return 1 }

// KillSchedule is a precomputed per-day survival factor. Each dose kills a
// fraction 1 - exp(-killPerMg·mg) of parasites on each of activeDays days
// starting on its dose day; effects of overlapping doses multiply.
type KillSchedule struct {
	survival map[sim.Day]float64
}

// NewKillSchedule builds the per-day factors for doses.
func NewKillSchedule(doses []Dose, killPerMg float64, activeDays int) *KillSchedule {
	k := &KillSchedule{survival: make(map[sim.Day]float64)}
	for _, d := range doses {
		s := math.Exp(-killPerMg * d.Mg)
		for off := 0; off < activeDays; off++ {
			day := d.Day + sim.Day(off)
			prev, ok := k.survival[day]
			if !ok {
				prev = 1
			}
			k.survival[day] = prev * s
		}
	}
	return k
}

// Survival returns the factor for day, 1 on days without drug action.
func (k *KillSchedule) Survival(day sim.Day) float64 {
	if s, ok := k.survival[day]; ok {
		return s
	}
	return 1
}

// Efficacy returns the killed fraction on day.
func (k *KillSchedule) Efficacy(day sim.Day) float64 {
	return 1 - k.Survival(day)
}
