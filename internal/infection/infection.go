package infection

import (
	"math"

	"github.com/roach88/molsim/internal/sim"
)

// Infection is one strain's density trajectory.
//
// Thread-safety: Infection is NOT safe for concurrent use. It is stepped by
// its owning host loop only.
type Infection struct {
	tag    uint32
	start  sim.Day
	latent sim.Day
	law    growthLaw

	elapsed int64 // Update calls so far
	bsDays  int64 // blood-stage days stepped so far

	current  float64 // density on the latest even blood-stage day
	next     float64 // density on the following even day
	survival float64 // survival accumulated over the current cycle
	density  float64

	belowFloor int
	extinct    bool
	truncated  bool

	firstMaxLog float64
	diffPosLog  float64
}

// Update advances the infection by one day. survival is the fraction of
// parasites surviving external immunity and drugs today, in (0, 1]; values
// outside that range are clamped, and a non-positive value kills the
// infection.
//
// Update returns true once the density has remained at or below
// ExtinctionFloor for the growth law's extinction window, or when the blood
// stage exceeds MaxBloodStageDays. Callers stop stepping after the first
// true; later calls keep returning true with density 0.
func (i *Infection) Update(survival float64, now sim.Day) bool {
	if i.extinct {
		return true
	}
	i.elapsed++

	if now-i.start < i.latent {
		i.density = 0
		return false
	}

	i.survival *= clampSurvival(survival)

	if sim.Day(i.bsDays) > MaxBloodStageDays {
		i.truncated = true
		i.extinguish()
		return true
	}

	if i.bsDays%cycleDays == 0 {
		if i.bsDays == 0 {
			i.current = i.law.initial()
		} else {
			i.current = i.next
		}
		i.next = i.law.advance(i.survival)
		i.survival = 1
		i.density = i.current
	} else {
		i.density = math.Sqrt(i.current * i.next)
	}
	i.bsDays++

	if i.density <= ExtinctionFloor {
		i.density = 0
		i.belowFloor++
	} else {
		i.belowFloor = 0
	}
	if i.belowFloor >= i.law.extinctionWindow() {
		i.extinguish()
	}
	return i.extinct
}

func (i *Infection) extinguish() {
	i.extinct = true
	i.density = 0
	i.current = 0
	i.next = 0
}

func clampSurvival(s float64) float64 {
	switch {
	case !(s > 0):
		return 0
	case s > 1:
		return 1
	default:
		return s
	}
}

// Density returns the density in parasites per µL. It is 0 before the blood
// stage begins and after extinction.
func (i *Infection) Density() float64 {
	return i.density
}

// InBloodStage reports whether the latent period has elapsed, i.e. whether
// Density is a meaningful observation.
func (i *Infection) InBloodStage() bool {
	return i.bsDays > 0
}

// BloodStageDays returns the number of blood-stage days stepped so far.
func (i *Infection) BloodStageDays() int64 {
	return i.bsDays
}

// Elapsed returns the number of Update calls so far.
func (i *Infection) Elapsed() int64 {
	return i.elapsed
}

// Extinct reports whether Update has signalled extinction.
func (i *Infection) Extinct() bool {
	return i.extinct
}

// Truncated reports whether extinction was forced by MaxBloodStageDays.
func (i *Infection) Truncated() bool {
	return i.truncated
}

// Start returns the inoculation day.
func (i *Infection) Start() sim.Day {
	return i.start
}

// Tag returns the caller-supplied drug model tag.
func (i *Infection) Tag() uint32 {
	return i.tag
}

// FirstMaxLog returns the drawn log10 density of the first local maximum.
func (i *Infection) FirstMaxLog() float64 {
	return i.firstMaxLog
}

// DiffPosDaysLog returns the drawn log10 span between first and last
// positive days.
func (i *Infection) DiffPosDaysLog() float64 {
	return i.diffPosLog
}
