package infection

import "math"

// Variant-competition constants (Molineaux et al. 2001).
const (
	numVariants = 50

	// switchRate is the fraction of each variant's progeny switching per cycle.
	switchRate = 0.02

	// switchDecay and switchGroup shape the target weights q^(j/group).
	switchDecay = 0.3
	switchGroup = 5.0

	// Innate immunity.
	kappaC = 3.0
	kC     = 0.4

	// Variant-transcending acquired immunity.
	kappaM = 1.0
	betaM  = 0.01
	kM     = 0.002

	// Variant-specific acquired immunity, thresholded relative to P*_c.
	kappaV = 3.0
	kV     = 1.0

	// Acquired responses see exposure delayed by 8 days (4 cycles).
	immuneDelayCycles = 8 / cycleDays

	// lateClearance is the log10 drop of S_m per cycle past the drawn
	// positivity span; the total then falls below the floor within a few
	// cycles of the span.
	lateClearance = 0.5
)

// switchTable holds the switching weights. p_ji, the probability that a
// switch away from j lands on i, is w_i / (W - w_j).
type switchTable struct {
	weight [numVariants]float64
	total  float64
}

func newSwitchTable() switchTable {
	var t switchTable
	for j := range t.weight {
		t.weight[j] = math.Pow(switchDecay, float64(j)/switchGroup)
		t.total += t.weight[j]
	}
	return t
}

// variantEngine tracks per-variant densities and the delayed cumulative
// exposures that drive acquired immunity.
type variantEngine struct {
	switching *switchTable
	factor    []float64 // multiplication factor per variant

	p      [numVariants]float64 // densities at the latest cycle
	pv     [numVariants]float64 // delayed cumulative exposure per variant
	pm     float64              // delayed cumulative total exposure
	recent [][numVariants]float64

	pStarC float64
	pStarM float64
	pStarV float64

	cycle      int
	spanCycles float64 // drawn positivity span in cycles
}

func newVariantEngine(switching *switchTable, factors []float64, firstMaxLog, diffPosLog float64) *variantEngine {
	peak := pow10(firstMaxLog)
	e := &variantEngine{
		switching:  switching,
		factor:     factors,
		pStarC:     kC * peak,
		pStarM:     kM * peak * pow10(diffPosLog),
		spanCycles: pow10(diffPosLog) / cycleDays,
		recent:     make([][numVariants]float64, 0, immuneDelayCycles+1),
	}
	e.pStarV = kV * e.pStarC
	e.p[0] = initialDensity
	return e
}

func (e *variantEngine) initial() float64 {
	return e.total()
}

func (e *variantEngine) extinctionWindow() int {
	return cycleDays
}

func (e *variantEngine) total() float64 {
	var sum float64
	for _, v := range e.p {
		sum += v
	}
	return sum
}

// remember queues the current densities and folds exposure older than the
// immune delay into the cumulative totals.
func (e *variantEngine) remember() {
	e.recent = append(e.recent, e.p)
	if len(e.recent) <= immuneDelayCycles {
		return
	}
	oldest := e.recent[0]
	e.recent = e.recent[1:]
	for i, v := range oldest {
		e.pv[i] += v
		e.pm += v
	}
}

func (e *variantEngine) advance(survival float64) float64 {
	total := e.total()
	if total == 0 {
		return 0
	}
	e.remember()
	e.cycle++

	sc := 1 / (1 + math.Pow(total/e.pStarC, kappaC))
	sm := (1-betaM)/(1+math.Pow(e.pm/e.pStarM, kappaM)) + betaM
	if past := float64(e.cycle) - e.spanCycles; past > 0 {
		sm *= pow10(-lateClearance * past)
	}
	common := sc * sm * survival

	// Sum of P_j / (W - w_j): every variant's switched progeny spread over
	// the other variants.
	w := &e.switching.weight
	var spread float64
	for j, pj := range e.p {
		spread += pj / (e.switching.total - w[j])
	}

	var next [numVariants]float64
	var sum float64
	for i, pi := range e.p {
		inflow := switchRate * w[i] * (spread - pi/(e.switching.total-w[i]))
		sv := 1 / (1 + math.Pow(e.pv[i]/e.pStarV, kappaV))
		next[i] = e.factor[i] * ((1-switchRate)*pi + inflow) * sv * common
		sum += next[i]
	}

	if sum < ExtinctionFloor {
		e.p = [numVariants]float64{}
		return 0
	}
	e.p = next
	return sum
}
