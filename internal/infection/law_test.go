package infection

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformFactors(m float64) []float64 {
	f := make([]float64, numVariants)
	for i := range f {
		f[i] = m
	}
	return f
}

func TestSwitchTable_RowsSumToOne(t *testing.T) {
	tbl := newSwitchTable()
	for j := 0; j < numVariants; j++ {
		var sum float64
		for i := 0; i < numVariants; i++ {
			if i != j {
				sum += tbl.weight[i] / (tbl.total - tbl.weight[j])
			}
		}
		assert.InDelta(t, 1.0, sum, 1e-12, "switches away from variant %d", j)
	}
	assert.Greater(t, tbl.weight[0], tbl.weight[numVariants-1])
}

func TestVariantEngine_SwitchingConservesParasites(t *testing.T) {
	tbl := newSwitchTable()
	// A huge first peak makes innate and acquired suppression negligible.
	e := newVariantEngine(&tbl, uniformFactors(16), 30, 30)

	assert.InDelta(t, initialDensity, e.initial(), 1e-15)
	total := e.advance(1)
	assert.InEpsilon(t, 16*initialDensity, total, 1e-9)
	assert.Greater(t, e.p[1], 0.0, "switching seeds other variants")
	assert.Less(t, e.p[1], e.p[0])
}

func TestVariantEngine_SurvivalScalesDensity(t *testing.T) {
	tbl := newSwitchTable()
	full := newVariantEngine(&tbl, uniformFactors(16), 30, 30)
	half := newVariantEngine(&tbl, uniformFactors(16), 30, 30)

	assert.InEpsilon(t, full.advance(1)/2, half.advance(0.5), 1e-12)
}

func TestVariantEngine_FloorZeroesAllVariants(t *testing.T) {
	tbl := newSwitchTable()
	e := newVariantEngine(&tbl, uniformFactors(16), 4, 2)

	assert.Equal(t, 0.0, e.advance(1e-9))
	assert.Equal(t, 0.0, e.total())
	assert.Equal(t, 0.0, e.advance(1), "a cleared engine stays cleared")
}

func TestVariantEngine_InnateImmunityLimitsPeak(t *testing.T) {
	tbl := newSwitchTable()
	e := newVariantEngine(&tbl, uniformFactors(16), 4, 2.3)

	var peak float64
	for c := 0; c < 20; c++ {
		peak = math.Max(peak, e.advance(1))
	}
	// Growth stalls near 2.5 P*_c, with P*_c = 0.4 * 10^4.
	assert.Less(t, peak, 16*2.5*kC*1e4)
	assert.Greater(t, peak, kC*1e4)
}

func TestVariantEngine_AcquiredImmunityDelayed(t *testing.T) {
	tbl := newSwitchTable()
	e := newVariantEngine(&tbl, uniformFactors(16), 30, 30)

	for c := 0; c < immuneDelayCycles; c++ {
		e.advance(1)
		assert.Equal(t, 0.0, e.pm, "no exposure folded before the delay, cycle %d", c)
	}
	e.advance(1)
	assert.InDelta(t, initialDensity, e.pm, 1e-15)
	assert.InDelta(t, initialDensity, e.pv[0], 1e-15)
}

func TestAggregateLaw_RisesToDrawnPeak(t *testing.T) {
	a := newAggregateLaw(4.5, 2.2, 1)
	require.InDelta(t, initialDensity, a.initial(), 1e-15)

	prev := math.Log10(a.initial())
	var peak float64
	for {
		d := a.advance(1)
		require.Greater(t, d, 0.0)
		l := math.Log10(d)
		if l < prev {
			break
		}
		peak = l
		prev = l
	}
	assert.InDelta(t, 4.5, peak, 1e-9, "the first peak is the drawn first maximum")
}

func TestAggregateLaw_WavesProduceLocalMaxima(t *testing.T) {
	a := newAggregateLaw(4.7, 2.3, 1)
	series := []float64{a.initial()}
	for {
		d := a.advance(1)
		if d == 0 {
			break
		}
		series = append(series, d)
	}

	var maxima int
	for k := 1; k+1 < len(series); k++ {
		if series[k] > series[k-1] && series[k] > series[k+1] {
			maxima++
		}
	}
	assert.Greater(t, maxima, 3)

	// Positivity ends roughly one span after the peak.
	days := float64(len(series) * cycleDays)
	span := math.Pow(10, 2.3)
	assert.InDelta(t, span, days, span*0.25)
}

func TestAggregateLaw_ExhaustedStaysZero(t *testing.T) {
	a := newAggregateLaw(4.7, 2.3, 1)
	a.advance(1)
	assert.Equal(t, 0.0, a.advance(0))
	assert.Equal(t, 0.0, a.advance(1))
	assert.Equal(t, 1, a.extinctionWindow())
}

func TestAggregateLaw_JitterFloorsGrowth(t *testing.T) {
	a := newAggregateLaw(4.7, 2.3, 1e-6)
	assert.Equal(t, minGrowth, a.growth)
}

func TestAggregateLaw_EnvelopeEndsAtDetectionLimit(t *testing.T) {
	a := newAggregateLaw(4.7, 2.3, 1)
	for a.peakCycle < 0 {
		a.advance(1)
	}
	end := a.peakCycle + int(math.Ceil(a.spanCycles))

	assert.InDelta(t, 4.7, a.envelope(a.peakCycle), 1e-12)
	assert.Greater(t, a.envelope(end-1), detectionLog)
	assert.InDelta(t, detectionLog, a.envelope(end), 2*tailDecline)
	assert.Less(t, a.envelope(end+3), floorLog, "the tail reaches the floor within three cycles")
}

func TestAggregateLaw_MostOfSpanAboveDetection(t *testing.T) {
	a := newAggregateLaw(4.7, 2.3, 1)
	var patent, total int
	for {
		d := a.advance(1)
		if d == 0 {
			break
		}
		total++
		if d > DetectionLimit {
			patent++
		}
	}
	assert.Greater(t, float64(patent)/float64(total), 0.6)
}

func TestVariantEngine_LateClearanceEndsInfection(t *testing.T) {
	tbl := newSwitchTable()
	// No innate or acquired suppression: only the span limits growth.
	e := newVariantEngine(&tbl, uniformFactors(1.5), 30, 2)
	require.InDelta(t, 50, e.spanCycles, 1e-9)

	cycles := 0
	for e.advance(1) > 0 {
		cycles++
		require.Less(t, cycles, 100, "engine failed to clear")
	}
	assert.GreaterOrEqual(t, cycles, 50, "growth continues through the span")
}
