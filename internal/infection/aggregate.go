package infection

import "math"

// Aggregate law constants, in log10 units.
const (
	// baseWaveCycles is the length of the first antigenic wave; each later
	// wave lasts one cycle longer.
	baseWaveCycles = 4

	// maxWaveDrop caps the trough depth below the envelope.
	maxWaveDrop = 2.0

	// minGrowth keeps a heavily jittered infection rising.
	minGrowth = 0.1

	// tailDecline is the envelope's fall per cycle once the positivity
	// span is over.
	tailDecline = 2.0
)

var (
	floorLog     = math.Log10(ExtinctionFloor)
	detectionLog = math.Log10(DetectionLimit)
)

// aggregateLaw models total log10 density directly: growth to the first peak,
// then a linear envelope from the peak down to the detection limit over the
// positivity span, with antigenic-variation waves below the envelope. Past
// the span the envelope drops by tailDecline per cycle to the floor.
type aggregateLaw struct {
	start      float64 // log10 initial density
	growth     float64 // log10 growth per cycle before the first peak
	peak       float64
	slope      float64 // envelope decline per cycle within the span
	spanCycles float64

	cycle     int
	peakCycle int // -1 until the first peak

	waves     int
	waveStart int
	waveLen   int
	descent   int
	drop      float64

	logSurvival float64
	exhausted   bool
}

func newAggregateLaw(firstMaxLog, diffPosLog, jitter float64) *aggregateLaw {
	start := math.Log10(initialDensity)
	growth := math.Max(math.Log10(muM*jitter), minGrowth)
	peak := math.Max(firstMaxLog, start+growth)
	span := pow10(diffPosLog)

	return &aggregateLaw{
		start:      start,
		growth:     growth,
		peak:       peak,
		slope:      (peak - detectionLog) * cycleDays / span,
		spanCycles: span / cycleDays,
		peakCycle:  -1,
	}
}

func (a *aggregateLaw) initial() float64 {
	return pow10(a.start)
}

func (a *aggregateLaw) extinctionWindow() int {
	return 1
}

func (a *aggregateLaw) envelope(cycle int) float64 {
	t := float64(cycle - a.peakCycle)
	if t > a.spanCycles {
		return detectionLog - tailDecline*(t-a.spanCycles)
	}
	return a.peak - a.slope*t
}

func (a *aggregateLaw) startWave(cycle int) {
	a.waveStart = cycle
	a.waveLen = baseWaveCycles + a.waves
	a.descent = (a.waveLen + 1) / 2
	// The trough stays halfway between the envelope and the floor.
	headroom := a.envelope(cycle) - a.slope*float64(a.descent) - floorLog
	a.drop = math.Max(0, math.Min(maxWaveDrop, headroom/2))
	a.waves++
}

// offset is the wave's depth below the envelope, j cycles into the wave.
func (a *aggregateLaw) offset(j int) float64 {
	if j <= a.descent {
		return -a.drop * float64(j) / float64(a.descent)
	}
	return -a.drop * float64(a.waveLen-j) / float64(a.waveLen-a.descent)
}

func (a *aggregateLaw) advance(survival float64) float64 {
	if a.exhausted {
		return 0
	}
	if survival <= 0 {
		a.exhausted = true
		return 0
	}
	a.logSurvival += math.Log10(survival)
	a.cycle++

	var level float64
	if a.peakCycle < 0 {
		level = a.start + a.growth*float64(a.cycle)
		if level >= a.peak {
			level = a.peak
			a.peakCycle = a.cycle
			a.startWave(a.cycle)
		}
	} else {
		env := a.envelope(a.cycle)
		if env < floorLog {
			a.exhausted = true
			return 0
		}
		j := a.cycle - a.waveStart
		if j >= a.waveLen {
			a.startWave(a.cycle)
			j = 0
		}
		level = env + a.offset(j)
	}

	density := pow10(level + a.logSurvival)
	if density < ExtinctionFloor {
		a.exhausted = true
		return 0
	}
	return density
}
