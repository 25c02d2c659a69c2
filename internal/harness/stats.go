package harness

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/roach88/molsim/internal/infection"
)

// Stat identifies one of the nine per-run statistics.
type Stat int

// Canonical statistic order. Files are written and compared in this order.
const (
	InitSlope Stat = iota
	Log1stMax
	NoMax
	SlopeMax
	GMInterv
	SDLog
	PropPos1st
	PropPos2nd
	LastPosDay

	numStats
)

var statNames = [numStats]string{
	InitSlope:  "init_slope",
	Log1stMax:  "log_1st_max",
	NoMax:      "no_max",
	SlopeMax:   "slope_max",
	GMInterv:   "GM_interv",
	SDLog:      "SD_log",
	PropPos1st: "prop_pos_1st",
	PropPos2nd: "prop_pos_2nd",
	LastPosDay: "last_pos_day",
}

// Stats returns the statistics in canonical order.
func Stats() []Stat {
	out := make([]Stat, numStats)
	for i := range out {
		out[i] = Stat(i)
	}
	return out
}

// String returns the statistic's file name.
func (s Stat) String() string {
	if s < 0 || s >= numStats {
		return fmt.Sprintf("Stat(%d)", int(s))
	}
	return statNames[s]
}

// Sampling constants.
const (
	// sampleStart is the first sampled day; with sampleStep 2 the samples
	// coincide with the model's own updates rather than interpolated days.
	sampleStart = 0
	sampleStep  = 2

	// DetectionLimit is the density (parasites/µL) above which a sample
	// counts as an observed positive.
	DetectionLimit = infection.DetectionLimit
)

// RunStats holds the nine statistics of one run, indexed by Stat.
type RunStats [numStats]float64

// Get returns one statistic.
func (r RunStats) Get(s Stat) float64 { return r[s] }

// emptyRunStats returns a RunStats with every statistic NaN.
func emptyRunStats() RunStats {
	var r RunStats
	for i := range r {
		r[i] = math.NaN()
	}
	return r
}

// LocalMaxima returns the sampled days whose density strictly exceeds both
// stride neighbours. Non-zero densities are assumed never to repeat exactly.
func LocalMaxima(dens []float64) []int {
	var days []int
	for day := sampleStart; day < len(dens); day += sampleStep {
		if day >= sampleStep && day+sampleStep < len(dens) &&
			dens[day] > dens[day-sampleStep] && dens[day] > dens[day+sampleStep] {
			days = append(days, day)
		}
	}
	return days
}

// Reduce computes the nine statistics of one blood-stage density series.
// Day 0 of dens is the first blood-stage day. When no local maximum is
// found every statistic except no_max and last_pos_day stays NaN.
func Reduce(dens []float64) RunStats {
	r := emptyRunStats()

	firstPos, lastPos := 0, 0
	seenPos := false
	for day := sampleStart; day < len(dens); day += sampleStep {
		if dens[day] > 0 {
			if !seenPos {
				firstPos = day
				seenPos = true
			}
			lastPos = day
		}
	}

	maxDays := LocalMaxima(dens)
	r[LastPosDay] = float64(lastPos - firstPos)
	r[NoMax] = float64(len(maxDays))
	if len(maxDays) == 0 {
		return r
	}

	maxT := make([]float64, len(maxDays))
	maxLD := make([]float64, len(maxDays))
	for i, day := range maxDays {
		maxT[i] = float64(day)
		maxLD[i] = math.Log10(dens[day])
	}
	r[Log1stMax] = maxLD[0]

	var initT, initLD []float64
	for day := firstPos; day <= maxDays[0]; day += sampleStep {
		initT = append(initT, float64(day))
		initLD = append(initLD, math.Log10(dens[day]))
	}
	r[InitSlope] = slope(initT, initLD)
	r[SlopeMax] = slope(maxT, maxLD)

	// A single maximum gives gm^(1/0) = 1^+Inf = 1.
	gm := 1.0
	logIntervals := make([]float64, 0, len(maxT)-1)
	for i := 1; i < len(maxT); i++ {
		interval := maxT[i] - maxT[i-1]
		gm *= interval
		logIntervals = append(logIntervals, math.Log10(interval))
	}
	r[GMInterv] = math.Pow(gm, 1/float64(len(maxT)-1))
	if len(logIntervals) >= 2 {
		r[SDLog] = stat.StdDev(logIntervals, nil)
	}

	midPos := (firstPos + lastPos) / 2
	midPos = sampleStart + ((midPos-sampleStart)/sampleStep)*sampleStep

	pos := 0.0
	for day := firstPos; day <= midPos; day += sampleStep {
		if dens[day] > DetectionLimit {
			pos++
		}
	}
	// Both firstPos and midPos are counted.
	r[PropPos1st] = pos / float64((midPos-firstPos)/sampleStep+1)

	pos = 0
	for day := midPos + sampleStep; day <= lastPos; day += sampleStep {
		if dens[day] > DetectionLimit {
			pos++
		}
	}
	r[PropPos2nd] = pos / float64((lastPos-midPos)/sampleStep)

	return r
}

// slope is the ordinary least squares slope of y against x; NaN for fewer
// than two points.
func slope(x, y []float64) float64 {
	if len(x) < 2 {
		return math.NaN()
	}
	_, beta := stat.LinearRegression(x, y, nil, false)
	return beta
}

// Indices are the positions of the reported percentiles in a sorted array.
type Indices struct {
	C5, Q1, Med, Q3, C95 int
}

// PercentileIndices returns the percentile positions for a sorted array of
// size elements. Divisions round to nearest.
func PercentileIndices(size int) Indices {
	last := size - 1
	return Indices{
		C5:  (last + 10) / 20,
		Q1:  (last + 2) / 4,
		Med: (last + 1) / 2,
		Q3:  (last*3 + 2) / 4,
		C95: (last*19 + 10) / 20,
	}
}

// Slice returns the indices in column order.
func (ix Indices) Slice() [numColumns]int {
	return [numColumns]int{ix.C5, ix.Q1, ix.Med, ix.Q3, ix.C95}
}

// Sample accumulates RunStats over many runs.
type Sample struct {
	values [numStats][]float64
	sorted bool
}

// NewSample creates an empty sample with room for n runs.
func NewSample(n int) *Sample {
	s := &Sample{}
	for i := range s.values {
		s.values[i] = make([]float64, 0, n)
	}
	return s
}

// Add appends one run's statistics.
func (s *Sample) Add(r RunStats) {
	for i, v := range r {
		s.values[i] = append(s.values[i], v)
	}
	s.sorted = false
}

// Len returns the number of runs.
func (s *Sample) Len() int { return len(s.values[0]) }

// Sort orders each statistic ascending, independently of the others.
// NaN values sort first.
func (s *Sample) Sort() {
	for i := range s.values {
		slices.Sort(s.values[i])
	}
	s.sorted = true
}

// Values returns the collected values of one statistic. The slice is shared.
func (s *Sample) Values(st Stat) []float64 { return s.values[st] }

// Percentiles sorts the sample if needed and extracts the percentile table.
func (s *Sample) Percentiles() (*Table, error) {
	if s.Len() == 0 {
		return nil, fmt.Errorf("percentiles of an empty sample")
	}
	if !s.sorted {
		s.Sort()
	}
	ix := PercentileIndices(s.Len()).Slice()
	t := &Table{Runs: s.Len(), Rows: make([]Row, numStats)}
	for _, st := range Stats() {
		row := Row{Stat: st.String()}
		for c, idx := range ix {
			row.Values[c] = s.values[st][idx]
		}
		t.Rows[st] = row
	}
	return t, nil
}
