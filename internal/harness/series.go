package harness

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WriteSeries writes one density per line with full precision.
func WriteSeries(w io.Writer, dens []float64) error {
	bw := bufio.NewWriter(w)
	for _, d := range dens {
		if _, err := bw.WriteString(strconv.FormatFloat(d, 'g', -1, 64)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadSeries reads whitespace-separated densities, as written by
// WriteSeries.
func ReadSeries(r io.Reader) ([]float64, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	var dens []float64
	for sc.Scan() {
		v, err := strconv.ParseFloat(strings.TrimSpace(sc.Text()), 64)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", len(dens), err)
		}
		dens = append(dens, v)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return dens, nil
}

// CompareSeries checks got against want value by value with the comparison
// tolerance. Length differences are reported once.
func CompareSeries(want, got []float64) *Report {
	rep := &Report{Source: "series"}
	if len(want) != len(got) {
		rep.add(Mismatch{Message: fmt.Sprintf("want %d days, got %d", len(want), len(got))})
	}
	n := min(len(want), len(got))
	for i := 0; i < n; i++ {
		if !approxEqual(want[i], got[i]) {
			rep.add(Mismatch{
				Stat:    fmt.Sprintf("day %d", i),
				Column:  "density",
				Want:    want[i],
				Got:     got[i],
				Message: "outside tolerance",
			})
		}
	}
	return rep
}
